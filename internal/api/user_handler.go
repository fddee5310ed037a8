package api

import "net/http"

// GetUser handles GET /api/user/.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	assets, err := h.userAssetPayloads(r.Context(), u.ID)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"data": userPayload{
			ID:      u.ID,
			Name:    u.Name,
			Surname: u.Surname,
			Email:   u.Email,
			Assets:  assets,
		},
	})
}

// UpdateUser handles PUT/PATCH /api/user/.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	name := r.FormValue("name")
	surname := r.FormValue("surname")
	email := r.FormValue("email")
	if name == "" || surname == "" || email == "" {
		writeError(w, http.StatusBadRequest, "required parameters are missing")
		return
	}

	updated, err := h.users.Update(r.Context(), u, name, surname, email, r.FormValue("password"))
	if err != nil {
		writeFailure(w, err)
		return
	}

	assets, err := h.userAssetPayloads(r.Context(), updated.ID)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "User has been successfully updated",
		"data": userPayload{
			ID:      updated.ID,
			Name:    updated.Name,
			Surname: updated.Surname,
			Email:   updated.Email,
			Assets:  assets,
		},
	})
}

// DeleteUser handles DELETE /api/user/.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), userFrom(r.Context()).ID); err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "User has been successfully deleted",
	})
}
