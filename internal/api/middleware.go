package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
	"github.com/tryDmitriyCatch/crypto-api/internal/user"
)

type contextKey struct{ name string }

var userKey = &contextKey{"user"}

// withUser resolves the `token` request parameter (query or form) to a user
// and stores it in the request context. Every API endpoint requires it.
func (h *Handler) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("token")
		if token == "" {
			writeError(w, http.StatusBadRequest, "token parameter is missing")
			return
		}

		u, err := h.users.GetByToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				writeError(w, http.StatusNotFound, "user not found")
				return
			}
			writeFailure(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

// userFrom returns the authenticated user stored by withUser.
func userFrom(ctx context.Context) domain.User {
	u, _ := ctx.Value(userKey).(domain.User)
	return u
}
