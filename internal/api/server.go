package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, users UserService, assets AssetService, valuer Valuer) *http.Server {
	handler := NewHandler(users, assets, valuer)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(handler.withUser)

		r.Route("/user", func(r chi.Router) {
			r.Get("/", handler.GetUser)
			r.Put("/", handler.UpdateUser)
			r.Patch("/", handler.UpdateUser)
			r.Delete("/", handler.DeleteUser)
		})

		r.Route("/asset", func(r chi.Router) {
			r.Get("/index", handler.ListAssets)
			r.Post("/create", handler.CreateAsset)
			r.Put("/update", handler.UpdateAsset)
			r.Patch("/update", handler.UpdateAsset)
			r.Delete("/delete", handler.DeleteAsset)
			r.Get("/{asset_id}", handler.GetAsset)
		})
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
