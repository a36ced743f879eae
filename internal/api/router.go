package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/linkvault/internal/vault"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(v *vault.Vault, authEnabled bool, token string, sseHandler http.Handler, opts ...Option) chi.Router {
	h := NewHandler(v, opts...)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/document", h.GetDocument)
	r.Delete("/document", h.Clear)
	r.Get("/palette", h.Palette)

	r.Route("/sections", func(r chi.Router) {
		r.Post("/", h.CreateSection)
		r.Put("/{id}", h.RenameSection)
		r.Delete("/{id}", h.DeleteSection)
		r.Post("/{id}/toggle", h.ToggleSection)
		r.Post("/{id}/pick", h.PickSection)
		r.Post("/{id}/move", h.MoveSection)
		r.Post("/{id}/links", h.AddLink)
		r.Delete("/{sid}/links/{id}", h.DeleteLink)
		r.Post("/{sid}/links/{id}/activate", h.Activate)
	})

	r.Post("/links/move", h.MoveLinks)
	r.Post("/links/swap", h.SwapLinks)
	r.Put("/links/{id}", h.UpdateLink)

	// Interaction modes.
	r.Post("/selection/toggle", h.ToggleSelection)
	r.Post("/selection/all", h.SelectAll)
	r.Post("/selection/move", h.MoveSelected)
	r.Delete("/selection/links", h.DeleteSelected)
	r.Post("/reorder/toggle", h.ToggleReorder)
	r.Post("/modes/exit", h.ExitModes)

	// Password gate and confirmations.
	r.Get("/auth", h.AuthState)
	r.Post("/auth/unlock", h.Unlock)
	r.Post("/auth/cancel", h.CancelAuth)
	r.Post("/auth/lock", h.Lock)
	r.Put("/auth/password", h.SetPassword)
	r.Delete("/auth/password", h.RemovePassword)
	r.Post("/confirm", h.Confirm)
	r.Delete("/confirm", h.Dismiss)

	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
