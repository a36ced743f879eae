package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/vault"
	"golang.org/x/time/rate"
)

// Handler holds API route handlers.
type Handler struct {
	v        *vault.Vault
	attempts *rate.Limiter
	interval time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithPasswordLimit throttles wrong passwords: burst failures pass, then one
// more per interval. Correct passwords never spend the budget.
func WithPasswordLimit(interval time.Duration, burst int) Option {
	return func(h *Handler) {
		if interval <= 0 || burst <= 0 {
			return
		}
		h.attempts = rate.NewLimiter(rate.Every(interval), burst)
		h.interval = interval
	}
}

// NewHandler creates a new Handler.
func NewHandler(v *vault.Vault, opts ...Option) *Handler {
	h := &Handler{v: v}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// allowAttempt answers 429 once the failure budget is spent. It does not
// consume the budget itself.
func (h *Handler) allowAttempt(w http.ResponseWriter) bool {
	if h.attempts == nil || h.attempts.Tokens() >= 1 {
		return true
	}
	retry := int(math.Ceil(h.interval.Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
	writeJSON(w, http.StatusTooManyRequests, errorBody("too many password attempts"))
	return false
}

// chargeFailure spends one attempt when err is a rejected password.
func (h *Handler) chargeFailure(err error) {
	if h.attempts != nil && errors.Is(err, apperr.ErrInvalidCredential) {
		h.attempts.Allow()
	}
}

// GetDocument handles GET /api/document.
//
//	@Summary		Current document together with mode, selection and pending prompts
//	@Tags			document
//	@Produce		json
//	@Success		200	{object}	vault.View
//	@Security		BearerAuth
//	@Router			/document [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	view := h.v.View()
	w.Header().Set("ETag", `"`+view.Checksum+`"`)
	writeJSON(w, http.StatusOK, view)
}

// Palette handles GET /api/palette.
//
//	@Summary	Emoji and color choices for sections
//	@Tags		document
//	@Produce	json
//	@Success	200	{object}	PaletteResponse
//	@Router		/palette [get]
func (h *Handler) Palette(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PaletteResponse{Emojis: document.Emojis, Colors: document.Colors})
}

// CreateSection handles POST /api/sections.
//
//	@Summary		Create a section
//	@Tags			sections
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SectionRequest	true	"Section"
//	@Success		201		{object}	vault.Outcome
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections [post]
func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	var req SectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.CreateSection(r.Context(), req)
	writeOutcome(w, "create section", http.StatusCreated, out, err)
}

// RenameSection handles PUT /api/sections/{id}.
//
//	@Summary		Edit a section's name, emoji and color
//	@Tags			sections
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Section ID"
//	@Param			body	body		SectionRequest	true	"Section"
//	@Success		200		{object}	vault.Outcome
//	@Success		423		{object}	vault.Outcome	"password required"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections/{id} [put]
func (h *Handler) RenameSection(w http.ResponseWriter, r *http.Request) {
	var req SectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.RenameSection(r.Context(), chi.URLParam(r, "id"), req)
	writeOutcome(w, "rename section", http.StatusOK, out, err)
}

// DeleteSection handles DELETE /api/sections/{id}.
//
//	@Summary		Delete a section and its links
//	@Tags			sections
//	@Produce		json
//	@Param			id	path		string	true	"Section ID"
//	@Success		202	{object}	vault.Outcome	"confirmation required"
//	@Success		423	{object}	vault.Outcome	"password required"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections/{id} [delete]
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	out, err := h.v.DeleteSection(r.Context(), chi.URLParam(r, "id"))
	writeOutcome(w, "delete section", http.StatusOK, out, err)
}

// ToggleSection handles POST /api/sections/{id}/toggle.
//
//	@Summary	Expand or collapse a section
//	@Tags		sections
//	@Param		id	path		string	true	"Section ID"
//	@Success	200	{object}	vault.Outcome
//	@Security	BearerAuth
//	@Router		/sections/{id}/toggle [post]
func (h *Handler) ToggleSection(w http.ResponseWriter, r *http.Request) {
	out, err := h.v.ToggleSection(r.Context(), chi.URLParam(r, "id"))
	writeOutcome(w, "toggle section", http.StatusOK, out, err)
}

// PickSection handles POST /api/sections/{id}/pick.
//
//	@Summary	Activate a section header in reorder mode
//	@Tags		reorder
//	@Param		id	path		string	true	"Section ID"
//	@Success	200	{object}	vault.Outcome
//	@Security	BearerAuth
//	@Router		/sections/{id}/pick [post]
func (h *Handler) PickSection(w http.ResponseWriter, r *http.Request) {
	out, err := h.v.PickSection(r.Context(), chi.URLParam(r, "id"))
	writeOutcome(w, "pick section", http.StatusOK, out, err)
}

// MoveSection handles POST /api/sections/{id}/move.
//
//	@Summary	Shift a section to the position of another section
//	@Tags		sections
//	@Accept		json
//	@Param		id		path		string				true	"Section ID"
//	@Param		body	body		MoveSectionRequest	true	"Target"
//	@Success	200		{object}	vault.Outcome
//	@Security	BearerAuth
//	@Router		/sections/{id}/move [post]
func (h *Handler) MoveSection(w http.ResponseWriter, r *http.Request) {
	var req MoveSectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.MoveSection(r.Context(), chi.URLParam(r, "id"), req.TargetID)
	writeOutcome(w, "move section", http.StatusOK, out, err)
}

// AddLink handles POST /api/sections/{id}/links.
//
//	@Summary		Add a link to a section
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Section ID"
//	@Param			body	body		LinkRequest	true	"Link"
//	@Success		201		{object}	vault.Outcome
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections/{id}/links [post]
func (h *Handler) AddLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.AddLink(r.Context(), chi.URLParam(r, "id"), req)
	writeOutcome(w, "add link", http.StatusCreated, out, err)
}

// UpdateLink handles PUT /api/links/{id}.
//
//	@Summary		Edit a link, optionally moving it to another section
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Link ID"
//	@Param			body	body		UpdateLinkRequest	true	"Link"
//	@Success		200		{object}	vault.Outcome
//	@Success		423		{object}	vault.Outcome	"password required"
//	@Security		BearerAuth
//	@Router			/links/{id} [put]
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	var req UpdateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := document.LinkInput{URL: req.URL, Name: req.Name}
	out, err := h.v.UpdateLink(r.Context(), chi.URLParam(r, "id"), in, req.SectionID)
	writeOutcome(w, "update link", http.StatusOK, out, err)
}

// DeleteLink handles DELETE /api/sections/{sid}/links/{id}.
//
//	@Summary	Delete a link
//	@Tags		links
//	@Param		sid	path		string	true	"Section ID"
//	@Param		id	path		string	true	"Link ID"
//	@Success	202	{object}	vault.Outcome	"confirmation required"
//	@Success	423	{object}	vault.Outcome	"password required"
//	@Security	BearerAuth
//	@Router		/sections/{sid}/links/{id} [delete]
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	out, err := h.v.DeleteLink(r.Context(), chi.URLParam(r, "sid"), chi.URLParam(r, "id"))
	writeOutcome(w, "delete link", http.StatusOK, out, err)
}

// Activate handles POST /api/sections/{sid}/links/{id}/activate.
//
//	@Summary		Activate a link: open, toggle selection, or pick for reorder
//	@Tags			links
//	@Param			sid	path		string	true	"Section ID"
//	@Param			id	path		string	true	"Link ID"
//	@Success		200	{object}	vault.Outcome
//	@Security		BearerAuth
//	@Router			/sections/{sid}/links/{id}/activate [post]
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	out, err := h.v.Activate(r.Context(), chi.URLParam(r, "sid"), chi.URLParam(r, "id"))
	writeOutcome(w, "activate", http.StatusOK, out, err)
}

// MoveLinks handles POST /api/links/move.
//
//	@Summary	Move links to the end of a section
//	@Tags		links
//	@Accept		json
//	@Param		body	body		MoveLinksRequest	true	"Links and target"
//	@Success	200		{object}	vault.Outcome
//	@Security	BearerAuth
//	@Router		/links/move [post]
func (h *Handler) MoveLinks(w http.ResponseWriter, r *http.Request) {
	var req MoveLinksRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.MoveLinks(r.Context(), req.IDs, req.SectionID)
	writeOutcome(w, "move links", http.StatusOK, out, err)
}

// SwapLinks handles POST /api/links/swap.
//
//	@Summary	Exchange the positions of two links
//	@Tags		links
//	@Accept		json
//	@Param		body	body		SwapLinksRequest	true	"Link pair"
//	@Success	200		{object}	vault.Outcome
//	@Security	BearerAuth
//	@Router		/links/swap [post]
func (h *Handler) SwapLinks(w http.ResponseWriter, r *http.Request) {
	var req SwapLinksRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.SwapLinks(r.Context(), req.A.SectionID, req.A.LinkID, req.B.SectionID, req.B.LinkID)
	writeOutcome(w, "swap links", http.StatusOK, out, err)
}

// ToggleSelection handles POST /api/selection/toggle.
func (h *Handler) ToggleSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.v.ToggleSelection())
}

// SelectAll handles POST /api/selection/all.
func (h *Handler) SelectAll(w http.ResponseWriter, r *http.Request) {
	out, err := h.v.SelectAll(r.Context())
	writeOutcome(w, "select all", http.StatusOK, out, err)
}

// MoveSelected handles POST /api/selection/move.
//
//	@Summary	Move the selected links to a section
//	@Tags		selection
//	@Accept		json
//	@Param		body	body		MoveSelectedRequest	true	"Target"
//	@Success	200		{object}	vault.Outcome
//	@Security	BearerAuth
//	@Router		/selection/move [post]
func (h *Handler) MoveSelected(w http.ResponseWriter, r *http.Request) {
	var req MoveSelectedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.MoveSelected(r.Context(), req.SectionID)
	writeOutcome(w, "move selected", http.StatusOK, out, err)
}

// DeleteSelected handles DELETE /api/selection/links.
func (h *Handler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	out, err := h.v.DeleteSelected(r.Context())
	writeOutcome(w, "delete selected", http.StatusOK, out, err)
}

// ToggleReorder handles POST /api/reorder/toggle.
func (h *Handler) ToggleReorder(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.v.ToggleReorder())
}

// ExitModes handles POST /api/modes/exit.
func (h *Handler) ExitModes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.v.ExitModes())
}
