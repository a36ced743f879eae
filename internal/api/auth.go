package api

import (
	"net/http"

	"github.com/starford/linkvault/internal/auth"
	"github.com/starford/linkvault/internal/vault"
)

// AuthResponse reports the password gate state.
type AuthResponse struct {
	State   auth.State `json:"state"`
	Pending string     `json:"pending,omitempty"`
}

// AuthState handles GET /api/auth.
//
//	@Summary	Password gate state
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	AuthResponse
//	@Security	BearerAuth
//	@Router		/auth [get]
func (h *Handler) AuthState(w http.ResponseWriter, _ *http.Request) {
	view := h.v.View()
	writeJSON(w, http.StatusOK, AuthResponse{State: view.Auth, Pending: view.PendingAuth})
}

// Unlock handles POST /api/auth/unlock. On success the deferred operation runs
// and its outcome is returned; a resumed export answers with the file itself.
//
//	@Summary		Submit the vault password
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UnlockRequest	true	"Password"
//	@Success		200		{object}	vault.Outcome
//	@Failure		403		{object}	errResponse	"wrong password"
//	@Security		BearerAuth
//	@Router			/auth/unlock [post]
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	if !h.allowAttempt(w) {
		return
	}
	var req UnlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.Unlock(r.Context(), req.Password)
	h.chargeFailure(err)
	if err == nil && out.Status == vault.StatusDone {
		if res, ok := out.Result.(vault.ExportResult); ok {
			writeExport(w, res)
			return
		}
	}
	writeOutcome(w, "unlock", http.StatusOK, out, err)
}

// CancelAuth handles POST /api/auth/cancel.
func (h *Handler) CancelAuth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": h.v.CancelAuth()})
}

// Lock handles POST /api/auth/lock.
func (h *Handler) Lock(w http.ResponseWriter, _ *http.Request) {
	h.v.Lock()
	w.WriteHeader(http.StatusNoContent)
}

// SetPassword handles PUT /api/auth/password.
//
//	@Summary		Set or change the vault password
//	@Tags			auth
//	@Accept			json
//	@Param			body	body		SetPasswordRequest	true	"Passwords"
//	@Success		200		{object}	vault.Outcome
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse	"wrong password"
//	@Security		BearerAuth
//	@Router			/auth/password [put]
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	if !h.allowAttempt(w) {
		return
	}
	var req SetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.SetPassword(r.Context(), req.Old, req.New, req.Confirm)
	h.chargeFailure(err)
	writeOutcome(w, "set password", http.StatusOK, out, err)
}

// RemovePassword handles DELETE /api/auth/password.
func (h *Handler) RemovePassword(w http.ResponseWriter, r *http.Request) {
	if !h.allowAttempt(w) {
		return
	}
	var req RemovePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.RemovePassword(r.Context(), req.Old)
	h.chargeFailure(err)
	writeOutcome(w, "remove password", http.StatusOK, out, err)
}

// Confirm handles POST /api/confirm.
//
//	@Summary	Accept the pending confirmation
//	@Tags		confirm
//	@Accept		json
//	@Param		body	body		ConfirmRequest	false	"Ticket; empty confirms whatever is pending"
//	@Success	200		{object}	vault.Outcome
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/confirm [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.v.Confirm(r.Context(), req.Ticket)
	writeOutcome(w, "confirm", http.StatusOK, out, err)
}

// Dismiss handles DELETE /api/confirm.
func (h *Handler) Dismiss(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": h.v.Dismiss()})
}
