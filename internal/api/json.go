package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/vault"
)

const maxJSONBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrInvalidCredential):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusPreconditionFailed
	case errors.Is(err, apperr.ErrMalformedImport):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody(apperr.Message(err)))
}

// writeOutcome renders a controller outcome. Pending auth answers 423 Locked
// and pending confirmation 202 Accepted; the body carries the ticket either way.
func writeOutcome(w http.ResponseWriter, op string, okStatus int, out vault.Outcome, err error) {
	if err != nil {
		writeError(w, op, err)
		return
	}
	switch out.Status {
	case vault.StatusAuthRequired:
		writeJSON(w, http.StatusLocked, out)
	case vault.StatusConfirmRequired:
		writeJSON(w, http.StatusAccepted, out)
	default:
		writeJSON(w, okStatus, out)
	}
}
