package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/starford/linkvault/internal/vault"
)

const maxImportSize = 10 << 20 // 10 MB

// Export handles GET /api/export.
//
//	@Summary		Download the document as JSON
//	@Tags			transfer
//	@Produce		json
//	@Success		200	{file}		file
//	@Success		423	{object}	vault.Outcome	"password required"
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	out, err := h.v.Export(r.Context())
	if err != nil || out.Status != vault.StatusDone {
		writeOutcome(w, "export", http.StatusOK, out, err)
		return
	}
	res, ok := out.Result.(vault.ExportResult)
	if !ok {
		writeError(w, "export", errors.New("unexpected export result"))
		return
	}
	writeExport(w, res)
}

func writeExport(w http.ResponseWriter, res vault.ExportResult) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("ETag", `"`+res.Checksum+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// Import handles POST /api/import. The body is either the JSON document or a
// multipart form with a "file" field. If-Match guards against overwriting a
// document that changed since it was read.
//
//	@Summary		Replace the document with an uploaded backup
//	@Tags			transfer
//	@Accept			json
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	false	"Backup file"
//	@Param			If-Match	header		string	false	"Expected document ETag"
//	@Success		200			{object}	vault.Outcome
//	@Success		423			{object}	vault.Outcome	"password required"
//	@Failure		412			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	data, err := readUpload(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	out, err := h.v.Import(r.Context(), data, r.Header.Get("If-Match"))
	writeOutcome(w, "import", http.StatusOK, out, err)
}

func readUpload(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, errors.New("file too large or invalid body")
		}
		return data, nil
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		return nil, errors.New("file too large or invalid multipart form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("missing 'file' field")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	return data, nil
}

// Clear handles DELETE /api/document.
//
//	@Summary	Remove every section and link
//	@Tags		document
//	@Success	202	{object}	vault.Outcome	"confirmation required"
//	@Success	423	{object}	vault.Outcome	"password required"
//	@Security	BearerAuth
//	@Router		/document [delete]
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	out, err := h.v.Clear(r.Context())
	writeOutcome(w, "clear", http.StatusOK, out, err)
}
