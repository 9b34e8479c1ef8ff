package http

import (
	"io"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"journal-backend/internal/logger"
	"journal-backend/internal/storage"
)

type documentHandler struct {
	documents storage.DocumentStore
}

// download serves a stored import document. The tag must match the key so that
// links cannot be forged by editing the query.
func (h *documentHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" || storage.DocumentTag(key) != mux.Vars(r)["tag"] {
		writeErrorMessage(w, r, http.StatusNotFound, "not_found", "document not found")
		return
	}
	rc, err := h.documents.Open(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	if path.Ext(key) == ".xml" {
		w.Header().Set("Content-Type", "application/xml")
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		logger.WarnContext(r.Context(), "Document download interrupted", "key", key, "error", err)
	}
}
