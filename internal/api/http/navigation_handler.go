package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/service"
	"journal-backend/internal/storage"
)

const maxImportBytes = 5 << 20

type navigationHandler struct {
	svc       service.NavigationService
	documents storage.DocumentStore
}

type importResponse struct {
	DocumentKey string                  `json:"document_key"`
	DownloadURL string                  `json:"download_url,omitempty"`
	Menus       []domain.NavigationMenu `json:"menus"`
}

// scope returns the journal of the route, or nil on the site routes.
func scope(w http.ResponseWriter, r *http.Request) (*int32, bool) {
	if _, ok := mux.Vars(r)["journalID"]; !ok {
		return nil, true
	}
	id, ok := pathID(w, r, "journalID")
	if !ok {
		return nil, false
	}
	return &id, true
}

// importMenus stores the uploaded document, then installs it from storage so the
// exact bytes that were applied can be fetched again.
func (h *navigationHandler) importMenus(w http.ResponseWriter, r *http.Request) {
	contextID, ok := scope(w, r)
	if !ok || !requireScope(w, r, contextID) {
		return
	}

	key := storage.NewDocumentKey(storage.FolderNavigation, r.URL.Query().Get("filename"))
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := h.documents.Save(r.Context(), key, body); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, "upload_failed", err.Error())
		return
	}
	logger.InfoContext(r.Context(), "Navigation document stored", "key", key)

	if err := h.svc.InstallFromStorage(r.Context(), contextID, key); err != nil {
		writeError(w, r, err)
		return
	}

	menus, err := h.svc.ListMenus(r.Context(), contextID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := importResponse{DocumentKey: key, Menus: menus}
	if url, err := h.documents.DownloadURL(r.Context(), key, time.Hour); err == nil {
		resp.DownloadURL = url
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *navigationHandler) listMenus(w http.ResponseWriter, r *http.Request) {
	contextID, ok := scope(w, r)
	if !ok || !requireScope(w, r, contextID) {
		return
	}
	menus, err := h.svc.ListMenus(r.Context(), contextID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"menus": menus})
}

func (h *navigationHandler) getMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tree, err := h.svc.GetMenuTree(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (h *navigationHandler) deleteMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tree, err := h.svc.GetMenuTree(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !requireScope(w, r, tree.Menu.ContextID) {
		return
	}
	if err := h.svc.DeleteMenu(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
