package http

import (
	"net/http"

	"journal-backend/internal/domain"
	"journal-backend/internal/service"
)

type authorHandler struct {
	svc service.AuthorService
}

func (h *authorHandler) list(w http.ResponseWriter, r *http.Request) {
	publicationID, ok := pathID(w, r, "publicationID")
	if !ok {
		return
	}
	authors, err := h.svc.ListByPublication(r.Context(), publicationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if authors == nil {
		authors = []domain.Author{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"authors": authors})
}

func (h *authorHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	author, err := h.svc.GetAuthor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, author)
}

func (h *authorHandler) add(w http.ResponseWriter, r *http.Request) {
	publicationID, ok := pathID(w, r, "publicationID")
	if !ok {
		return
	}
	var author domain.Author
	if !decodeJSON(w, r, &author) {
		return
	}
	if author.Email == "" {
		writeErrorMessage(w, r, http.StatusBadRequest, "invalid_author", "email is required")
		return
	}
	author.ID = 0
	author.PublicationID = publicationID
	if err := h.svc.AddAuthor(r.Context(), &author); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, author)
}

func (h *authorHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	current, err := h.svc.GetAuthor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var author domain.Author
	if !decodeJSON(w, r, &author) {
		return
	}
	// Ordering and ownership change only through their own endpoints.
	author.ID = id
	author.PublicationID = current.PublicationID
	author.Seq = current.Seq
	if err := h.svc.UpdateAuthor(r.Context(), &author); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, author)
}

func (h *authorHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAuthor(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	AuthorIDs []int32 `json:"authorIds"`
}

func (h *authorHandler) reorder(w http.ResponseWriter, r *http.Request) {
	publicationID, ok := pathID(w, r, "publicationID")
	if !ok {
		return
	}
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ReorderAuthors(r.Context(), publicationID, req.AuthorIDs); err != nil {
		writeError(w, r, err)
		return
	}
	authors, err := h.svc.ListByPublication(r.Context(), publicationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authors": authors})
}
