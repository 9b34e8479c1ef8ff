package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   message,
		RequestID: logger.RequestID(r.Context()),
	}})
}

// writeError maps a service error onto a status code. Unexpected errors are logged
// and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvitationNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrMalformedInput):
		status, code = http.StatusBadRequest, "malformed_input"
	case errors.Is(err, domain.ErrInvitationIncomplete), errors.Is(err, domain.ErrUnknownInvitationKind):
		status, code = http.StatusBadRequest, "invalid_invitation"
	case errors.Is(err, domain.ErrSlotTaken), errors.Is(err, domain.ErrInvitationNotPending):
		status, code = http.StatusConflict, "conflict"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "internal server error"
	}
	writeErrorMessage(w, r, status, code, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return false
	}
	return true
}

// pathID reads a numeric route variable. The routes constrain the pattern, so
// only overflow can fail here.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, "invalid_id", name+" is out of range")
		return 0, false
	}
	return int32(v), true
}

func pathID64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, "invalid_id", name+" is out of range")
		return 0, false
	}
	return v, true
}

// pageParams reads ?page=&pageSize=, leaving bounds to the service.
func pageParams(r *http.Request) (int32, int32) {
	q := r.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 32)
	size, _ := strconv.ParseInt(q.Get("pageSize"), 10, 32)
	return int32(page), int32(size)
}
