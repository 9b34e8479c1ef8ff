package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"journal-backend/internal/domain"
	"journal-backend/internal/invitation"
	"journal-backend/internal/service"
)

type invitationHandler struct {
	svc service.InvitationService
}

type dispatchRequest struct {
	UserID    int32  `json:"userId"`
	JournalID *int32 `json:"journalId"`
}

type dispatchResponse struct {
	ID        int32                   `json:"id"`
	Status    domain.InvitationStatus `json:"status"`
	ExpiresAt string                  `json:"expires_at"`
}

// dispatchRegistrationAccess invites a registered user to validate their account.
// The plain key only travels in the mail.
func (h *invitationHandler) dispatchRegistrationAccess(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !requireScope(w, r, req.JournalID) {
		return
	}

	inv := &domain.Invitation{
		ClassName: invitation.RegistrationAccessClass,
		UserID:    req.UserID,
		ContextID: req.JournalID,
	}
	if _, err := h.svc.Dispatch(r.Context(), inv); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dispatchResponse{
		ID:        inv.ID,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiryDate.Format(time.RFC3339),
	})
}

func (h *invitationHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Cancel(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// accept is the link from the invitation mail. Any outcome other than a missing
// invitation or a server failure redirects to the follow-up page.
func (h *invitationHandler) accept(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	redirect, err := h.svc.Accept(r.Context(), id, mux.Vars(r)["key"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}
