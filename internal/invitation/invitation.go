// Package invitation holds the per-kind behavior of invitations. The generic
// lifecycle (dispatch, accept, cancel, expire) lives in the service layer.
package invitation

import (
	"context"
	"fmt"
	"sort"

	"journal-backend/internal/domain"
)

type Handler interface {
	ClassName() string
	// Prepare resolves the invitee before anything is stored. A missing invitee wraps
	// domain.ErrNotFound.
	Prepare(ctx context.Context, inv *domain.Invitation) error
	// Mail composes the notification for a freshly dispatched invitation.
	Mail(ctx context.Context, inv *domain.Invitation, acceptURL string) (*domain.Mail, error)
	// Validate reports whether accepting inv should take effect now.
	Validate(ctx context.Context, inv *domain.Invitation) (bool, error)
	// Apply performs the kind's side effect. Only called after Validate returned true.
	Apply(ctx context.Context, inv *domain.Invitation) error
	// RedirectRoute names the route the invitee lands on after accepting.
	RedirectRoute() string
}

type Registry struct {
	handlers map[string]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		r.handlers[h.ClassName()] = h
	}
	return r
}

func (r *Registry) Get(className string) (Handler, error) {
	h, ok := r.handlers[className]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownInvitationKind, className)
	}
	return h, nil
}

func (r *Registry) ClassNames() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ Handler = (*RegistrationAccess)(nil)
