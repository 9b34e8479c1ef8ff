// Package routing builds absolute URLs from named routes.
package routing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"journal-backend/internal/domain"
)

const (
	RouteIndex            = "index"
	RouteLogin            = "login"
	RouteInvitationAccept = "invitation.accept"
)

// Path templates shared with the HTTP router so built links always resolve to a handler.
const (
	IndexPath            = "/{contextPath}"
	LoginPath            = "/{contextPath}/login"
	InvitationAcceptPath = "/{contextPath}/invitation/accept/{id:[0-9]+}/{key}"
)

type URLBuilder struct {
	base   *url.URL
	router *mux.Router
}

func NewURLBuilder(baseURL string) (*URLBuilder, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	r := mux.NewRouter()
	r.Path(InvitationAcceptPath).Name(RouteInvitationAccept)
	r.Path(LoginPath).Name(RouteLogin)
	r.Path(IndexPath).Name(RouteIndex)
	return &URLBuilder{base: base, router: r}, nil
}

// URL returns the absolute URL of route in the journal at contextPath. An empty
// contextPath yields the site-wide form. pairs are the remaining route variables
// as name/value pairs.
func (b *URLBuilder) URL(route, contextPath string, pairs ...string) (string, error) {
	r := b.router.Get(route)
	if r == nil {
		return "", fmt.Errorf("unknown route %q", route)
	}
	if contextPath == "" {
		contextPath = domain.NoContextPath
	}
	u, err := r.URLPath(append([]string{"contextPath", contextPath}, pairs...)...)
	if err != nil {
		return "", fmt.Errorf("build %s url: %w", route, err)
	}
	out := *b.base
	out.Path = b.base.Path + u.Path
	return out.String(), nil
}
