package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"journal-backend/internal/repository"
	"journal-backend/internal/routing"
	"journal-backend/internal/security"
	"journal-backend/internal/service"
	"journal-backend/internal/storage"
)

// Deps are the collaborators the HTTP API is built from.
type Deps struct {
	Navigation     service.NavigationService
	Invitations    service.InvitationService
	Authors        service.AuthorService
	Jobs           service.JobAdminService
	Documents      storage.DocumentStore
	UserGroups     repository.UserGroupRepository
	Tokens         security.TokenManager
	AllowedOrigins []string
}

// NewRouter wires every route. Admin routes require a bearer token.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, userGroupCacheMiddleware(d.UserGroups))

	nav := &navigationHandler{svc: d.Navigation, documents: d.Documents}
	inv := &invitationHandler{svc: d.Invitations}
	authors := &authorHandler{svc: d.Authors}
	jobs := newAdminJobsHandler(d.Jobs)
	docs := &documentHandler{documents: d.Documents}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/navigation-menus/{id:[0-9]+}", nav.getMenu).Methods(http.MethodGet)
	api.HandleFunc("/publications/{publicationID:[0-9]+}/authors", authors.list).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(adminAuthMiddleware(d.Tokens))
	admin.HandleFunc("/journals/{journalID:[0-9]+}/navigation-menus", nav.listMenus).Methods(http.MethodGet)
	admin.HandleFunc("/journals/{journalID:[0-9]+}/navigation-menus/import", nav.importMenus).Methods(http.MethodPost)
	admin.HandleFunc("/site/navigation-menus", nav.listMenus).Methods(http.MethodGet)
	admin.HandleFunc("/site/navigation-menus/import", nav.importMenus).Methods(http.MethodPost)
	admin.HandleFunc("/navigation-menus/{id:[0-9]+}", nav.deleteMenu).Methods(http.MethodDelete)
	admin.HandleFunc("/documents/{tag}", docs.download).Methods(http.MethodGet)

	admin.HandleFunc("/invitations/registration-access", inv.dispatchRegistrationAccess).Methods(http.MethodPost)
	admin.HandleFunc("/invitations/{id:[0-9]+}", inv.cancel).Methods(http.MethodDelete)

	admin.HandleFunc("/publications/{publicationID:[0-9]+}/authors", authors.add).Methods(http.MethodPost)
	admin.HandleFunc("/publications/{publicationID:[0-9]+}/authors/order", authors.reorder).Methods(http.MethodPut)
	admin.HandleFunc("/authors/{id:[0-9]+}", authors.get).Methods(http.MethodGet)
	admin.HandleFunc("/authors/{id:[0-9]+}", authors.update).Methods(http.MethodPut)
	admin.HandleFunc("/authors/{id:[0-9]+}", authors.delete).Methods(http.MethodDelete)

	admin.HandleFunc("/admin/jobs", jobs.listJSON).Methods(http.MethodGet)
	admin.HandleFunc("/admin/jobs/failed", jobs.listFailedJSON).Methods(http.MethodGet)
	admin.HandleFunc("/admin/jobs/failed/redispatch", jobs.redispatchAll).Methods(http.MethodPost)
	admin.HandleFunc("/admin/jobs/failed/{id:[0-9]+}", jobs.getFailed).Methods(http.MethodGet)
	admin.HandleFunc("/admin/jobs/failed/{id:[0-9]+}", jobs.deleteFailed).Methods(http.MethodDelete)
	admin.HandleFunc("/admin/jobs/failed/{id:[0-9]+}/redispatch", jobs.redispatch).Methods(http.MethodPost)

	pages := r.PathPrefix("/admin").Subrouter()
	pages.Use(adminAuthMiddleware(d.Tokens))
	pages.HandleFunc("/jobs", jobs.page(jobsViewPending)).Methods(http.MethodGet)
	pages.HandleFunc("/jobs/failed", jobs.page(jobsViewFailed)).Methods(http.MethodGet)

	// Registered last so /api and /admin win over the journal path variable.
	r.HandleFunc(routing.InvitationAcceptPath, inv.accept).Methods(http.MethodGet).Name(routing.RouteInvitationAccept)

	return corsMiddleware(d.AllowedOrigins)(r)
}
