package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
	"journal-backend/internal/security"
	"journal-backend/internal/usergroup"
)

const (
	requestIDHeader = "X-Request-ID"
	adminCookie     = "admin_token"
)

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// userGroupCacheMiddleware gives each request its own user group cache.
func userGroupCacheMiddleware(repo repository.UserGroupRepository) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := usergroup.NewCache(repo)
			defer c.Clear()
			next.ServeHTTP(w, r.WithContext(usergroup.WithCache(r.Context(), c)))
		})
	}
}

// adminAuthMiddleware accepts a bearer token or, for the html pages, the admin cookie.
func adminAuthMiddleware(tokens security.TokenManager) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeErrorMessage(w, r, http.StatusUnauthorized, "unauthenticated", "authorization token is not provided")
				return
			}
			claims, err := tokens.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected admin token", "path", r.URL.Path, "error", err)
				writeErrorMessage(w, r, http.StatusUnauthorized, "unauthenticated", err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(security.WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}
	if c, err := r.Cookie(adminCookie); err == nil {
		return c.Value
	}
	return ""
}

// requireScope writes 403 and returns false unless the caller administers the journal
// (nil means site-wide).
func requireScope(w http.ResponseWriter, r *http.Request, journalID *int32) bool {
	claims := security.ClaimsFromContext(r.Context())
	if claims == nil || !claims.CanManage(journalID) {
		writeErrorMessage(w, r, http.StatusForbidden, "forbidden", "not allowed to administer this scope")
		return false
	}
	return true
}

type middlewareFunc = func(http.Handler) http.Handler

func corsMiddleware(origins []string) middlewareFunc {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			requestIDHeader,
		},
		ExposedHeaders:   []string{requestIDHeader, "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 || origins[0] == "*" {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	}
	return cors.Handler(opts)
}
