package security

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingRole  = errors.New("token lacks the required role")
)

const (
	RoleSiteAdmin    = "site_admin"
	RoleJournalAdmin = "journal_admin"

	adminAudience = "journal-admin"
)

// AdminClaims are carried by tokens for the admin HTTP and gRPC APIs.
type AdminClaims struct {
	UserID   int32    `json:"user_id"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	// Journals limits a journal admin to these journal ids. Site admins ignore it.
	Journals []int32 `json:"journals,omitempty"`
	jwt.RegisteredClaims
}

func (c *AdminClaims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// CanManage reports whether the holder may administer the journal. A nil journalID
// means the site-wide scope.
func (c *AdminClaims) CanManage(journalID *int32) bool {
	if c.HasRole(RoleSiteAdmin) {
		return true
	}
	if journalID == nil || !c.HasRole(RoleJournalAdmin) {
		return false
	}
	return slices.Contains(c.Journals, *journalID)
}

type TokenManager interface {
	GenerateAdminToken(userID int32, username string, roles []string, journals []int32) (string, error)
	ValidateToken(tokenString string) (*AdminClaims, error)
}

type tokenManager struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, expiry time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateAdminToken(userID int32, username string, roles []string, journals []int32) (string, error) {
	now := m.now()
	claims := AdminClaims{
		UserID:   userID,
		Username: username,
		Roles:    roles,
		Journals: journals,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userID)),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{adminAudience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(adminAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 && claims.Subject != "" {
		uid, _ := strconv.Atoi(claims.Subject)
		claims.UserID = int32(uid)
	}
	if !claims.HasRole(RoleSiteAdmin) && !claims.HasRole(RoleJournalAdmin) {
		return nil, ErrMissingRole
	}
	return claims, nil
}

type claimsKey struct{}

// WithClaims stores validated claims for handlers further down the chain.
func WithClaims(ctx context.Context, c *AdminClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims, or nil.
func ClaimsFromContext(ctx context.Context) *AdminClaims {
	c, _ := ctx.Value(claimsKey{}).(*AdminClaims)
	return c
}
