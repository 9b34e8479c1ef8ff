package domain

import "time"

type User struct {
	ID             int32           `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	GivenName      LocalizedString `json:"given_name,omitempty"`
	FamilyName     LocalizedString `json:"family_name,omitempty"`
	Disabled       bool            `json:"disabled"`
	DisabledReason string          `json:"disabled_reason,omitempty"`
	DateRegistered time.Time       `json:"date_registered"`
	DateValidated  *time.Time      `json:"date_validated,omitempty"`
}

func (u *User) FullName(locale, fallback string) string {
	given := u.GivenName.Get(locale, fallback)
	family := u.FamilyName.Get(locale, fallback)
	if family == "" {
		return given
	}
	return given + " " + family
}

type UserGroup struct {
	ID        int32           `json:"id"`
	ContextID *int32          `json:"context_id,omitempty"`
	RoleID    int32           `json:"role_id"`
	Name      LocalizedString `json:"name,omitempty"`
	Abbrev    LocalizedString `json:"abbrev,omitempty"`
	ShowTitle bool            `json:"show_title"`
}

const (
	RoleIDManager   int32 = 16
	RoleIDAuthor    int32 = 65536
	RoleIDReviewer  int32 = 4096
	RoleIDReader    int32 = 1048576
	RoleIDSiteAdmin int32 = 1
)
