package domain

type Author struct {
	ID              int32                      `json:"id"`
	PublicationID   int32                      `json:"publication_id"`
	Email           string                     `json:"email"`
	Seq             int32                      `json:"seq"`
	UserGroupID     int32                      `json:"user_group_id"`
	IncludeInBrowse bool                       `json:"include_in_browse"`
	GivenName       LocalizedString            `json:"given_name,omitempty"`
	FamilyName      LocalizedString            `json:"family_name,omitempty"`
	Affiliation     LocalizedString            `json:"affiliation,omitempty"`
	Settings        map[string]LocalizedString `json:"settings,omitempty"` // open-ended locale-keyed fields (biography, orcid label, ...)

	UserGroup *UserGroup `json:"user_group,omitempty"` // resolved on read
}

// FullName joins the given and family name in locale, falling back per part.
func (a *Author) FullName(locale, fallback string) string {
	given := a.GivenName.Get(locale, fallback)
	family := a.FamilyName.Get(locale, fallback)
	switch {
	case given == "":
		return family
	case family == "":
		return given
	}
	return given + " " + family
}
