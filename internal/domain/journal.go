package domain

// Journal is the administrative scope most records belong to.
type Journal struct {
	ID            int32           `json:"id"`
	Path          string          `json:"path"`
	PrimaryLocale string          `json:"primary_locale"`
	Name          LocalizedString `json:"name,omitempty"`
	Enabled       bool            `json:"enabled"`
}

// NoContextPath is the path segment used in URLs that are not bound to a journal.
const NoContextPath = "index"
