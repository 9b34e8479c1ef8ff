package domain

// Site-wide records carry a nil ContextID.

type NavigationMenu struct {
	ID        int32  `json:"id"`
	ContextID *int32 `json:"context_id,omitempty"`
	Title     string `json:"title"`
	AreaName  string `json:"area_name"`
}

type NavigationMenuItemType string

const (
	NavigationMenuItemTypeCustom        NavigationMenuItemType = "NMI_TYPE_CUSTOM"
	NavigationMenuItemTypeRemoteURL     NavigationMenuItemType = "NMI_TYPE_REMOTE_URL"
	NavigationMenuItemTypeAbout         NavigationMenuItemType = "NMI_TYPE_ABOUT"
	NavigationMenuItemTypeAnnouncements NavigationMenuItemType = "NMI_TYPE_ANNOUNCEMENTS"
	NavigationMenuItemTypeCurrent       NavigationMenuItemType = "NMI_TYPE_CURRENT"
	NavigationMenuItemTypeArchives      NavigationMenuItemType = "NMI_TYPE_ARCHIVES"
	NavigationMenuItemTypeSearch        NavigationMenuItemType = "NMI_TYPE_SEARCH"
	NavigationMenuItemTypeUserLogin     NavigationMenuItemType = "NMI_TYPE_USER_LOGIN"
	NavigationMenuItemTypeUserRegister  NavigationMenuItemType = "NMI_TYPE_USER_REGISTER"
	NavigationMenuItemTypeUserLogout    NavigationMenuItemType = "NMI_TYPE_USER_LOGOUT"
)

type NavigationMenuItem struct {
	ID             int32                  `json:"id"`
	ContextID      *int32                 `json:"context_id,omitempty"`
	Type           NavigationMenuItemType `json:"type"`
	Path           string                 `json:"path"`
	URL            string                 `json:"url"`
	TitleLocaleKey string                 `json:"title_locale_key"`
	Title          LocalizedString        `json:"title,omitempty"`
}

// NavigationMenuItemAssignment places an item in a menu. ParentID refers to the parent
// assignment; Seq orders siblings.
type NavigationMenuItemAssignment struct {
	ID       int32           `json:"id"`
	MenuID   int32           `json:"menu_id"`
	ItemID   int32           `json:"item_id"`
	ParentID *int32          `json:"parent_id,omitempty"`
	Seq      int32           `json:"seq"`
	Title    LocalizedString `json:"title,omitempty"`
}

// NavigationMenuTree is the cached, read-side view of a menu.
type NavigationMenuTree struct {
	Menu  NavigationMenu           `json:"menu"`
	Nodes []NavigationMenuTreeNode `json:"nodes"`
}

type NavigationMenuTreeNode struct {
	AssignmentID int32                    `json:"assignment_id"`
	Seq          int32                    `json:"seq"`
	Item         NavigationMenuItem       `json:"item"`
	Children     []NavigationMenuTreeNode `json:"children,omitempty"`
}
