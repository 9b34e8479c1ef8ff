// Package navxml reads navigation menu install documents:
//
//	<navigationMenus>
//	  <navigationMenu title="Primary Navigation Menu" area="primary">
//	    <navigationMenuItem title="navigation.about" type="NMI_TYPE_ABOUT" path="about">
//	      <label locale="en">About</label>
//	      <navigationMenuItem title="navigation.contact" type="NMI_TYPE_CUSTOM" path="contact"/>
//	    </navigationMenuItem>
//	  </navigationMenu>
//	</navigationMenus>
//
// The whole document is decoded and validated before a caller acts on any node.
package navxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"journal-backend/internal/domain"
)

type Document struct {
	XMLName xml.Name `xml:"navigationMenus"`
	Menus   []Menu   `xml:"navigationMenu"`

	// Items placed directly under the root are installed without a menu.
	Items []Item `xml:"navigationMenuItem"`
}

type Menu struct {
	Title string `xml:"title,attr"`
	Area  string `xml:"area,attr"`

	// Site marks a menu as installable when no journal scope is given.
	Site  bool   `xml:"site,attr"`
	Items []Item `xml:"navigationMenuItem"`
}

type Item struct {
	TitleKey string  `xml:"title,attr"`
	Type     string  `xml:"type,attr"`
	Path     string  `xml:"path,attr"`
	URL      string  `xml:"url,attr"`
	Labels   []Label `xml:"label"`
	Children []Item  `xml:"navigationMenuItem"`
}

type Label struct {
	Locale string `xml:"locale,attr"`
	Value  string `xml:",chardata"`
}

var knownTypes = map[domain.NavigationMenuItemType]bool{
	domain.NavigationMenuItemTypeCustom:        true,
	domain.NavigationMenuItemTypeRemoteURL:     true,
	domain.NavigationMenuItemTypeAbout:         true,
	domain.NavigationMenuItemTypeAnnouncements: true,
	domain.NavigationMenuItemTypeCurrent:       true,
	domain.NavigationMenuItemTypeArchives:      true,
	domain.NavigationMenuItemTypeSearch:        true,
	domain.NavigationMenuItemTypeUserLogin:     true,
	domain.NavigationMenuItemTypeUserRegister:  true,
	domain.NavigationMenuItemTypeUserLogout:    true,
}

// Parse decodes and validates a document. Any failure wraps domain.ErrMalformedInput.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}
	return &doc, nil
}

// charsetReader lets documents declare a non UTF-8 encoding such as ISO-8859-1.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(input), nil
}

func (d *Document) validate() error {
	for i := range d.Menus {
		m := &d.Menus[i]
		m.Title = strings.TrimSpace(m.Title)
		m.Area = strings.TrimSpace(m.Area)
		if m.Title == "" {
			return fmt.Errorf("navigationMenu %d has no title", i)
		}
		if err := validateItems(m.Items, m.Title); err != nil {
			return err
		}
	}
	return validateItems(d.Items, "navigationMenus")
}

func validateItems(items []Item, parent string) error {
	for i := range items {
		it := &items[i]
		it.TitleKey = strings.TrimSpace(it.TitleKey)
		if it.TitleKey == "" {
			return fmt.Errorf("navigationMenuItem %d under %q has no title", i, parent)
		}
		if it.Type == "" {
			it.Type = string(domain.NavigationMenuItemTypeCustom)
		}
		if !knownTypes[domain.NavigationMenuItemType(it.Type)] {
			return fmt.Errorf("navigationMenuItem %q has unknown type %q", it.TitleKey, it.Type)
		}
		for _, l := range it.Labels {
			if l.Locale == "" {
				return fmt.Errorf("label under %q has no locale", it.TitleKey)
			}
		}
		if err := validateItems(it.Children, it.TitleKey); err != nil {
			return err
		}
	}
	return nil
}

// MenuItem converts the node into an item record for the given scope.
func (it Item) MenuItem(contextID *int32) domain.NavigationMenuItem {
	title := domain.LocalizedString{}
	for _, l := range it.Labels {
		title.Set(l.Locale, strings.TrimSpace(l.Value))
	}
	return domain.NavigationMenuItem{
		ContextID:      contextID,
		Type:           domain.NavigationMenuItemType(it.Type),
		Path:           it.Path,
		URL:            it.URL,
		TitleLocaleKey: it.TitleKey,
		Title:          title,
	}
}

// Count returns the number of menu and item nodes in the document.
func (d *Document) Count() (menus, items int) {
	var walk func([]Item)
	walk = func(list []Item) {
		for _, it := range list {
			items++
			walk(it.Children)
		}
	}
	for _, m := range d.Menus {
		walk(m.Items)
	}
	walk(d.Items)
	return len(d.Menus), items
}
