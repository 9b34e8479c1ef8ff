package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-backend/internal/cache"
	"journal-backend/internal/domain"
	"journal-backend/internal/storage"
)

const primaryMenuXML = `<?xml version="1.0" encoding="UTF-8"?>
<navigationMenus>
  <navigationMenu title="Primary Navigation Menu" area="primary">
    <navigationMenuItem title="navigation.current" type="NMI_TYPE_CURRENT">
      <label locale="en">Current</label>
    </navigationMenuItem>
    <navigationMenuItem title="navigation.about" type="NMI_TYPE_ABOUT">
      <label locale="en">About</label>
      <label locale="fr_CA">À propos</label>
      <navigationMenuItem title="about.contact" type="NMI_TYPE_CUSTOM" path="contact"/>
      <navigationMenuItem title="about.submissions" type="NMI_TYPE_CUSTOM" path="submissions"/>
    </navigationMenuItem>
  </navigationMenu>
  <navigationMenu title="User Navigation Menu" area="user">
    <navigationMenuItem title="navigation.login" type="NMI_TYPE_USER_LOGIN"/>
  </navigationMenu>
  <navigationMenuItem title="navigation.search" type="NMI_TYPE_SEARCH"/>
</navigationMenus>`

type navFixture struct {
	menus       *memMenus
	items       *memItems
	assignments *memAssignments
	cache       cache.MenuCache
	docs        *storage.LocalStore
	svc         NavigationService
}

func newNavFixture(t *testing.T) *navFixture {
	t.Helper()
	docs, err := storage.NewLocalStore("http://localhost:8080", t.TempDir())
	require.NoError(t, err)
	f := &navFixture{
		menus:       newMemMenus(),
		items:       newMemItems(),
		assignments: newMemAssignments(),
		cache:       cache.NewMemoryCache(time.Minute),
		docs:        docs,
	}
	f.svc = NewNavigationService(f.menus, f.items, f.assignments, f.cache, docs)
	return f
}

func (f *navFixture) writes() int {
	return f.menus.writes + f.items.writes + f.assignments.writes
}

func (f *navFixture) menu(t *testing.T, contextID *int32, title string) *domain.NavigationMenu {
	t.Helper()
	m, err := f.menus.GetByTitle(context.Background(), contextID, title)
	require.NoError(t, err)
	return m
}

func treeKeys(nodes []domain.NavigationMenuTreeNode) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Item.TitleLocaleKey)
	}
	return out
}

func TestNavigationService_InstallSettings(t *testing.T) {
	ctx := context.Background()
	journal := int32Ptr(1)

	t.Run("installs menus and nested items", func(t *testing.T) {
		f := newNavFixture(t)
		require.NoError(t, f.svc.InstallSettings(ctx, journal, strings.NewReader(primaryMenuXML)))

		primary := f.menu(t, journal, "Primary Navigation Menu")
		assert.Equal(t, "primary", primary.AreaName)

		tree, err := f.svc.GetMenuTree(ctx, primary.ID)
		require.NoError(t, err)
		require.Len(t, tree.Nodes, 2)
		assert.Equal(t, []string{"navigation.current", "navigation.about"}, treeKeys(tree.Nodes))
		assert.Equal(t, int32(0), tree.Nodes[0].Seq)
		assert.Equal(t, int32(1), tree.Nodes[1].Seq)
		assert.Equal(t, []string{"about.contact", "about.submissions"}, treeKeys(tree.Nodes[1].Children))
		assert.Equal(t, "À propos", tree.Nodes[1].Item.Title["fr-CA"])
		assert.Equal(t, "contact", tree.Nodes[1].Children[0].Item.Path)

		// Top-level item exists but is not placed in any menu.
		search, err := f.items.GetByTypeAndTitleKey(ctx, journal, domain.NavigationMenuItemTypeSearch, "navigation.search")
		require.NoError(t, err)
		for _, a := range f.assignments.rows {
			assert.NotEqual(t, search.ID, a.ItemID)
		}
		assert.Len(t, f.assignments.rows, 5)
	})

	t.Run("re-import is idempotent", func(t *testing.T) {
		f := newNavFixture(t)
		require.NoError(t, f.svc.InstallSettings(ctx, journal, strings.NewReader(primaryMenuXML)))
		writes := f.writes()
		menus, items, assignments := len(f.menus.rows), len(f.items.rows), len(f.assignments.rows)

		require.NoError(t, f.svc.InstallSettings(ctx, journal, strings.NewReader(primaryMenuXML)))
		assert.Equal(t, writes, f.writes())
		assert.Len(t, f.menus.rows, menus)
		assert.Len(t, f.items.rows, items)
		assert.Len(t, f.assignments.rows, assignments)
	})

	t.Run("second menu for an occupied area is skipped", func(t *testing.T) {
		f := newNavFixture(t)
		doc := `<navigationMenus>
  <navigationMenu title="Main" area="primary"><navigationMenuItem title="a"/></navigationMenu>
  <navigationMenu title="Other" area="primary"><navigationMenuItem title="b"/></navigationMenu>
  <navigationMenu title="Footer" area="footer"/>
</navigationMenus>`
		require.NoError(t, f.svc.InstallSettings(ctx, journal, strings.NewReader(doc)))

		occupants, err := f.menus.GetByArea(ctx, journal, "primary")
		require.NoError(t, err)
		require.Len(t, occupants, 1)
		assert.Equal(t, "Main", occupants[0].Title)

		_, err = f.menus.GetByTitle(ctx, journal, "Other")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.menu(t, journal, "Footer")

		_, err = f.items.GetByTypeAndTitleKey(ctx, journal, domain.NavigationMenuItemTypeCustom, "b")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("area taken by an existing menu", func(t *testing.T) {
		f := newNavFixture(t)
		require.NoError(t, f.menus.Create(ctx, &domain.NavigationMenu{ContextID: journal, Title: "Custom", AreaName: "primary"}))

		require.NoError(t, f.svc.InstallSettings(ctx, journal, strings.NewReader(primaryMenuXML)))
		_, err := f.menus.GetByTitle(ctx, journal, "Primary Navigation Menu")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.menu(t, journal, "User Navigation Menu")
	})

	t.Run("slots are per journal", func(t *testing.T) {
		f := newNavFixture(t)
		require.NoError(t, f.svc.InstallSettings(ctx, int32Ptr(1), strings.NewReader(primaryMenuXML)))
		require.NoError(t, f.svc.InstallSettings(ctx, int32Ptr(2), strings.NewReader(primaryMenuXML)))

		a := f.menu(t, int32Ptr(1), "Primary Navigation Menu")
		b := f.menu(t, int32Ptr(2), "Primary Navigation Menu")
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("site-wide install only takes site menus", func(t *testing.T) {
		f := newNavFixture(t)
		doc := `<navigationMenus>
  <navigationMenu title="Site Menu" area="primary" site="true"><navigationMenuItem title="navigation.about" type="NMI_TYPE_ABOUT"/></navigationMenu>
  <navigationMenu title="Journal Menu" area="user"/>
</navigationMenus>`
		require.NoError(t, f.svc.InstallSettings(ctx, nil, strings.NewReader(doc)))

		site := f.menu(t, nil, "Site Menu")
		assert.Nil(t, site.ContextID)
		_, err := f.menus.GetByTitle(ctx, nil, "Journal Menu")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed document writes nothing", func(t *testing.T) {
		f := newNavFixture(t)
		doc := `<navigationMenus>
  <navigationMenu title="Main" area="primary"><navigationMenuItem title="a"/></navigationMenu>
  <navigationMenu area="user">`
		err := f.svc.InstallSettings(ctx, journal, strings.NewReader(doc))
		assert.ErrorIs(t, err, domain.ErrMalformedInput)
		assert.Zero(t, f.writes())
	})

	t.Run("invalid node writes nothing", func(t *testing.T) {
		f := newNavFixture(t)
		doc := `<navigationMenus>
  <navigationMenu title="Main" area="primary"><navigationMenuItem title="a"/></navigationMenu>
  <navigationMenu title="Other" area="user"><navigationMenuItem title="b" type="NMI_TYPE_BOGUS"/></navigationMenu>
</navigationMenus>`
		err := f.svc.InstallSettings(ctx, journal, strings.NewReader(doc))
		assert.ErrorIs(t, err, domain.ErrMalformedInput)
		assert.Zero(t, f.writes())
	})

	t.Run("reordering siblings updates seq and refreshes the cache", func(t *testing.T) {
		f := newNavFixture(t)
		require.NoError(t, f.svc.InstallSettings(ctx, journal, strings.NewReader(primaryMenuXML)))
		primary := f.menu(t, journal, "Primary Navigation Menu")

		before, err := f.svc.GetMenuTree(ctx, primary.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"navigation.current", "navigation.about"}, treeKeys(before.Nodes))

		doc := `<navigationMenus>
  <navigationMenu title="Primary Navigation Menu" area="primary">
    <navigationMenuItem title="navigation.about" type="NMI_TYPE_ABOUT"/>
    <navigationMenuItem title="navigation.current" type="NMI_TYPE_CURRENT"/>
  </navigationMenu>
</navigationMenus>`
		require.NoError(t, f.svc.InstallSettings(ctx, journal, strings.NewReader(doc)))

		after, err := f.svc.GetMenuTree(ctx, primary.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"navigation.about", "navigation.current"}, treeKeys(after.Nodes))
		// Labels from the first import survive a document that omits them.
		assert.Equal(t, "About", after.Nodes[0].Item.Title["en"])
	})
}

func TestNavigationService_InstallFromStorage(t *testing.T) {
	ctx := context.Background()
	f := newNavFixture(t)
	key := storage.NewDocumentKey(storage.FolderNavigation, "menus.xml")
	require.NoError(t, f.docs.Save(ctx, key, bytes.NewBufferString(primaryMenuXML)))

	require.NoError(t, f.svc.InstallFromStorage(ctx, int32Ptr(3), key))
	f.menu(t, int32Ptr(3), "Primary Navigation Menu")

	err := f.svc.InstallFromStorage(ctx, int32Ptr(3), "navigation/missing.xml")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNavigationService_GetMenuTree_Cached(t *testing.T) {
	ctx := context.Background()
	f := newNavFixture(t)
	require.NoError(t, f.svc.InstallSettings(ctx, int32Ptr(1), strings.NewReader(primaryMenuXML)))
	primary := f.menu(t, int32Ptr(1), "Primary Navigation Menu")

	_, err := f.svc.GetMenuTree(ctx, primary.ID)
	require.NoError(t, err)
	_, ok, err := f.cache.Get(ctx, primary.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.GetMenuTree(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNavigationService_SharedItemRefreshesEveryMenu(t *testing.T) {
	ctx := context.Background()
	f := newNavFixture(t)
	menusWith := func(label string, titles ...string) string {
		var b strings.Builder
		b.WriteString("<navigationMenus>")
		for _, title := range titles {
			fmt.Fprintf(&b, `<navigationMenu title=%q area="area-%s"><navigationMenuItem title="k.about" type="NMI_TYPE_ABOUT"><label locale="en">%s</label></navigationMenuItem></navigationMenu>`, title, title, label)
		}
		b.WriteString("</navigationMenus>")
		return b.String()
	}

	require.NoError(t, f.svc.InstallSettings(ctx, int32Ptr(1), strings.NewReader(menusWith("Old", "A", "B"))))
	a := f.menu(t, int32Ptr(1), "A")
	tree, err := f.svc.GetMenuTree(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 1)
	assert.Equal(t, "Old", tree.Nodes[0].Item.Title["en"])

	// Only B is re-imported, but A shows the same item.
	require.NoError(t, f.svc.InstallSettings(ctx, int32Ptr(1), strings.NewReader(menusWith("New", "B"))))

	_, cached, err := f.cache.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, cached)
	tree, err = f.svc.GetMenuTree(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", tree.Nodes[0].Item.Title["en"])
}

func TestNavigationService_DeleteMenu(t *testing.T) {
	ctx := context.Background()
	f := newNavFixture(t)
	require.NoError(t, f.svc.InstallSettings(ctx, int32Ptr(1), strings.NewReader(primaryMenuXML)))
	primary := f.menu(t, int32Ptr(1), "Primary Navigation Menu")
	_, err := f.svc.GetMenuTree(ctx, primary.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteMenu(ctx, primary.ID))

	_, ok, err := f.cache.Get(ctx, primary.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	left, err := f.assignments.ListByMenu(ctx, primary.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	_, err = f.svc.GetMenuTree(ctx, primary.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	menus, err := f.svc.ListMenus(ctx, int32Ptr(1))
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, "User Navigation Menu", menus[0].Title)

	assert.ErrorIs(t, f.svc.DeleteMenu(ctx, primary.ID), domain.ErrNotFound)
}
