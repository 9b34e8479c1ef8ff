package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"journal-backend/internal/cache"
	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/navxml"
	"journal-backend/internal/repository"
	"journal-backend/internal/storage"
)

type navigationService struct {
	menuRepo       repository.NavigationMenuRepository
	itemRepo       repository.NavigationMenuItemRepository
	assignmentRepo repository.NavigationMenuItemAssignmentRepository
	menuCache      cache.MenuCache
	documents      storage.DocumentStore
	tracer         trace.Tracer
}

func NewNavigationService(
	menuRepo repository.NavigationMenuRepository,
	itemRepo repository.NavigationMenuItemRepository,
	assignmentRepo repository.NavigationMenuItemAssignmentRepository,
	menuCache cache.MenuCache,
	documents storage.DocumentStore,
) NavigationService {
	return &navigationService{
		menuRepo:       menuRepo,
		itemRepo:       itemRepo,
		assignmentRepo: assignmentRepo,
		menuCache:      menuCache,
		documents:      documents,
		tracer:         otel.Tracer("journal-backend/service/navigation"),
	}
}

// importStats counts what one install run did.
type importStats struct {
	installed int
	skipped   int
	items     int
}

func scopeAttr(contextID *int32) any {
	if contextID == nil {
		return "site"
	}
	return *contextID
}

func (s *navigationService) InstallSettings(ctx context.Context, contextID *int32, r io.Reader) error {
	ctx, span := s.tracer.Start(ctx, "NavigationService.InstallSettings")
	defer span.End()
	logger.EnterMethod("NavigationService.InstallSettings", "context_id", scopeAttr(contextID))

	// Nothing is written unless the whole document parses.
	doc, err := navxml.Parse(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed document")
		logger.ExitMethodWithError("NavigationService.InstallSettings", err)
		return err
	}
	menus, items := doc.Count()
	span.SetAttributes(attribute.Int("navigation.menus", menus), attribute.Int("navigation.items", items))

	var stats importStats
	for _, node := range doc.Menus {
		if err := s.installMenu(ctx, contextID, node, &stats); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "install failed")
			logger.ExitMethodWithError("NavigationService.InstallSettings", err, "menu", node.Title)
			return err
		}
	}
	for _, node := range doc.Items {
		if _, err := s.installItem(ctx, contextID, node, &stats); err != nil {
			span.RecordError(err)
			logger.ExitMethodWithError("NavigationService.InstallSettings", err, "item", node.TitleKey)
			return err
		}
	}

	logger.Info("Navigation menus installed",
		"context_id", scopeAttr(contextID),
		"installed", stats.installed,
		"skipped", stats.skipped,
		"items", stats.items,
	)
	logger.ExitMethod("NavigationService.InstallSettings")
	return nil
}

func (s *navigationService) InstallFromStorage(ctx context.Context, contextID *int32, key string) error {
	rc, err := s.documents.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("open navigation document %s: %w", key, err)
	}
	defer rc.Close()
	return s.InstallSettings(ctx, contextID, rc)
}

func (s *navigationService) installMenu(ctx context.Context, contextID *int32, node navxml.Menu, stats *importStats) error {
	if contextID == nil && !node.Site {
		logger.Debug("Skipping journal menu in site-wide install", "title", node.Title)
		stats.skipped++
		return nil
	}

	if node.Area != "" {
		occupants, err := s.menuRepo.GetByArea(ctx, contextID, node.Area)
		if err != nil {
			return fmt.Errorf("check area %q: %w", node.Area, err)
		}
		for _, o := range occupants {
			if o.Title != node.Title {
				logger.Warn("Navigation menu area already occupied, skipping menu",
					"context_id", scopeAttr(contextID),
					"area", node.Area,
					"title", node.Title,
					"occupied_by", o.Title,
				)
				stats.skipped++
				return nil
			}
		}
	}

	menu, err := s.menuRepo.GetByTitle(ctx, contextID, node.Title)
	switch {
	case err == nil:
		if menu.AreaName != node.Area {
			menu.AreaName = node.Area
			err = s.menuRepo.Update(ctx, menu)
		}
	case errors.Is(err, domain.ErrNotFound):
		menu = &domain.NavigationMenu{ContextID: contextID, Title: node.Title, AreaName: node.Area}
		err = s.menuRepo.Create(ctx, menu)
	}
	if errors.Is(err, domain.ErrSlotTaken) {
		// Lost a race with a concurrent install for the same slot.
		logger.Warn("Navigation menu slot taken during install, skipping menu",
			"context_id", scopeAttr(contextID), "area", node.Area, "title", node.Title)
		stats.skipped++
		return nil
	}
	if err != nil {
		return fmt.Errorf("install menu %q: %w", node.Title, err)
	}
	defer s.invalidate(ctx, menu.ID)

	if err := s.installChildren(ctx, contextID, menu.ID, nil, node.Items, stats); err != nil {
		return err
	}
	stats.installed++
	return nil
}

// installChildren places nodes under parentID in menuID, numbering siblings from 0.
func (s *navigationService) installChildren(ctx context.Context, contextID *int32, menuID int32, parentID *int32, nodes []navxml.Item, stats *importStats) error {
	for i, node := range nodes {
		seq := int32(i)
		item, err := s.installItem(ctx, contextID, node, stats)
		if err != nil {
			return err
		}

		a, err := s.assignmentRepo.Find(ctx, menuID, item.ID, parentID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			a = &domain.NavigationMenuItemAssignment{MenuID: menuID, ItemID: item.ID, ParentID: parentID, Seq: seq}
			if err := s.assignmentRepo.Create(ctx, a); err != nil {
				return fmt.Errorf("assign item %q: %w", node.TitleKey, err)
			}
		case err != nil:
			return fmt.Errorf("find assignment of %q: %w", node.TitleKey, err)
		case a.Seq != seq:
			if err := s.assignmentRepo.UpdateSeq(ctx, a.ID, seq); err != nil {
				return fmt.Errorf("reorder item %q: %w", node.TitleKey, err)
			}
			a.Seq = seq
		}

		if err := s.installChildren(ctx, contextID, menuID, &a.ID, node.Children, stats); err != nil {
			return err
		}
	}
	return nil
}

// installItem finds the item by its natural key or inserts it. Localized titles in
// the document are merged into an existing item.
func (s *navigationService) installItem(ctx context.Context, contextID *int32, node navxml.Item, stats *importStats) (*domain.NavigationMenuItem, error) {
	want := node.MenuItem(contextID)
	stats.items++

	existing, err := s.itemRepo.GetByTypeAndTitleKey(ctx, contextID, want.Type, want.TitleLocaleKey)
	if errors.Is(err, domain.ErrNotFound) {
		if err := s.itemRepo.Create(ctx, &want); err != nil {
			return nil, fmt.Errorf("create item %q: %w", node.TitleKey, err)
		}
		return &want, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item %q: %w", node.TitleKey, err)
	}

	changed := existing.Path != want.Path || existing.URL != want.URL
	if existing.Title == nil {
		existing.Title = domain.LocalizedString{}
	}
	for locale, v := range want.Title {
		if existing.Title[locale] != v {
			existing.Title[locale] = v
			changed = true
		}
	}
	if changed {
		existing.Path = want.Path
		existing.URL = want.URL
		if err := s.itemRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update item %q: %w", node.TitleKey, err)
		}
		s.invalidateItem(ctx, existing.ID)
	}
	return existing, nil
}

func (s *navigationService) invalidate(ctx context.Context, menuID int32) {
	if err := s.menuCache.Delete(ctx, menuID); err != nil {
		logger.Warn("Failed to invalidate menu cache", "menu_id", menuID, "error", err)
	}
}

// invalidateItem drops the cached tree of every menu that shows itemID.
func (s *navigationService) invalidateItem(ctx context.Context, itemID int32) {
	menuIDs, err := s.assignmentRepo.ListMenuIDsByItem(ctx, itemID)
	if err != nil {
		logger.Warn("Failed to list menus of changed item", "item_id", itemID, "error", err)
		return
	}
	for _, id := range menuIDs {
		s.invalidate(ctx, id)
	}
}

func (s *navigationService) GetMenuTree(ctx context.Context, id int32) (*domain.NavigationMenuTree, error) {
	if tree, ok, err := s.menuCache.Get(ctx, id); err != nil {
		logger.Warn("Menu cache read failed", "menu_id", id, "error", err)
	} else if ok {
		return tree, nil
	}

	menu, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListByMenu(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]int32, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ItemID)
	}
	items, err := s.itemRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	tree := &domain.NavigationMenuTree{Menu: *menu, Nodes: buildTree(assignments, items)}
	if err := s.menuCache.Set(ctx, tree); err != nil {
		logger.Warn("Menu cache write failed", "menu_id", id, "error", err)
	}
	return tree, nil
}

// buildTree nests assignments under their parents, siblings ordered by Seq.
func buildTree(assignments []domain.NavigationMenuItemAssignment, items map[int32]domain.NavigationMenuItem) []domain.NavigationMenuTreeNode {
	children := make(map[int32][]domain.NavigationMenuItemAssignment)
	var roots []domain.NavigationMenuItemAssignment
	for _, a := range assignments {
		if a.ParentID == nil {
			roots = append(roots, a)
		} else {
			children[*a.ParentID] = append(children[*a.ParentID], a)
		}
	}

	var build func([]domain.NavigationMenuItemAssignment) []domain.NavigationMenuTreeNode
	build = func(list []domain.NavigationMenuItemAssignment) []domain.NavigationMenuTreeNode {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
		nodes := make([]domain.NavigationMenuTreeNode, 0, len(list))
		for _, a := range list {
			nodes = append(nodes, domain.NavigationMenuTreeNode{
				AssignmentID: a.ID,
				Seq:          a.Seq,
				Item:         items[a.ItemID],
				Children:     build(children[a.ID]),
			})
		}
		return nodes
	}
	return build(roots)
}

func (s *navigationService) ListMenus(ctx context.Context, contextID *int32) ([]domain.NavigationMenu, error) {
	return s.menuRepo.ListByContext(ctx, contextID)
}

func (s *navigationService) DeleteMenu(ctx context.Context, id int32) error {
	if _, err := s.menuRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.assignmentRepo.DeleteByMenu(ctx, id); err != nil {
		return fmt.Errorf("delete assignments of menu %d: %w", id, err)
	}
	if err := s.menuRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete menu %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	logger.Info("Navigation menu deleted", "menu_id", id)
	return nil
}
