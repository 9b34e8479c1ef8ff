package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"journal-backend/internal/domain"
)

// In-memory record stores that honour the same constraints as the SQL schema, so the
// reconciler and invitation workflow can be exercised end to end.

func sameScope(a, b *int32) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func int32Ptr(v int32) *int32 { return &v }

type memMenus struct {
	mu     sync.Mutex
	nextID int32
	rows   map[int32]domain.NavigationMenu
	writes int
}

func newMemMenus() *memMenus {
	return &memMenus{rows: make(map[int32]domain.NavigationMenu)}
}

func (r *memMenus) slotTaken(m *domain.NavigationMenu) bool {
	if m.AreaName == "" {
		return false
	}
	for _, o := range r.rows {
		if o.ID != m.ID && o.AreaName == m.AreaName && sameScope(o.ContextID, m.ContextID) {
			return true
		}
	}
	return false
}

func (r *memMenus) GetByID(_ context.Context, id int32) (*domain.NavigationMenu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (r *memMenus) GetByTitle(_ context.Context, contextID *int32, title string) (*domain.NavigationMenu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.Title == title && sameScope(m.ContextID, contextID) {
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memMenus) GetByArea(_ context.Context, contextID *int32, area string) ([]domain.NavigationMenu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.NavigationMenu
	for _, m := range r.rows {
		if m.AreaName == area && sameScope(m.ContextID, contextID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMenus) ListByContext(_ context.Context, contextID *int32) ([]domain.NavigationMenu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.NavigationMenu
	for _, m := range r.rows {
		if sameScope(m.ContextID, contextID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMenus) Create(_ context.Context, m *domain.NavigationMenu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slotTaken(m) {
		return domain.ErrSlotTaken
	}
	r.nextID++
	m.ID = r.nextID
	r.rows[m.ID] = *m
	r.writes++
	return nil
}

func (r *memMenus) Update(_ context.Context, m *domain.NavigationMenu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[m.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.slotTaken(m) {
		return domain.ErrSlotTaken
	}
	r.rows[m.ID] = *m
	r.writes++
	return nil
}

func (r *memMenus) Delete(_ context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	r.writes++
	return nil
}

type memItems struct {
	mu     sync.Mutex
	nextID int32
	rows   map[int32]domain.NavigationMenuItem
	writes int
}

func newMemItems() *memItems {
	return &memItems{rows: make(map[int32]domain.NavigationMenuItem)}
}

func copyItem(it domain.NavigationMenuItem) domain.NavigationMenuItem {
	title := domain.LocalizedString{}
	for k, v := range it.Title {
		title[k] = v
	}
	it.Title = title
	return it
}

func (r *memItems) GetByID(_ context.Context, id int32) (*domain.NavigationMenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	it = copyItem(it)
	return &it, nil
}

func (r *memItems) GetByTypeAndTitleKey(_ context.Context, contextID *int32, t domain.NavigationMenuItemType, key string) (*domain.NavigationMenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.rows {
		if it.Type == t && it.TitleLocaleKey == key && sameScope(it.ContextID, contextID) {
			it = copyItem(it)
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memItems) GetByIDs(_ context.Context, ids []int32) (map[int32]domain.NavigationMenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int32]domain.NavigationMenuItem, len(ids))
	for _, id := range ids {
		if it, ok := r.rows[id]; ok {
			out[id] = copyItem(it)
		}
	}
	return out, nil
}

func (r *memItems) Create(_ context.Context, it *domain.NavigationMenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	it.ID = r.nextID
	r.rows[it.ID] = copyItem(*it)
	r.writes++
	return nil
}

func (r *memItems) Update(_ context.Context, it *domain.NavigationMenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[it.ID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[it.ID] = copyItem(*it)
	r.writes++
	return nil
}

type memAssignments struct {
	mu     sync.Mutex
	nextID int32
	rows   map[int32]domain.NavigationMenuItemAssignment
	writes int
}

func newMemAssignments() *memAssignments {
	return &memAssignments{rows: make(map[int32]domain.NavigationMenuItemAssignment)}
}

func (r *memAssignments) ListByMenu(_ context.Context, menuID int32) ([]domain.NavigationMenuItemAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.NavigationMenuItemAssignment
	for _, a := range r.rows {
		if a.MenuID == menuID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAssignments) Find(_ context.Context, menuID, itemID int32, parentID *int32) (*domain.NavigationMenuItemAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.MenuID == menuID && a.ItemID == itemID && sameScope(a.ParentID, parentID) {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memAssignments) Create(_ context.Context, a *domain.NavigationMenuItemAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	r.rows[a.ID] = *a
	r.writes++
	return nil
}

func (r *memAssignments) UpdateSeq(_ context.Context, id, seq int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Seq = seq
	r.rows[id] = a
	r.writes++
	return nil
}

func (r *memAssignments) ListMenuIDsByItem(_ context.Context, itemID int32) ([]int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int32]bool)
	var ids []int32
	for _, a := range r.rows {
		if a.ItemID == itemID && !seen[a.MenuID] {
			seen[a.MenuID] = true
			ids = append(ids, a.MenuID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memAssignments) DeleteByMenu(_ context.Context, menuID int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.rows {
		if a.MenuID == menuID {
			delete(r.rows, id)
		}
	}
	r.writes++
	return nil
}

type memInvitations struct {
	mu     sync.Mutex
	nextID int32
	rows   map[int32]domain.Invitation
}

func newMemInvitations() *memInvitations {
	return &memInvitations{rows: make(map[int32]domain.Invitation)}
}

func (r *memInvitations) Create(_ context.Context, inv *domain.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.rows {
		if o.Status == domain.InvitationStatusPending && o.UserID == inv.UserID &&
			o.ClassName == inv.ClassName && sameScope(o.ContextID, inv.ContextID) {
			return domain.ErrInvitationNotPending
		}
	}
	r.nextID++
	inv.ID = r.nextID
	r.rows[inv.ID] = *inv
	return nil
}

func (r *memInvitations) GetByID(_ context.Context, id int32) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inv, nil
}

func (r *memInvitations) UpdateStatus(_ context.Context, id int32, status domain.InvitationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	r.rows[id] = inv
	return nil
}

func (r *memInvitations) CancelPending(_ context.Context, userID int32, className string, contextID *int32) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, inv := range r.rows {
		if inv.Status == domain.InvitationStatusPending && inv.UserID == userID &&
			inv.ClassName == className && sameScope(inv.ContextID, contextID) {
			inv.Status = domain.InvitationStatusCancelled
			r.rows[id] = inv
			n++
		}
	}
	return n, nil
}

// Supersede restores the previous rows when notify fails, like a rolled back transaction.
func (r *memInvitations) Supersede(ctx context.Context, inv *domain.Invitation, notify func(*domain.Invitation) (*domain.Job, error)) (int64, error) {
	r.mu.Lock()
	snapshot := make(map[int32]domain.Invitation, len(r.rows))
	for id, row := range r.rows {
		snapshot[id] = row
	}
	nextID := r.nextID
	r.mu.Unlock()

	rollback := func() {
		r.mu.Lock()
		r.rows, r.nextID = snapshot, nextID
		r.mu.Unlock()
		inv.ID = 0
	}

	n, err := r.CancelPending(ctx, inv.UserID, inv.ClassName, inv.ContextID)
	if err != nil {
		return 0, err
	}
	if err := r.Create(ctx, inv); err != nil {
		rollback()
		return 0, err
	}
	if _, err := notify(inv); err != nil {
		rollback()
		return 0, err
	}
	return n, nil
}

func (r *memInvitations) ListPending(_ context.Context, userID int32, className string, contextID *int32) ([]domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Invitation
	for _, inv := range r.rows {
		if inv.Status == domain.InvitationStatusPending && inv.UserID == userID &&
			inv.ClassName == className && sameScope(inv.ContextID, contextID) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvitations) ExpirePending(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, inv := range r.rows {
		if inv.Status == domain.InvitationStatusPending && inv.ExpiryDate.Before(now) {
			inv.Status = domain.InvitationStatusExpired
			r.rows[id] = inv
			n++
		}
	}
	return n, nil
}

type MockJournalRepo struct{ mock.Mock }

func (m *MockJournalRepo) GetByID(ctx context.Context, id int32) (*domain.Journal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepo) GetByPath(ctx context.Context, path string) (*domain.Journal, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type MockAuthorRepo struct{ mock.Mock }

func (m *MockAuthorRepo) GetByID(ctx context.Context, id int32) (*domain.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Author), args.Error(1)
}

func (m *MockAuthorRepo) ListByPublication(ctx context.Context, publicationID int32) ([]domain.Author, error) {
	args := m.Called(ctx, publicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Author), args.Error(1)
}

func (m *MockAuthorRepo) Create(ctx context.Context, a *domain.Author) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAuthorRepo) Update(ctx context.Context, a *domain.Author) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAuthorRepo) Delete(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAuthorRepo) UpdateSeq(ctx context.Context, id, seq int32) error {
	return m.Called(ctx, id, seq).Error(0)
}

func (m *MockAuthorRepo) MaxSeq(ctx context.Context, publicationID int32) (int32, error) {
	args := m.Called(ctx, publicationID)
	return args.Get(0).(int32), args.Error(1)
}

type MockUserGroupRepo struct{ mock.Mock }

func (m *MockUserGroupRepo) GetByID(ctx context.Context, id int32) (*domain.UserGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserGroup), args.Error(1)
}

type MockJobRepo struct{ mock.Mock }

func (m *MockJobRepo) Enqueue(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) Reserve(ctx context.Context, queue string, limit int, now time.Time) ([]domain.Job, error) {
	args := m.Called(ctx, queue, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJobRepo) Release(ctx context.Context, id int64, availableAt time.Time) error {
	return m.Called(ctx, id, availableAt).Error(0)
}

func (m *MockJobRepo) Fail(ctx context.Context, job *domain.Job, exception string) error {
	return m.Called(ctx, job, exception).Error(0)
}

func (m *MockJobRepo) List(ctx context.Context, limit, offset int32) ([]domain.Job, int32, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Job), args.Get(1).(int32), args.Error(2)
}

func (m *MockJobRepo) ListFailed(ctx context.Context, limit, offset int32) ([]domain.FailedJob, int32, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.FailedJob), args.Get(1).(int32), args.Error(2)
}

func (m *MockJobRepo) GetFailed(ctx context.Context, id int64) (*domain.FailedJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FailedJob), args.Error(1)
}

func (m *MockJobRepo) DeleteFailed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJobRepo) Redispatch(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJobRepo) RedispatchAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// recordingQueue collects queued mail.
type recordingQueue struct {
	mu   sync.Mutex
	sent []*domain.Mail
	err  error
}

func (q *recordingQueue) Job(m *domain.Mail) (*domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	q.sent = append(q.sent, m)
	return &domain.Job{Queue: domain.QueueMail, DisplayName: m.Template}, nil
}

func (q *recordingQueue) Enqueue(_ context.Context, m *domain.Mail) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, m)
	return nil
}
