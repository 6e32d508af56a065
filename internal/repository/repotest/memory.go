// Package repotest provides in-process repositories with the same matching rules as the SQL ones.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mail_admin/internal/model"
	"mail_admin/internal/repository"
)

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.HistoryRepository = (*HistoryRepository)(nil)
)

// UserRepository is an in-process repository.UserRepository
type UserRepository struct {
	mu    sync.RWMutex
	users []model.User
	Err   error // returned by every call when set
}

// NewUserRepository seeds a repository with users
func NewUserRepository(users ...model.User) *UserRepository {
	return &UserRepository{users: users}
}

// Add inserts a user, assigning the next id when ID is zero
func (r *UserRepository) Add(u model.User) model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		var maxID int64
		for _, existing := range r.users {
			if existing.ID > maxID {
				maxID = existing.ID
			}
		}
		u.ID = maxID + 1
	}
	r.users = append(r.users, u)
	return u
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindRoleByEmail(ctx context.Context, email string) (string, error) {
	u, err := r.FindByEmail(ctx, email)
	if err != nil || u == nil {
		return "", err
	}
	return u.Role, nil
}

func (r *UserRepository) matching(role, search string) []model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.User{}
	for _, u := range r.users {
		if u.Role != role || u.IsBanned {
			continue
		}
		if !containsFold(u.Name, search) && !containsFold(u.Email, search) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *UserRepository) ListByRole(_ context.Context, role, search string, limit, offset int) ([]model.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return page(r.matching(role, search), limit, offset), nil
}

func (r *UserRepository) CountByRole(_ context.Context, role, search string) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.matching(role, search))), nil
}

// HistoryRepository is an in-process repository.HistoryRepository
type HistoryRepository struct {
	mu     sync.RWMutex
	rows   []model.EmailHistory
	nextID int64
	Now    func() time.Time
	Err    error // returned by every call when set
}

// NewHistoryRepository creates an empty audit log
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{Now: time.Now}
}

func (r *HistoryRepository) Create(_ context.Context, h *model.EmailHistory) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	h.ID = r.nextID
	h.SentAt = r.Now()
	r.rows = append(r.rows, *h)
	return nil
}

// Rows returns a copy of every stored row in insertion order
func (r *HistoryRepository) Rows() []model.EmailHistory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.EmailHistory(nil), r.rows...)
}

func (r *HistoryRepository) matching(filters model.HistoryFilters) []model.EmailHistory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.EmailHistory{}
	for _, h := range r.rows {
		if !containsFold(h.RecipientName, filters.Search) && !containsFold(h.RecipientEmail, filters.Search) {
			continue
		}
		switch filters.RoleFilter {
		case "", model.HistoryFilterAll:
		case model.HistoryFilterBulk:
			if !h.IsBulk {
				continue
			}
		default:
			if h.Role != filters.RoleFilter {
				continue
			}
		}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SentAt.After(out[j].SentAt)
	})
	return out
}

func (r *HistoryRepository) List(_ context.Context, filters model.HistoryFilters, limit, offset int) ([]model.EmailHistory, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return page(r.matching(filters), limit, offset), nil
}

func (r *HistoryRepository) Count(_ context.Context, filters model.HistoryFilters) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.matching(filters))), nil
}

func (r *HistoryRepository) FindAll(_ context.Context, filters model.HistoryFilters) ([]model.EmailHistory, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.matching(filters), nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func page[T any](rows []T, limit, offset int) []T {
	if offset < 0 || offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
