package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/accounts-server/internal/model"
)

var _ model.UserStore = (*MemoryUserStore)(nil)

// MemoryUserStore is an in-process UserStore with the same uniqueness
// semantics as the database-backed stores.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
	// Err, when set, is returned by every operation.
	Err error
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]model.User)}
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	if s.emailTakenLocked(user.Email, uuid.Nil) {
		return model.User{}, model.ErrDuplicateEmail
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryUserStore) Save(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	if _, ok := s.users[user.ID]; !ok {
		return model.User{}, model.ErrNotFound
	}
	if s.emailTakenLocked(user.Email, user.ID) {
		return model.User{}, model.ErrDuplicateEmail
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryUserStore) ListNonAdmin(_ context.Context, offset, limit int) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	list := s.nonAdminLocked()
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return []model.User{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (s *MemoryUserStore) CountNonAdmin(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.nonAdminLocked()), nil
}

// Ping reports Err, so health checks can be failed on demand.
func (s *MemoryUserStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Err
}

// Len returns the number of stored users.
func (s *MemoryUserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *MemoryUserStore) nonAdminLocked() []model.User {
	list := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		if u.Role != model.RoleAdmin {
			list = append(list, u)
		}
	}
	return list
}

func (s *MemoryUserStore) emailTakenLocked(email string, except uuid.UUID) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}
