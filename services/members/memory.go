package members

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process UserStore for tests and local development.
type Memory struct {
	mu    sync.Mutex
	users map[string]*User
}

var _ UserStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{users: make(map[string]*User)}
}

func (s *Memory) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.users {
		if v.Email == u.Email {
			return ErrEmailTaken
		}
		if v.Phone == u.Phone {
			return ErrPhoneTaken
		}
	}
	cp := *u
	if cp.UserID == "" {
		cp.UserID = uuid.New().String()
	}
	if cp.Role == "" {
		cp.Role = RoleUser
	}
	s.users[cp.UserID] = &cp
	u.UserID = cp.UserID
	return nil
}

func (s *Memory) FindByID(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Memory) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *Memory) List(ctx context.Context) ([]*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) ListApproved(ctx context.Context) ([]*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*User
	for _, u := range s.users {
		if u.IsApproved && u.Role == RoleUser {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *Memory) Approve(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.IsApproved = true
	return nil
}

func (s *Memory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Memory) CountApproved(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, u := range s.users {
		if u.IsApproved && u.Role == RoleUser {
			n++
		}
	}
	return n, nil
}
