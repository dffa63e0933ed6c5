package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockRepository keeps users in memory. Err, when set, fails every call.
type MockRepository struct {
	mu    sync.Mutex
	Users []*User
	Err   error
}

func NewMockRepository(users ...*User) *MockRepository {
	return &MockRepository{Users: users}
}

func (m *MockRepository) createUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	m.Users = append(m.Users, &stored)
	return nil
}

func (m *MockRepository) userExistsByLoginOrEmail(_ context.Context, login, email string) (*User, error) {
	return m.find(func(u *User) bool { return u.Login == login || u.Email == email })
}

func (m *MockRepository) getUserByLoginOrEmail(_ context.Context, loginOrEmail string) (*User, error) {
	return m.find(func(u *User) bool { return u.Login == loginOrEmail || u.Email == strings.ToLower(loginOrEmail) })
}

func (m *MockRepository) getUserByID(_ context.Context, id string) (*User, error) {
	return m.find(func(u *User) bool { return u.ID == id })
}

func (m *MockRepository) swapHashToken(_ context.Context, id, current, next string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, u := range m.Users {
		if u.ID == id {
			if u.HashToken != current {
				return ErrStaleHashToken
			}
			u.HashToken = next
			u.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrStaleHashToken
}

func (m *MockRepository) find(match func(*User) bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.Users {
		if match(u) {
			found := *u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}
