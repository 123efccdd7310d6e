package user

import (
	"context"
	"sync"
)

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  []User
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	r := &InMemoryRepository{nextID: 1}
	for _, u := range seed {
		if u.ID == 0 {
			u.ID = r.nextID
		}
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
		r.users = append(r.users, u)
	}
	return r
}

func (r *InMemoryRepository) Create(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return User{}, ErrEmailExists
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users = append(r.users, u)
	return u, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}
