package user

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-process Repository used by tests and local
// experiments. A single mutex spans each operation, giving the same
// check-then-insert atomicity the database constraint provides.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (r *MemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.Name]; exists {
		return ErrNameTaken
	}

	r.users[u.Name] = *u
	return nil
}

func (r *MemoryRepository) GetByName(_ context.Context, name string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[name]
	if !ok {
		return nil, ErrNotFound
	}

	copied := u
	return &copied, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summaries := make([]Summary, 0, len(r.users))
	for name := range r.users {
		summaries = append(summaries, Summary{Name: name})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	return summaries, nil
}
