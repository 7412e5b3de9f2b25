package users

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

// MemoryRepository keeps users in process memory, in insertion order.
// Contents are lost on restart.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	order   []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return common.ErrorAlreadyExists
	}
	if _, ok := r.byID[user.ID]; ok {
		return common.ErrorAlreadyExists
	}

	u := *user
	r.byID[u.ID] = &u
	r.byEmail[u.Email] = u.ID
	r.order = append(r.order, u.ID)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.User, 0, len(r.order))
	for _, id := range r.order {
		c := *r.byID[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	next := *cur
	if err := fn(&next); err != nil {
		return nil, err
	}
	// The key is immutable here; callers cannot move a record.
	next.ID = cur.ID

	if next.Email != cur.Email {
		if _, taken := r.byEmail[next.Email]; taken {
			return nil, common.ErrorAlreadyExists
		}
		delete(r.byEmail, cur.Email)
		r.byEmail[next.Email] = id
	}

	r.byID[id] = &next
	c := next
	return &c, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}

	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return nil
}
