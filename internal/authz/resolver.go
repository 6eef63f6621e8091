package authz

import (
	"context"
	"sync"

	"brightlend/internal/models"
)

// Access is the result of role resolution: the effective role and the owner
// scope passed to the lead sources. OwnerScope == nil means no restriction.
type Access struct {
	RoleID     int
	OwnerScope *int64
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Resolver turns a session identity into an Access. The users table is the
// authority for roles; the result is cached for the rest of the session, so
// role changes apply on the next login.
type Resolver struct {
	users UserStore

	mu    sync.Mutex
	cache map[int64]Access
}

func NewResolver(users UserStore) *Resolver {
	return &Resolver{users: users, cache: map[int64]Access{}}
}

func (r *Resolver) Resolve(ctx context.Context, userID int64) (Access, error) {
	r.mu.Lock()
	if a, ok := r.cache[userID]; ok {
		r.mu.Unlock()
		return a, nil
	}
	r.mu.Unlock()

	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return Access{}, err
	}
	a := Access{RoleID: u.RoleID, OwnerScope: ScopeFor(u.RoleID, u.ID)}

	r.mu.Lock()
	r.cache[userID] = a
	r.mu.Unlock()
	return a, nil
}

// Forget drops the cached access, e.g. when the session is disposed.
func (r *Resolver) Forget(userID int64) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}
