package registry

import (
	"sync"

	"brightlend/internal/repositories"
)

// Manager holds one Registry per user session, created on first use and
// dropped on Dispose. Replaces the ambient list state of the old console
// with explicit instances handed to the handlers.
type Manager struct {
	organicSrc repositories.LeadSource
	paidSrc    repositories.LeadSource

	mu     sync.Mutex
	byUser map[int64]*entry
}

type entry struct {
	reg   *Registry
	scope *int64
}

func NewManager(organicSrc, paidSrc repositories.LeadSource) *Manager {
	return &Manager{
		organicSrc: organicSrc,
		paidSrc:    paidSrc,
		byUser:     map[int64]*entry{},
	}
}

// Get returns the user's registry, creating it with the given owner scope.
// A scope change (role changed between sessions) recreates the registry so a
// narrower scope never sees rows from a wider one.
func (m *Manager) Get(userID int64, ownerScope *int64) *Registry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.byUser[userID]; ok && sameScope(e.scope, ownerScope) {
		return e.reg
	}
	reg := New(m.organicSrc, m.paidSrc, ownerScope)
	m.byUser[userID] = &entry{reg: reg, scope: ownerScope}
	return reg
}

func (m *Manager) Dispose(userID int64) {
	m.mu.Lock()
	delete(m.byUser, userID)
	m.mu.Unlock()
}

// ForEach visits every live registry. Used by the mutation broadcaster to
// patch all sessions currently holding a record.
func (m *Manager) ForEach(fn func(*Registry)) {
	m.mu.Lock()
	regs := make([]*Registry, 0, len(m.byUser))
	for _, e := range m.byUser {
		regs = append(regs, e.reg)
	}
	m.mu.Unlock()

	for _, r := range regs {
		fn(r)
	}
}

func sameScope(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
