package registry

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"brightlend/internal/models"
	"brightlend/internal/repositories"
)

// Filter values for the Owner field besides a concrete "<id>".
const (
	OwnerAny        = ""
	OwnerUnassigned = "unassigned"
)

// Origin selection values. Empty selects both.
const (
	SelectOrganic = "organic"
	SelectPaid    = "paid"
	SelectBoth    = "both"
)

// Filters is the live view state. Zero value = everything active.
type Filters struct {
	Search string
	// Status: "" or "all" shows every active status and hides unqualified;
	// an explicit status value (including "unqualified") matches exactly.
	Status string
	Owner  string
	Origin string
}

type Direction string

const (
	Prev Direction = "prev"
	Next Direction = "next"
)

// LoadResult reports each origin's fetch independently: one origin failing
// must not block the other from populating.
type LoadResult struct {
	OrganicErr error
	PaidErr    error
	// Stale is true when a newer Load superseded this one and its results
	// were discarded.
	Stale bool
}

// Registry owns the two lead collections for one user session. It is the sole
// mutable store: readers treat View output as read-only and every field
// change funnels through Patch (via the broadcaster).
type Registry struct {
	organicSrc repositories.LeadSource
	paidSrc    repositories.LeadSource
	ownerScope *int64

	mu      sync.RWMutex
	organic []models.Lead
	paid    []models.Lead
	gen     uint64
	loaded  bool
}

func New(organicSrc, paidSrc repositories.LeadSource, ownerScope *int64) *Registry {
	return &Registry{organicSrc: organicSrc, paidSrc: paidSrc, ownerScope: ownerScope}
}

func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Load fetches both origins concurrently and replaces the collections. Each
// Load takes a generation ticket; a completion whose ticket is no longer
// current is discarded, so a slow superseded refresh can never overwrite
// fresher data.
func (r *Registry) Load(ctx context.Context) LoadResult {
	r.mu.Lock()
	r.gen++
	ticket := r.gen
	r.mu.Unlock()

	var (
		wg         sync.WaitGroup
		organic    []models.Lead
		paid       []models.Lead
		organicErr error
		paidErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		organic, organicErr = r.organicSrc.Fetch(ctx, r.ownerScope)
	}()
	go func() {
		defer wg.Done()
		paid, paidErr = r.paidSrc.Fetch(ctx, r.ownerScope)
	}()
	wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket != r.gen {
		return LoadResult{OrganicErr: organicErr, PaidErr: paidErr, Stale: true}
	}
	if organicErr == nil {
		r.organic = organic
	}
	if paidErr == nil {
		r.paid = paid
	}
	r.loaded = organicErr == nil || paidErr == nil
	return LoadResult{OrganicErr: organicErr, PaidErr: paidErr}
}

// View is a pure projection of the current collections: filter, then order by
// created_at descending with a fixed tie-break (origin tag, then id) so the
// sequence is deterministic.
func (r *Registry) View(f Filters) []models.Lead {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Lead
	if f.Origin != SelectPaid {
		for _, l := range r.organic {
			if matches(&l, f) {
				out = append(out, l)
			}
		}
	}
	if f.Origin != SelectOrganic {
		for _, l := range r.paid {
			if matches(&l, f) {
				out = append(out, l)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		return a.ID < b.ID
	})
	return out
}

// Navigate re-derives the view from the current filters on every call, so a
// filter change mid-session changes what prev/next mean. Returns nil at
// either boundary, and when the current key is no longer in the view.
func (r *Registry) Navigate(current models.LeadKey, dir Direction, f Filters) *models.LeadKey {
	view := r.View(f)
	idx := -1
	for i := range view {
		if view[i].Key() == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	switch dir {
	case Prev:
		idx--
	case Next:
		idx++
	default:
		return nil
	}
	if idx < 0 || idx >= len(view) {
		return nil
	}
	key := view[idx].Key()
	return &key
}

// Patch merges the given fields into the identified record. A missing key is
// a silent no-op: the collection may have been refreshed out from under a
// stale detail view.
func (r *Registry) Patch(key models.LeadKey, patch models.LeadPatch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := r.organic
	if key.Origin == models.OriginPaid {
		col = r.paid
	}
	for i := range col {
		if col[i].ID != key.ID {
			continue
		}
		if patch.Status != nil {
			col[i].Status = *patch.Status
		}
		if patch.OwnerID != nil {
			owner := *patch.OwnerID
			col[i].OwnerID = &owner
		}
		if patch.LastContactAt != nil {
			// forward-only, same rule persistence enforces with GREATEST
			if col[i].LastContactAt == nil || patch.LastContactAt.After(*col[i].LastContactAt) {
				t := *patch.LastContactAt
				col[i].LastContactAt = &t
			}
		}
		return
	}
}

func matches(l *models.Lead, f Filters) bool {
	switch f.Status {
	case "", "all":
		if l.Status == models.StatusUnqualified {
			return false
		}
	default:
		if l.Status != models.LeadStatus(f.Status) {
			return false
		}
	}

	switch f.Owner {
	case OwnerAny:
	case OwnerUnassigned:
		if l.OwnerID != nil {
			return false
		}
	default:
		id, err := strconv.ParseInt(f.Owner, 10, 64)
		if err != nil || l.OwnerID == nil || *l.OwnerID != id {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		name := strings.ToLower(l.FirstName + " " + l.LastName)
		if !strings.Contains(name, q) &&
			!strings.Contains(strings.ToLower(l.Email), q) &&
			!strings.Contains(strings.ToLower(l.Phone), q) {
			return false
		}
	}
	return true
}
