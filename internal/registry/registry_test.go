package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightlend/internal/models"
)

// fakeSource serves a canned slice; fetchFn, when set, takes over Fetch so a
// test can stall or sequence fetches.
type fakeSource struct {
	origin  models.Origin
	leads   []models.Lead
	err     error
	fetchFn func() ([]models.Lead, error)
}

func (f *fakeSource) Origin() models.Origin { return f.origin }

func (f *fakeSource) Fetch(ctx context.Context, ownerScope *int64) ([]models.Lead, error) {
	if f.fetchFn != nil {
		return f.fetchFn()
	}
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Lead
	for _, l := range f.leads {
		if ownerScope != nil && (l.OwnerID == nil || *l.OwnerID != *ownerScope) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeSource) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	for i := range f.leads {
		if f.leads[i].ID == id {
			l := f.leads[i]
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) UpdateStatus(ctx context.Context, id int64, status models.LeadStatus) error {
	return nil
}
func (f *fakeSource) UpdateOwner(ctx context.Context, id int64, ownerID int64) error { return nil }
func (f *fakeSource) UpdateLastContact(ctx context.Context, id int64, t time.Time) error {
	return nil
}
func (f *fakeSource) Delete(ctx context.Context, id int64) error { return nil }

func at(offset int) time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Hour)
}

func lead(origin models.Origin, id int64, first, last string, created time.Time) models.Lead {
	return models.Lead{
		ID:        id,
		Origin:    origin,
		FirstName: first,
		LastName:  last,
		Email:     first + "." + last + "@example.com",
		Phone:     "+1555000" + string(rune('0'+id)),
		Status:    models.StatusNew,
		CreatedAt: created,
	}
}

func loadedRegistry(t *testing.T, organic, paid []models.Lead) *Registry {
	t.Helper()
	r := New(
		&fakeSource{origin: models.OriginOrganic, leads: organic},
		&fakeSource{origin: models.OriginPaid, leads: paid},
		nil,
	)
	res := r.Load(context.Background())
	require.NoError(t, res.OrganicErr)
	require.NoError(t, res.PaidErr)
	return r
}

func keys(view []models.Lead) []models.LeadKey {
	out := make([]models.LeadKey, len(view))
	for i := range view {
		out[i] = view[i].Key()
	}
	return out
}

func TestViewOrdersBothOriginsByCreatedAtDesc(t *testing.T) {
	// organic [L1 t=5, L2 t=3], paid [L3 t=4] => [L1, L3, L2]
	organic := []models.Lead{
		lead(models.OriginOrganic, 1, "Alice", "Ames", at(5)),
		lead(models.OriginOrganic, 2, "Bob", "Barnes", at(3)),
	}
	paid := []models.Lead{
		lead(models.OriginPaid, 3, "Cara", "Cole", at(4)),
	}
	r := loadedRegistry(t, organic, paid)

	view := r.View(Filters{})
	require.Len(t, view, 3)
	assert.Equal(t, []models.LeadKey{
		{Origin: models.OriginOrganic, ID: 1},
		{Origin: models.OriginPaid, ID: 3},
		{Origin: models.OriginOrganic, ID: 2},
	}, keys(view))
}

func TestViewSixRecordsSortedDescending(t *testing.T) {
	organic := []models.Lead{
		lead(models.OriginOrganic, 1, "A", "A", at(6)),
		lead(models.OriginOrganic, 2, "B", "B", at(2)),
		lead(models.OriginOrganic, 3, "C", "C", at(10)),
	}
	paid := []models.Lead{
		lead(models.OriginPaid, 4, "D", "D", at(8)),
		lead(models.OriginPaid, 5, "E", "E", at(4)),
		lead(models.OriginPaid, 6, "F", "F", at(12)),
	}
	r := loadedRegistry(t, organic, paid)

	view := r.View(Filters{Origin: SelectBoth})
	require.Len(t, view, 6)
	for i := 1; i < len(view); i++ {
		assert.False(t, view[i].CreatedAt.After(view[i-1].CreatedAt),
			"view must be createdAt descending")
	}
}

func TestViewTieBreakIsDeterministic(t *testing.T) {
	same := at(7)
	organic := []models.Lead{
		lead(models.OriginOrganic, 9, "A", "A", same),
		lead(models.OriginOrganic, 2, "B", "B", same),
	}
	paid := []models.Lead{
		lead(models.OriginPaid, 1, "C", "C", same),
	}
	r := loadedRegistry(t, organic, paid)

	// origin tag ascending (organic < paid), then id ascending
	want := []models.LeadKey{
		{Origin: models.OriginOrganic, ID: 2},
		{Origin: models.OriginOrganic, ID: 9},
		{Origin: models.OriginPaid, ID: 1},
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, want, keys(r.View(Filters{})))
	}
}

func TestViewSearch(t *testing.T) {
	organic := []models.Lead{
		lead(models.OriginOrganic, 1, "Jane", "Doe", at(5)),
		lead(models.OriginOrganic, 2, "Bob", "Barnes", at(4)),
	}
	paid := []models.Lead{
		lead(models.OriginPaid, 3, "Mary", "Janeway", at(3)),
	}
	r := loadedRegistry(t, organic, paid)

	baseline := r.View(Filters{})
	require.Len(t, baseline, 3, "empty search matches everything")

	filtered := r.View(Filters{Search: "jane"})
	require.Len(t, filtered, 2, "case-insensitive substring over name")
	assert.Less(t, len(filtered), len(baseline))

	// clearing search restores the baseline sequence
	assert.Equal(t, keys(baseline), keys(r.View(Filters{})))

	// email and phone are searched too
	byEmail := r.View(Filters{Search: "bob.barnes@"})
	require.Len(t, byEmail, 1)
	assert.Equal(t, int64(2), byEmail[0].ID)
}

func TestViewStatusFilter(t *testing.T) {
	unqualified := lead(models.OriginOrganic, 2, "B", "B", at(4))
	unqualified.Status = models.StatusUnqualified
	qualified := lead(models.OriginOrganic, 3, "C", "C", at(3))
	qualified.Status = models.StatusQualified

	r := loadedRegistry(t, []models.Lead{
		lead(models.OriginOrganic, 1, "A", "A", at(5)),
		unqualified,
		qualified,
	}, nil)

	// "all" means all active: unqualified is hidden
	all := r.View(Filters{Status: "all"})
	require.Len(t, all, 2)
	for _, l := range all {
		assert.NotEqual(t, models.StatusUnqualified, l.Status)
	}

	// an explicit filter still returns it
	explicit := r.View(Filters{Status: "unqualified"})
	require.Len(t, explicit, 1)
	assert.Equal(t, int64(2), explicit[0].ID)

	byStatus := r.View(Filters{Status: "qualified"})
	require.Len(t, byStatus, 1)
	assert.Equal(t, int64(3), byStatus[0].ID)
}

func TestViewOwnerFilter(t *testing.T) {
	owner := int64(7)
	mine := lead(models.OriginOrganic, 1, "A", "A", at(5))
	mine.OwnerID = &owner
	free := lead(models.OriginOrganic, 2, "B", "B", at(4))

	r := loadedRegistry(t, []models.Lead{mine, free}, nil)

	assert.Len(t, r.View(Filters{}), 2)

	unassigned := r.View(Filters{Owner: OwnerUnassigned})
	require.Len(t, unassigned, 1)
	assert.Equal(t, int64(2), unassigned[0].ID)

	byKey := r.View(Filters{Owner: "7"})
	require.Len(t, byKey, 1)
	assert.Equal(t, int64(1), byKey[0].ID)

	assert.Empty(t, r.View(Filters{Owner: "99"}))
}

func TestViewOriginSelection(t *testing.T) {
	r := loadedRegistry(t,
		[]models.Lead{lead(models.OriginOrganic, 1, "A", "A", at(5))},
		[]models.Lead{lead(models.OriginPaid, 2, "B", "B", at(4))},
	)

	assert.Len(t, r.View(Filters{Origin: SelectBoth}), 2)

	organicOnly := r.View(Filters{Origin: SelectOrganic})
	require.Len(t, organicOnly, 1)
	assert.Equal(t, models.OriginOrganic, organicOnly[0].Origin)

	paidOnly := r.View(Filters{Origin: SelectPaid})
	require.Len(t, paidOnly, 1)
	assert.Equal(t, models.OriginPaid, paidOnly[0].Origin)
}

func TestViewIsIdempotentProjection(t *testing.T) {
	organic := []models.Lead{
		lead(models.OriginOrganic, 1, "Jane", "Doe", at(5)),
		lead(models.OriginOrganic, 2, "Bob", "Barnes", at(4)),
	}
	paid := []models.Lead{
		lead(models.OriginPaid, 3, "Jane", "Smith", at(3)),
	}
	r := loadedRegistry(t, organic, paid)

	f := Filters{Search: "jane"}
	first := r.View(f)

	// re-apply the same filters over the first output as the new base
	var organic2, paid2 []models.Lead
	for _, l := range first {
		if l.Origin == models.OriginOrganic {
			organic2 = append(organic2, l)
		} else {
			paid2 = append(paid2, l)
		}
	}
	r2 := loadedRegistry(t, organic2, paid2)
	assert.Equal(t, keys(first), keys(r2.View(f)))
}

func TestNavigate(t *testing.T) {
	r := loadedRegistry(t,
		[]models.Lead{
			lead(models.OriginOrganic, 1, "A", "A", at(5)),
			lead(models.OriginOrganic, 2, "B", "B", at(3)),
		},
		[]models.Lead{lead(models.OriginPaid, 3, "C", "C", at(4))},
	)
	f := Filters{}
	// view order: organic/1, paid/3, organic/2
	first := models.LeadKey{Origin: models.OriginOrganic, ID: 1}
	middle := models.LeadKey{Origin: models.OriginPaid, ID: 3}
	last := models.LeadKey{Origin: models.OriginOrganic, ID: 2}

	assert.Nil(t, r.Navigate(first, Prev, f), "prev at first element is none")
	assert.Nil(t, r.Navigate(last, Next, f), "next at last element is none")

	next := r.Navigate(first, Next, f)
	require.NotNil(t, next)
	assert.Equal(t, middle, *next)

	prev := r.Navigate(last, Prev, f)
	require.NotNil(t, prev)
	assert.Equal(t, middle, *prev)
}

func TestNavigateRederivesFromFilters(t *testing.T) {
	unq := lead(models.OriginOrganic, 2, "B", "B", at(4))
	unq.Status = models.StatusUnqualified
	r := loadedRegistry(t, []models.Lead{
		lead(models.OriginOrganic, 1, "A", "A", at(5)),
		unq,
		lead(models.OriginOrganic, 3, "C", "C", at(3)),
	}, nil)

	cur := models.LeadKey{Origin: models.OriginOrganic, ID: 1}

	// under "all" the unqualified row is invisible: next skips to id 3
	next := r.Navigate(cur, Next, Filters{Status: "all"})
	require.NotNil(t, next)
	assert.Equal(t, int64(3), next.ID)

	// a key no longer in the view navigates nowhere
	gone := models.LeadKey{Origin: models.OriginOrganic, ID: 2}
	assert.Nil(t, r.Navigate(gone, Next, Filters{Status: "all"}))
}

func TestPatch(t *testing.T) {
	r := loadedRegistry(t,
		[]models.Lead{lead(models.OriginOrganic, 1, "A", "A", at(5))},
		nil,
	)
	key := models.LeadKey{Origin: models.OriginOrganic, ID: 1}

	status := models.StatusContacted
	owner := int64(42)
	contact := at(6)
	r.Patch(key, models.LeadPatch{Status: &status, OwnerID: &owner, LastContactAt: &contact})

	view := r.View(Filters{})
	require.Len(t, view, 1)
	assert.Equal(t, models.StatusContacted, view[0].Status)
	require.NotNil(t, view[0].OwnerID)
	assert.Equal(t, int64(42), *view[0].OwnerID)
	require.NotNil(t, view[0].LastContactAt)
	assert.True(t, view[0].LastContactAt.Equal(contact))

	// the contact clock never moves backward
	earlier := at(1)
	r.Patch(key, models.LeadPatch{LastContactAt: &earlier})
	view = r.View(Filters{})
	assert.True(t, view[0].LastContactAt.Equal(contact))

	// absent key is a silent no-op
	r.Patch(models.LeadKey{Origin: models.OriginPaid, ID: 999}, models.LeadPatch{Status: &status})
}

func TestLoadReportsOriginFailuresIndependently(t *testing.T) {
	r := New(
		&fakeSource{origin: models.OriginOrganic, err: errors.New("organic down")},
		&fakeSource{origin: models.OriginPaid, leads: []models.Lead{
			lead(models.OriginPaid, 1, "A", "A", at(5)),
		}},
		nil,
	)
	res := r.Load(context.Background())
	assert.Error(t, res.OrganicErr)
	assert.NoError(t, res.PaidErr)
	assert.False(t, res.Stale)

	// the healthy origin still populated
	assert.True(t, r.Loaded())
	assert.Len(t, r.View(Filters{}), 1)
}

func TestLoadDiscardsSupersededCompletion(t *testing.T) {
	staleLeads := []models.Lead{lead(models.OriginOrganic, 1, "Old", "Old", at(1))}
	freshLeads := []models.Lead{lead(models.OriginOrganic, 2, "New", "New", at(2))}

	// every organic fetch parks on the calls channel until the test replies
	calls := make(chan chan []models.Lead)
	organic := &fakeSource{
		origin: models.OriginOrganic,
		fetchFn: func() ([]models.Lead, error) {
			reply := make(chan []models.Lead)
			calls <- reply
			return <-reply, nil
		},
	}
	r := New(organic, &fakeSource{origin: models.OriginPaid}, nil)

	firstDone := make(chan LoadResult, 1)
	go func() { firstDone <- r.Load(context.Background()) }()
	reply1 := <-calls // first load has its generation ticket, fetch in flight

	secondDone := make(chan LoadResult, 1)
	go func() { secondDone <- r.Load(context.Background()) }()
	reply2 := <-calls

	// the newer load completes first
	reply2 <- freshLeads
	res2 := <-secondDone
	require.NoError(t, res2.OrganicErr)
	assert.False(t, res2.Stale)

	// now the superseded fetch finishes; it must be discarded
	reply1 <- staleLeads
	res1 := <-firstDone
	assert.True(t, res1.Stale)

	view := r.View(Filters{})
	require.Len(t, view, 1)
	assert.Equal(t, int64(2), view[0].ID, "stale completion must not overwrite fresher data")
}

func TestManagerScopesAndDispose(t *testing.T) {
	organic := &fakeSource{origin: models.OriginOrganic}
	paid := &fakeSource{origin: models.OriginPaid}
	m := NewManager(organic, paid)

	scope := int64(7)
	r1 := m.Get(1, &scope)
	assert.Same(t, r1, m.Get(1, &scope), "same session reuses the registry")

	r2 := m.Get(1, nil)
	assert.NotSame(t, r1, r2, "scope change recreates the registry")

	m.Dispose(1)
	assert.NotSame(t, r2, m.Get(1, nil), "dispose drops the instance")
}
