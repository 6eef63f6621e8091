package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightlend/internal/models"
	"brightlend/internal/registry"
)

func TestBroadcasterPatchesAllLiveRegistries(t *testing.T) {
	owner := int64(7)
	sources := testSources()
	organic := sources[models.OriginOrganic]
	paid := sources[models.OriginPaid]

	m := registry.NewManager(organic, paid)
	b := NewBroadcaster(m)

	regA := m.Get(1, nil)
	regB := m.Get(2, nil)
	require.False(t, regA.Load(context.Background()).Stale)
	require.False(t, regB.Load(context.Background()).Stale)

	key := models.LeadKey{Origin: models.OriginOrganic, ID: 1}
	status := models.StatusContacted
	now := time.Now().UTC()
	b.Propagate(key, models.LeadPatch{Status: &status, OwnerID: &owner, LastContactAt: &now})

	for _, reg := range []*registry.Registry{regA, regB} {
		view := reg.View(registry.Filters{})
		require.Len(t, view, 1)
		assert.Equal(t, models.StatusContacted, view[0].Status)
		require.NotNil(t, view[0].LastContactAt)
		assert.True(t, view[0].LastContactAt.Equal(now))
	}
}

func TestLeadServicePersistsThenPropagates(t *testing.T) {
	sources := testSources()
	m := registry.NewManager(sources[models.OriginOrganic], sources[models.OriginPaid])
	b := NewBroadcaster(m)
	svc := NewLeadService(sources, b)

	reg := m.Get(1, nil)
	require.False(t, reg.Load(context.Background()).Stale)

	key := models.LeadKey{Origin: models.OriginOrganic, ID: 1}
	require.NoError(t, svc.UpdateStatus(context.Background(), key, models.StatusQualified))

	// persisted
	lead, err := svc.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQualified, lead.Status)

	// and reflected in the live view without a reload
	view := reg.View(registry.Filters{})
	require.Len(t, view, 1)
	assert.Equal(t, models.StatusQualified, view[0].Status)

	// unknown status value is rejected before any write
	err = svc.UpdateStatus(context.Background(), key, "garbage")
	assert.Error(t, err)
}
