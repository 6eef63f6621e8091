package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightlend/internal/apperr"
	"brightlend/internal/models"
)

type fakeActivityStore struct {
	appended  []*models.Activity
	appendErr error
	byLead    map[models.LeadKey][]models.Activity
	deleted   []int64
}

func (f *fakeActivityStore) AppendWithLastContact(ctx context.Context, a *models.Activity) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	a.ID = int64(len(f.appended) + 1)
	f.appended = append(f.appended, a)
	return nil
}

func (f *fakeActivityStore) ListByLead(ctx context.Context, key models.LeadKey) ([]models.Activity, error) {
	return f.byLead[key], nil
}

func (f *fakeActivityStore) Delete(ctx context.Context, key models.LeadKey, activityID int64) error {
	f.deleted = append(f.deleted, activityID)
	return nil
}

func (f *fakeActivityStore) LastContactFromActivities(ctx context.Context, key models.LeadKey) (*time.Time, error) {
	acts := f.byLead[key]
	if len(acts) == 0 {
		return nil, nil
	}
	max := acts[0].CreatedAt
	for _, a := range acts[1:] {
		if a.CreatedAt.After(max) {
			max = a.CreatedAt
		}
	}
	return &max, nil
}

func TestAppendValidation(t *testing.T) {
	svc := NewActivityService(&fakeActivityStore{})
	key := models.LeadKey{Origin: models.OriginOrganic, ID: 1}

	_, err := svc.Append(context.Background(), key, "fax", "hello", 5, nil)
	assert.True(t, apperr.IsValidation(err), "unknown activity type is rejected")

	_, err = svc.Append(context.Background(), key, models.ActivityNote, "  ", 5, nil)
	assert.True(t, apperr.IsValidation(err), "a note with no text is rejected")

	// a call may be logged without commentary
	store := &fakeActivityStore{}
	svc = NewActivityService(store)
	_, err = svc.Append(context.Background(), key, models.ActivityCall, "", 5, nil)
	assert.NoError(t, err)
	assert.Len(t, store.appended, 1)
}

func TestAppendReturnsInsertedRecord(t *testing.T) {
	store := &fakeActivityStore{}
	svc := NewActivityService(store)
	key := models.LeadKey{Origin: models.OriginPaid, ID: 7}

	before := time.Now().UTC()
	a, err := svc.Append(context.Background(), key, models.ActivityCall, "left voicemail", 5, nil)
	require.NoError(t, err)

	assert.Equal(t, key, a.LeadKey())
	assert.Equal(t, models.ActivityCall, a.Type)
	assert.Equal(t, int64(5), a.AuthorID)
	assert.NotZero(t, a.ID)
	assert.False(t, a.CreatedAt.Before(before))
}

func TestAppendPersistenceFailureAborts(t *testing.T) {
	store := &fakeActivityStore{appendErr: errors.New("db down")}
	svc := NewActivityService(store)
	key := models.LeadKey{Origin: models.OriginOrganic, ID: 1}

	_, err := svc.Append(context.Background(), key, models.ActivityCall, "x", 5, nil)
	assert.True(t, apperr.IsPersistence(err))
	assert.Empty(t, store.appended)
}

func TestLastContactRecomputation(t *testing.T) {
	key := models.LeadKey{Origin: models.OriginOrganic, ID: 1}
	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	store := &fakeActivityStore{byLead: map[models.LeadKey][]models.Activity{
		key: {
			{ID: 1, CreatedAt: older},
			{ID: 2, CreatedAt: newer},
		},
	}}
	svc := NewActivityService(store)

	got, err := svc.LastContact(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(newer), "recomputed clock is max(activity timestamps)")

	none, err := svc.LastContact(context.Background(), models.LeadKey{Origin: models.OriginPaid, ID: 9})
	require.NoError(t, err)
	assert.Nil(t, none)
}
