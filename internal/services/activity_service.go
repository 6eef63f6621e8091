package services

import (
	"context"
	"strings"
	"time"

	"brightlend/internal/apperr"
	"brightlend/internal/models"
	"brightlend/internal/repositories"
)

// ActivityService is the activity log manager: it appends contact events and
// keeps the owning lead's last_contact_at in step. It deliberately knows
// nothing about the registry; write-back into list views is the caller's job
// via the broadcaster.
type ActivityService struct {
	store repositories.ActivityStore
}

func NewActivityService(store repositories.ActivityStore) *ActivityService {
	return &ActivityService{store: store}
}

// Append records a contact event. The activity insert and the last-contact
// bump are one transaction in the store, so either both land or neither does.
// Returns the inserted row for optimistic merge by the caller.
func (s *ActivityService) Append(ctx context.Context, key models.LeadKey, typ models.ActivityType, notes string, authorID int64, audioRef *string) (*models.Activity, error) {
	if !models.ValidActivityType(typ) {
		return nil, apperr.Validation("type", "must be call, text, email or note")
	}
	// a bare note with no text is meaningless; calls/texts/emails may log
	// without commentary
	if typ == models.ActivityNote && strings.TrimSpace(notes) == "" {
		return nil, apperr.Validation("notes", "note text is required")
	}

	a := &models.Activity{
		Origin:    key.Origin,
		LeadID:    key.ID,
		Type:      typ,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
		AuthorID:  authorID,
		AudioRef:  audioRef,
	}
	if err := s.store.AppendWithLastContact(ctx, a); err != nil {
		return nil, apperr.Persistence("append activity", err)
	}
	return a, nil
}

// List reads the log newest-first straight from the store; nothing is cached
// so the result is always authoritative.
func (s *ActivityService) List(ctx context.Context, key models.LeadKey) ([]models.Activity, error) {
	out, err := s.store.ListByLead(ctx, key)
	if err != nil {
		return nil, apperr.Persistence("list activities", err)
	}
	return out, nil
}

func (s *ActivityService) Delete(ctx context.Context, key models.LeadKey, activityID int64) error {
	if err := s.store.Delete(ctx, key, activityID); err != nil {
		return apperr.Persistence("delete activity", err)
	}
	return nil
}

// LastContact recomputes the contact clock as max(activity timestamps). The
// drift report compares it against the cached lead field to spot rows written
// before the transactional append existed.
func (s *ActivityService) LastContact(ctx context.Context, key models.LeadKey) (*time.Time, error) {
	t, err := s.store.LastContactFromActivities(ctx, key)
	if err != nil {
		return nil, apperr.Persistence("recompute last contact", err)
	}
	return t, nil
}
