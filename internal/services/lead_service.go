package services

import (
	"context"
	"time"

	"brightlend/internal/apperr"
	"brightlend/internal/models"
	"brightlend/internal/repositories"
)

// LeadService applies field patches to a lead: persist through the owning
// origin's source, then propagate the same patch into the live registries.
// Leads are created upstream; this core only reads and field-patches them.
type LeadService struct {
	sources     map[models.Origin]repositories.LeadSource
	broadcaster *Broadcaster
}

func NewLeadService(sources map[models.Origin]repositories.LeadSource, broadcaster *Broadcaster) *LeadService {
	return &LeadService{sources: sources, broadcaster: broadcaster}
}

func (s *LeadService) sourceFor(key models.LeadKey) (repositories.LeadSource, error) {
	src, ok := s.sources[key.Origin]
	if !ok {
		return nil, apperr.Validation("origin", "unknown origin")
	}
	return src, nil
}

func (s *LeadService) Get(ctx context.Context, key models.LeadKey) (*models.Lead, error) {
	src, err := s.sourceFor(key)
	if err != nil {
		return nil, err
	}
	lead, err := src.GetByID(ctx, key.ID)
	if err != nil {
		return nil, apperr.Persistence("get lead", err)
	}
	if lead == nil {
		return nil, apperr.ErrNotFound
	}
	return lead, nil
}

func (s *LeadService) UpdateStatus(ctx context.Context, key models.LeadKey, to models.LeadStatus) error {
	if !models.ValidLeadStatus(to) {
		return apperr.Validation("status", "unknown status value")
	}
	src, err := s.sourceFor(key)
	if err != nil {
		return err
	}
	if err := src.UpdateStatus(ctx, key.ID, to); err != nil {
		return apperr.Persistence("update status", err)
	}
	s.broadcaster.Propagate(key, models.LeadPatch{Status: &to})
	return nil
}

func (s *LeadService) AssignOwner(ctx context.Context, key models.LeadKey, ownerID int64) error {
	src, err := s.sourceFor(key)
	if err != nil {
		return err
	}
	if err := src.UpdateOwner(ctx, key.ID, ownerID); err != nil {
		return apperr.Persistence("assign owner", err)
	}
	s.broadcaster.Propagate(key, models.LeadPatch{OwnerID: &ownerID})
	return nil
}

// RecordContact is the write-back step after an activity append: surface the
// new last_contact_at in list views without a refetch. Persistence already
// happened inside the activity transaction.
func (s *LeadService) RecordContact(key models.LeadKey, at time.Time) {
	s.broadcaster.Propagate(key, models.LeadPatch{LastContactAt: &at})
}

func (s *LeadService) Delete(ctx context.Context, key models.LeadKey) error {
	src, err := s.sourceFor(key)
	if err != nil {
		return err
	}
	if err := src.Delete(ctx, key.ID); err != nil {
		return apperr.Persistence("delete lead", err)
	}
	return nil
}
