package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"brightlend/internal/apperr"
	"brightlend/internal/models"
	"brightlend/internal/notify"
	"brightlend/internal/repositories"
)

// PushGateway is the slice of the push client the scheduler needs.
type PushGateway interface {
	Authorized(ctx context.Context, userID int64) (bool, error)
	Schedule(ctx context.Context, userID int64, triggerAt time.Time, n notify.Notification) error
}

// CalendarGateway is best-effort; errors are logged here, never returned.
type CalendarGateway interface {
	CreateEvent(ctx context.Context, ev notify.CalendarEvent) error
}

// CallbackService persists follow-up reminders and arranges their delivery:
// local notification first, external calendar as a best-effort side effect.
type CallbackService struct {
	store    repositories.CallbackStore
	sources  map[models.Origin]repositories.LeadSource
	push     PushGateway
	calendar CalendarGateway

	minLeadTime   time.Duration
	eventDuration int

	// users who refused notification access; the feature stays off for the
	// rest of the session, no automatic re-prompt
	deniedMu sync.Mutex
	denied   map[int64]bool
}

func NewCallbackService(
	store repositories.CallbackStore,
	sources map[models.Origin]repositories.LeadSource,
	push PushGateway,
	calendar CalendarGateway,
	minLeadTime time.Duration,
	eventDurationMinutes int,
) *CallbackService {
	return &CallbackService{
		store:         store,
		sources:       sources,
		push:          push,
		calendar:      calendar,
		minLeadTime:   minLeadTime,
		eventDuration: eventDurationMinutes,
		denied:        map[int64]bool{},
	}
}

// deliveryTrigger is the pure scheduling decision, separated from the
// effectful delivery so it can be tested without mocking the platform. The
// gateway requires a trigger strictly in the future, so a past `when` is
// clamped forward to now+minLead; it never errors.
func deliveryTrigger(when, now time.Time, minLead time.Duration) time.Time {
	if when.After(now) {
		return when
	}
	return now.Add(minLead)
}

// Schedule persists the callback, then arranges delivery. The persisted row
// keeps the caller's original time even when the notification trigger is
// clamped. A permission denial returns the persisted row together with
// apperr.ErrPermissionDenied: scheduling the reminder is best-effort, not
// transactional with persistence.
func (s *CallbackService) Schedule(ctx context.Context, key models.LeadKey, when time.Time, note string, createdBy int64) (*models.Callback, error) {
	if strings.TrimSpace(note) == "" {
		return nil, apperr.Validation("note", "note is required")
	}
	src, ok := s.sources[key.Origin]
	if !ok {
		return nil, apperr.Validation("origin", "unknown origin")
	}
	lead, err := src.GetByID(ctx, key.ID)
	if err != nil {
		return nil, apperr.Persistence("get lead", err)
	}
	if lead == nil {
		return nil, apperr.ErrNotFound
	}

	cb := &models.Callback{
		Origin:       key.Origin,
		LeadID:       key.ID,
		ScheduledFor: when,
		Note:         note,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, cb); err != nil {
		return nil, apperr.Persistence("insert callback", err)
	}

	if s.permissionDenied(ctx, createdBy) {
		return cb, apperr.ErrPermissionDenied
	}

	now := time.Now().UTC()
	trigger := deliveryTrigger(when, now, s.minLeadTime)
	n := notify.Notification{
		Title: fmt.Sprintf("Callback: %s %s", lead.FirstName, lead.LastName),
		Body:  note,
		Data:  notify.NotificationData{LeadKey: key},
	}
	if err := s.push.Schedule(ctx, createdBy, trigger, n); err != nil {
		return cb, apperr.Persistence("schedule notification", err)
	}

	// calendar is strictly best-effort: log and move on
	ev := notify.CalendarEvent{
		Start:           trigger,
		DurationMinutes: s.eventDuration,
		Title:           n.Title,
		Notes:           note,
		LeadDetails: map[string]string{
			"name":   lead.FirstName + " " + lead.LastName,
			"phone":  lead.Phone,
			"email":  lead.Email,
			"origin": string(lead.Origin),
		},
	}
	if err := s.calendar.CreateEvent(ctx, ev); err != nil {
		log.Printf("[callbacks] calendar event skipped for lead %s/%d: %v", key.Origin, key.ID, err)
	}

	return cb, nil
}

func (s *CallbackService) permissionDenied(ctx context.Context, userID int64) bool {
	s.deniedMu.Lock()
	if s.denied[userID] {
		s.deniedMu.Unlock()
		return true
	}
	s.deniedMu.Unlock()

	ok, err := s.push.Authorized(ctx, userID)
	if err != nil {
		log.Printf("[callbacks] permission check failed for user %d: %v", userID, err)
	}
	if err == nil && ok {
		return false
	}
	s.deniedMu.Lock()
	s.denied[userID] = true
	s.deniedMu.Unlock()
	return true
}

func (s *CallbackService) List(ctx context.Context, key models.LeadKey) ([]models.Callback, error) {
	out, err := s.store.ListByLead(ctx, key)
	if err != nil {
		return nil, apperr.Persistence("list callbacks", err)
	}
	return out, nil
}

// Delete is the only cancellation this pipeline offers; there is no
// reschedule, the row is simply removed.
func (s *CallbackService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return apperr.Persistence("delete callback", err)
	}
	return nil
}
