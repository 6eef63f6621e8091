package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"brightlend/internal/models"
	"brightlend/internal/notify"
	"brightlend/internal/repositories"
)

// UserLookup resolves the reminder recipient's address.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Mailer is the optional email copy channel; nil disables it.
type Mailer interface {
	SendCallbackReminder(toEmail string, lead *models.Lead, cb *models.Callback) error
}

// ReminderDispatcher is the server-side safety net behind the device-local
// notification: it polls due, undelivered callbacks and pushes them out, with
// an optional email copy. Per-callback failures are logged and retried on the
// next tick; nothing here is fatal.
type ReminderDispatcher struct {
	callbacks repositories.CallbackStore
	sources   map[models.Origin]repositories.LeadSource
	users     UserLookup
	push      PushGateway
	mailer    Mailer

	interval time.Duration
	batch    int
}

func NewReminderDispatcher(
	callbacks repositories.CallbackStore,
	sources map[models.Origin]repositories.LeadSource,
	users UserLookup,
	push PushGateway,
	mailer Mailer,
	interval time.Duration,
	batch int,
) *ReminderDispatcher {
	return &ReminderDispatcher{
		callbacks: callbacks,
		sources:   sources,
		users:     users,
		push:      push,
		mailer:    mailer,
		interval:  interval,
		batch:     batch,
	}
}

// Run blocks until ctx is cancelled.
func (d *ReminderDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	log.Printf("[dispatcher] started, interval=%s batch=%d", d.interval, d.batch)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[dispatcher] stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			d.DispatchDue(ctx)
		}
	}
}

// DispatchDue handles one polling pass. Exported so a pass can be triggered
// directly (tests, admin tooling).
func (d *ReminderDispatcher) DispatchDue(ctx context.Context) {
	now := time.Now().UTC()
	due, err := d.callbacks.ListDue(ctx, now, d.batch)
	if err != nil {
		log.Printf("[dispatcher] list due callbacks: %v", err)
		return
	}

	for i := range due {
		cb := &due[i]
		if err := d.deliver(ctx, cb, now); err != nil {
			log.Printf("[dispatcher] callback %d not delivered: %v", cb.ID, err)
			continue
		}
		if err := d.callbacks.MarkDelivered(ctx, cb.ID, now); err != nil {
			log.Printf("[dispatcher] mark delivered %d: %v", cb.ID, err)
		}
	}
}

func (d *ReminderDispatcher) deliver(ctx context.Context, cb *models.Callback, now time.Time) error {
	src, ok := d.sources[cb.Origin]
	if !ok {
		return fmt.Errorf("unknown origin %q", cb.Origin)
	}
	lead, err := src.GetByID(ctx, cb.LeadID)
	if err != nil {
		return err
	}
	if lead == nil {
		// lead deleted after scheduling; nothing to remind about
		return nil
	}

	n := notify.Notification{
		Title: fmt.Sprintf("Callback: %s %s", lead.FirstName, lead.LastName),
		Body:  cb.Note,
		Data:  notify.NotificationData{LeadKey: cb.LeadKey()},
	}
	if err := d.push.Schedule(ctx, cb.CreatedBy, now, n); err != nil {
		return err
	}

	if d.mailer != nil {
		u, err := d.users.GetByID(ctx, cb.CreatedBy)
		if err != nil {
			log.Printf("[dispatcher] email copy skipped, user %d: %v", cb.CreatedBy, err)
			return nil
		}
		if err := d.mailer.SendCallbackReminder(u.Email, lead, cb); err != nil {
			log.Printf("[dispatcher] email copy failed for callback %d: %v", cb.ID, err)
		}
	}
	return nil
}
