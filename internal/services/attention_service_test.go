package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"brightlend/internal/models"
)

var testThresholds = Thresholds{
	FirstContactAfter: 48 * time.Hour,
	StaleAfter:        168 * time.Hour,
}

func classifyLead(status models.LeadStatus, createdAgo time.Duration, lastContactAgo *time.Duration, now time.Time) Attention {
	l := models.Lead{
		Status:    status,
		CreatedAt: now.Add(-createdAgo),
	}
	if lastContactAgo != nil {
		t := now.Add(-*lastContactAgo)
		l.LastContactAt = &t
	}
	return Classify(&l, now, testThresholds)
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func TestClassifyNeverContacted(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	// created 10 days ago, status new, no activity: urgent
	att := classifyLead(models.StatusNew, days(10), nil, now)
	assert.True(t, att.NeedsAttention)
	assert.Equal(t, "needs first contact", att.Label)
	assert.Equal(t, SeverityUrgent, att.Severity)

	// fresh lead inside the first-contact window: no alert
	att = classifyLead(models.StatusNew, 12*time.Hour, nil, now)
	assert.False(t, att.NeedsAttention)
	assert.Equal(t, SeverityNone, att.Severity)
}

func TestClassifyStaleFollowUp(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	// contacted yesterday: fine
	recent := days(1)
	att := classifyLead(models.StatusQualified, days(30), &recent, now)
	assert.False(t, att.NeedsAttention)

	// last contact beyond the stale window
	old := days(14)
	att = classifyLead(models.StatusQualified, days(30), &old, now)
	assert.True(t, att.NeedsAttention)
	assert.Equal(t, "no recent follow-up", att.Label)
	assert.Equal(t, SeverityWarning, att.Severity)
}

func TestClassifyTerminalStatusesAreExempt(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	for _, status := range []models.LeadStatus{models.StatusClosed, models.StatusUnqualified} {
		att := classifyLead(status, days(365), nil, now)
		assert.False(t, att.NeedsAttention, "terminal status %s must never alert", status)
		assert.Equal(t, SeverityNone, att.Severity)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	contact := now.Add(-days(3))
	l := models.Lead{
		Status:        models.StatusContacted,
		CreatedAt:     now.Add(-days(20)),
		LastContactAt: &contact,
	}
	first := Classify(&l, now, testThresholds)
	second := Classify(&l, now, testThresholds)
	assert.Equal(t, first, second)
}

// appending a contact with the clock unchanged clears the badge
func TestClassifyClearsAfterContact(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	l := models.Lead{
		Status:    models.StatusNew,
		CreatedAt: now.Add(-days(10)),
	}
	assert.True(t, Classify(&l, now, testThresholds).NeedsAttention)

	appendedAt := now
	l.LastContactAt = &appendedAt
	assert.False(t, Classify(&l, now, testThresholds).NeedsAttention)
}
