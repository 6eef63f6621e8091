package services

import (
	"time"

	"brightlend/internal/models"
)

// Severity ranks attention badges for display.
type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityWarning Severity = "warning"
	SeverityUrgent  Severity = "urgent"
)

// Attention is the urgency classification for one lead.
type Attention struct {
	NeedsAttention bool     `json:"needs_attention"`
	Label          string   `json:"label,omitempty"`
	Severity       Severity `json:"severity"`
}

// Thresholds are product-configurable; they come from config, never from
// constants in here.
type Thresholds struct {
	FirstContactAfter time.Duration
	StaleAfter        time.Duration
}

// Classify derives the attention badge from status, created_at and
// last_contact_at alone. Pure: identical inputs always give identical output,
// so it is safe to re-run on every render and cheap to test.
func Classify(lead *models.Lead, now time.Time, t Thresholds) Attention {
	// closed pipelines are exempt no matter how old they are
	if lead.Status.IsTerminal() {
		return Attention{Severity: SeverityNone}
	}

	if lead.LastContactAt == nil {
		if now.Sub(lead.CreatedAt) >= t.FirstContactAfter {
			return Attention{
				NeedsAttention: true,
				Label:          "needs first contact",
				Severity:       SeverityUrgent,
			}
		}
		return Attention{Severity: SeverityNone}
	}

	if now.Sub(*lead.LastContactAt) >= t.StaleAfter {
		return Attention{
			NeedsAttention: true,
			Label:          "no recent follow-up",
			Severity:       SeverityWarning,
		}
	}
	return Attention{Severity: SeverityNone}
}
