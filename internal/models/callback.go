package models

import "time"

// Callback is a scheduled follow-up reminder against a lead.
type Callback struct {
	ID           int64      `json:"id"`
	Origin       Origin     `json:"origin"`
	LeadID       int64      `json:"lead_id"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Note         string     `json:"note"`
	CreatedBy    int64      `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
}

func (cb *Callback) LeadKey() LeadKey {
	return LeadKey{Origin: cb.Origin, ID: cb.LeadID}
}
