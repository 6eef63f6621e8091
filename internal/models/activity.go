package models

import "time"

// ActivityType defines the contact channels that can be logged.
type ActivityType string

const (
	ActivityCall  ActivityType = "call"
	ActivityText  ActivityType = "text"
	ActivityEmail ActivityType = "email"
	ActivityNote  ActivityType = "note"
)

func ValidActivityType(t ActivityType) bool {
	switch t {
	case ActivityCall, ActivityText, ActivityEmail, ActivityNote:
		return true
	}
	return false
}

// Activity is one logged contact event against a lead. Rows are append/delete
// only; an activity is never edited in place.
type Activity struct {
	ID        int64        `json:"id"`
	Origin    Origin       `json:"origin"`
	LeadID    int64        `json:"lead_id"`
	Type      ActivityType `json:"type"`
	Notes     string       `json:"notes"`
	CreatedAt time.Time    `json:"created_at"`
	AuthorID  int64        `json:"author_id"`
	AudioRef  *string      `json:"audio_ref,omitempty"`
}

func (a *Activity) LeadKey() LeadKey {
	return LeadKey{Origin: a.Origin, ID: a.LeadID}
}
