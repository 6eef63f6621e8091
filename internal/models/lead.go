package models

import "time"

// Origin identifies the system a lead arrived from.
type Origin string

const (
	OriginOrganic Origin = "organic"
	OriginPaid    Origin = "paid"
)

func ParseOrigin(s string) (Origin, bool) {
	switch Origin(s) {
	case OriginOrganic:
		return OriginOrganic, true
	case OriginPaid:
		return OriginPaid, true
	}
	return "", false
}

// LeadKey uniquely identifies a lead across both collections.
type LeadKey struct {
	Origin Origin `json:"origin"`
	ID     int64  `json:"id"`
}

// LeadStatus defines the possible statuses for a lead.
type LeadStatus string

const (
	StatusNew           LeadStatus = "new"
	StatusContacted     LeadStatus = "contacted"
	StatusDocsRequested LeadStatus = "docs_requested"
	StatusQualified     LeadStatus = "qualified"
	StatusNurturing     LeadStatus = "nurturing"
	StatusClosed        LeadStatus = "closed"
	StatusUnqualified   LeadStatus = "unqualified"
	StatusNoResponse    LeadStatus = "no_response"
)

func ValidLeadStatus(s LeadStatus) bool {
	switch s {
	case StatusNew, StatusContacted, StatusDocsRequested, StatusQualified,
		StatusNurturing, StatusClosed, StatusUnqualified, StatusNoResponse:
		return true
	}
	return false
}

// IsTerminal reports whether the pipeline is closed for this status.
func (s LeadStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusUnqualified
}

// Lead is the common record shape shared by both origins. The origin-specific
// fields are carried for display but never interpreted by the pipeline.
type Lead struct {
	ID            int64      `json:"id"`
	Origin        Origin     `json:"origin"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Status        LeadStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	LastContactAt *time.Time `json:"last_contact_at,omitempty"`
	OwnerID       *int64     `json:"owner_id,omitempty"`

	// organic only
	LoanPurpose   string `json:"loan_purpose,omitempty"`
	LoanAmount    string `json:"loan_amount,omitempty"`
	PropertyValue string `json:"property_value,omitempty"`

	// paid only
	CampaignID string `json:"campaign_id,omitempty"`
	AdSet      string `json:"ad_set,omitempty"`
	ClickRef   string `json:"click_ref,omitempty"`
}

func (l *Lead) Key() LeadKey {
	return LeadKey{Origin: l.Origin, ID: l.ID}
}

// LeadPatch is a partial field update; nil fields are left untouched.
type LeadPatch struct {
	Status        *LeadStatus
	OwnerID       *int64
	LastContactAt *time.Time
}
