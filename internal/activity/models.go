package activity

import "time"

// Type labels what kind of touchpoint was logged against a lead.
type Type string

const (
	TypeCall    Type = "CALL"
	TypeEmail   Type = "EMAIL"
	TypeMeeting Type = "MEETING"
	TypeNote    Type = "NOTE"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCall, TypeEmail, TypeMeeting, TypeNote:
		return true
	}
	return false
}

// Activity is a logged touchpoint on a lead.
type Activity struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"leadId"`
	UserID    string    `json:"userId"`
	Type      Type      `json:"type"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateFields is what a caller supplies when logging an activity.
type CreateFields struct {
	LeadID string
	Type   Type
	Note   string
}
