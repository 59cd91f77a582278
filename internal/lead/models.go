package lead

import "time"

// Status tracks where a lead sits in the pipeline.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusContacted Status = "CONTACTED"
	StatusQualified Status = "QUALIFIED"
	StatusWon       Status = "WON"
	StatusLost      Status = "LOST"
)

// Valid reports whether the status is a known pipeline stage.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusWon, StatusLost:
		return true
	}
	return false
}

// Lead is a sales prospect. Deleted is a tombstone, not physical removal: a
// tombstoned lead is excluded from reads and immutable except for the
// tombstone write itself.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Source    string    `json:"source,omitempty"`
	Status    Status    `json:"status"`
	OwnerID   string    `json:"ownerId"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateFields is what a caller supplies when opening a lead. Owner and
// status are set by the lifecycle, never the caller.
type CreateFields struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Source  string
}

// Fields is the partial-update carrier: nil means "leave as is".
type Fields struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Source  *string
	Status  *Status
	OwnerID *string
}

// Empty reports whether no field was supplied at all.
func (f Fields) Empty() bool {
	return f.Name == nil && f.Email == nil && f.Phone == nil &&
		f.Company == nil && f.Source == nil && f.Status == nil && f.OwnerID == nil
}

// Meta mirrors the submitted fields verbatim for the audit trail. It is the
// payload as sent, not a diff.
func (f Fields) Meta() map[string]any {
	meta := make(map[string]any)
	if f.Name != nil {
		meta["name"] = *f.Name
	}
	if f.Email != nil {
		meta["email"] = *f.Email
	}
	if f.Phone != nil {
		meta["phone"] = *f.Phone
	}
	if f.Company != nil {
		meta["company"] = *f.Company
	}
	if f.Source != nil {
		meta["source"] = *f.Source
	}
	if f.Status != nil {
		meta["status"] = string(*f.Status)
	}
	if f.OwnerID != nil {
		meta["ownerId"] = *f.OwnerID
	}
	return meta
}

// apply overlays the supplied fields onto a lead.
func (f Fields) apply(l Lead) Lead {
	if f.Name != nil {
		l.Name = *f.Name
	}
	if f.Email != nil {
		l.Email = *f.Email
	}
	if f.Phone != nil {
		l.Phone = *f.Phone
	}
	if f.Company != nil {
		l.Company = *f.Company
	}
	if f.Source != nil {
		l.Source = *f.Source
	}
	if f.Status != nil {
		l.Status = *f.Status
	}
	if f.OwnerID != nil {
		l.OwnerID = *f.OwnerID
	}
	return l
}
