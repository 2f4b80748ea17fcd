package models

// Project is a candidate work site returned by project/service resolution.
// PRID is the backend project/address identifier, Label the display address.
type Project struct {
	ID    string
	Label string
}

// Service is a candidate service (work category) for a check-in.
type Service struct {
	ID    string
	Label string
}

// Check status values reported by the backend. Anything other than
// CheckStatusIn behaves like the checked-out branch.
const (
	CheckStatusOut      = 0
	CheckStatusIn       = 1
	CheckStatusOutAgain = 3
)

// CheckContext is the ephemeral result of one resolution call. It lives from
// the moment a location signal is resolved until the follow-up submit (or
// until the attempt is abandoned).
type CheckContext struct {
	Projects []Project
	Services []Service

	// Status is the backend-reported check state; nil when the backend
	// omitted it, which counts as "not checked in".
	Status *int

	// ActiveCheckID (CHID) identifies the open check-in record, when any.
	// nil means the field is omitted from the subsequent submission.
	ActiveCheckID *int
}

// CheckingIn reports whether the next action for this context is a check-in.
// Per the backend contract 1 means currently checked in (so the next action
// is a check-out); 0, 3, a missing status, and any unlisted value all fall
// to the check-in branch.
func (c *CheckContext) CheckingIn() bool {
	return c.Status == nil || *c.Status != CheckStatusIn
}

// Empty reports whether resolution produced no candidate projects.
func (c *CheckContext) Empty() bool {
	return len(c.Projects) == 0
}

// ProjectLabel returns the display label of the project with the given id,
// or the empty string when it is not part of this context.
func (c *CheckContext) ProjectLabel(id string) string {
	for _, p := range c.Projects {
		if p.ID == id {
			return p.Label
		}
	}
	return ""
}

// LocationSignal is one of the four ways a user can identify a work site.
// Exactly one concrete type is passed to the resolver per attempt.
type LocationSignal interface {
	isLocationSignal()
}

// GPSSignal carries a device fix plus the reverse-geocoded street name.
type GPSSignal struct {
	Street    string
	Latitude  float64
	Longitude float64
}

// ManualSignal carries a free-text address typed by the user.
type ManualSignal struct {
	Address string
}

// NFCSignal carries the identifier read from a work-site NFC tag.
type NFCSignal struct {
	Token string
}

// QRSignal carries the token scanned from a work-site QR code.
type QRSignal struct {
	Token string
}

func (GPSSignal) isLocationSignal()    {}
func (ManualSignal) isLocationSignal() {}
func (NFCSignal) isLocationSignal()    {}
func (QRSignal) isLocationSignal()     {}
