// Package models defines the client-side value types: the cached session,
// the per-attempt check context and the hours rows.
package models

// ManualMode is the server-configured check-in method a user is allowed to
// use. The backend reports it as the "manual" field on login and validation.
type ManualMode int

const (
	ManualModeGPS    ManualMode = 0
	ManualModeManual ManualMode = 1
	ManualModeReport ManualMode = 2
	ManualModeNFC    ManualMode = 3
	ManualModeQR     ManualMode = 4
)

func (m ManualMode) String() string {
	switch m {
	case ManualModeGPS:
		return "gps"
	case ManualModeManual:
		return "manual"
	case ManualModeReport:
		return "report"
	case ManualModeNFC:
		return "nfc"
	case ManualModeQR:
		return "qr"
	default:
		return "unknown"
	}
}

// ParseManualMode converts the stored string form back into a mode,
// defaulting to GPS for anything unparseable.
func ParseManualMode(s string) ManualMode {
	switch s {
	case "1":
		return ManualModeManual
	case "2":
		return ManualModeReport
	case "3":
		return ManualModeNFC
	case "4":
		return ManualModeQR
	default:
		return ManualModeGPS
	}
}

// Session is the locally cached view of an authenticated backend session.
// It is an immutable value: every validation or successful check action
// replaces it wholesale, never patches single fields in place.
type Session struct {
	Token          string
	UserID         string
	UserName       string
	ManualMode     ManualMode
	CompanyLogoURL string

	// CheckedAddress is non-empty exactly while the last successful action
	// was a check-in. Advisory only; the backend owns the real check status.
	CheckedAddress string
}

// WithCheckedAddress returns a copy with the cached checked-address replaced.
func (s Session) WithCheckedAddress(addr string) Session {
	s.CheckedAddress = addr
	return s
}

// WithManualMode returns a copy with the manual mode replaced. Used when
// validation reports a fresher server-side value.
func (s Session) WithManualMode(m ManualMode) Session {
	s.ManualMode = m
	return s
}
