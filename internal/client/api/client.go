// Package api talks to the remote time-tracking backend. All endpoints are
// form-encoded HTTP POSTs returning loosely-typed JSON; this package owns the
// transport and the normalization of those responses into the model types,
// so the service layer only ever sees strongly-typed results.
package api

import (
	"context"

	"github.com/rapportskollen/clockin/internal/client/models"
)

// Credentials identify an authenticated session on every backend call.
type Credentials struct {
	Token  string // opaque session id, also sent as the PHPSESSID cookie
	UserID string // the "rid" request field
}

// LoginResult is the normalized mobile/login.php response.
type LoginResult struct {
	SessionID   string
	UserID      string
	Name        string
	ManualMode  models.ManualMode
	CompanyLogo string
}

// ValidateResult is the normalized mobile/session_check.php response for a
// live session. Manual is nil when the server omitted the field.
type ValidateResult struct {
	UserID string
	Name   string
	Manual *models.ManualMode
}

// SubmitResult is the normalized {success, message} response shared by the
// check-in/out, report and change-password endpoints.
type SubmitResult struct {
	Succeeded bool
	Message   string
}

// HoursQuery narrows a display-hours call. DateFrom/DateTo are SDate-format
// strings ("2006-01-02"); empty means no range. Paid selects the paid table;
// a regular fetch also reports the account's check-in mode as the paid form
// field, which the backend expects alongside is_paid=0.
type HoursQuery struct {
	DateFrom string
	DateTo   string
	Paid     bool
	Mode     models.ManualMode
}

// Client is the backend surface the services depend on. The concrete
// implementation is HTTPClient; tests substitute fakes.
type Client interface {
	// Login exchanges credentials for a session. A success:false answer is
	// reported as common.ErrRejected carrying the server message.
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	// ValidateSession confirms the session is still live and returns the
	// refreshed user attributes. A dead session is common.ErrSessionInvalid;
	// transport failures are common.ErrUnavailable (the caller fails closed
	// either way).
	ValidateSession(ctx context.Context, creds Credentials) (*ValidateResult, error)

	// ResolveProjects maps a location signal to candidate projects/services
	// and the current check state. Malformed bodies yield an empty context,
	// not an error; only transport failures are errors.
	ResolveProjects(ctx context.Context, creds Credentials, paid models.ManualMode, signal models.LocationSignal) (*models.CheckContext, error)

	// CheckIn submits a check-in for the given project and service. chid is
	// included only when non-nil.
	CheckIn(ctx context.Context, creds Credentials, projectID, serviceID string, chid *int) (*SubmitResult, error)

	// CheckOut closes the open check-in on the given project.
	CheckOut(ctx context.Context, creds Credentials, projectID string, chid *int) (*SubmitResult, error)

	// LookupReportTargets fetches the projects/services available for a
	// manual hours report matching the given address text.
	LookupReportTargets(ctx context.Context, creds Credentials, address string) (*models.CheckContext, error)

	// ReportHours submits a manual hours entry.
	ReportHours(ctx context.Context, creds Credentials, entry models.HoursEntry) (*SubmitResult, error)

	// FetchHours retrieves reported/historical hour rows plus the total.
	FetchHours(ctx context.Context, creds Credentials, q HoursQuery) (*models.HourReport, error)

	// ChangePassword replaces the account password.
	ChangePassword(ctx context.Context, creds Credentials, oldPassword, newPassword string) (*SubmitResult, error)

	// ForgotPassword triggers the reset mail. The endpoint answers either
	// JSON or plaintext containing "OK"; both count as success.
	ForgotPassword(ctx context.Context, email string) error

	// ReportPosition sends the user's current coordinates. Fire and forget:
	// any transport-level success counts as delivered.
	ReportPosition(ctx context.Context, creds Credentials, address string, lat, lon float64) error
}
