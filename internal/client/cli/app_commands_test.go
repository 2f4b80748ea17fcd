package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rapportskollen/clockin/internal/client/api"
	"github.com/rapportskollen/clockin/internal/client/geocode"
	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/common"
)

// ---- fake services ----

type fakeSessionSvc struct {
	SavedEmail    string
	SavedPassword []byte

	LoginRet          *models.Session
	LoginErr          error
	LastLoginEmail    string
	LastLoginPassword string

	ValidateRet *models.Session
	ValidateErr error

	LoggedOut   bool
	ForgotEmail string
}

func (f *fakeSessionSvc) Restore(ctx context.Context) (*models.Session, error) {
	return f.ValidateRet, nil
}
func (f *fakeSessionSvc) Validate(ctx context.Context) (*models.Session, error) {
	return f.ValidateRet, f.ValidateErr
}
func (f *fakeSessionSvc) Login(ctx context.Context, email string, password []byte) (*models.Session, error) {
	f.LastLoginEmail, f.LastLoginPassword = email, string(password)
	return f.LoginRet, f.LoginErr
}
func (f *fakeSessionSvc) Logout(ctx context.Context) error {
	f.LoggedOut = true
	return nil
}
func (f *fakeSessionSvc) ForgotPassword(ctx context.Context, email string) error {
	f.ForgotEmail = email
	return nil
}
func (f *fakeSessionSvc) SavedLogin(ctx context.Context) (string, []byte, error) {
	return f.SavedEmail, f.SavedPassword, nil
}

type fakeCheckSvc struct {
	ResolveRet *models.CheckContext
	ResolveErr error
	LastSignal models.LocationSignal

	SubmitMsg         string
	SubmitErr         error
	LastSubmitProject string
	LastSubmitService string

	Address string
}

func (f *fakeCheckSvc) Resolve(ctx context.Context, signal models.LocationSignal) (*models.CheckContext, error) {
	f.LastSignal = signal
	return f.ResolveRet, f.ResolveErr
}
func (f *fakeCheckSvc) Submit(ctx context.Context, cc *models.CheckContext, projectID, serviceID string) (string, error) {
	f.LastSubmitProject, f.LastSubmitService = projectID, serviceID
	return f.SubmitMsg, f.SubmitErr
}
func (f *fakeCheckSvc) CheckedAddress(ctx context.Context) (string, error) {
	return f.Address, nil
}

type fakeHoursSvc struct {
	LookupRet *models.CheckContext
	LookupErr error

	ReportMsg string
	ReportErr error
	LastEntry models.HoursEntry

	FetchRet  *models.HourReport
	FetchErr  error
	LastQuery api.HoursQuery
}

func (f *fakeHoursSvc) LookupTargets(ctx context.Context, address string) (*models.CheckContext, error) {
	return f.LookupRet, f.LookupErr
}
func (f *fakeHoursSvc) Report(ctx context.Context, entry models.HoursEntry) (string, error) {
	f.LastEntry = entry
	return f.ReportMsg, f.ReportErr
}
func (f *fakeHoursSvc) Fetch(ctx context.Context, q api.HoursQuery) (*models.HourReport, error) {
	f.LastQuery = q
	return f.FetchRet, f.FetchErr
}

type fakeProfileSvc struct {
	ChangeMsg string
	ChangeErr error
	LastOld   string
	LastNew   string

	PositionErr error
	LastLat     float64
	LastLon     float64
}

func (f *fakeProfileSvc) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) (string, error) {
	f.LastOld, f.LastNew = string(oldPassword), string(newPassword)
	return f.ChangeMsg, f.ChangeErr
}
func (f *fakeProfileSvc) ReportPosition(ctx context.Context, lat, lon float64) error {
	f.LastLat, f.LastLon = lat, lon
	return f.PositionErr
}
func (f *fakeProfileSvc) AvatarPath(ctx context.Context) (string, error)       { return "", nil }
func (f *fakeProfileSvc) SetAvatarPath(ctx context.Context, path string) error { return nil }

// ---- helpers ----

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(args...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func stubPassword(t *testing.T, passwords ...[]byte) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(w io.Writer, prompt string) ([]byte, error) {
		if i >= len(passwords) {
			return nil, nil
		}
		pw := append([]byte(nil), passwords[i]...)
		i++
		return pw, nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func newTestApp(input string) (*App, *fakeSessionSvc, *fakeCheckSvc, *fakeHoursSvc, *fakeProfileSvc) {
	session := &fakeSessionSvc{}
	check := &fakeCheckSvc{}
	hours := &fakeHoursSvc{}
	profile := &fakeProfileSvc{}
	app := &App{
		sessionService: session,
		checkService:   check,
		hoursService:   hours,
		profileService: profile,
		reader:         bufio.NewReader(strings.NewReader(input)),
	}
	return app, session, check, hours, profile
}

func testContext() *models.CheckContext {
	return &models.CheckContext{
		Projects: []models.Project{{ID: "11", Label: "Storgatan 1"}, {ID: "12", Label: "Lillgatan 2"}},
		Services: []models.Service{{ID: "5", Label: "Bygg"}},
	}
}

// ---- tests ----

func TestAppLogin_Success(t *testing.T) {
	captureOutput(t)
	stubPassword(t, []byte("secret"))

	app, session, _, _, _ := newTestApp("anna@example.com\n")
	session.LoginRet = &models.Session{UserName: "Anna", ManualMode: models.ManualModeManual}

	require.NoError(t, app.Login(context.Background()))
	require.Equal(t, "anna@example.com", session.LastLoginEmail)
	require.Equal(t, "secret", session.LastLoginPassword)
	require.True(t, app.isLoggedIn())
	require.Equal(t, models.ManualModeManual, app.manualMode())
}

func TestAppLogin_EmptyPasswordUsesSaved(t *testing.T) {
	captureOutput(t)
	stubPassword(t, nil)

	app, session, _, _, _ := newTestApp("\n")
	session.SavedEmail = "anna@example.com"
	session.SavedPassword = []byte("saved")
	session.LoginRet = &models.Session{UserName: "Anna"}

	require.NoError(t, app.Login(context.Background()))
	require.Equal(t, "anna@example.com", session.LastLoginEmail)
	require.Equal(t, "saved", session.LastLoginPassword)
}

func TestAppLogin_Rejected(t *testing.T) {
	out := captureOutput(t)
	stubPassword(t, []byte("nope"))

	app, session, _, _, _ := newTestApp("anna@example.com\n")
	session.LoginErr = fmt.Errorf("%w: fel lösenord", common.ErrRejected)

	require.Error(t, app.Login(context.Background()))
	require.False(t, app.isLoggedIn())
	require.Contains(t, strings.Join(*out, ""), "fel lösenord")
}

func TestAppForgot(t *testing.T) {
	captureOutput(t)

	app, session, _, _, _ := newTestApp("anna@example.com\n")
	require.NoError(t, app.Forgot(context.Background()))
	require.Equal(t, "anna@example.com", session.ForgotEmail)
}

func TestAppLogout(t *testing.T) {
	captureOutput(t)

	app, session, _, _, _ := newTestApp("")
	app.session = &models.Session{UserName: "Anna"}

	require.NoError(t, app.Logout(context.Background()))
	require.True(t, session.LoggedOut)
	require.False(t, app.isLoggedIn())
}

func TestAppStatus_Expired(t *testing.T) {
	captureOutput(t)

	app, session, _, _, _ := newTestApp("")
	app.session = &models.Session{UserName: "Anna"}
	session.ValidateErr = common.ErrSessionInvalid

	require.Error(t, app.Status(context.Background()))
	require.False(t, app.isLoggedIn())
}

func TestAppCheck_GPSFlow(t *testing.T) {
	out := captureOutput(t)

	// latitude, longitude, street (no geocoder configured), project
	// choice; the single service is picked automatically.
	app, _, check, _, _ := newTestApp("59.33\n18.06\nStorgatan\n2\n")
	app.session = &models.Session{UserName: "Anna", ManualMode: models.ManualModeGPS}
	check.ResolveRet = testContext()
	check.SubmitMsg = "Välkommen"

	require.NoError(t, app.Check(context.Background()))

	signal, ok := check.LastSignal.(models.GPSSignal)
	require.True(t, ok)
	require.Equal(t, "Storgatan", signal.Street)
	require.Equal(t, 59.33, signal.Latitude)
	require.Equal(t, 18.06, signal.Longitude)

	require.Equal(t, "12", check.LastSubmitProject)
	require.Equal(t, "5", check.LastSubmitService)
	require.Contains(t, strings.Join(*out, ""), "Välkommen")
}

func TestAppCheck_GPSFlowGeocodesStreet(t *testing.T) {
	captureOutput(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"display_name":"Storgatan 1, Stockholm","address":{"road":"Storgatan"}}`)
	}))
	t.Cleanup(srv.Close)

	// latitude, longitude, project choice; the street comes from the
	// geocoder.
	app, _, check, _, _ := newTestApp("59.33\n18.06\n2\n")
	app.session = &models.Session{ManualMode: models.ManualModeGPS}
	app.geocoder = geocode.NewClient(srv.URL, "clockin-test", time.Second)
	check.ResolveRet = testContext()

	require.NoError(t, app.Check(context.Background()))

	signal, ok := check.LastSignal.(models.GPSSignal)
	require.True(t, ok)
	require.Equal(t, "Storgatan", signal.Street)
}

func TestAppRefresh_ExpiredDropsSession(t *testing.T) {
	captureOutput(t)

	app, session, _, _, _ := newTestApp("")
	app.session = &models.Session{UserName: "Anna"}
	session.ValidateErr = common.ErrSessionInvalid

	app.refresh(context.Background())
	require.False(t, app.isLoggedIn())
}

func TestAppCheck_NFCFlow(t *testing.T) {
	captureOutput(t)

	app, _, check, _, _ := newTestApp("ABC123\n1\n")
	app.session = &models.Session{ManualMode: models.ManualModeNFC}
	check.ResolveRet = testContext()

	require.NoError(t, app.Check(context.Background()))

	signal, ok := check.LastSignal.(models.NFCSignal)
	require.True(t, ok)
	require.Equal(t, "ABC123", signal.Token)
}

func TestAppCheck_CheckOutSkipsServiceChoice(t *testing.T) {
	captureOutput(t)

	cc := testContext()
	status := models.CheckStatusIn
	cc.Status = &status

	// address, project choice; no service prompt on check-out.
	app, _, check, _, _ := newTestApp("Storgatan 1\n1\n")
	app.session = &models.Session{ManualMode: models.ManualModeManual}
	check.ResolveRet = cc

	require.NoError(t, app.Check(context.Background()))
	require.Equal(t, "11", check.LastSubmitProject)
	require.Empty(t, check.LastSubmitService)
}

func TestAppCheck_NoMatch(t *testing.T) {
	out := captureOutput(t)

	app, _, check, _, _ := newTestApp("nowhere\n")
	app.session = &models.Session{ManualMode: models.ManualModeManual}
	check.ResolveErr = common.ErrNoMatch

	require.Error(t, app.Check(context.Background()))
	require.Contains(t, strings.Join(*out, ""), "No work site matched")
}

func TestAppReport_Flow(t *testing.T) {
	captureOutput(t)

	// address, project choice, work type, date, hours; the single service
	// is picked automatically.
	app, _, _, hours, _ := newTestApp("Storgatan\n1\n2\n2025-03-14\n7.5\n")
	app.session = &models.Session{ManualMode: models.ManualModeReport}
	hours.LookupRet = testContext()
	hours.ReportMsg = "Sparad"

	require.NoError(t, app.Report(context.Background()))
	require.Equal(t, models.HoursEntry{
		ProjectID:  "11",
		ServiceID:  "5",
		WorkTypeID: "2",
		Date:       "2025-03-14",
		HoursOfDay: "7.5",
	}, hours.LastEntry)
}

func TestAppHours_DefaultsToOpenRange(t *testing.T) {
	out := captureOutput(t)

	app, _, _, hours, _ := newTestApp("\n\n")
	app.session = &models.Session{UserName: "Anna"}
	hours.FetchRet = &models.HourReport{
		Rows:       []models.HourRow{{OID: "Bygget", ProjectNr: "11", Date: "2025-03-14", Hours: "7.5"}},
		TotalHours: "7.5",
	}

	require.NoError(t, app.Hours(context.Background(), true))
	require.Equal(t, api.HoursQuery{DateFrom: "", DateTo: "", Paid: true}, hours.LastQuery)
	require.Contains(t, strings.Join(*out, ""), "Bygget")
	require.Contains(t, strings.Join(*out, ""), "Total")
}

func TestAppChangePassword(t *testing.T) {
	captureOutput(t)
	stubPassword(t, []byte("old"), []byte("new"), []byte("new"))

	app, _, _, _, profile := newTestApp("")
	require.NoError(t, app.ChangePassword(context.Background()))
	require.Equal(t, "old", profile.LastOld)
	require.Equal(t, "new", profile.LastNew)
}

func TestAppChangePassword_Mismatch(t *testing.T) {
	captureOutput(t)
	stubPassword(t, []byte("old"), []byte("new"), []byte("other"))

	app, _, _, _, profile := newTestApp("")
	require.ErrorIs(t, app.ChangePassword(context.Background()), common.ErrValidation)
	require.Empty(t, profile.LastNew)
}

func TestAppPosition(t *testing.T) {
	captureOutput(t)

	app, _, _, _, profile := newTestApp("59.33\n18.06\n")
	require.NoError(t, app.Position(context.Background()))
	require.Equal(t, 59.33, profile.LastLat)
	require.Equal(t, 18.06, profile.LastLon)
}

func TestFormatHourReport_Empty(t *testing.T) {
	require.Equal(t, "No hours found", formatHourReport(&models.HourReport{TotalHours: "0.00"}))
}
