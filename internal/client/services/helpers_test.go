package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rapportskollen/clockin/internal/client/api"
	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/client/repositories/localstore"
	"github.com/rapportskollen/clockin/internal/logging"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

var dbSeq atomic.Int64

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE localstore (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func setKey(t *testing.T, db *sql.DB, k, v string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO localstore(key,value) VALUES(?,?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value`, k, v)
	require.NoError(t, err)
}

func getKey(t *testing.T, db *sql.DB, k string) string {
	t.Helper()
	var v string
	err := db.QueryRow(`SELECT value FROM localstore WHERE key=?`, k).Scan(&v)
	if err == sql.ErrNoRows {
		return ""
	}
	require.NoError(t, err)
	return v
}

func seedSession(t *testing.T, db *sql.DB) {
	t.Helper()
	setKey(t, db, localstore.KeySessionToken, "tok-1")
	setKey(t, db, localstore.KeyUserID, "42")
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ---- fake client ----

// fakeClient implements api.Client for unit tests. Result fields configure
// the response per method; Last* fields capture the arguments of the most
// recent call. Fn hooks, when set, take precedence over the result fields.
type fakeClient struct {
	LoginRet          *api.LoginResult
	LoginErr          error
	LastLoginUser     string
	LastLoginPassword string

	ValidateRet   *api.ValidateResult
	ValidateErr   error
	ValidateCalls atomic.Int64
	ValidateFn    func(ctx context.Context, creds api.Credentials) (*api.ValidateResult, error)

	ResolveRet        *models.CheckContext
	ResolveErr        error
	LastResolveCreds  api.Credentials
	LastResolvePaid   models.ManualMode
	LastResolveSignal models.LocationSignal

	CheckInRet         *api.SubmitResult
	CheckInErr         error
	CheckInFn          func() (*api.SubmitResult, error)
	LastCheckInProject string
	LastCheckInService string
	LastCheckInCHID    *int

	CheckOutRet         *api.SubmitResult
	CheckOutErr         error
	LastCheckOutProject string
	LastCheckOutCHID    *int

	LookupRet         *models.CheckContext
	LookupErr         error
	LastLookupAddress string

	ReportRet       *api.SubmitResult
	ReportErr       error
	LastReportEntry models.HoursEntry

	FetchRet       *models.HourReport
	FetchErr       error
	LastFetchQuery api.HoursQuery

	ChangePassRet *api.SubmitResult
	ChangePassErr error
	LastChangeOld string
	LastChangeNew string

	ForgotErr       error
	LastForgotEmail string

	PositionErr         error
	LastPositionAddress string
	LastPositionLat     float64
	LastPositionLon     float64
}

var _ api.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(ctx context.Context, username, password string) (*api.LoginResult, error) {
	f.LastLoginUser, f.LastLoginPassword = username, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) ValidateSession(ctx context.Context, creds api.Credentials) (*api.ValidateResult, error) {
	f.ValidateCalls.Add(1)
	if f.ValidateFn != nil {
		return f.ValidateFn(ctx, creds)
	}
	return f.ValidateRet, f.ValidateErr
}

func (f *fakeClient) ResolveProjects(ctx context.Context, creds api.Credentials, paid models.ManualMode, signal models.LocationSignal) (*models.CheckContext, error) {
	f.LastResolveCreds, f.LastResolvePaid, f.LastResolveSignal = creds, paid, signal
	return f.ResolveRet, f.ResolveErr
}

func (f *fakeClient) CheckIn(ctx context.Context, creds api.Credentials, projectID, serviceID string, chid *int) (*api.SubmitResult, error) {
	f.LastCheckInProject, f.LastCheckInService, f.LastCheckInCHID = projectID, serviceID, chid
	if f.CheckInFn != nil {
		return f.CheckInFn()
	}
	return f.CheckInRet, f.CheckInErr
}

func (f *fakeClient) CheckOut(ctx context.Context, creds api.Credentials, projectID string, chid *int) (*api.SubmitResult, error) {
	f.LastCheckOutProject, f.LastCheckOutCHID = projectID, chid
	return f.CheckOutRet, f.CheckOutErr
}

func (f *fakeClient) LookupReportTargets(ctx context.Context, creds api.Credentials, address string) (*models.CheckContext, error) {
	f.LastLookupAddress = address
	return f.LookupRet, f.LookupErr
}

func (f *fakeClient) ReportHours(ctx context.Context, creds api.Credentials, entry models.HoursEntry) (*api.SubmitResult, error) {
	f.LastReportEntry = entry
	return f.ReportRet, f.ReportErr
}

func (f *fakeClient) FetchHours(ctx context.Context, creds api.Credentials, q api.HoursQuery) (*models.HourReport, error) {
	f.LastFetchQuery = q
	return f.FetchRet, f.FetchErr
}

func (f *fakeClient) ChangePassword(ctx context.Context, creds api.Credentials, oldPassword, newPassword string) (*api.SubmitResult, error) {
	f.LastChangeOld, f.LastChangeNew = oldPassword, newPassword
	return f.ChangePassRet, f.ChangePassErr
}

func (f *fakeClient) ForgotPassword(ctx context.Context, email string) error {
	f.LastForgotEmail = email
	return f.ForgotErr
}

func (f *fakeClient) ReportPosition(ctx context.Context, creds api.Credentials, address string, lat, lon float64) error {
	f.LastPositionAddress, f.LastPositionLat, f.LastPositionLon = address, lat, lon
	return f.PositionErr
}
