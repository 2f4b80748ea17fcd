package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/common"
	"github.com/rapportskollen/clockin/internal/logging"
)

// Endpoint paths, relative to the configured base URL.
const (
	pathLogin          = "mobile/login.php"
	pathSessionCheck   = "mobile/session_check.php"
	pathResolve        = "mobile/display_project_and_services.php"
	pathResolveNFC     = "mobile/check_add_tag.php"
	pathResolveQR      = "mobile/check_add_qr.php"
	pathCheckIn        = "mobile/checkin.php"
	pathCheckOut       = "mobile/checkout.php"
	pathReportLookup   = "mobile/report.php"
	pathReportHours    = "mobile/report_do.php"
	pathDisplayHours   = "mobile/display_hours.php"
	pathChangePass     = "mobile/change_pass.php"
	pathForgotPassword = "user/forget_do.php"
	pathPosition       = "gps/my_position_do.php"
)

// HTTPClient implements Client over form-encoded HTTP POST. The backend is a
// PHP application that identifies the caller both by the session_id form
// field and the PHPSESSID cookie, so authenticated requests carry both.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// postForm sends one form-encoded POST and returns the raw body. Any
// transport-level failure maps to common.ErrUnavailable; status codes are
// not inspected because the backend answers 200 even for business failures.
func (c *HTTPClient) postForm(ctx context.Context, path string, form url.Values, sessionToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: "PHPSESSID", Value: sessionToken})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "backend request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return body, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	body, err := c.postForm(ctx, pathLogin, form, "")
	if err != nil {
		return nil, err
	}
	return normalizeLogin(body)
}

func (c *HTTPClient) ValidateSession(ctx context.Context, creds Credentials) (*ValidateResult, error) {
	form := url.Values{}
	form.Set("session_id", creds.Token)
	if creds.UserID != "" {
		form.Set("rid", creds.UserID)
	}

	body, err := c.postForm(ctx, pathSessionCheck, form, creds.Token)
	if err != nil {
		return nil, err
	}
	return normalizeValidate(body)
}

func (c *HTTPClient) ResolveProjects(ctx context.Context, creds Credentials, paid models.ManualMode, signal models.LocationSignal) (*models.CheckContext, error) {
	form := url.Values{}
	form.Set("session_id", creds.Token)
	form.Set("rid", creds.UserID)

	var path string
	switch sig := signal.(type) {
	case models.GPSSignal:
		path = pathResolve
		form.Set("paid", strconv.Itoa(int(paid)))
		form.Set("address", sig.Street)
		form.Set("lat", strconv.FormatFloat(sig.Latitude, 'f', -1, 64))
		form.Set("lon", strconv.FormatFloat(sig.Longitude, 'f', -1, 64))
	case models.ManualSignal:
		path = pathResolve
		form.Set("paid", strconv.Itoa(int(paid)))
		form.Set("address", sig.Address)
	case models.NFCSignal:
		path = pathResolveNFC
		form.Set("token", sig.Token)
	case models.QRSignal:
		path = pathResolveQR
		form.Set("token", sig.Token)
	default:
		return nil, fmt.Errorf("unknown location signal %T", signal)
	}

	body, err := c.postForm(ctx, path, form, creds.Token)
	if err != nil {
		return nil, err
	}
	return normalizeResolve(body), nil
}

func (c *HTTPClient) CheckIn(ctx context.Context, creds Credentials, projectID, serviceID string, chid *int) (*SubmitResult, error) {
	form := url.Values{}
	form.Set("session_id", creds.Token)
	form.Set("rid", creds.UserID)
	form.Set("PRID", projectID)
	form.Set("RSPID", serviceID)
	if chid != nil {
		form.Set("CHID", strconv.Itoa(*chid))
	}

	body, err := c.postForm(ctx, pathCheckIn, form, creds.Token)
	if err != nil {
		return nil, err
	}
	return normalizeSubmit(body)
}

func (c *HTTPClient) CheckOut(ctx context.Context, creds Credentials, projectID string, chid *int) (*SubmitResult, error) {
	form := url.Values{}
	form.Set("session_id", creds.Token)
	form.Set("rid", creds.UserID)
	form.Set("PRID", projectID)
	if chid != nil {
		form.Set("CHID", strconv.Itoa(*chid))
	}

	body, err := c.postForm(ctx, pathCheckOut, form, creds.Token)
	if err != nil {
		return nil, err
	}
	return normalizeSubmit(body)
}

func (c *HTTPClient) LookupReportTargets(ctx context.Context, creds Credentials, address string) (*models.CheckContext, error) {
	form := url.Values{}
	form.Set("session_id", creds.Token)
	form.Set("rid", creds.UserID)
	form.Set("address", address)

	body, err := c.postForm(ctx, pathReportLookup, form, creds.Token)
	if err != nil {
		return nil, err
	}
	return normalizeResolve(body), nil
}

func (c *HTTPClient) ReportHours(ctx context.Context, creds Credentials, entry models.HoursEntry) (*SubmitResult, error) {
	form := url.Values{}
	form.Set("session_id", creds.Token)
	form.Set("rid", creds.UserID)
	form.Set("PRID", entry.ProjectID)
	form.Set("RSPID", entry.ServiceID)
	form.Set("WTID", entry.WorkTypeID)
	form.Set("SDate", entry.Date)
	form.Set("Hours", entry.HoursOfDay)

	body, err := c.postForm(ctx, pathReportHours, form, creds.Token)
	if err != nil {
		return nil, err
	}
	return normalizeSubmit(body)
}

func (c *HTTPClient) FetchHours(ctx context.Context, creds Credentials, q HoursQuery) (*models.HourReport, error) {
	form := url.Values{}
	form.Set("session_id", creds.Token)
	form.Set("rid", creds.UserID)
	if q.DateFrom != "" {
		form.Set("dateS", q.DateFrom)
	}
	if q.DateTo != "" {
		form.Set("dateE", q.DateTo)
	}
	if q.Paid {
		form.Set("is_paid", "1")
	} else {
		form.Set("paid", strconv.Itoa(int(q.Mode)))
		form.Set("is_paid", "0")
	}

	body, err := c.postForm(ctx, pathDisplayHours, form, creds.Token)
	if err != nil {
		return nil, err
	}
	return normalizeHours(body)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, creds Credentials, oldPassword, newPassword string) (*SubmitResult, error) {
	form := url.Values{}
	form.Set("old_password", oldPassword)
	form.Set("new_password", newPassword)

	body, err := c.postForm(ctx, pathChangePass, form, creds.Token)
	if err != nil {
		return nil, err
	}
	return normalizeSubmit(body)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	form := url.Values{}
	form.Set("mail", email)

	body, err := c.postForm(ctx, pathForgotPassword, form, "")
	if err != nil {
		return err
	}
	return normalizeForgot(body)
}

func (c *HTTPClient) ReportPosition(ctx context.Context, creds Credentials, address string, lat, lon float64) error {
	form := url.Values{}
	form.Set("session_id", creds.Token)
	form.Set("rid", creds.UserID)
	form.Set("add", address)
	form.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	form.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	_, err := c.postForm(ctx, pathPosition, form, creds.Token)
	return err
}

var _ Client = (*HTTPClient)(nil)
