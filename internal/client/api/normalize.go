package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/common"
)

// The backend is loose about JSON types: identifiers arrive as strings or
// numbers, flags as bools, numbers or numeric strings, and optional fields
// as null, "" or simply absent. The flex* types below pin the coercion rules
// in one place: empty string, null and absent all normalize to "absent".

// flexString accepts a JSON string or number and stores it as a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number, a numeric string, "" or null. Absent, null
// and "" all leave Value nil.
type flexInt struct {
	Value *int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		f.Value = nil
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			f.Value = nil
			return nil
		}
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	f.Value = &n
	return nil
}

// flexBool accepts true/false, 0/1 and their string forms.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(strings.TrimSpace(string(data)), `"`) {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// resolveEnvelope is the raw shape shared by all four resolution endpoints.
type resolveEnvelope struct {
	Addresses []struct {
		PRID    flexString `json:"PRID"`
		Address string     `json:"Address"`
	} `json:"addresses"`
	Services []struct {
		RSPID   flexString `json:"RSPID"`
		Service string     `json:"Service"`
	} `json:"services"`
	Checkstatus flexInt `json:"Checkstatus"`
	CHID        flexInt `json:"CHID"`
}

// normalizeResolve turns a resolution body into a CheckContext. A body that
// is not JSON (PHP warnings, empty responses) yields an empty context rather
// than an error; the user sees a "no match" warning, never a crash.
func normalizeResolve(body []byte) *models.CheckContext {
	var env resolveEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &models.CheckContext{}
	}

	cc := &models.CheckContext{
		Status:        env.Checkstatus.Value,
		ActiveCheckID: env.CHID.Value,
	}
	for _, a := range env.Addresses {
		cc.Projects = append(cc.Projects, models.Project{ID: string(a.PRID), Label: a.Address})
	}
	for _, s := range env.Services {
		cc.Services = append(cc.Services, models.Service{ID: string(s.RSPID), Label: s.Service})
	}
	return cc
}

type submitEnvelope struct {
	Success flexBool   `json:"success"`
	Message flexString `json:"message"`
}

// normalizeSubmit parses a {success, message} action response. Unlike
// resolution, a malformed body here is an error: the caller cannot tell
// whether the action landed.
func normalizeSubmit(body []byte) (*SubmitResult, error) {
	var env submitEnvelope
	if err := json.Unmarshal(bytes.TrimSpace(body), &env); err != nil {
		return nil, fmt.Errorf("%w: unreadable response", common.ErrUnavailable)
	}
	return &SubmitResult{Succeeded: bool(env.Success), Message: string(env.Message)}, nil
}

// hourElement is one element of the display-hours array. The array mixes
// real rows (success:true), failure markers (success:false) and a totals
// side-channel element carrying only totalHours.
type hourElement struct {
	Success    flexBool   `json:"success"`
	TotalHours flexString `json:"totalHours"`
	OID        flexString `json:"OID"`
	ProjektNr  flexString `json:"ProjektNr"`
	Datum      flexString `json:"Datum"`
	Timmar     flexString `json:"Timmar"`
}

// normalizeHours absorbs the asymmetric display-hours shape: the total is
// taken from whichever element carries it, rows are the elements flagged
// success:true.
func normalizeHours(body []byte) (*models.HourReport, error) {
	var elems []hourElement
	if err := json.Unmarshal(bytes.TrimSpace(body), &elems); err != nil {
		return nil, fmt.Errorf("%w: unreadable response", common.ErrUnavailable)
	}

	report := &models.HourReport{TotalHours: "0.00"}
	for _, e := range elems {
		if e.TotalHours != "" {
			report.TotalHours = string(e.TotalHours)
		}
		if bool(e.Success) {
			report.Rows = append(report.Rows, models.HourRow{
				OID:       string(e.OID),
				ProjectNr: string(e.ProjektNr),
				Date:      string(e.Datum),
				Hours:     string(e.Timmar),
			})
		}
	}
	return report, nil
}

type loginEnvelope struct {
	Success     flexBool   `json:"success"`
	SessionID   flexString `json:"session_id"`
	UserID      flexString `json:"user_id"`
	Name        flexString `json:"name"`
	Manual      flexInt    `json:"manual"`
	CompanyLogo flexString `json:"company_logo"`
	Message     flexString `json:"message"`
}

func normalizeLogin(body []byte) (*LoginResult, error) {
	var env loginEnvelope
	if err := json.Unmarshal(bytes.TrimSpace(body), &env); err != nil {
		return nil, fmt.Errorf("%w: unreadable response", common.ErrUnavailable)
	}
	if !bool(env.Success) {
		if env.Message != "" {
			return nil, fmt.Errorf("%w: %s", common.ErrRejected, env.Message)
		}
		return nil, common.ErrRejected
	}

	res := &LoginResult{
		SessionID:   string(env.SessionID),
		UserID:      string(env.UserID),
		Name:        string(env.Name),
		CompanyLogo: string(env.CompanyLogo),
	}
	if env.Manual.Value != nil {
		res.ManualMode = models.ManualMode(*env.Manual.Value)
	}
	return res, nil
}

type validateEnvelope struct {
	Success flexBool   `json:"success"`
	UserID  flexString `json:"user_id"`
	Name    flexString `json:"name"`
	Manual  flexInt    `json:"manual"`
}

func normalizeValidate(body []byte) (*ValidateResult, error) {
	var env validateEnvelope
	if err := json.Unmarshal(bytes.TrimSpace(body), &env); err != nil {
		// An unreadable verification response means the session cannot be
		// trusted. Fail closed.
		return nil, common.ErrSessionInvalid
	}
	if !bool(env.Success) {
		return nil, common.ErrSessionInvalid
	}

	res := &ValidateResult{UserID: string(env.UserID), Name: string(env.Name)}
	if env.Manual.Value != nil {
		m := models.ManualMode(*env.Manual.Value)
		res.Manual = &m
	}
	return res, nil
}

// normalizeForgot accepts the two known shapes of the forgot-password
// endpoint: JSON {success, message} or a plaintext body containing "OK".
func normalizeForgot(body []byte) error {
	var env submitEnvelope
	if err := json.Unmarshal(bytes.TrimSpace(body), &env); err == nil {
		if bool(env.Success) {
			return nil
		}
		if env.Message != "" {
			return fmt.Errorf("%w: %s", common.ErrRejected, env.Message)
		}
		return common.ErrRejected
	}
	if strings.Contains(string(body), "OK") {
		return nil
	}
	return common.ErrRejected
}
