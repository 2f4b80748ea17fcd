package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rapportskollen/clockin/internal/client/api"
	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/client/repositories/localstore"
	"github.com/rapportskollen/clockin/internal/common"
	"github.com/rapportskollen/clockin/internal/logging"
)

// HoursService covers manual hours reporting and the hour tables.
type HoursService interface {
	// LookupTargets finds the projects and services an hours report may
	// target, matched by free-text address. ErrNoMatch when nothing matched.
	LookupTargets(ctx context.Context, address string) (*models.CheckContext, error)

	// Report submits a manual hours entry. Incomplete entries fail with
	// ErrValidation before any network call.
	Report(ctx context.Context, entry models.HoursEntry) (string, error)

	// Fetch retrieves the hour rows and total for the query.
	Fetch(ctx context.Context, q api.HoursQuery) (*models.HourReport, error)
}

type hoursService struct {
	client   api.Client
	db       *sql.DB
	log      logging.Logger
	validate *validator.Validate
}

func NewHoursService(client api.Client, db *sql.DB, log logging.Logger) HoursService {
	return &hoursService{
		client:   client,
		db:       db,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *hoursService) repo() localstore.Repository {
	return localstore.NewSQLiteRepository(s.db)
}

func (s *hoursService) LookupTargets(ctx context.Context, address string) (*models.CheckContext, error) {
	creds, err := credentials(ctx, s.repo())
	if err != nil {
		return nil, err
	}

	cc, err := s.client.LookupReportTargets(ctx, creds, address)
	if err != nil {
		return nil, err
	}
	if cc.Empty() {
		return nil, common.ErrNoMatch
	}
	return cc, nil
}

func (s *hoursService) Report(ctx context.Context, entry models.HoursEntry) (string, error) {
	if err := s.validate.Struct(entry); err != nil {
		return "", fmt.Errorf("%w: %s", common.ErrValidation, err)
	}

	creds, err := credentials(ctx, s.repo())
	if err != nil {
		return "", err
	}

	res, err := s.client.ReportHours(ctx, creds, entry)
	if err != nil {
		return "", err
	}
	if !res.Succeeded {
		return "", fmt.Errorf("%w: %s", common.ErrRejected, res.Message)
	}
	return res.Message, nil
}

func (s *hoursService) Fetch(ctx context.Context, q api.HoursQuery) (*models.HourReport, error) {
	repo := s.repo()
	creds, err := credentials(ctx, repo)
	if err != nil {
		return nil, err
	}

	// The backend wants the account's check-in mode alongside a regular
	// fetch.
	q.Mode, err = manualMode(ctx, repo)
	if err != nil {
		return nil, err
	}
	return s.client.FetchHours(ctx, creds, q)
}
