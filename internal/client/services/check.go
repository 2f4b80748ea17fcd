package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/rapportskollen/clockin/internal/client/api"
	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/client/repositories/localstore"
	"github.com/rapportskollen/clockin/internal/common"
	"github.com/rapportskollen/clockin/internal/logging"
)

// CheckService drives the check-in/check-out flow: resolving a location
// signal into selectable projects and services, then submitting the check.
type CheckService interface {
	// Resolve asks the backend which projects and services match the
	// signal. ErrNoMatch is returned when nothing matched.
	Resolve(ctx context.Context, signal models.LocationSignal) (*models.CheckContext, error)

	// Submit performs the check the resolved context calls for. A check-in
	// requires a service selection; a check-out ignores it. Only one
	// submission may be in flight, a second concurrent call fails with
	// ErrBusy. Returns the backend's confirmation message.
	Submit(ctx context.Context, cc *models.CheckContext, projectID, serviceID string) (string, error)

	// CheckedAddress reports the label of the site the user is currently
	// checked in at, empty when checked out.
	CheckedAddress(ctx context.Context) (string, error)
}

type checkService struct {
	client api.Client
	db     *sql.DB
	log    logging.Logger

	busy atomic.Bool
}

func NewCheckService(client api.Client, db *sql.DB, log logging.Logger) CheckService {
	return &checkService{client: client, db: db, log: log}
}

func (s *checkService) repo() localstore.Repository {
	return localstore.NewSQLiteRepository(s.db)
}

func (s *checkService) Resolve(ctx context.Context, signal models.LocationSignal) (*models.CheckContext, error) {
	repo := s.repo()
	creds, err := credentials(ctx, repo)
	if err != nil {
		return nil, err
	}

	mode, err := manualMode(ctx, repo)
	if err != nil {
		return nil, err
	}

	cc, err := s.client.ResolveProjects(ctx, creds, mode, signal)
	if err != nil {
		return nil, err
	}
	if cc.Empty() {
		return nil, common.ErrNoMatch
	}
	return cc, nil
}

func (s *checkService) Submit(ctx context.Context, cc *models.CheckContext, projectID, serviceID string) (string, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return "", common.ErrBusy
	}
	defer s.busy.Store(false)

	repo := s.repo()
	creds, err := credentials(ctx, repo)
	if err != nil {
		return "", err
	}

	if cc.CheckingIn() {
		if serviceID == "" {
			return "", fmt.Errorf("%w: a service must be selected to check in", common.ErrValidation)
		}

		res, err := s.client.CheckIn(ctx, creds, projectID, serviceID, cc.ActiveCheckID)
		if err != nil {
			return "", err
		}
		if !res.Succeeded {
			return "", fmt.Errorf("%w: %s", common.ErrRejected, res.Message)
		}

		// Remember the site label so the UI can show where the user is
		// checked in. Left untouched when the backend rejected the check.
		if label := cc.ProjectLabel(projectID); label != "" {
			if err := repo.Set(ctx, localstore.KeyCheckedAddress, label); err != nil {
				return "", err
			}
		}
		return res.Message, nil
	}

	res, err := s.client.CheckOut(ctx, creds, projectID, cc.ActiveCheckID)
	if err != nil {
		return "", err
	}
	if !res.Succeeded {
		return "", fmt.Errorf("%w: %s", common.ErrRejected, res.Message)
	}
	if err := repo.Delete(ctx, localstore.KeyCheckedAddress); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (s *checkService) CheckedAddress(ctx context.Context) (string, error) {
	return s.repo().Get(ctx, localstore.KeyCheckedAddress)
}

func manualMode(ctx context.Context, repo localstore.Repository) (models.ManualMode, error) {
	raw, err := repo.Get(ctx, localstore.KeyManualMode)
	if err != nil {
		return models.ManualModeGPS, err
	}
	return models.ParseManualMode(raw), nil
}
