package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rapportskollen/clockin/internal/client/api"
	"github.com/rapportskollen/clockin/internal/client/geocode"
	"github.com/rapportskollen/clockin/internal/client/repositories/localstore"
	"github.com/rapportskollen/clockin/internal/common"
	"github.com/rapportskollen/clockin/internal/logging"
)

// ProfileService handles the account-level odds and ends: password change,
// background position reporting and the locally stored avatar path.
type ProfileService interface {
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) (string, error)

	// ReportPosition reverse-geocodes the coordinates and reports the
	// resulting address together with the raw position to the backend.
	// Geocoding failures are not fatal; the coordinates go out regardless.
	ReportPosition(ctx context.Context, lat, lon float64) error

	AvatarPath(ctx context.Context) (string, error)
	SetAvatarPath(ctx context.Context, path string) error
}

type profileService struct {
	client   api.Client
	geocoder *geocode.Client
	db       *sql.DB
	log      logging.Logger
}

func NewProfileService(client api.Client, geocoder *geocode.Client, db *sql.DB, log logging.Logger) ProfileService {
	return &profileService{client: client, geocoder: geocoder, db: db, log: log}
}

func (s *profileService) repo() localstore.Repository {
	return localstore.NewSQLiteRepository(s.db)
}

func (s *profileService) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) (string, error) {
	if len(newPassword) == 0 {
		return "", fmt.Errorf("%w: new password must not be empty", common.ErrValidation)
	}

	creds, err := credentials(ctx, s.repo())
	if err != nil {
		return "", err
	}

	res, err := s.client.ChangePassword(ctx, creds, string(oldPassword), string(newPassword))
	if err != nil {
		return "", err
	}
	if !res.Succeeded {
		return "", fmt.Errorf("%w: %s", common.ErrRejected, res.Message)
	}
	return res.Message, nil
}

func (s *profileService) ReportPosition(ctx context.Context, lat, lon float64) error {
	creds, err := credentials(ctx, s.repo())
	if err != nil {
		return err
	}

	address := ""
	if s.geocoder != nil {
		place, err := s.geocoder.Reverse(ctx, lat, lon)
		if err != nil {
			s.log.Warn(ctx, "reverse geocoding failed", "error", err)
		} else {
			address = place.DisplayName
		}
	}

	return s.client.ReportPosition(ctx, creds, address, lat, lon)
}

func (s *profileService) AvatarPath(ctx context.Context) (string, error) {
	return s.repo().Get(ctx, localstore.KeyAvatarPath)
}

func (s *profileService) SetAvatarPath(ctx context.Context, path string) error {
	return s.repo().Set(ctx, localstore.KeyAvatarPath, path)
}
