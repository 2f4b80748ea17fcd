// Package services contains the application services behind the CLI: session
// lifecycle, check-in/out flow, hours reporting and profile housekeeping.
// Each service pairs the backend api.Client with the local store and exposes
// the strongly-typed operations the command layer works with.
package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/rapportskollen/clockin/internal/client/api"
	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/client/repositories/localstore"
	"github.com/rapportskollen/clockin/internal/common"
	"github.com/rapportskollen/clockin/internal/cryptox"
	"github.com/rapportskollen/clockin/internal/dbx"
	"github.com/rapportskollen/clockin/internal/logging"
)

// SessionService owns the cached session: restore, round-trip validation,
// login/logout and the saved autofill credentials.
//
// Contract:
//   - Restore: read the persisted session; nil when no token is stored.
//   - Validate: confirm liveness with the backend and refresh cached
//     attributes. A rejected session wipes all session keys; a transport
//     failure fails closed (reported invalid, nothing wiped).
//   - Login/Logout: create and destroy the persisted session.
//
// All methods honor context cancellation.
type SessionService interface {
	Restore(ctx context.Context) (*models.Session, error)
	Validate(ctx context.Context) (*models.Session, error)
	Login(ctx context.Context, email string, password []byte) (*models.Session, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error

	// SavedLogin returns the stored autofill credentials, both empty when
	// none are saved. The returned password should be wiped by the caller.
	SavedLogin(ctx context.Context) (email string, password []byte, err error)
}

type sessionService struct {
	client api.Client
	db     *sql.DB
	log    logging.Logger

	// Validation calls can overlap when the user navigates quickly. Only
	// the most recently settled response may touch the cached session;
	// responses that settle after a later one are discarded.
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

func NewSessionService(client api.Client, db *sql.DB, log logging.Logger) SessionService {
	return &sessionService{client: client, db: db, log: log}
}

func (s *sessionService) repo() localstore.Repository {
	return localstore.NewSQLiteRepository(s.db)
}

func (s *sessionService) Restore(ctx context.Context) (*models.Session, error) {
	return restoreSession(ctx, s.repo())
}

// restoreSession reads the persisted session fields. Partially populated
// state is tolerated: only a missing token means "no session".
func restoreSession(ctx context.Context, repo localstore.Repository) (*models.Session, error) {
	token, err := repo.Get(ctx, localstore.KeySessionToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	session := &models.Session{Token: token}
	if session.UserID, err = repo.Get(ctx, localstore.KeyUserID); err != nil {
		return nil, err
	}
	if session.UserName, err = repo.Get(ctx, localstore.KeyUserName); err != nil {
		return nil, err
	}
	if session.CompanyLogoURL, err = repo.Get(ctx, localstore.KeyCompanyLogo); err != nil {
		return nil, err
	}
	if session.CheckedAddress, err = repo.Get(ctx, localstore.KeyCheckedAddress); err != nil {
		return nil, err
	}

	manual, err := repo.Get(ctx, localstore.KeyManualMode)
	if err != nil {
		return nil, err
	}
	session.ManualMode = models.ParseManualMode(manual)
	return session, nil
}

func (s *sessionService) Validate(ctx context.Context) (*models.Session, error) {
	session, err := s.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		// No stored token: invalid without a network call.
		return nil, common.ErrSessionInvalid
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	res, err := s.client.ValidateSession(ctx, api.Credentials{Token: session.Token, UserID: session.UserID})

	s.mu.Lock()
	stale := seq <= s.applied
	if !stale {
		s.applied = seq
	}
	s.mu.Unlock()

	if stale {
		// A later validation already settled; report the current state
		// without touching the cache.
		current, err := s.Restore(ctx)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, common.ErrSessionInvalid
		}
		return current, nil
	}

	if err != nil {
		if errors.Is(err, common.ErrSessionInvalid) {
			s.log.Warn(ctx, "session rejected by backend, wiping local state")
			if wipeErr := s.wipe(ctx); wipeErr != nil {
				return nil, wipeErr
			}
			return nil, common.ErrSessionInvalid
		}
		// Transport failure: fail closed, keep local state for a later
		// retry.
		return nil, err
	}

	refreshed := *session
	if res.Name != "" {
		refreshed.UserName = res.Name
	}
	if res.UserID != "" {
		refreshed.UserID = res.UserID
	}
	if res.Manual != nil {
		// The server is authoritative for the manual mode.
		refreshed = refreshed.WithManualMode(*res.Manual)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := localstore.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, localstore.KeyUserName, refreshed.UserName); err != nil {
			return err
		}
		if err := repo.Set(ctx, localstore.KeyUserID, refreshed.UserID); err != nil {
			return err
		}
		return repo.Set(ctx, localstore.KeyManualMode, strconv.Itoa(int(refreshed.ManualMode)))
	})
	if err != nil {
		return nil, err
	}
	return &refreshed, nil
}

func (s *sessionService) Login(ctx context.Context, email string, password []byte) (*models.Session, error) {
	res, err := s.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:      res.SessionID,
		UserID:     res.UserID,
		UserName:   res.Name,
		ManualMode: res.ManualMode,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := localstore.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, localstore.KeySessionToken, session.Token); err != nil {
			return err
		}
		if err := repo.Set(ctx, localstore.KeyUserID, session.UserID); err != nil {
			return err
		}
		if err := repo.Set(ctx, localstore.KeyUserName, session.UserName); err != nil {
			return err
		}
		if err := repo.Set(ctx, localstore.KeyManualMode, strconv.Itoa(int(session.ManualMode))); err != nil {
			return err
		}

		// The company logo is kept from the first login and not replaced.
		existing, err := repo.Get(ctx, localstore.KeyCompanyLogo)
		if err != nil {
			return err
		}
		if existing == "" && res.CompanyLogo != "" {
			if err := repo.Set(ctx, localstore.KeyCompanyLogo, res.CompanyLogo); err != nil {
				return err
			}
			existing = res.CompanyLogo
		}
		session.CompanyLogoURL = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.saveCredentials(ctx, email, password); err != nil {
		// Autofill is a convenience; a failure here must not undo the login.
		s.log.Warn(ctx, "failed to save autofill credentials", "error", err)
	}

	return session, nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	return s.wipe(ctx)
}

// wipe removes every session key in one transaction. Autofill credentials
// and the device identity survive.
func (s *sessionService) wipe(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := localstore.NewSQLiteRepository(tx)
		for _, key := range localstore.SessionKeys {
			if err := repo.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sessionService) ForgotPassword(ctx context.Context, email string) error {
	return s.client.ForgotPassword(ctx, email)
}

// saveCredentials stores the autofill email and the password sealed under a
// key derived from the per-install device id.
func (s *sessionService) saveCredentials(ctx context.Context, email string, password []byte) error {
	repo := s.repo()

	key, err := storageKey(ctx, repo)
	if err != nil {
		return err
	}

	sealed, err := cryptox.Seal(password, key)
	if err != nil {
		return err
	}

	if err := repo.Set(ctx, localstore.KeySavedEmail, email); err != nil {
		return err
	}
	return repo.Set(ctx, localstore.KeySavedPassword, base64.StdEncoding.EncodeToString(sealed))
}

func (s *sessionService) SavedLogin(ctx context.Context) (string, []byte, error) {
	repo := s.repo()

	email, err := repo.Get(ctx, localstore.KeySavedEmail)
	if err != nil {
		return "", nil, err
	}
	sealedB64, err := repo.Get(ctx, localstore.KeySavedPassword)
	if err != nil {
		return "", nil, err
	}
	if email == "" || sealedB64 == "" {
		return email, nil, nil
	}

	sealed, err := base64.StdEncoding.DecodeString(sealedB64)
	if err != nil {
		return email, nil, nil
	}
	key, err := storageKey(ctx, repo)
	if err != nil {
		return email, nil, err
	}
	password, err := cryptox.Open(sealed, key)
	if err != nil {
		// Sealed with a different device identity; treat as unsaved.
		return email, nil, nil
	}
	return email, password, nil
}

// storageKey derives the credential-sealing key, creating the device id and
// salt on first use.
func storageKey(ctx context.Context, repo localstore.Repository) ([]byte, error) {
	deviceID, err := repo.Get(ctx, localstore.KeyDeviceID)
	if err != nil {
		return nil, err
	}
	if deviceID == "" {
		deviceID = uuid.NewString()
		if err := repo.Set(ctx, localstore.KeyDeviceID, deviceID); err != nil {
			return nil, err
		}
	}

	salt, err := repo.Get(ctx, localstore.KeyCredSalt)
	if err != nil {
		return nil, err
	}
	if salt == "" {
		salt, err = common.MakeRandHexString(16)
		if err != nil {
			return nil, err
		}
		if err := repo.Set(ctx, localstore.KeyCredSalt, salt); err != nil {
			return nil, err
		}
	}

	return cryptox.DeriveStorageKey([]byte(deviceID), []byte(salt)), nil
}

// credentials builds the backend credentials from the stored session.
func credentials(ctx context.Context, repo localstore.Repository) (api.Credentials, error) {
	token, err := repo.Get(ctx, localstore.KeySessionToken)
	if err != nil {
		return api.Credentials{}, err
	}
	if token == "" {
		return api.Credentials{}, common.ErrSessionInvalid
	}
	userID, err := repo.Get(ctx, localstore.KeyUserID)
	if err != nil {
		return api.Credentials{}, err
	}
	return api.Credentials{Token: token, UserID: userID}, nil
}
