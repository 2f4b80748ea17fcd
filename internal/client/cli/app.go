package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/rapportskollen/clockin/internal/client/api"
	"github.com/rapportskollen/clockin/internal/client/config"
	"github.com/rapportskollen/clockin/internal/client/geocode"
	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/client/repositories/localstore"
	"github.com/rapportskollen/clockin/internal/client/services"
	"github.com/rapportskollen/clockin/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config         *config.Config
	sessionService services.SessionService
	checkService   services.CheckService
	hoursService   services.HoursService
	profileService services.ProfileService

	// session is the validated session for the current login, nil while
	// logged out. Its ManualMode decides which commands are available.
	session *models.Session

	geocoder *geocode.Client
	reader   *bufio.Reader
	log      logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	db, err := localstore.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.BackendBaseURL, c.HTTPTimeout, logger)
	geocoder := geocode.NewClient(c.NominatimBaseURL, c.NominatimUserAgent, c.HTTPTimeout)

	return &App{
		config:         c,
		sessionService: services.NewSessionService(apiClient, db, logger),
		checkService:   services.NewCheckService(apiClient, db, logger),
		hoursService:   services.NewHoursService(apiClient, db, logger),
		profileService: services.NewProfileService(apiClient, geocoder, db, logger),
		geocoder:       geocoder,
		reader:         bufio.NewReader(os.Stdin),
		log:            logger,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}
