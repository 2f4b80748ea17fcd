package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/common"
)

func (a *App) manualMode() models.ManualMode {
	if a.session == nil {
		return models.ManualModeGPS
	}
	return a.session.ManualMode
}

// refresh revalidates the session between commands. Any failure is treated
// as logged out; the persisted keys are only wiped when the backend
// definitively rejected the session (the session service handles that).
func (a *App) refresh(ctx context.Context) {
	session, err := a.sessionService.Validate(ctx)
	if err != nil {
		a.session = nil
		if errors.Is(err, common.ErrSessionInvalid) {
			printlnFn("Session expired, please log in again")
		} else {
			printlnFn("Server unreachable, please log in once it is back")
		}
		return
	}
	a.session = session
}

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	s := a.session.UserName
	if addr, err := a.checkService.CheckedAddress(context.Background()); err == nil && addr != "" {
		s = s + " @ " + addr
	}
	if s != "" {
		s = fmt.Sprintf("(%s) ", s)
	}
	return s
}

// restoreSession revalidates a previously persisted session on startup so
// the user is not asked to log in again while the backend still accepts the
// token.
func (a *App) restoreSession(ctx context.Context) {
	session, err := a.sessionService.Validate(ctx)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			printlnFn("Server unreachable, please log in once it is back")
		}
		return
	}
	a.session = session
	printlnFn(fmt.Sprintf("Welcome back, %s!", session.UserName))
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Rapportskollen clockin (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	a.restoreSession(ctx)
	if !a.isLoggedIn() {
		_ = a.Login(ctx)
	}

	runREPL(ctx, a, a.getStatus, scanner)
}
