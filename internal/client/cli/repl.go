package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/rapportskollen/clockin/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	manualMode() models.ManualMode
	refresh(ctx context.Context)
	Login(ctx context.Context) error
	Forgot(ctx context.Context) error
	Check(ctx context.Context) error
	Report(ctx context.Context) error
	Hours(ctx context.Context, paid bool) error
	Status(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Position(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from the scanner, parses the first token as the command,
// and dispatches to methods on 'a'. Unknown commands are reported back to
// the user. The loop exits on scanner EOF or when the user types "exit" or
// "quit".
//
// The check and report commands are gated by the server-configured manual
// mode: "check" is available in the gps, manual, nfc and qr modes, "report"
// only in report mode.
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("clockin %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn("Available commands: login, forgot, exit")
			case "login":
				_ = a.Login(ctx)
			case "forgot":
				_ = a.Forgot(ctx)
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		// Revalidate the session before dispatching, mirroring the
		// on-focus recheck of the mobile client. A dead session drops
		// the user back to the login commands.
		switch cmd {
		case "help", "exit", "quit":
		default:
			a.refresh(ctx)
			if !a.isLoggedIn() {
				continue
			}
		}

		switch cmd {
		case "help":
			if a.manualMode() == models.ManualModeReport {
				printlnFn("Available commands: report, hours, paid, status, passwd, position, logout, exit")
			} else {
				printlnFn("Available commands: check, hours, paid, status, passwd, position, logout, exit")
			}

		case "check":
			if a.manualMode() == models.ManualModeReport {
				printlnFn("Checking in is not enabled for this account, use 'report'")
				continue
			}
			_ = a.Check(ctx)

		case "report":
			if a.manualMode() != models.ManualModeReport {
				printlnFn("Hours reporting is not enabled for this account, use 'check'")
				continue
			}
			_ = a.Report(ctx)

		case "h", "hours":
			_ = a.Hours(ctx, false)

		case "paid":
			_ = a.Hours(ctx, true)

		case "status":
			_ = a.Status(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "position":
			_ = a.Position(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
