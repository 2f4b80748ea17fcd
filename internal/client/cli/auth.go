package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rapportskollen/clockin/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getTextWithDefault = GetTextWithDefault
var getPassword = GetPassword

// Login prompts for an email and password and authenticates against the
// backend. Previously saved credentials prefill the prompts: the email is
// offered as a default and an empty password input reuses the saved one.
//
// On success the session is persisted and a.session is set. The password
// byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	savedEmail, savedPassword, err := a.sessionService.SavedLogin(ctx)
	if err != nil {
		savedEmail, savedPassword = "", nil
	}
	defer common.WipeByteArray(savedPassword)

	email, err := getTextWithDefault(a.reader, "Enter email", savedEmail, os.Stdout)
	if err != nil {
		return err
	}

	prompt := "Enter password"
	if email == savedEmail && len(savedPassword) > 0 {
		prompt = "Enter password (empty to use saved)"
	}
	password, err := getPassword(os.Stdout, prompt)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if len(password) == 0 && email == savedEmail && len(savedPassword) > 0 {
		password = append([]byte(nil), savedPassword...)
	}

	session, err := a.sessionService.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrRejected) {
			printlnFn(fmt.Sprintf("Login failed: %s", err.Error()))
		} else {
			printlnFn("Login failed: server unreachable")
		}
		return err
	}

	a.session = session
	printlnFn(fmt.Sprintf("Welcome, %s! Check-in mode: %s", session.UserName, session.ManualMode))
	return nil
}

// Forgot triggers the password-reset mail for the entered email address.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.sessionService.ForgotPassword(ctx, email); err != nil {
		printlnFn("Could not request a reset mail, try again later")
		return err
	}
	printlnFn("A reset mail is on its way, check your inbox")
	return nil
}

// Logout wipes the persisted session and drops the in-memory one.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessionService.Logout(ctx); err != nil {
		return err
	}
	a.session = nil
	printlnFn("Logged out")
	return nil
}

// Status revalidates the session and reports who is logged in, the check-in
// mode and, when checked in, the site. A dead session drops back to the
// logged-out state.
func (a *App) Status(ctx context.Context) error {
	session, err := a.sessionService.Validate(ctx)
	if err != nil {
		if errors.Is(err, common.ErrSessionInvalid) {
			a.session = nil
			printlnFn("Session expired, please log in again")
		} else {
			printlnFn("Server unreachable")
		}
		return err
	}
	a.session = session

	printlnFn(fmt.Sprintf("Logged in as %s (mode: %s)", session.UserName, session.ManualMode))
	if addr, err := a.checkService.CheckedAddress(ctx); err == nil && addr != "" {
		printlnFn("Checked in at " + addr)
	}
	return nil
}
