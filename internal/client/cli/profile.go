package cli

import (
	"context"
	"errors"
	"os"

	"github.com/rapportskollen/clockin/internal/common"
)

// ChangePassword prompts for the current and the new password and submits
// the change. Both inputs are wiped before returning.
func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := getPassword(os.Stdout, "Enter current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword(os.Stdout, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	confirm, err := getPassword(os.Stdout, "Repeat new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(newPassword) != string(confirm) {
		printlnFn("Passwords do not match")
		return common.ErrValidation
	}

	msg, err := a.profileService.ChangePassword(ctx, oldPassword, newPassword)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			printlnFn("The new password must not be empty")
		case errors.Is(err, common.ErrRejected):
			printlnFn(err.Error())
		default:
			printlnFn("Server unreachable, the password was not changed")
		}
		return err
	}

	if msg == "" {
		msg = "Password changed"
	}
	printlnFn(msg)
	return nil
}

// Position reports the entered coordinates to the backend, reverse-geocoded
// to an address when the geocoder is reachable.
func (a *App) Position(ctx context.Context) error {
	lat, err := GetFloat(a.reader, "Enter latitude", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	lon, err := GetFloat(a.reader, "Enter longitude", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if err := a.profileService.ReportPosition(ctx, lat, lon); err != nil {
		printlnFn("Server unreachable, the position was not reported")
		return err
	}
	printlnFn("Position reported")
	return nil
}
