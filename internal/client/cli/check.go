package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/common"
)

// Check runs one check-in/check-out round trip: collect the location signal
// the account's mode asks for, resolve it to nearby projects, let the user
// pick, and submit.
func (a *App) Check(ctx context.Context) error {
	signal, err := a.collectSignal(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	cc, err := a.checkService.Resolve(ctx, signal)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoMatch):
			printlnFn("No work site matched, move closer or try again")
		case errors.Is(err, common.ErrSessionInvalid):
			a.session = nil
			printlnFn("Session expired, please log in again")
		default:
			printlnFn("Server unreachable, try again later")
		}
		return err
	}

	projects := make([]option, 0, len(cc.Projects))
	for _, p := range cc.Projects {
		projects = append(projects, option{ID: p.ID, Label: p.Label})
	}
	project, err := GetChoice(a.reader, "Select work site:", projects, os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	serviceID := ""
	if cc.CheckingIn() {
		options := make([]option, 0, len(cc.Services))
		for _, s := range cc.Services {
			options = append(options, option{ID: s.ID, Label: s.Label})
		}
		service, err := GetChoice(a.reader, "Select service:", options, os.Stdout)
		if err != nil {
			printlnFn(err.Error())
			return err
		}
		serviceID = service.ID
	}

	msg, err := a.checkService.Submit(ctx, cc, project.ID, serviceID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrBusy):
			printlnFn("A check is already being submitted, hold on")
		case errors.Is(err, common.ErrRejected):
			printlnFn(err.Error())
		default:
			printlnFn("Server unreachable, the check was not registered")
		}
		return err
	}

	if msg != "" {
		printlnFn(msg)
	} else if cc.CheckingIn() {
		printlnFn(fmt.Sprintf("Checked in at %s", project.Label))
	} else {
		printlnFn("Checked out")
	}
	return nil
}

// collectSignal prompts for whatever the account's check-in mode needs and
// wraps it as a location signal.
func (a *App) collectSignal(ctx context.Context) (models.LocationSignal, error) {
	switch a.manualMode() {
	case models.ManualModeManual:
		address, err := getSimpleText(a.reader, "Enter the work site address", os.Stdout)
		if err != nil {
			return nil, err
		}
		return models.ManualSignal{Address: address}, nil

	case models.ManualModeNFC:
		token, err := getSimpleText(a.reader, "Scan the NFC tag and enter its token", os.Stdout)
		if err != nil {
			return nil, err
		}
		return models.NFCSignal{Token: token}, nil

	case models.ManualModeQR:
		token, err := getSimpleText(a.reader, "Scan the QR code and enter its token", os.Stdout)
		if err != nil {
			return nil, err
		}
		return models.QRSignal{Token: token}, nil

	default:
		lat, err := GetFloat(a.reader, "Enter latitude", os.Stdout)
		if err != nil {
			return nil, err
		}
		lon, err := GetFloat(a.reader, "Enter longitude", os.Stdout)
		if err != nil {
			return nil, err
		}

		// The street comes from reverse geocoding; the user is only
		// asked when the geocoder cannot name one.
		street := ""
		if a.geocoder != nil {
			if place, err := a.geocoder.Reverse(ctx, lat, lon); err == nil {
				street = place.Street
			}
		}
		if street == "" {
			street, err = getSimpleText(a.reader, "Enter the street you are on", os.Stdout)
			if err != nil {
				return nil, err
			}
		}
		return models.GPSSignal{Street: street, Latitude: lat, Longitude: lon}, nil
	}
}
