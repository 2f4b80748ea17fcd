package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rapportskollen/clockin/internal/client/api"
	"github.com/rapportskollen/clockin/internal/client/models"
	"github.com/rapportskollen/clockin/internal/common"
)

// Report collects a manual hours entry: look up the work site by address,
// pick the project and service, then enter the date and the hours.
func (a *App) Report(ctx context.Context) error {
	address, err := getSimpleText(a.reader, "Enter the work site address", os.Stdout)
	if err != nil {
		return err
	}

	cc, err := a.hoursService.LookupTargets(ctx, address)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoMatch):
			printlnFn("No work site matched that address")
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

	svcOptions := make([]option, 0, len(cc.Services))
	for _, s := range cc.Services {
		svcOptions = append(svcOptions, option{ID: s.ID, Label: s.Label})
	}
	service, err := GetChoice(a.reader, "Select service:", svcOptions, os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	workType, err := getSimpleText(a.reader, "Enter work type id", os.Stdout)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.reader, "Enter date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	hours, err := getSimpleText(a.reader, "Enter hours worked", os.Stdout)
	if err != nil {
		return err
	}

	msg, err := a.hoursService.Report(ctx, models.HoursEntry{
		ProjectID:  project.ID,
		ServiceID:  service.ID,
		WorkTypeID: workType,
		Date:       date,
		HoursOfDay: hours,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			printlnFn("All fields are required")
		case errors.Is(err, common.ErrRejected):
			printlnFn(err.Error())
		default:
			printlnFn("Server unreachable, the report was not saved")
		}
		return err
	}

	if msg == "" {
		msg = "Hours reported"
	}
	printlnFn(msg)
	return nil
}

// Hours fetches and prints the hour table, the paid one when paid is true.
// An empty date range fetches everything the backend keeps.
func (a *App) Hours(ctx context.Context, paid bool) error {
	from, err := getTextWithDefault(a.reader, "From date (YYYY-MM-DD)", "-", os.Stdout)
	if err != nil {
		return err
	}
	to, err := getTextWithDefault(a.reader, "To date (YYYY-MM-DD)", "-", os.Stdout)
	if err != nil {
		return err
	}
	if from == "-" {
		from = ""
	}
	if to == "-" {
		to = ""
	}

	report, err := a.hoursService.Fetch(ctx, api.HoursQuery{DateFrom: from, DateTo: to, Paid: paid})
	if err != nil {
		if errors.Is(err, common.ErrSessionInvalid) {
			a.session = nil
			printlnFn("Session expired, please log in again")
		} else {
			printlnFn("Server unreachable, try again later")
		}
		return err
	}

	printlnFn(formatHourReport(report))
	return nil
}

func formatHourReport(report *models.HourReport) string {
	if len(report.Rows) == 0 {
		return "No hours found"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tNR\tDATE\tHOURS")
	for _, row := range report.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.OID, row.ProjectNr, row.Date, row.Hours)
	}
	fmt.Fprintf(w, "\t\tTotal\t%s\n", report.TotalHours)
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
