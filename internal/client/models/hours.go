package models

// HourRow is one reported-hours line as displayed in the history tables.
// Field names mirror the backend's Swedish column names.
type HourRow struct {
	OID       string // project name
	ProjectNr string
	Date      string
	Hours     string
}

// HourReport is the result of a display-hours call: the rows that carried a
// success flag plus the total extracted from the side-channel element.
type HourReport struct {
	Rows       []HourRow
	TotalHours string
}

// HoursEntry is a manual hours submission. All fields are required; the
// validate tags are enforced before any network call is made.
type HoursEntry struct {
	ProjectID  string `validate:"required"`
	ServiceID  string `validate:"required"`
	WorkTypeID string `validate:"required"`
	Date       string `validate:"required"`
	HoursOfDay string `validate:"required"`
}
