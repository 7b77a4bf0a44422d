package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of the start and end date cells in the flyer sheet,
// e.g. "Mar 14 24 7:30 PM".
const DateLayout = "Jan 2 06 3:04 PM"

// Flyer represents a single event posted by one or more organizations.
type Flyer struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Organizations []Organization `json:"organizations"`
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	ImageURL      string         `json:"imageURL"`
	PostURL       string         `json:"postURL"`
	Location      string         `json:"location"`
}

// End parses the flyer's end date in loc.
func (f Flyer) End(loc *time.Location) (time.Time, error) {
	return ParseDate(f.EndDate, loc)
}

// ParseDate parses a spreadsheet date cell. Runs of whitespace are collapsed
// and the meridiem is matched case-insensitively.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return time.Time{}, fmt.Errorf("empty date")
	}
	last := len(fields) - 1
	fields[last] = strings.ToUpper(fields[last])
	t, err := time.ParseInLocation(DateLayout, strings.Join(fields, " "), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", value, err)
	}
	return t, nil
}
