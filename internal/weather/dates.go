package weather

import (
	"fmt"
	"time"

	"weatherview/internal/types"
)

const (
	// DateLayout is the machine form of a calendar date.
	DateLayout = "2006-01-02"
	// DefaultLabelLayout renders a date the way an en-US short date does (3/10/2024).
	DefaultLabelLayout = "1/2/2006"
	// DateOptionCount is the number of selectable dates, today included.
	DateOptionCount = 6
)

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidDate,
			"date must use the YYYY-MM-DD format",
			err,
			map[string]any{"date": value},
		)
	}
	return DateOf(t), nil
}

// AddDays moves d by n calendar days.
func AddDays(d Date, n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// IsSameDay reports whether a and b have the same year, month and day.
func IsSameDay(a, b Date) bool {
	return a.Year == b.Year && a.Month == b.Month && a.Day == b.Day
}

// LocalDate derives the calendar date a forecast timestamp is bucketed under.
// The instant is first shifted by the zone's UTC offset so its UTC wall clock
// reads as local time, and the date is then taken from the shifted instant in
// loc. For dt = 2024-03-10T23:30Z and a UTC-5 zone this yields 2024-03-10.
func LocalDate(dt int64, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(dt, 0).In(loc)
	_, offset := t.Zone()
	shifted := t.Add(time.Duration(offset) * time.Second)
	return DateOf(shifted.In(loc))
}

// DateOption is one selectable forecast date.
type DateOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GenerateDateOptions returns DateOptionCount consecutive dates starting with
// the date of now in loc. Labels use labelLayout, or DefaultLabelLayout when
// empty.
func GenerateDateOptions(now time.Time, loc *time.Location, labelLayout string) []DateOption {
	if loc == nil {
		loc = time.UTC
	}
	if labelLayout == "" {
		labelLayout = DefaultLabelLayout
	}

	today := DateOf(now.In(loc))
	options := make([]DateOption, 0, DateOptionCount)
	for i := 0; i < DateOptionCount; i++ {
		d := AddDays(today, i)
		options = append(options, DateOption{
			Value: d.String(),
			Label: d.In(loc).Format(labelLayout),
		})
	}
	return options
}
