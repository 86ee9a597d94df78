package models

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Zone is the service reference time zone. Zone-less timestamps are read in
// it and calendar dates are taken in it.
var Zone = time.UTC

func SetZone(loc *time.Location) {
	if loc != nil {
		Zone = loc
	}
}

const (
	localDateTimeLayout = "2006-01-02T15:04:05.999999999"
	dateLayout          = "2006-01-02"
)

var localLayouts = []string{
	localDateTimeLayout,
	"2006-01-02 15:04:05.999999999",
	dateLayout,
}

// DateTime is a timestamp rendered without an offset in Zone.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// ParseDateTime accepts RFC 3339 or a zone-less local timestamp.
func ParseDateTime(s string) (DateTime, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateTime{Time: t}, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, Zone); err == nil {
			return DateTime{Time: t}, nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid timestamp %q", s)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.In(Zone).Format(localDateTimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*d = DateTime{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a string, got %s", data)
	}
	parsed, err := ParseDateTime(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Date is a calendar date without time of day. The wrapped time is always
// midnight UTC so that dates compare with ==.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in Zone.
func DateOf(t time.Time) Date {
	y, m, d := t.In(Zone).Date()
	return NewDate(y, m, d)
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// calendar computes week and month boundaries with Monday as the first day
// of the week.
var calendar = &now.Config{WeekStartDay: time.Monday, TimeLocation: time.UTC}

func (d Date) at() *now.Now {
	return calendar.With(d.Time)
}

// calendarDate drops the time of day of t, which is already in UTC.
func calendarDate(t time.Time) Date {
	y, m, day := t.Date()
	return NewDate(y, m, day)
}

// WeekStart returns the Monday of the ISO week containing d.
func (d Date) WeekStart() Date {
	return calendarDate(d.at().BeginningOfWeek())
}

func (d Date) MonthStart() Date {
	return calendarDate(d.at().BeginningOfMonth())
}

func (d Date) MonthEnd() Date {
	return calendarDate(d.at().EndOfMonth())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 {
		return fmt.Errorf("invalid date %s", data)
	}
	t, err := time.Parse(dateLayout, string(data[1:len(data)-1]))
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}
