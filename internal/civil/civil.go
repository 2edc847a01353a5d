// internal/civil/civil.go
//
// Calendar dates and the local wall clock.
//
// Context
// -------
// Reports are filed against a civil date in the command's own time zone
// (Asia/Kolkata by default), not UTC.  Timestamps written to the database
// are naive local times, so every "now" in the application comes from one
// Clock bound to the configured location.
//
// Dates travel as time.Time values pinned to midnight UTC.  This keeps
// DATE columns stable regardless of driver time-zone handling.
//
// Notes
// -----
// • ParseDate is strict: exactly YYYY-MM-DD, real calendar days only.
// • Oxford commas, two spaces after periods.
package civil

import (
	"errors"
	"time"
)

// DateLayout is the only accepted textual date form.
const DateLayout = "2006-01-02"

// DefaultZone is used when configuration leaves locale.timezone empty.
const DefaultZone = "Asia/Kolkata"

// ErrBadDate is returned for anything that is not a strict YYYY-MM-DD date.
var ErrBadDate = errors.New("invalid date format")

// ParseDate parses s as YYYY-MM-DD and returns midnight UTC of that day.
// Single-digit months or days, trailing text, and impossible days such as
// 2024-02-30 are all rejected.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, ErrBadDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// FormatDate renders d as YYYY-MM-DD.
func FormatDate(d time.Time) string { return d.Format(DateLayout) }

// DateOf strips the clock part of t, keeping its wall-clock calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

/*──────────────────────────── clock ───────────────────────────────────────*/

// Clock reports the current time in one fixed location.  Zero value is not
// usable; build one with NewClock or FixedClock.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock loads the named IANA zone.  An empty name selects DefaultZone.
func NewClock(zone string) (*Clock, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// FixedClock always returns t.  Used by tests and the seed command.
func FixedClock(t time.Time) *Clock {
	return &Clock{loc: t.Location(), now: func() time.Time { return t }}
}

// Now returns the local wall time with the zone stripped, which is the form
// the database stores.
func (c *Clock) Now() time.Time {
	n := c.now().In(c.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), n.Nanosecond(), time.UTC)
}

// Today returns the local calendar day at midnight UTC.
func (c *Clock) Today() time.Time { return DateOf(c.Now()) }

// Location returns the configured zone.
func (c *Clock) Location() *time.Location { return c.loc }
