// Package timemath provides pure datetime and duration arithmetic for the
// scheduling engine: HH:MM parsing/formatting, 12/24-hour conversion,
// minute-precision instant arithmetic, and half-open interval overlap.
package timemath

import (
	"fmt"
	"time"
)

// DateFormat is the canonical YYYY-MM-DD format used throughout fortudo.
const DateFormat = "2006-01-02"

// TimeFormat is the canonical 24-hour HH:MM format used throughout fortudo.
const TimeFormat = "15:04"

// Interval is a half-open span [Start, End) on the instant line.
type Interval struct {
	Start time.Time
	End   time.Time
}

// ParseHHMM parses a "HH:MM" 24-hour string into minutes since midnight.
func ParseHHMM(s string) (int, error) {
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatHHMM formats minutes-since-midnight as a 24-hour "HH:MM" string.
// Values outside [0, 1440) wrap modulo a day, so -30 formats as "23:30".
func FormatHHMM(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatDuration formats a minute count as "Nh Mm", omitting zero parts,
// except that a total of exactly 0 minutes renders as "0m".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h := minutes / 60
	m := minutes % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// To12Hour converts 24-hour minutes-since-midnight to a (hour12, minute, isPM) triple.
// 00:xx is 12:xx AM; 12:xx is 12:xx PM.
func To12Hour(minutes int) (hour12, minute int, isPM bool) {
	minutes = ((minutes % 1440) + 1440) % 1440
	h24 := minutes / 60
	minute = minutes % 60
	isPM = h24 >= 12
	hour12 = h24 % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return hour12, minute, isPM
}

// From12Hour converts a 12-hour (hour, minute, isPM) triple back to minutes since midnight.
// hour must be in [1, 12].
func From12Hour(hour12, minute int, isPM bool) (int, error) {
	if hour12 < 1 || hour12 > 12 {
		return 0, fmt.Errorf("invalid 12-hour hour %d, must be 1-12", hour12)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute %d, must be 0-59", minute)
	}
	h24 := hour12 % 12
	if isPM {
		h24 += 12
	}
	return h24*60 + minute, nil
}

// NewInstant constructs an instant from a YYYY-MM-DD date string and an
// HH:MM time string, interpreted in the local timezone.
func NewInstant(ymd, hhmm string) (time.Time, error) {
	date, err := time.ParseInLocation(DateFormat, ymd, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", ymd, err)
	}
	minutes, err := ParseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, time.Local), nil
}

// AddMinutes returns the instant advanced by the given number of minutes
// (may be negative). Minute precision: seconds and sub-second parts of the
// input are not special-cased, but fortudo never constructs instants with
// non-zero seconds.
func AddMinutes(t time.Time, minutes int) time.Time {
	return t.Add(time.Duration(minutes) * time.Minute)
}

// HHMM extracts the "HH:MM" time-of-day portion of an instant.
func HHMM(t time.Time) string {
	return t.Format(TimeFormat)
}

// YMD extracts the "YYYY-MM-DD" local-day portion of an instant.
func YMD(t time.Time) string {
	return t.Format(DateFormat)
}

// RoundUpNext5 rounds an instant up to the next 5-minute boundary, clearing
// seconds and sub-second parts. If the resulting minute would be 60, it
// carries into the next hour.
func RoundUpNext5(t time.Time) time.Time {
	hasResidue := t.Second() != 0 || t.Nanosecond() != 0
	t = t.Truncate(time.Minute)
	rem := t.Minute() % 5
	if rem == 0 && !hasResidue {
		return t
	}
	add := 5 - rem
	minute := t.Minute() + add
	if minute == 60 {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()).Add(time.Hour)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, t.Location())
}

// Overlaps reports whether two half-open intervals [a.Start, a.End) and
// [b.Start, b.End) intersect. Back-to-back intervals (a.End == b.Start)
// do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
