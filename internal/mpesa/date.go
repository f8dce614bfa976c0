package mpesa

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EastAfricaTime is the default zone for message timestamps.
var EastAfricaTime = time.FixedZone("EAT", 3*60*60)

// Date forms, tried in order.
var dateForms = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2})/(\d{1,2})/(\d{2,4})\s+(\d{1,2}):(\d{2})(?:\s*([AP]M))?`),
	regexp.MustCompile(`(?i)(\d{1,2})-(\d{1,2})-(\d{2,4})\s+(\d{1,2}):(\d{2})(?:\s*([AP]M))?`),
}

// DateNormalizer converts message timestamps into time.Time values.
type DateNormalizer struct {
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewDateNormalizer creates a normalizer building times in loc.
// A nil loc defaults to East Africa Time; a nil now defaults to time.Now.
func NewDateNormalizer(loc *time.Location, now func() time.Time, logger *slog.Logger) *DateNormalizer {
	if loc == nil {
		loc = EastAfricaTime
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DateNormalizer{loc: loc, now: now, logger: logger}
}

// Normalize parses token, returning the current time when it cannot be parsed.
// The fallback is logged rather than reported to the caller.
func (d *DateNormalizer) Normalize(token string) time.Time {
	t, err := d.Parse(token)
	if err != nil {
		d.logger.Warn("Falling back to current time for message date",
			"token", token,
			"error", err)
		return d.now().In(d.loc)
	}
	return t
}

// Parse parses token strictly, returning ErrDateParse on failure.
func (d *DateNormalizer) Parse(token string) (time.Time, error) {
	for _, form := range dateForms {
		match := form.FindStringSubmatch(token)
		if match == nil {
			continue
		}
		return d.build(match[1], match[2], match[3], match[4], match[5], match[6])
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDateParse, token)
}

func (d *DateNormalizer) build(dayStr, monthStr, yearStr, hourStr, minuteStr, meridiem string) (time.Time, error) {
	day, _ := strconv.Atoi(dayStr)
	month, _ := strconv.Atoi(monthStr)
	year, _ := strconv.Atoi(yearStr)
	hour, _ := strconv.Atoi(hourStr)
	minute, _ := strconv.Atoi(minuteStr)

	if len(yearStr) == 2 {
		year += 2000
	}

	if meridiem != "" {
		if hour > 12 {
			return time.Time{}, fmt.Errorf("%w: hour %d with %s", ErrDateParse, hour, meridiem)
		}
		switch strings.ToUpper(meridiem) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
	}

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: month %d", ErrDateParse, month)
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, fmt.Errorf("%w: day %d", ErrDateParse, day)
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: time %02d:%02d", ErrDateParse, hour, minute)
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, d.loc), nil
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
