package maintenance

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Frequency units.
const (
	UnitDays   = "days"
	UnitWeeks  = "weeks"
	UnitMonths = "months"
	UnitYears  = "years"
)

// Frequency is a parsed recurrence interval.
type Frequency struct {
	Interval int
	Unit     string
}

var numericFrequency = regexp.MustCompile(`(\d+)\s*(hour|day|week|month|year)s?`)

// ParseFrequency interprets free-form frequency text from generated
// maintenance data. The second return value is false for absent, "once", or
// unparseable frequencies, which callers treat as non-recurring.
func ParseFrequency(raw string) (Frequency, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" || normalized == "once" || normalized == "one-time" || normalized == "one time" {
		return Frequency{}, false
	}

	switch {
	case strings.Contains(normalized, "daily"), strings.Contains(normalized, "every day"):
		return Frequency{Interval: 1, Unit: UnitDays}, true
	case strings.Contains(normalized, "weekly"), strings.Contains(normalized, "every week"):
		return Frequency{Interval: 1, Unit: UnitWeeks}, true
	case strings.Contains(normalized, "bi-annual"), strings.Contains(normalized, "biannual"):
		return Frequency{Interval: 2, Unit: UnitYears}, true
	case strings.Contains(normalized, "semi-annual"), strings.Contains(normalized, "semiannual"):
		return Frequency{Interval: 6, Unit: UnitMonths}, true
	case strings.Contains(normalized, "quarterly"):
		return Frequency{Interval: 3, Unit: UnitMonths}, true
	case strings.Contains(normalized, "monthly"), strings.Contains(normalized, "every month"):
		return Frequency{Interval: 1, Unit: UnitMonths}, true
	case strings.Contains(normalized, "annual"), strings.Contains(normalized, "yearly"), strings.Contains(normalized, "every year"):
		return Frequency{Interval: 1, Unit: UnitYears}, true
	}

	if m := numericFrequency.FindStringSubmatch(normalized); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Frequency{}, false
		}
		switch m[2] {
		case "hour":
			// Sub-day cadences collapse to whole days; scheduling is date-only.
			days := n / 24
			if days < 1 {
				days = 1
			}
			return Frequency{Interval: days, Unit: UnitDays}, true
		case "day":
			return Frequency{Interval: n, Unit: UnitDays}, true
		case "week":
			return Frequency{Interval: n, Unit: UnitWeeks}, true
		case "month":
			return Frequency{Interval: n, Unit: UnitMonths}, true
		case "year":
			return Frequency{Interval: n, Unit: UnitYears}, true
		}
	}

	return Frequency{}, false
}

// Next returns the due date one interval after base, date-only.
// Month and year steps are calendar-correct: the day-of-month clamps to the
// target month's length, so Jan 31 plus one month lands on Feb 29 in a leap
// year and Feb 28 otherwise. time.Time.AddDate would normalize past the
// month boundary instead.
func (f Frequency) Next(base time.Time) time.Time {
	base = DateOnly(base)
	switch f.Unit {
	case UnitDays:
		return base.AddDate(0, 0, f.Interval)
	case UnitWeeks:
		return base.AddDate(0, 0, 7*f.Interval)
	case UnitMonths:
		return addMonthsClamped(base, f.Interval)
	case UnitYears:
		return addMonthsClamped(base, 12*f.Interval)
	}
	return base
}

func addMonthsClamped(base time.Time, months int) time.Time {
	y, m, d := base.Date()
	total := int(m) - 1 + months
	targetYear := y + total/12
	targetMonth := time.Month(total%12 + 1)
	if total < 0 {
		// Go integer division truncates toward zero.
		targetYear = y + (total-11)/12
		targetMonth = time.Month((total%12+12)%12 + 1)
	}
	if last := daysInMonth(targetYear, targetMonth); d > last {
		d = last
	}
	return time.Date(targetYear, targetMonth, d, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
