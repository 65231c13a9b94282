package maintenance

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFrequency(t *testing.T) {
	cases := []struct {
		raw       string
		want      Frequency
		recurring bool
	}{
		{"daily", Frequency{1, UnitDays}, true},
		{"Every day", Frequency{1, UnitDays}, true},
		{"weekly", Frequency{1, UnitWeeks}, true},
		{"monthly", Frequency{1, UnitMonths}, true},
		{"every month", Frequency{1, UnitMonths}, true},
		{"quarterly", Frequency{3, UnitMonths}, true},
		{"semi-annual", Frequency{6, UnitMonths}, true},
		{"annual", Frequency{1, UnitYears}, true},
		{"yearly", Frequency{1, UnitYears}, true},
		{"bi-annual", Frequency{2, UnitYears}, true},
		{"every 30 days", Frequency{30, UnitDays}, true},
		{"every 90 days", Frequency{90, UnitDays}, true},
		{"2 weeks", Frequency{2, UnitWeeks}, true},
		{"every 6 months", Frequency{6, UnitMonths}, true},
		{"every 1 month", Frequency{1, UnitMonths}, true},
		{"every 2 years", Frequency{2, UnitYears}, true},
		{"every 48 hours", Frequency{2, UnitDays}, true},
		{"every 8 hours", Frequency{1, UnitDays}, true},
		{"", Frequency{}, false},
		{"once", Frequency{}, false},
		{"one-time", Frequency{}, false},
		{"whenever it squeaks", Frequency{}, false},
	}

	for _, tc := range cases {
		got, ok := ParseFrequency(tc.raw)
		if ok != tc.recurring {
			t.Errorf("ParseFrequency(%q) recurring = %v, want %v", tc.raw, ok, tc.recurring)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseFrequency(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestNextDayAndWeekArithmetic(t *testing.T) {
	if got := (Frequency{90, UnitDays}).Next(date(2024, time.March, 1)); !got.Equal(date(2024, time.May, 30)) {
		t.Errorf("90 days after 2024-03-01 = %s", got.Format("2006-01-02"))
	}
	if got := (Frequency{2, UnitWeeks}).Next(date(2024, time.December, 25)); !got.Equal(date(2025, time.January, 8)) {
		t.Errorf("2 weeks after 2024-12-25 = %s", got.Format("2006-01-02"))
	}
}

func TestNextMonthArithmeticClampsToCalendar(t *testing.T) {
	cases := []struct {
		freq Frequency
		base time.Time
		want time.Time
	}{
		// Leap year: Jan 31 + 1 month lands on Feb 29, not Mar 2.
		{Frequency{1, UnitMonths}, date(2024, time.January, 31), date(2024, time.February, 29)},
		// Non-leap year clamps to Feb 28.
		{Frequency{1, UnitMonths}, date(2023, time.January, 31), date(2023, time.February, 28)},
		{Frequency{1, UnitMonths}, date(2024, time.March, 31), date(2024, time.April, 30)},
		{Frequency{3, UnitMonths}, date(2024, time.November, 30), date(2025, time.February, 28)},
		{Frequency{6, UnitMonths}, date(2024, time.August, 31), date(2025, time.February, 28)},
		{Frequency{1, UnitMonths}, date(2024, time.February, 15), date(2024, time.March, 15)},
	}

	for _, tc := range cases {
		got := tc.freq.Next(tc.base)
		if !got.Equal(tc.want) {
			t.Errorf("%+v after %s = %s, want %s",
				tc.freq, tc.base.Format("2006-01-02"), got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestNextYearArithmeticClampsLeapDay(t *testing.T) {
	if got := (Frequency{1, UnitYears}).Next(date(2024, time.February, 29)); !got.Equal(date(2025, time.February, 28)) {
		t.Errorf("1 year after 2024-02-29 = %s", got.Format("2006-01-02"))
	}
	if got := (Frequency{4, UnitYears}).Next(date(2024, time.February, 29)); !got.Equal(date(2028, time.February, 29)) {
		t.Errorf("4 years after 2024-02-29 = %s", got.Format("2006-01-02"))
	}
}
