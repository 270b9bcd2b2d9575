package service

import (
	"strings"
	"time"

	"sleep-tracker/internal/compliance"
)

// Period - месяц отчета в виде полуоткрытого интервала дат
type Period struct {
	Start        string `json:"start"`
	EndExclusive string `json:"end_exclusive"`
}

func periodOf(r compliance.DateRange) Period {
	return Period{Start: compliance.DateKey(r.Start), EndExclusive: compliance.DateKey(r.End)}
}

// ParseMonth разбирает месяц в формате YYYY-MM
func ParseMonth(month string) (compliance.DateRange, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return compliance.DateRange{}, invalidf("month must be YYYY-MM")
	}
	return compliance.MonthRange(t.Year(), t.Month()), nil
}

// ParseDate разбирает дату в формате YYYY-MM-DD
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(compliance.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, invalidf("date must be YYYY-MM-DD")
	}
	return t, nil
}

// TodayIn возвращает текущую календарную дату в часовом поясе loc
func TodayIn(now time.Time, loc *time.Location) time.Time {
	return compliance.Day(now.In(loc))
}
