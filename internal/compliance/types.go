// Package compliance считает обязательные дни отчета о сне, схлопывает дубли
// записей и строит показатели выполнения по работникам и по всей группе.
//
// Функции пакета чистые: ни часов, ни БД, ни сети. "Сегодня" и календарь
// праздников передает вызывающий.
package compliance

import (
	"strings"
	"time"
)

// DateLayout - формат календарной даты
const DateLayout = "2006-01-02"

// Недельные графики отчетности
const (
	ScheduleMonFri  = "MON_FRI"
	ScheduleMonSat  = "MON_SAT"
	ScheduleAllDays = "ALL_DAYS"
)

// DefaultCountry - для работников без кода страны
const DefaultCountry = "PE"

// Worker - данные работника, нужные для расчета
type Worker struct {
	Key              string
	Name             string
	CountryCode      string
	RequiredSchedule string
	ExcludeHolidays  bool
	IsActive         bool
}

// Country возвращает код страны в верхнем регистре или DefaultCountry
func (w Worker) Country() string {
	cc := strings.ToUpper(strings.TrimSpace(w.CountryCode))
	if cc == "" {
		return DefaultCountry
	}
	return cc
}

// Submission - исходная запись о сне. DurationMin == nil означает неизвестную
// длительность, но SleepText еще может ее содержать
type Submission struct {
	ID          string
	WorkerKey   string
	WorkerName  string
	Date        time.Time
	DurationMin *int
	SleepText   string
	Source      string
	CreatedAt   time.Time
	ImageURL    string
	PDFURL      string
	FileID      string
}

// Holiday - праздник страны на дату
type Holiday struct {
	Name       string
	IsRequired bool
}

// Calendar: страна -> YYYY-MM-DD -> праздник
type Calendar map[string]map[string]Holiday

func (c Calendar) Add(country string, date time.Time, h Holiday) {
	cc := strings.ToUpper(country)
	if c[cc] == nil {
		c[cc] = make(map[string]Holiday)
	}
	c[cc][DateKey(date)] = h
}

func (c Calendar) Lookup(country string, date time.Time) (Holiday, bool) {
	days, ok := c[strings.ToUpper(country)]
	if !ok {
		return Holiday{}, false
	}
	h, ok := days[DateKey(date)]
	return h, ok
}

// DateRange - полуоткрытый интервал дат [Start, End)
type DateRange struct {
	Start time.Time
	End   time.Time
}

func MonthRange(year int, month time.Month) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

func DayRange(date time.Time) DateRange {
	start := Day(date)
	return DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// Days перечисляет все дни интервала
func (r DateRange) Days() []time.Time {
	var days []time.Time
	end := Day(r.End)
	for d := Day(r.Start); d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Day приводит t к полуночи UTC того же календарного дня (по полям t, без перевода зоны)
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func DateKey(t time.Time) string {
	return Day(t).Format(DateLayout)
}
