package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"sleep-tracker/internal/compliance"
	"sleep-tracker/internal/logging"
	"sleep-tracker/internal/models"
	"sleep-tracker/internal/repository"
	"sleep-tracker/pkg/holidays"

	"github.com/6tail/lunar-go/HolidayUtil"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/br"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/pt"
	"github.com/rickar/cal/v2/us"
	"github.com/sirupsen/logrus"
)

type HolidayService struct {
	repo      repository.HolidayRepository
	calendars map[string]*cal.BusinessCalendar
	logger    *logrus.Logger
}

func NewHolidayService(repo repository.HolidayRepository) *HolidayService {
	s := &HolidayService{
		repo:      repo,
		calendars: make(map[string]*cal.BusinessCalendar),
		logger:    logging.New(),
	}
	s.initCalendars()
	return s
}

func (s *HolidayService) initCalendars() {
	s.calendars["US"] = createCalendar("United States", us.Holidays...)
	s.calendars["CA"] = createCalendar("Canada", ca.Holidays...)
	s.calendars["BR"] = createCalendar("Brazil", br.Holidays...)
	s.calendars["ES"] = createCalendar("Spain", es.Holidays...)
	s.calendars["PT"] = createCalendar("Portugal", pt.Holidays...)
	s.calendars["GB"] = createCalendar("United Kingdom", gb.Holidays...)
	s.calendars["DE"] = createCalendar("Germany", de.Holidays...)
	s.calendars["FR"] = createCalendar("France", fr.Holidays...)
	s.calendars["IT"] = createCalendar("Italy", it.Holidays...)
	s.calendars["JP"] = createCalendar("Japan", jp.Holidays...)
}

func createCalendar(name string, list ...*cal.Holiday) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = name
	c.AddHoliday(list...)
	return c
}

// GeneratedCountries возвращает страны, для которых праздники можно сгенерировать
func (s *HolidayService) GeneratedCountries() []string {
	codes := []string{"CN"}
	for code := range s.calendars {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LoadFile загружает праздники из YAML/JSON файла в базу данных
func (s *HolidayService) LoadFile(ctx context.Context, path string) (int, error) {
	parsed, err := holidays.ParseFile(path)
	if err != nil {
		return 0, err
	}

	records := make([]models.Holiday, 0, len(parsed))
	for _, h := range parsed {
		records = append(records, models.Holiday{
			Date:        h.DateKey(),
			CountryCode: h.CountryCode,
			Name:        h.Name,
			IsRequired:  h.IsRequired,
			Source:      models.HolidaySourceFile,
		})
	}

	if err := s.repo.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to store holidays: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"file":      path,
		"count":     len(records),
		"countries": holidays.Countries(parsed),
	}).Info("Holidays loaded from file")

	return len(records), nil
}

// Generate вычисляет праздники страны за год и сохраняет их
func (s *HolidayService) Generate(ctx context.Context, country string, year int) (int, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if year < 1900 || year > 2100 {
		return 0, invalidf("year must be YYYY")
	}

	var records []models.Holiday
	switch {
	case country == "CN":
		records = generateChina(year)
	case s.calendars[country] != nil:
		records = generateFromCalendar(s.calendars[country], country, year)
	default:
		return 0, invalidf("holiday generation is not supported for country %q (supported: %s)",
			country, strings.Join(s.GeneratedCountries(), ", "))
	}

	records, err := s.keepFileHolidays(ctx, country, year, records)
	if err != nil {
		return 0, err
	}

	if err := s.repo.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to store holidays: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"country": country,
		"year":    year,
		"count":   len(records),
	}).Info("Holidays generated")

	return len(records), nil
}

// keepFileHolidays убирает сгенерированные дни, которые уже заданы файлом: файл приоритетнее
func (s *HolidayService) keepFileHolidays(ctx context.Context, country string, year int, records []models.Holiday) ([]models.Holiday, error) {
	existing, err := s.repo.GetByYear(ctx, year, country)
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}

	fromFile := make(map[string]bool)
	for _, h := range existing {
		if h.Source == models.HolidaySourceFile {
			fromFile[h.Date] = true
		}
	}
	if len(fromFile) == 0 {
		return records, nil
	}

	kept := make([]models.Holiday, 0, len(records))
	for _, h := range records {
		if fromFile[h.Date] {
			continue
		}
		kept = append(kept, h)
	}

	s.logger.WithFields(logrus.Fields{
		"country": country,
		"year":    year,
		"skipped": len(records) - len(kept),
	}).Debug("Generated holidays defined in file are skipped")

	return kept, nil
}

func generateFromCalendar(c *cal.BusinessCalendar, country string, year int) []models.Holiday {
	var records []models.Holiday
	start := time.Date(year, time.January, 1, 12, 0, 0, 0, time.UTC)
	for d := start; d.Year() == year; d = d.AddDate(0, 0, 1) {
		actual, observed, h := c.IsHoliday(d)
		if !(actual || observed) || h == nil {
			continue
		}
		name := h.Name
		if observed && !actual {
			name += " (observed)"
		}
		records = append(records, models.Holiday{
			Date:        d.Format(compliance.DateLayout),
			CountryCode: country,
			Name:        name,
			Source:      models.HolidaySourceCal,
		})
	}
	return records
}

// generateChina использует официальный календарь; переносы рабочих дней помечаются обязательными
func generateChina(year int) []models.Holiday {
	var records []models.Holiday
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Year() == year; d = d.AddDate(0, 0, 1) {
		h := HolidayUtil.GetHolidayByYmd(d.Year(), int(d.Month()), d.Day())
		if h == nil {
			continue
		}
		records = append(records, models.Holiday{
			Date:        d.Format(compliance.DateLayout),
			CountryCode: "CN",
			Name:        h.GetName(),
			IsRequired:  h.IsWork(),
			Source:      models.HolidaySourceLunar,
		})
	}
	return records
}

func (s *HolidayService) ListYear(ctx context.Context, year int, country string) ([]models.Holiday, error) {
	list, err := s.repo.GetByYear(ctx, year, strings.ToUpper(strings.TrimSpace(country)))
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}
	if list == nil {
		list = []models.Holiday{}
	}
	return list, nil
}

// CalendarForRange собирает календарь праздников для движка
func (s *HolidayService) CalendarForRange(ctx context.Context, r compliance.DateRange) (compliance.Calendar, error) {
	list, err := s.repo.GetByRange(ctx, compliance.DateKey(r.Start), compliance.DateKey(r.End))
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}
	return models.BuildCalendar(list), nil
}
