package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sleep-tracker/internal/compliance"
	"sleep-tracker/internal/logging"
	"sleep-tracker/internal/models"
	"sleep-tracker/internal/repository"

	"github.com/sirupsen/logrus"
)

// MonthlyRanking - отчет о соблюдении за месяц
type MonthlyRanking struct {
	Month           string `json:"month"`
	Range           Period `json:"range"`
	MinSleepMinutes int    `json:"min_sleep_minutes"`
	compliance.Ranking
}

// DayReport - статус отчетов за один день
type DayReport struct {
	Date            string `json:"date"`
	MinSleepMinutes int    `json:"min_sleep_minutes"`
	RegisteredCount int    `json:"registered_count"`
	PendingCount    int    `json:"pending_count"`
	compliance.DayStatus
}

type ReportService struct {
	workers  repository.WorkerRepository
	entries  repository.SleepEntryRepository
	holidays *HolidayService
	minSleep int
	loc      *time.Location
	now      func() time.Time
	logger   *logrus.Logger
}

func NewReportService(
	workers repository.WorkerRepository,
	entries repository.SleepEntryRepository,
	holidays *HolidayService,
	minSleepMinutes int,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		workers:  workers,
		entries:  entries,
		holidays: holidays,
		minSleep: compliance.NormalizeThreshold(minSleepMinutes),
		loc:      loc,
		now:      time.Now,
		logger:   logging.New(),
	}
}

// SetClock подменяет источник текущего времени
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// MinSleepMinutes возвращает действующий порог сна
func (s *ReportService) MinSleepMinutes() int {
	return s.minSleep
}

// CurrentDate возвращает текущую дату в часовом поясе по умолчанию
func (s *ReportService) CurrentDate() time.Time {
	return TodayIn(s.now(), s.loc)
}

// load собирает все, что нужно движку для интервала
func (s *ReportService) load(ctx context.Context, r compliance.DateRange) ([]*models.Worker, []*models.SleepEntry, compliance.Calendar, error) {
	workers, err := s.workers.GetActive(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get workers: %w", err)
	}

	p := periodOf(r)
	entries, err := s.entries.GetByDateRange(ctx, p.Start, p.EndExclusive)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get sleep entries: %w", err)
	}

	cal, err := s.holidays.CalendarForRange(ctx, r)
	if err != nil {
		return nil, nil, nil, err
	}

	return workers, entries, cal, nil
}

func (s *ReportService) MonthlyRanking(ctx context.Context, month string) (*MonthlyRanking, error) {
	r, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}

	workers, entries, cal, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}

	ranking := compliance.Aggregate(models.WorkersToCompliance(workers), models.EntriesToCompliance(entries), cal, r)

	s.logger.WithFields(logrus.Fields{
		"month":   month,
		"workers": len(ranking.Workers),
		"entries": len(entries),
	}).Debug("Monthly ranking built")

	return &MonthlyRanking{
		Month:           strings.TrimSpace(month),
		Range:           periodOf(r),
		MinSleepMinutes: s.minSleep,
		Ranking:         ranking,
	}, nil
}

// Today строит статус за дату; пустая дата - сегодня в часовом поясе по умолчанию
func (s *ReportService) Today(ctx context.Context, date string) (*DayReport, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		day = s.CurrentDate()
	} else {
		parsed, err := ParseDate(date)
		if err != nil {
			return nil, err
		}
		day = parsed
	}

	workers, entries, cal, err := s.load(ctx, compliance.DayRange(day))
	if err != nil {
		return nil, err
	}

	status := compliance.DailyStatus(models.WorkersToCompliance(workers), models.EntriesToCompliance(entries), cal, day, s.minSleep)

	return &DayReport{
		Date:            compliance.DateKey(day),
		MinSleepMinutes: s.minSleep,
		RegisteredCount: len(status.Registered),
		PendingCount:    len(status.Pending),
		DayStatus:       status,
	}, nil
}

// WorkerMonth возвращает отчет одного работника; неактивный тоже получает свой отчет
func (s *ReportService) WorkerMonth(ctx context.Context, key, month string) (*compliance.ComplianceReport, error) {
	r, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}

	worker, err := s.workers.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	if worker == nil {
		return nil, fmt.Errorf("worker %q: %w", key, ErrNotFound)
	}

	p := periodOf(r)
	entries, err := s.entries.GetByWorkerAndRange(ctx, worker.WorkerKey, p.Start, p.EndExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to get sleep entries: %w", err)
	}
	cal, err := s.holidays.CalendarForRange(ctx, r)
	if err != nil {
		return nil, err
	}

	w := worker.ToCompliance()
	w.IsActive = true
	ranking := compliance.Aggregate([]compliance.Worker{w}, models.EntriesToCompliance(entries), cal, r)
	return &ranking.Workers[0], nil
}
