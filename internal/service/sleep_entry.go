package service

import (
	"context"
	"fmt"
	"strings"

	"sleep-tracker/internal/compliance"
	"sleep-tracker/internal/logging"
	"sleep-tracker/internal/models"
	"sleep-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SubmitInput - данные одной записи о сне
type SubmitInput struct {
	WorkerName  string  `json:"worker_name" validate:"required,max=120"`
	CountryCode string  `json:"country_code" validate:"omitempty,len=2,alpha"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	SleepH      *int    `json:"sleep_h" validate:"required,min=0,max=24"`
	SleepM      *int    `json:"sleep_m" validate:"required,min=0,max=59"`
	Source      string  `json:"source" validate:"omitempty,max=20"`
	ChatID      *string `json:"chat_id"`
	FileID      *string `json:"file_id"`
	Notes       *string `json:"notes"`
	RawText     *string `json:"raw_text"`
	ImageURL    *string `json:"image_url"`
	PDFURL      *string `json:"pdf_url"`
}

// MonthEntries - консолидированные записи за месяц
type MonthEntries struct {
	Month             string               `json:"month"`
	Range             Period               `json:"range"`
	RawCount          int                  `json:"raw_count"`
	ConsolidatedCount int                  `json:"consolidated_count"`
	Entries           []*models.SleepEntry `json:"entries"`
}

type SleepEntryService struct {
	repo    repository.SleepEntryRepository
	workers *WorkerService
	logger  *logrus.Logger
}

func NewSleepEntryService(repo repository.SleepEntryRepository, workers *WorkerService) *SleepEntryService {
	return &SleepEntryService{repo: repo, workers: workers, logger: logging.New()}
}

// Submit проверяет и сохраняет запись о сне, регистрируя работника при необходимости
func (s *SleepEntryService) Submit(ctx context.Context, in SubmitInput) (*models.SleepEntry, error) {
	in.WorkerName = strings.TrimSpace(in.WorkerName)
	in.Date = strings.TrimSpace(in.Date)
	in.Source = strings.TrimSpace(in.Source)
	if in.CountryCode != "" {
		in.CountryCode = strings.ToUpper(strings.TrimSpace(in.CountryCode))
	}

	if err := validateStruct(in); err != nil {
		s.logger.WithError(err).Debug("Rejected sleep entry")
		return nil, err
	}

	worker, err := s.workers.EnsureWorker(ctx, in.WorkerName, in.CountryCode)
	if err != nil {
		return nil, err
	}

	source := in.Source
	if source == "" {
		source = models.SourceManual
	}

	duration := compliance.ToMinutes(*in.SleepH, *in.SleepM)
	entry := &models.SleepEntry{
		ID:          uuid.NewString(),
		WorkerID:    worker.ID,
		WorkerName:  in.WorkerName,
		WorkerKey:   worker.WorkerKey,
		Date:        in.Date,
		SleepH:      *in.SleepH,
		SleepM:      *in.SleepM,
		SleepText:   compliance.FormatDuration(duration),
		DurationMin: &duration,
		Source:      source,
		ChatID:      in.ChatID,
		FileID:      in.FileID,
		Notes:       in.Notes,
		RawText:     in.RawText,
		ImageURL:    in.ImageURL,
		PDFURL:      in.PDFURL,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to store sleep entry: %w", err)
	}

	return entry, nil
}

func (s *SleepEntryService) Get(ctx context.Context, id string) (*models.SleepEntry, error) {
	entry, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get sleep entry: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("sleep entry %q: %w", id, ErrNotFound)
	}
	return entry, nil
}

// MonthEntries возвращает лучшую запись каждого работника за каждый день месяца
func (s *SleepEntryService) MonthEntries(ctx context.Context, month string) (*MonthEntries, error) {
	r, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	period := periodOf(r)

	rows, err := s.repo.GetByDateRange(ctx, period.Start, period.EndExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to get sleep entries: %w", err)
	}

	byID := make(map[string]*models.SleepEntry, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	cons := compliance.Consolidate(models.EntriesToCompliance(rows))
	entries := make([]*models.SleepEntry, 0, len(cons.Records))
	for _, rec := range cons.Records {
		entries = append(entries, byID[rec.ID])
	}

	return &MonthEntries{
		Month:             strings.TrimSpace(month),
		Range:             period,
		RawCount:          len(rows),
		ConsolidatedCount: len(entries),
		Entries:           entries,
	}, nil
}
