package service

import (
	"context"
	"fmt"
	"strings"

	"sleep-tracker/internal/compliance"
	"sleep-tracker/internal/logging"
	"sleep-tracker/internal/models"
	"sleep-tracker/internal/repository"

	"github.com/sirupsen/logrus"
)

// WorkerDefaults - значения для новых работников
type WorkerDefaults struct {
	Country         string
	Timezone        string
	Schedule        string
	ExcludeHolidays bool
}

type WorkerService struct {
	repo     repository.WorkerRepository
	defaults WorkerDefaults
	logger   *logrus.Logger
}

func NewWorkerService(repo repository.WorkerRepository, defaults WorkerDefaults) *WorkerService {
	if defaults.Country == "" {
		defaults.Country = compliance.DefaultCountry
	}
	if defaults.Timezone == "" {
		defaults.Timezone = "America/Lima"
	}
	if !models.IsValidSchedule(defaults.Schedule) {
		defaults.Schedule = compliance.ScheduleMonFri
	}

	return &WorkerService{repo: repo, defaults: defaults, logger: logging.New()}
}

// EnsureWorker возвращает работника по имени, создавая его при первом обращении
func (s *WorkerService) EnsureWorker(ctx context.Context, name, country string) (*models.Worker, error) {
	name = strings.TrimSpace(name)
	key := compliance.NormalizeWorkerKey(name)
	if key == "" {
		return nil, invalidf("worker_name is required")
	}

	worker, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	if worker != nil {
		return worker, nil
	}

	cc := strings.ToUpper(strings.TrimSpace(country))
	if cc == "" {
		cc = s.defaults.Country
	}

	worker = &models.Worker{
		WorkerName:       name,
		WorkerKey:        key,
		CountryCode:      cc,
		Timezone:         s.defaults.Timezone,
		RequiredSchedule: s.defaults.Schedule,
		ExcludeHolidays:  s.defaults.ExcludeHolidays,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, worker); err != nil {
		// Параллельный запрос мог создать того же работника
		existing, getErr := s.repo.GetByKey(ctx, key)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"worker_key": key,
		"country":    cc,
	}).Info("New worker registered")

	return worker, nil
}

func (s *WorkerService) ListActive(ctx context.Context) ([]*models.Worker, error) {
	return s.repo.GetActive(ctx)
}

func (s *WorkerService) List(ctx context.Context) ([]*models.Worker, error) {
	return s.repo.GetAll(ctx)
}

// ListReachable возвращает активных работников с привязанным чатом
func (s *WorkerService) ListReachable(ctx context.Context) ([]*models.Worker, error) {
	return s.repo.GetLinkedActive(ctx)
}

func (s *WorkerService) GetByKey(ctx context.Context, key string) (*models.Worker, error) {
	worker, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	if worker == nil {
		return nil, fmt.Errorf("worker %q: %w", key, ErrNotFound)
	}
	return worker, nil
}

func (s *WorkerService) GetByChatID(ctx context.Context, chatID int64) (*models.Worker, error) {
	worker, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	if worker == nil {
		return nil, ErrNotFound
	}
	return worker, nil
}

// LinkChat привязывает Telegram чат к работнику; у прежнего владельца чат отвязывается
func (s *WorkerService) LinkChat(ctx context.Context, name string, chatID int64) (*models.Worker, error) {
	worker, err := s.EnsureWorker(ctx, name, "")
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	if previous != nil && previous.ID != worker.ID {
		previous.ChatID = nil
		if err := s.repo.Update(ctx, previous); err != nil {
			return nil, fmt.Errorf("failed to unlink chat: %w", err)
		}
	}

	worker.ChatID = &chatID
	if err := s.repo.Update(ctx, worker); err != nil {
		return nil, fmt.Errorf("failed to link chat: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"worker_key": worker.WorkerKey,
		"chat_id":    chatID,
	}).Info("Chat linked to worker")

	return worker, nil
}

// SettingsUpdate - изменяемые администратором настройки; nil означает "не менять"
type SettingsUpdate struct {
	Schedule        *string `json:"required_schedule" validate:"omitempty,oneof=MON_FRI MON_SAT ALL_DAYS"`
	Country         *string `json:"country_code" validate:"omitempty,len=2,alpha"`
	ExcludeHolidays *bool   `json:"exclude_holidays"`
	Active          *bool   `json:"is_active"`
}

func (s *WorkerService) UpdateSettings(ctx context.Context, key string, upd SettingsUpdate) (*models.Worker, error) {
	if upd.Schedule != nil {
		v := strings.ToUpper(strings.TrimSpace(*upd.Schedule))
		upd.Schedule = &v
	}
	if upd.Country != nil {
		v := strings.ToUpper(strings.TrimSpace(*upd.Country))
		upd.Country = &v
	}
	if err := validateStruct(upd); err != nil {
		return nil, err
	}

	worker, err := s.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if upd.Schedule != nil {
		worker.RequiredSchedule = *upd.Schedule
	}
	if upd.Country != nil {
		worker.CountryCode = *upd.Country
	}
	if upd.ExcludeHolidays != nil {
		worker.ExcludeHolidays = *upd.ExcludeHolidays
	}
	if upd.Active != nil {
		worker.IsActive = *upd.Active
	}

	if err := s.repo.Update(ctx, worker); err != nil {
		return nil, fmt.Errorf("failed to update worker: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"worker_key":        worker.WorkerKey,
		"required_schedule": worker.RequiredSchedule,
		"country":           worker.CountryCode,
		"exclude_holidays":  worker.ExcludeHolidays,
		"is_active":         worker.IsActive,
	}).Info("Worker settings updated")

	return worker, nil
}
