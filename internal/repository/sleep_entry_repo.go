package repository

import (
	"context"
	"errors"

	"sleep-tracker/internal/logging"
	"sleep-tracker/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SleepEntryRepository interface {
	Create(ctx context.Context, entry *models.SleepEntry) error
	GetByID(ctx context.Context, id string) (*models.SleepEntry, error)
	// start включительно, end не включительно (YYYY-MM-DD)
	GetByDateRange(ctx context.Context, start, end string) ([]*models.SleepEntry, error)
	GetByWorkerAndRange(ctx context.Context, workerKey, start, end string) ([]*models.SleepEntry, error)
}

type GormSleepEntryRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormSleepEntryRepository(db *gorm.DB) (*GormSleepEntryRepository, error) {
	logger := logging.New()

	if err := db.AutoMigrate(&models.SleepEntry{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate sleep_entries table")
		return nil, err
	}

	logger.Info("Sleep entry repository initialized")

	return &GormSleepEntryRepository{db: db, logger: logger}, nil
}

func (r *GormSleepEntryRepository) Create(ctx context.Context, entry *models.SleepEntry) error {
	if entry.ID == "" || entry.WorkerKey == "" || entry.Date == "" {
		return errors.New("incomplete sleep entry")
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create sleep entry")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":         entry.ID,
		"worker_key": entry.WorkerKey,
		"date":       entry.Date,
		"source":     entry.Source,
	}).Info("Sleep entry stored")
	return nil
}

func (r *GormSleepEntryRepository) GetByID(ctx context.Context, id string) (*models.SleepEntry, error) {
	var entry models.SleepEntry
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &entry, nil
}

func (r *GormSleepEntryRepository) GetByDateRange(ctx context.Context, start, end string) ([]*models.SleepEntry, error) {
	var entries []*models.SleepEntry
	result := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Order("date, created_at").
		Find(&entries)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get sleep entries by range")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"start": start,
		"end":   end,
		"count": len(entries),
	}).Debug("Retrieved sleep entries")
	return entries, nil
}

func (r *GormSleepEntryRepository) GetByWorkerAndRange(ctx context.Context, workerKey, start, end string) ([]*models.SleepEntry, error) {
	var entries []*models.SleepEntry
	result := r.db.WithContext(ctx).
		Where("worker_key = ? AND date >= ? AND date < ?", workerKey, start, end).
		Order("date, created_at").
		Find(&entries)

	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}
