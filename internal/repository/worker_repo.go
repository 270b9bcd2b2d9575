package repository

import (
	"context"
	"errors"

	"sleep-tracker/internal/logging"
	"sleep-tracker/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type WorkerRepository interface {
	Create(ctx context.Context, worker *models.Worker) error
	Update(ctx context.Context, worker *models.Worker) error
	GetByKey(ctx context.Context, key string) (*models.Worker, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.Worker, error)
	GetAll(ctx context.Context) ([]*models.Worker, error)
	GetActive(ctx context.Context) ([]*models.Worker, error)
	GetLinkedActive(ctx context.Context) ([]*models.Worker, error)
}

type GormWorkerRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWorkerRepository(db *gorm.DB) (*GormWorkerRepository, error) {
	logger := logging.New()

	// Автомиграция
	if err := db.AutoMigrate(&models.Worker{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate workers table")
		return nil, err
	}

	return &GormWorkerRepository{db: db, logger: logger}, nil
}

func (r *GormWorkerRepository) Create(ctx context.Context, worker *models.Worker) error {
	existing, err := r.GetByKey(ctx, worker.WorkerKey)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("worker already exists")
	}

	if err := r.db.WithContext(ctx).Create(worker).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create worker")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"worker_key": worker.WorkerKey,
		"country":    worker.CountryCode,
	}).Info("Worker created")
	return nil
}

func (r *GormWorkerRepository) Update(ctx context.Context, worker *models.Worker) error {
	if worker.ID == 0 {
		return errors.New("worker not found")
	}

	// Select("*") чтобы false тоже записывался
	result := r.db.WithContext(ctx).Model(worker).Select("*").Omit("created_at").Updates(worker)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update worker")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("worker not found")
	}
	return nil
}

func (r *GormWorkerRepository) GetByKey(ctx context.Context, key string) (*models.Worker, error) {
	var worker models.Worker
	result := r.db.WithContext(ctx).Where("worker_key = ?", key).First(&worker)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get worker by key")
		return nil, result.Error
	}

	return &worker, nil
}

func (r *GormWorkerRepository) GetByChatID(ctx context.Context, chatID int64) (*models.Worker, error) {
	var worker models.Worker
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&worker)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &worker, nil
}

func (r *GormWorkerRepository) GetAll(ctx context.Context) ([]*models.Worker, error) {
	var workers []*models.Worker
	result := r.db.WithContext(ctx).Order("worker_name, worker_key").Find(&workers)
	if result.Error != nil {
		return nil, result.Error
	}
	return workers, nil
}

func (r *GormWorkerRepository) GetActive(ctx context.Context) ([]*models.Worker, error) {
	var workers []*models.Worker
	result := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("worker_name, worker_key").
		Find(&workers)
	if result.Error != nil {
		return nil, result.Error
	}
	return workers, nil
}

// GetLinkedActive возвращает активных работников с привязанным Telegram чатом
func (r *GormWorkerRepository) GetLinkedActive(ctx context.Context) ([]*models.Worker, error) {
	var workers []*models.Worker
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND chat_id IS NOT NULL", true).
		Order("worker_name").
		Find(&workers)
	if result.Error != nil {
		return nil, result.Error
	}
	return workers, nil
}
