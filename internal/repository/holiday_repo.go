package repository

import (
	"context"
	"fmt"

	"sleep-tracker/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HolidayRepository interface {
	Upsert(ctx context.Context, holidays []models.Holiday) error
	GetByRange(ctx context.Context, start, end string) ([]models.Holiday, error)
	GetByYear(ctx context.Context, year int, country string) ([]models.Holiday, error)
}

type GormHolidayRepository struct {
	db *gorm.DB
}

func NewGormHolidayRepository(db *gorm.DB) (*GormHolidayRepository, error) {
	// Автомиграция для таблицы holidays
	if err := db.AutoMigrate(&models.Holiday{}); err != nil {
		return nil, err
	}

	return &GormHolidayRepository{db: db}, nil
}

// Upsert добавляет праздники, существующие (дата + страна) перезаписываются
func (r *GormHolidayRepository) Upsert(ctx context.Context, holidays []models.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "country_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "is_required", "source", "updated_at"}),
	}).Create(&holidays).Error
}

func (r *GormHolidayRepository) GetByRange(ctx context.Context, start, end string) ([]models.Holiday, error) {
	var holidays []models.Holiday
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Order("date, country_code").
		Find(&holidays).Error
	return holidays, err
}

func (r *GormHolidayRepository) GetByYear(ctx context.Context, year int, country string) ([]models.Holiday, error) {
	var holidays []models.Holiday
	q := r.db.WithContext(ctx).Where("date >= ? AND date < ?",
		fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1))
	if country != "" {
		q = q.Where("country_code = ?", country)
	}
	err := q.Order("date, country_code").Find(&holidays).Error
	return holidays, err
}
