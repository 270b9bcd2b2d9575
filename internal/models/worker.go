package models

import (
	"strings"
	"time"

	"sleep-tracker/internal/compliance"
)

type Worker struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	WorkerName       string    `gorm:"not null" json:"worker_name"`
	WorkerKey        string    `gorm:"uniqueIndex;not null" json:"worker_key"`
	CountryCode      string    `gorm:"type:varchar(2);not null;default:'PE'" json:"country_code"`
	Timezone         string    `gorm:"not null;default:'America/Lima'" json:"timezone"`
	RequiredSchedule string    `gorm:"type:varchar(16);not null;default:'MON_FRI'" json:"required_schedule"`
	ExcludeHolidays  bool      `gorm:"not null" json:"exclude_holidays"`
	IsActive         bool      `gorm:"not null;index" json:"is_active"`
	ChatID           *int64    `gorm:"uniqueIndex" json:"chat_id,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName задает имя таблицы в БД
func (Worker) TableName() string {
	return "workers"
}

// ToCompliance отдает только то, что нужно движку
func (w *Worker) ToCompliance() compliance.Worker {
	return compliance.Worker{
		Key:              w.WorkerKey,
		Name:             w.WorkerName,
		CountryCode:      strings.ToUpper(w.CountryCode),
		RequiredSchedule: w.RequiredSchedule,
		ExcludeHolidays:  w.ExcludeHolidays,
		IsActive:         w.IsActive,
	}
}

// IsValidSchedule проверяет, что график из известного набора
func IsValidSchedule(schedule string) bool {
	switch schedule {
	case compliance.ScheduleMonFri, compliance.ScheduleMonSat, compliance.ScheduleAllDays:
		return true
	}
	return false
}

func WorkersToCompliance(workers []*Worker) []compliance.Worker {
	out := make([]compliance.Worker, 0, len(workers))
	for _, w := range workers {
		out = append(out, w.ToCompliance())
	}
	return out
}
