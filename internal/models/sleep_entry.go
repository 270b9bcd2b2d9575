package models

import (
	"time"

	"sleep-tracker/internal/compliance"
)

type SleepEntry struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	WorkerID    uint      `gorm:"not null;index" json:"worker_id"`
	WorkerName  string    `gorm:"not null" json:"worker_name"`
	WorkerKey   string    `gorm:"not null;index:idx_sleep_entries_worker_date" json:"worker_key"`
	Date        string    `gorm:"type:varchar(10);not null;index;index:idx_sleep_entries_worker_date" json:"date"` // YYYY-MM-DD
	SleepH      int       `gorm:"not null" json:"sleep_h"`
	SleepM      int       `gorm:"not null" json:"sleep_m"`
	SleepText   string    `gorm:"not null" json:"sleep_text"`
	DurationMin *int      `json:"duration_min"`
	Source      string    `gorm:"type:varchar(20);not null;default:'manual'" json:"source"`
	ChatID      *string   `json:"chat_id,omitempty"`
	FileID      *string   `json:"file_id,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	RawText     *string   `json:"raw_text,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	PDFURL      *string   `gorm:"column:pdf_url" json:"pdf_url,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (SleepEntry) TableName() string {
	return "sleep_entries"
}

// Источники записей
const (
	SourceManual   = "manual"
	SourceAPI      = "api"
	SourceTelegram = "telegram"
)

// ToCompliance переводит запись в формат движка; дата с ошибкой даёт нулевую дату
func (e *SleepEntry) ToCompliance() compliance.Submission {
	day, _ := time.Parse(compliance.DateLayout, e.Date)
	return compliance.Submission{
		ID:          e.ID,
		WorkerKey:   e.WorkerKey,
		WorkerName:  e.WorkerName,
		Date:        day,
		DurationMin: e.DurationMin,
		SleepText:   e.SleepText,
		Source:      e.Source,
		CreatedAt:   e.CreatedAt.UTC(),
		ImageURL:    deref(e.ImageURL),
		PDFURL:      deref(e.PDFURL),
		FileID:      deref(e.FileID),
	}
}

func EntriesToCompliance(entries []*SleepEntry) []compliance.Submission {
	out := make([]compliance.Submission, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ToCompliance())
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
