package models

import (
	"time"

	"sleep-tracker/internal/compliance"
)

type Holiday struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Date        string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_holidays_date_country" json:"date"`
	CountryCode string    `gorm:"type:varchar(4);not null;uniqueIndex:idx_holidays_date_country" json:"country_code"`
	Name        string    `gorm:"not null" json:"name"`
	IsRequired  bool      `gorm:"not null;default:false" json:"is_required"`
	Source      string    `gorm:"type:varchar(20);not null;default:'file'" json:"source"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (Holiday) TableName() string {
	return "holidays"
}

// Откуда взят праздник
const (
	HolidaySourceFile  = "file"
	HolidaySourceCal   = "cal"
	HolidaySourceLunar = "lunar"
)

// BuildCalendar собирает календарь праздников для движка
func BuildCalendar(holidays []Holiday) compliance.Calendar {
	cal := compliance.Calendar{}
	for _, h := range holidays {
		day, err := time.Parse(compliance.DateLayout, h.Date)
		if err != nil {
			continue
		}
		cal.Add(h.CountryCode, day, compliance.Holiday{Name: h.Name, IsRequired: h.IsRequired})
	}
	return cal
}
