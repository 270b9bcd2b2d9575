package api

import (
	"sleep-tracker/internal/compliance"
	"sleep-tracker/internal/models"
	"sleep-tracker/internal/service"
)

type ErrorResponse struct {
	OK     bool                 `json:"ok"`
	Error  string               `json:"error"`
	Detail string               `json:"detail,omitempty"`
	Fields []service.FieldError `json:"fields,omitempty"`
}

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

type EntryCreatedResponse struct {
	OK          bool   `json:"ok"`
	ID          string `json:"id"`
	WorkerName  string `json:"worker_name"`
	WorkerKey   string `json:"worker_key"`
	Date        string `json:"date"`
	SleepH      int    `json:"sleep_h"`
	SleepM      int    `json:"sleep_m"`
	SleepText   string `json:"sleep_text"`
	DurationMin int    `json:"duration_min"`
	Source      string `json:"source"`
}

type EntryResponse struct {
	OK    bool               `json:"ok"`
	Entry *models.SleepEntry `json:"entry"`
}

type EntriesResponse struct {
	OK bool `json:"ok"`
	*service.MonthEntries
}

type RankingResponse struct {
	OK bool `json:"ok"`
	*service.MonthlyRanking
}

type TodayResponse struct {
	OK bool `json:"ok"`
	*service.DayReport
}

type HolidaysResponse struct {
	OK       bool             `json:"ok"`
	Year     string           `json:"year"`
	Country  *string          `json:"country"`
	Holidays []models.Holiday `json:"holidays"`
}

type GenerateHolidaysResponse struct {
	OK      bool   `json:"ok"`
	Country string `json:"country"`
	Year    int    `json:"year"`
	Count   int    `json:"count"`
}

type WorkerDTO struct {
	WorkerName       string `json:"worker_name"`
	WorkerKey        string `json:"worker_key"`
	CountryCode      string `json:"country_code"`
	Timezone         string `json:"timezone"`
	RequiredSchedule string `json:"required_schedule"`
	ExcludeHolidays  bool   `json:"exclude_holidays"`
	IsActive         bool   `json:"is_active"`
}

type WorkersResponse struct {
	OK      bool        `json:"ok"`
	Workers []WorkerDTO `json:"workers"`
}

type WorkerResponse struct {
	OK     bool      `json:"ok"`
	Worker WorkerDTO `json:"worker"`
}

type WorkerStatsResponse struct {
	OK     bool                         `json:"ok"`
	Month  string                       `json:"month"`
	Report *compliance.ComplianceReport `json:"report"`
}

func toWorkerDTO(w *models.Worker) WorkerDTO {
	return WorkerDTO{
		WorkerName:       w.WorkerName,
		WorkerKey:        w.WorkerKey,
		CountryCode:      w.CountryCode,
		Timezone:         w.Timezone,
		RequiredSchedule: w.RequiredSchedule,
		ExcludeHolidays:  w.ExcludeHolidays,
		IsActive:         w.IsActive,
	}
}
