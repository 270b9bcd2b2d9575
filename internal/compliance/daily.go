package compliance

import "time"

// DayEntry - работник с записью за день
type DayEntry struct {
	WorkerName      string    `json:"worker_name"`
	WorkerKey       string    `json:"worker_key"`
	SleepText       string    `json:"sleep_text"`
	DurationMin     *int      `json:"duration_min"`
	MinSleepMinutes int       `json:"min_sleep_minutes"`
	MeetsMin        Verdict   `json:"meets_min"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
	ImageURL        string    `json:"image_url,omitempty"`
	PDFURL          string    `json:"pdf_url,omitempty"`
	RequiredToday   bool      `json:"required_today"`
	IsHoliday       bool      `json:"is_holiday"`
	HolidayName     string    `json:"holiday_name,omitempty"`
}

// PendingEntry - работник, который должен был отчитаться, но не сделал этого
type PendingEntry struct {
	WorkerName    string `json:"worker_name"`
	WorkerKey     string `json:"worker_key"`
	RequiredToday bool   `json:"required_today"`
	IsHoliday     bool   `json:"is_holiday"`
	HolidayName   string `json:"holiday_name,omitempty"`
}

// HolidayNotice - строка сводки праздников дня
type HolidayNotice struct {
	CountryCode string `json:"country_code"`
	Name        string `json:"name"`
	IsRequired  bool   `json:"is_required"`
}

// DayStatus - состояние всех работников на одну дату
type DayStatus struct {
	Date                  time.Time       `json:"-"`
	Registered            []DayEntry      `json:"registered"`
	Pending               []PendingEntry  `json:"pending"`
	RegisteredNotRequired []DayEntry      `json:"registered_not_required"`
	HolidaySummary        []HolidayNotice `json:"holiday_summary"`
}

// DailyStatus делит активных работников на отчитавшихся и ожидающих.
// Записи за другие даты игнорируются.
func DailyStatus(workers []Worker, subs []Submission, cal Calendar, date time.Time, thresholdMinutes int) DayStatus {
	date = Day(date)
	threshold := NormalizeThreshold(thresholdMinutes)

	var sameDay []Submission
	for _, s := range subs {
		if Day(s.Date).Equal(date) {
			sameDay = append(sameDay, s)
		}
	}
	records := make(map[string]Submission)
	for _, rec := range Consolidate(sameDay).Records {
		records[rec.WorkerKey] = rec
	}

	day := DayStatus{
		Date:                  date,
		Registered:            []DayEntry{},
		Pending:               []PendingEntry{},
		RegisteredNotRequired: []DayEntry{},
		HolidaySummary:        []HolidayNotice{},
	}

	for _, w := range workers {
		if !w.IsActive {
			continue
		}
		req := Evaluate(w, date, cal)

		rec, ok := records[w.Key]
		if !ok {
			if req.Required {
				day.Pending = append(day.Pending, PendingEntry{
					WorkerName:    w.Name,
					WorkerKey:     w.Key,
					RequiredToday: true,
					IsHoliday:     req.IsHoliday,
					HolidayName:   req.HolidayName,
				})
			}
			continue
		}

		entry := DayEntry{
			WorkerName:      w.Name,
			WorkerKey:       w.Key,
			SleepText:       rec.SleepText,
			DurationMin:     rec.DurationMin,
			MinSleepMinutes: threshold,
			MeetsMin:        MeetsMinimum(rec, threshold),
			Source:          rec.Source,
			CreatedAt:       rec.CreatedAt,
			ImageURL:        rec.ImageURL,
			PDFURL:          rec.PDFURL,
			RequiredToday:   req.Required,
			IsHoliday:       req.IsHoliday,
			HolidayName:     req.HolidayName,
		}
		day.Registered = append(day.Registered, entry)
		if !req.Required {
			day.RegisteredNotRequired = append(day.RegisteredNotRequired, entry)
		}
	}

	day.HolidaySummary = holidaySummary(workers, cal, date)
	return day
}

func holidaySummary(workers []Worker, cal Calendar, date time.Time) []HolidayNotice {
	seen := make(map[HolidayNotice]bool)
	out := []HolidayNotice{}
	for _, w := range workers {
		if !w.IsActive {
			continue
		}
		cc := w.Country()
		h, ok := cal.Lookup(cc, date)
		if !ok {
			continue
		}
		n := HolidayNotice{CountryCode: cc, Name: h.Name, IsRequired: h.IsRequired}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
