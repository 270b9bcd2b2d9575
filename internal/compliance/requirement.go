package compliance

import "time"

// Requirement - результат проверки работника на дату
type Requirement struct {
	Required           bool   `json:"required"`
	IsHoliday          bool   `json:"is_holiday"`
	HolidayName        string `json:"holiday_name,omitempty"`
	HolidayIsMandatory bool   `json:"holiday_is_mandatory"`
}

// Evaluate определяет, должен ли работник отчитаться за дату.
// Необязательный праздник освобождает день только при exclude_holidays,
// иначе решает недельный график. Неизвестный график считается MON_FRI.
func Evaluate(w Worker, date time.Time, cal Calendar) Requirement {
	h, isHoliday := cal.Lookup(w.Country(), date)

	if isHoliday && !h.IsRequired && w.ExcludeHolidays {
		return Requirement{Required: false, IsHoliday: true, HolidayName: h.Name}
	}

	req := Requirement{
		IsHoliday:          isHoliday,
		HolidayIsMandatory: isHoliday && h.IsRequired,
	}
	if isHoliday {
		req.HolidayName = h.Name
	}

	wd := Day(date).Weekday()
	switch w.RequiredSchedule {
	case ScheduleAllDays:
		req.Required = true
	case ScheduleMonSat:
		req.Required = wd != time.Sunday
	default:
		req.Required = wd != time.Saturday && wd != time.Sunday
	}
	return req
}

func CountRequired(w Worker, r DateRange, cal Calendar) int {
	n := 0
	for _, d := range r.Days() {
		if Evaluate(w, d, cal).Required {
			n++
		}
	}
	return n
}
