package compliance

// 5 h 45 min
const DefaultMinSleepMinutes = 345

// Verdict - результат проверки минимума сна: да, нет или неизвестно
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictNotMet
	VerdictMet
)

func (v Verdict) String() string {
	switch v {
	case VerdictMet:
		return "met"
	case VerdictNotMet:
		return "not_met"
	}
	return "unknown"
}

// MarshalJSON: true/false, неизвестно - null
func (v Verdict) MarshalJSON() ([]byte, error) {
	switch v {
	case VerdictMet:
		return []byte("true"), nil
	case VerdictNotMet:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

// NormalizeThreshold возвращает порог из (0, 1440) или DefaultMinSleepMinutes
func NormalizeThreshold(minutes int) int {
	if minutes > 0 && minutes < MinutesPerDay {
		return minutes
	}
	return DefaultMinSleepMinutes
}

// MeetsMinimum сравнивает запись с порогом: по числу минут, иначе по тексту
func MeetsMinimum(rec Submission, thresholdMinutes int) Verdict {
	threshold := NormalizeThreshold(thresholdMinutes)

	minutes, ok := 0, false
	if rec.DurationMin != nil {
		minutes, ok = *rec.DurationMin, true
	} else {
		minutes, ok = ParseDuration(rec.SleepText)
	}
	if !ok {
		return VerdictUnknown
	}
	if minutes >= threshold {
		return VerdictMet
	}
	return VerdictNotMet
}
