package compliance

import (
	"fmt"
	"regexp"
	"strconv"
)

// MinutesPerDay - верхняя граница длительности сна
const MinutesPerDay = 24 * 60

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*h\s*(\d+)\s*min`)

func ToMinutes(hours, minutes int) int {
	return hours*60 + minutes
}

// FormatDuration форматирует минуты как "<h> h <m> min"
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%d h %d min", minutes/60, minutes%60)
}

// ParseDuration ищет первое вхождение "<h> h <m> min" в тексте
func ParseDuration(text string) (int, bool) {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return ToMinutes(h, mins), true
}

func formatPtr(minutes *int) *string {
	if minutes == nil {
		return nil
	}
	s := FormatDuration(*minutes)
	return &s
}
