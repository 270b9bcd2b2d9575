package holidays

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SeedFile - структура файла с праздниками (YAML или JSON)
type SeedFile struct {
	// Country применяется к записям без своего кода страны
	Country  string       `yaml:"country"`
	Holidays []SeedRecord `yaml:"holidays"`
}

type SeedRecord struct {
	Date       string `yaml:"date"`
	Country    string `yaml:"country_code"`
	Name       string `yaml:"name"`
	IsRequired bool   `yaml:"is_required"`
}

// Holiday - проверенная запись, готовая к сохранению
type Holiday struct {
	Date        time.Time
	CountryCode string
	Name        string
	IsRequired  bool
}

// DateKey возвращает дату в формате YYYY-MM-DD
func (h Holiday) DateKey() string {
	return h.Date.Format("2006-01-02")
}

// ParseFile читает и парсит файл с праздниками
func ParseFile(filePath string) ([]Holiday, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read holidays file: %w", err)
	}
	return Parse(data)
}

// Parse разбирает содержимое файла; JSON тоже валидный YAML
func Parse(data []byte) ([]Holiday, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holidays: %w", err)
	}

	defaultCountry := strings.ToUpper(strings.TrimSpace(seed.Country))
	result := make([]Holiday, 0, len(seed.Holidays))

	for i, rec := range seed.Holidays {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(rec.Date))
		if err != nil {
			return nil, fmt.Errorf("holiday #%d: invalid date '%s': %w", i+1, rec.Date, err)
		}

		country := strings.ToUpper(strings.TrimSpace(rec.Country))
		if country == "" {
			country = defaultCountry
		}
		if len(country) != 2 {
			return nil, fmt.Errorf("holiday #%d (%s): country code must have 2 letters", i+1, rec.Date)
		}

		name := strings.TrimSpace(rec.Name)
		if name == "" {
			return nil, fmt.Errorf("holiday #%d (%s): name is required", i+1, rec.Date)
		}

		result = append(result, Holiday{
			Date:        date,
			CountryCode: country,
			Name:        name,
			IsRequired:  rec.IsRequired,
		})
	}

	return result, nil
}

// Countries возвращает коды стран в порядке первого появления
func Countries(days []Holiday) []string {
	seen := map[string]bool{}
	var result []string
	for _, day := range days {
		if !seen[day.CountryCode] {
			seen[day.CountryCode] = true
			result = append(result, day.CountryCode)
		}
	}
	return result
}
