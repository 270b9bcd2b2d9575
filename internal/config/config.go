package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DBDriver    string
	DatabaseURL string

	HTTPPort       string
	APIKey         string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	TelegramToken   string
	TelegramDebug   bool
	BaseAdminChatID int64

	MinSleepMinutes         int
	DefaultCountry          string
	DefaultTimezone         string
	DefaultRequiredSchedule string
	DefaultExcludeHolidays  bool

	HolidaysFile     string
	HolidayCountries []string
	ReminderTime     string

	LogLevel string
}

var instance *Config
var once sync.Once

// GetConfig возвращает конфиг приложения, загружая его при первом вызове
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("no .env file loaded: %s", err.Error())
		}
		instance = Load()
	})

	return instance
}

// Load собирает конфиг из переменных окружения
func Load() *Config {
	cfg := &Config{
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL: getEnv("DATABASE_URL", "sleep.db"),

		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		APIKey:         strings.TrimSpace(getEnv("API_KEY", "")),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGIN", []string{"*"}),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: int(getEnvAsInt("RATE_LIMIT_BURST", 10)),

		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramDebug:   getEnvAsBool("TELEGRAM_DEBUG", false),
		BaseAdminChatID: getEnvAsInt("BASE_ADMIN_CHAT_ID", 0),

		MinSleepMinutes:         int(getEnvAsInt("MIN_SLEEP_MINUTES", 345)),
		DefaultCountry:          strings.ToUpper(getEnv("DEFAULT_COUNTRY", "PE")),
		DefaultTimezone:         getEnv("DEFAULT_TIMEZONE", "America/Lima"),
		DefaultRequiredSchedule: strings.ToUpper(getEnv("DEFAULT_REQUIRED_SCHEDULE", "MON_FRI")),
		DefaultExcludeHolidays:  getEnvAsBool("DEFAULT_EXCLUDE_HOLIDAYS", true),

		HolidaysFile:     getEnv("HOLIDAYS_FILE", ""),
		HolidayCountries: getEnvAsList("HOLIDAY_COUNTRIES", nil),
		ReminderTime:     getEnv("REMINDER_TIME", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	for i, cc := range cfg.HolidayCountries {
		cfg.HolidayCountries[i] = strings.ToUpper(cc)
	}

	if cfg.TelegramToken == "" {
		logrus.Warn("TELEGRAM_BOT_TOKEN is empty, telegram bot disabled")
	}
	if cfg.APIKey == "" {
		logrus.Warn("API_KEY is empty, write endpoints will refuse requests")
	}

	return cfg
}

// IsAdmin проверяет, что чат принадлежит администратору
func (c *Config) IsAdmin(chatID int64) bool {
	return c.BaseAdminChatID != 0 && c.BaseAdminChatID == chatID
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(strings.TrimSpace(valStr), 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseFloat(strings.TrimSpace(valStr), 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsList(name string, defaultVal []string) []string {
	valStr := strings.TrimSpace(getEnv(name, ""))
	if valStr == "" {
		return defaultVal
	}

	var result []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return defaultVal
	}
	return result
}
