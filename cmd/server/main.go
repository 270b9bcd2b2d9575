package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sleep-tracker/internal/api"
	"sleep-tracker/internal/config"
	"sleep-tracker/internal/database"
	"sleep-tracker/internal/handler"
	"sleep-tracker/internal/logging"
	"sleep-tracker/internal/repository"
	"sleep-tracker/internal/service"
	"sleep-tracker/pkg/telegram"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetConfig()
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logrus.WithError(err).Warn("Invalid LOG_LEVEL, using info")
	}
	logrus.Info("Config initialized...")

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		logrus.WithError(err).Fatalf("Invalid DEFAULT_TIMEZONE %q", cfg.DefaultTimezone)
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to get database instance")
	}

	workerRepo, err := repository.NewGormWorkerRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create worker repository")
	}
	entryRepo, err := repository.NewGormSleepEntryRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create sleep entry repository")
	}
	holidayRepo, err := repository.NewGormHolidayRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create holiday repository")
	}

	workerService := service.NewWorkerService(workerRepo, service.WorkerDefaults{
		Country:         cfg.DefaultCountry,
		Timezone:        cfg.DefaultTimezone,
		Schedule:        cfg.DefaultRequiredSchedule,
		ExcludeHolidays: cfg.DefaultExcludeHolidays,
	})
	entryService := service.NewSleepEntryService(entryRepo, workerService)
	holidayService := service.NewHolidayService(holidayRepo)
	reportService := service.NewReportService(workerRepo, entryRepo, holidayService, cfg.MinSleepMinutes, loc)
	exportService := service.NewExportService(reportService)

	seedHolidays(cfg, holidayService, reportService.CurrentDate().Year())

	// HTTP API
	apiHandler := api.NewHandler(workerService, entryService, reportService, holidayService, exportService, cfg.APIKey)
	router := api.NewRouter(apiHandler, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	server := api.NewHTTPServer(":"+cfg.HTTPPort, router)

	go func() {
		logrus.Infof("HTTP server listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Telegram бот и напоминания
	var client *telegram.Client
	var reminders *service.ReminderService
	if cfg.TelegramToken != "" {
		client, err = telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create Telegram client")
		}
		logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

		botHandler := handler.NewHandler(client.Bot, workerService, entryService, reportService, cfg)
		updates := client.Bot.GetUpdatesChan(client.UpdateConfig)
		go botHandler.HandleUpdates(updates)

		if cfg.ReminderTime != "" {
			reminders = service.NewReminderService(reportService, workerService, client, loc)
			if err := reminders.Start(cfg.ReminderTime); err != nil {
				logrus.WithError(err).Error("Failed to start reminders")
				reminders = nil
			}
		}
	} else if cfg.ReminderTime != "" {
		logrus.Warn("REMINDER_TIME is set but telegram bot is disabled, reminders skipped")
	}

	// Обработка сигналов для graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logrus.Info("Service started. Press Ctrl+C to stop.")
	<-stop

	if reminders != nil {
		reminders.Stop()
	}
	if client != nil {
		client.Bot.StopReceivingUpdates()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("HTTP server shutdown failed")
	}

	if err := sqlDB.Close(); err != nil {
		logrus.Infof("Error closing database: %v", err)
	}

	logrus.Info("Service stopped gracefully")
}

// seedHolidays загружает файл праздников и генерирует календари на текущий и следующий год
func seedHolidays(cfg *config.Config, holidays *service.HolidayService, year int) {
	ctx := context.Background()

	if cfg.HolidaysFile != "" {
		n, err := holidays.LoadFile(ctx, cfg.HolidaysFile)
		if err != nil {
			logrus.WithError(err).WithField("file", cfg.HolidaysFile).Error("Failed to load holidays file")
		} else {
			logrus.Infof("Loaded %d holidays from %s", n, cfg.HolidaysFile)
		}
	}

	for _, country := range cfg.HolidayCountries {
		for _, y := range []int{year, year + 1} {
			n, err := holidays.Generate(ctx, country, y)
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"country": country,
					"year":    y,
				}).Warn("Failed to generate holidays")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"country": country,
				"year":    y,
				"count":   n,
			}).Info("Holidays generated")
		}
	}
}
