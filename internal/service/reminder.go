package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sleep-tracker/internal/logging"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Notifier отправляет текстовое сообщение в чат
type Notifier interface {
	Notify(chatID int64, text string) error
}

type ReminderService struct {
	reports  *ReportService
	workers  *WorkerService
	notifier Notifier
	loc      *time.Location
	cron     *cron.Cron
	logger   *logrus.Logger
}

func NewReminderService(reports *ReportService, workers *WorkerService, notifier Notifier, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		reports:  reports,
		workers:  workers,
		notifier: notifier,
		loc:      loc,
		logger:   logging.New(),
	}
}

// CronSpec переводит время HH:MM в выражение cron
func CronSpec(at string) (string, error) {
	parts := strings.Split(strings.TrimSpace(at), ":")
	if len(parts) != 2 {
		return "", invalidf("reminder time must be HH:MM")
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", invalidf("reminder time must be HH:MM")
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// Start запускает ежедневное напоминание в указанное время
func (s *ReminderService) Start(at string) error {
	spec, err := CronSpec(at)
	if err != nil {
		return err
	}

	s.cron = cron.New(cron.WithLocation(s.loc))
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.SendPending(context.Background()); err != nil {
			s.logger.WithError(err).Error("Reminder run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"at":       at,
		"cron":     spec,
		"location": s.loc.String(),
	}).Info("Reminder scheduler started")
	return nil
}

func (s *ReminderService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// SendPending напоминает каждому работнику, который должен отчитаться сегодня и еще не сделал этого
func (s *ReminderService) SendPending(ctx context.Context) (int, error) {
	report, err := s.reports.Today(ctx, "")
	if err != nil {
		return 0, err
	}
	if len(report.Pending) == 0 {
		return 0, nil
	}

	reachable, err := s.workers.ListReachable(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get workers: %w", err)
	}
	chats := make(map[string]int64, len(reachable))
	for _, w := range reachable {
		chats[w.WorkerKey] = *w.ChatID
	}

	sent := 0
	for _, p := range report.Pending {
		chatID, ok := chats[p.WorkerKey]
		if !ok {
			continue
		}
		text := fmt.Sprintf("⏰ %s, todavía no registraste tu sueño de hoy (%s).\nUsa /sleep <horas> <minutos>.", p.WorkerName, report.Date)
		if err := s.notifier.Notify(chatID, text); err != nil {
			s.logger.WithError(err).WithField("worker_key", p.WorkerKey).Warn("Failed to send reminder")
			continue
		}
		sent++
	}

	s.logger.WithFields(logrus.Fields{
		"date":    report.Date,
		"pending": len(report.Pending),
		"sent":    sent,
	}).Info("Reminders sent")
	return sent, nil
}
