package handler

import (
	"context"
	"fmt"
	"strings"

	"sleep-tracker/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// requireAdmin проверяет права доступа и отвечает отказом, если их нет
func (h *Handler) requireAdmin(chatID int64) bool {
	if h.config.IsAdmin(chatID) {
		return true
	}
	h.reply(chatID, "❌ Acceso denegado. Este comando es solo para administradores.")
	return false
}

// showWorkers показывает всех работников (только для админов)
func (h *Handler) showWorkers(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	workers, err := h.workers.List(ctx)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if len(workers) == 0 {
		h.reply(chatID, "👥 Aún no hay trabajadores registrados.")
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("👥 Trabajadores (%d):", len(workers)))
	lines = append(lines, "")

	for i, w := range workers {
		status := "🟢"
		if !w.IsActive {
			status = "⚪"
		}
		holidays := "trabaja feriados"
		if w.ExcludeHolidays {
			holidays = "descansa feriados"
		}
		linked := ""
		if w.ChatID != nil {
			linked = " 📱"
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s (%s)%s\n   %s · %s · %s",
			i+1, status, w.WorkerName, w.WorkerKey, linked,
			w.CountryCode, w.RequiredSchedule, holidays))
	}

	h.reply(chatID, strings.Join(lines, "\n"))
}

// adminArgs разбирает аргументы вида "<a> <b>"
func (h *Handler) adminArgs(chatID int64, args string, usage string) (string, string, bool) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.reply(chatID, "❌ Formato: "+usage)
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (h *Handler) applySettings(ctx context.Context, chatID int64, key string, upd service.SettingsUpdate) {
	worker, err := h.workers.UpdateSettings(ctx, key, upd)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, fmt.Sprintf("✅ %s actualizado: %s, %s, feriados libres: %s, activo: %s.",
		worker.WorkerKey, worker.CountryCode, worker.RequiredSchedule,
		yesNo(worker.ExcludeHolidays), yesNo(worker.IsActive)))
}

func (h *Handler) setSchedule(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	key, schedule, ok := h.adminArgs(chatID, args, "/setschedule <clave> <MON_FRI|MON_SAT|ALL_DAYS>")
	if !ok {
		return
	}
	h.applySettings(ctx, chatID, key, service.SettingsUpdate{Schedule: &schedule})
}

func (h *Handler) setCountry(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	key, country, ok := h.adminArgs(chatID, args, "/setcountry <clave> <CC>")
	if !ok {
		return
	}
	h.applySettings(ctx, chatID, key, service.SettingsUpdate{Country: &country})
}

func (h *Handler) setHolidays(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	mode, key, ok := h.adminArgs(chatID, args, "/holidays <on|off> <clave>")
	if !ok {
		return
	}

	var exclude bool
	switch strings.ToLower(mode) {
	case "on":
		exclude = true
	case "off":
		exclude = false
	default:
		h.reply(chatID, "❌ Formato: /holidays <on|off> <clave>")
		return
	}
	h.applySettings(ctx, chatID, key, service.SettingsUpdate{ExcludeHolidays: &exclude})
}

func (h *Handler) setActive(ctx context.Context, message *tgbotapi.Message, args string, active bool) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	key := strings.TrimSpace(args)
	if key == "" || strings.Contains(key, " ") {
		h.reply(chatID, "❌ Indica la clave del trabajador. Ver /workers")
		return
	}
	h.applySettings(ctx, chatID, key, service.SettingsUpdate{Active: &active})
}

func yesNo(v bool) string {
	if v {
		return "sí"
	}
	return "no"
}
