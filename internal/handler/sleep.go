package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sleep-tracker/internal/compliance"
	"sleep-tracker/internal/models"
	"sleep-tracker/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// linkedWorker возвращает работника, привязанного к чату, или сообщает, что нужен /register
func (h *Handler) linkedWorker(ctx context.Context, chatID int64) (*models.Worker, bool) {
	worker, err := h.workers.GetByChatID(ctx, chatID)
	if errors.Is(err, service.ErrNotFound) {
		h.reply(chatID, "❌ Este chat no está vinculado.\nUsa /register <tu nombre> primero.")
		return nil, false
	}
	if err != nil {
		h.replyError(chatID, err)
		return nil, false
	}
	return worker, true
}

func (h *Handler) register(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	name := strings.TrimSpace(args)
	if name == "" {
		h.reply(chatID, "❌ Indica tu nombre.\nEjemplo: /register Carlos Díaz")
		return
	}

	worker, err := h.workers.LinkChat(ctx, name, chatID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, fmt.Sprintf("✅ Chat vinculado a %s (clave: %s).", worker.WorkerName, worker.WorkerKey))
}

func (h *Handler) handlePhoto(ctx context.Context, message *tgbotapi.Message) {
	fields := strings.Fields(message.Caption)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/sleep") {
		h.reply(message.Chat.ID, "📷 Para registrar una captura escribe en la leyenda: /sleep <h> <m> [AAAA-MM-DD]")
		return
	}

	// Берем фото наибольшего размера
	fileID := message.Photo[len(message.Photo)-1].FileID
	h.submitSleep(ctx, message, strings.Join(fields[1:], " "), fileID)
}

func (h *Handler) submitSleep(ctx context.Context, message *tgbotapi.Message, args, fileID string) {
	chatID := message.Chat.ID

	parts := strings.Fields(args)
	if len(parts) < 2 || len(parts) > 3 {
		h.reply(chatID, "❌ Formato: /sleep <h> <m> [AAAA-MM-DD]\nEjemplo: /sleep 7 30")
		return
	}

	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		h.reply(chatID, "❌ Las horas y los minutos deben ser números enteros.")
		return
	}

	date := h.reports.CurrentDate().Format(dateLayout)
	if len(parts) == 3 {
		date = parts[2]
	}

	worker, ok := h.linkedWorker(ctx, chatID)
	if !ok {
		return
	}

	chat := strconv.FormatInt(chatID, 10)
	raw := strings.TrimSpace(message.Text + message.Caption)
	in := service.SubmitInput{
		WorkerName:  worker.WorkerName,
		CountryCode: worker.CountryCode,
		Date:        date,
		SleepH:      &hours,
		SleepM:      &minutes,
		Source:      models.SourceTelegram,
		ChatID:      &chat,
		RawText:     &raw,
	}
	if fileID != "" {
		in.FileID = &fileID
	}

	entry, err := h.entries.Submit(ctx, in)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	minSleep := h.reports.MinSleepMinutes()
	verdict := "✅ Cumple el mínimo"
	if compliance.MeetsMinimum(entry.ToCompliance(), minSleep) == compliance.VerdictNotMet {
		verdict = "⚠️ Por debajo del mínimo"
	}

	h.reply(chatID, fmt.Sprintf("📝 Registrado: %s el %s.\n%s de %s.",
		entry.SleepText, entry.Date, verdict, compliance.FormatDuration(minSleep)))
}

func (h *Handler) showToday(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	report, err := h.reports.Today(ctx, "")
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("📅 %s (mínimo %s)", report.Date, compliance.FormatDuration(report.MinSleepMinutes)))

	for _, notice := range report.HolidaySummary {
		lines = append(lines, fmt.Sprintf("🎉 Feriado %s: %s", notice.CountryCode, notice.Name))
	}

	lines = append(lines, "", fmt.Sprintf("✅ Registrados (%d):", report.RegisteredCount))
	for _, e := range report.Registered {
		mark := "❔"
		switch e.MeetsMin {
		case compliance.VerdictMet:
			mark = "🟢"
		case compliance.VerdictNotMet:
			mark = "🔴"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", mark, e.WorkerName, e.SleepText))
	}

	lines = append(lines, "", fmt.Sprintf("⏳ Pendientes (%d):", report.PendingCount))
	for _, p := range report.Pending {
		lines = append(lines, "• "+p.WorkerName)
	}

	h.reply(chatID, strings.Join(lines, "\n"))
}

// monthArg возвращает месяц из аргумента или текущий месяц
func (h *Handler) monthArg(args string) string {
	month := strings.TrimSpace(args)
	if month == "" {
		month = h.reports.CurrentDate().Format(monthLayout)
	}
	return month
}

func (h *Handler) showMyStats(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	worker, ok := h.linkedWorker(ctx, chatID)
	if !ok {
		return
	}

	month := h.monthArg(args)
	report, err := h.reports.WorkerMonth(ctx, worker.WorkerKey, month)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	text := fmt.Sprintf(`📊 %s, %s

📆 Días requeridos: %d
📝 Días con registro: %d
📨 Envíos totales: %d
✅ Cumplimiento: %s

😴 Promedio: %s
⬆️ Máximo: %s
⬇️ Mínimo: %s`,
		report.WorkerName, month,
		report.DaysRequired,
		report.DaysWithRecord,
		report.TotalSubmissions,
		formatPct(report.CompliancePct),
		orDash(report.AvgSleep),
		orDash(report.MaxSleep),
		orDash(report.MinSleep),
	)

	h.reply(chatID, text)
}

func (h *Handler) showRanking(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	ranking, err := h.reports.MonthlyRanking(ctx, h.monthArg(args))
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if len(ranking.Workers) == 0 {
		h.reply(chatID, fmt.Sprintf("🏆 %s: no hay trabajadores activos.", ranking.Month))
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("🏆 Ranking %s", ranking.Month))
	lines = append(lines, "")
	for i, e := range ranking.Cohort.Top3 {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, e.WorkerName, formatPct(e.CompliancePct)))
	}

	lines = append(lines, "", "📉 Más bajos:")
	for i, e := range ranking.Cohort.Bottom3 {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, e.WorkerName, formatPct(e.CompliancePct)))
	}

	lines = append(lines, "",
		"Cumplimiento promedio: "+formatPct(ranking.Cohort.AvgCompliancePct),
		"Sueño promedio: "+orDash(ranking.Cohort.AvgSleep),
	)

	h.reply(chatID, strings.Join(lines, "\n"))
}

func formatPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + "%"
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
