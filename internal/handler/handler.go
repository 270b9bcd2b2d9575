package handler

import (
	"context"
	"errors"
	"time"

	"sleep-tracker/internal/config"
	"sleep-tracker/internal/logging"
	"sleep-tracker/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 15 * time.Second

// Sender - то, что умеет отправлять сообщения в Telegram (*tgbotapi.BotAPI)
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler struct {
	bot     Sender
	workers *service.WorkerService
	entries *service.SleepEntryService
	reports *service.ReportService
	config  *config.Config
	logger  *logrus.Logger
}

func NewHandler(
	bot Sender,
	workers *service.WorkerService,
	entries *service.SleepEntryService,
	reports *service.ReportService,
	cfg *config.Config,
) *Handler {
	return &Handler{
		bot:     bot,
		workers: workers,
		entries: entries,
		reports: reports,
		config:  cfg,
		logger:  logging.New(),
	}
}

// HandleUpdates обрабатывает обновления, пока канал не закрыт
func (h *Handler) HandleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		h.HandleUpdate(update)
	}
}

func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	h.handleMessage(ctx, update.Message)
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	var username string
	if message.From != nil {
		username = message.From.UserName
	}
	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user":    username,
	}).Infof("Message: %s%s", message.Text, message.Caption)

	// Фото с подписью "/sleep ..." считается записью со скриншотом
	if len(message.Photo) > 0 {
		h.handlePhoto(ctx, message)
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.reply(message.Chat.ID, "🤖 No entendí el mensaje. Usa /help para ver los comandos.")
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send message")
	}
}

// replyError переводит ошибку сервиса в понятный пользователю ответ
func (h *Handler) replyError(chatID int64, err error) {
	var inErr *service.InputError
	switch {
	case errors.As(err, &inErr):
		h.reply(chatID, "❌ "+inErr.Msg)
	case errors.Is(err, service.ErrInvalidInput):
		h.reply(chatID, "❌ "+err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.reply(chatID, "❌ Trabajador no encontrado.")
	default:
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Command failed")
		h.reply(chatID, "❌ Error interno. Inténtalo más tarde.")
	}
}
