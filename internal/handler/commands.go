package handler

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start":
		h.sendStartMessage(message)
	case "help":
		h.sendHelpMessage(message)

	// Команды работника
	case "register":
		h.register(ctx, message, args)
	case "sleep":
		h.submitSleep(ctx, message, args, "")
	case "today":
		h.showToday(ctx, message)
	case "mystats":
		h.showMyStats(ctx, message, args)
	case "ranking":
		h.showRanking(ctx, message, args)

	// Команды администратора
	case "workers":
		h.showWorkers(ctx, message)
	case "setschedule":
		h.setSchedule(ctx, message, args)
	case "setcountry":
		h.setCountry(ctx, message, args)
	case "holidays":
		h.setHolidays(ctx, message, args)
	case "deactivate":
		h.setActive(ctx, message, args, false)
	case "activate":
		h.setActive(ctx, message, args, true)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.reply(message.Chat.ID, "❌ Comando desconocido. Usa /help para ver la lista de comandos.")
}

func (h *Handler) sendStartMessage(message *tgbotapi.Message) {
	text := `👋 ¡Hola! Soy el bot de registro de sueño.

1. Vincula tu chat con /register <tu nombre>
2. Cada mañana envía /sleep <horas> <minutos>
   (también puedes mandar la captura de tu app con esa misma leyenda)

Usa /help para ver todos los comandos.`

	h.reply(message.Chat.ID, text)
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	text := `📋 Comandos disponibles:

👤 Registro:
/register <nombre> - Vincular este chat con tu nombre
/sleep <h> <m> [AAAA-MM-DD] - Registrar horas de sueño (por defecto hoy)

📊 Reportes:
/today - Quién registró hoy y quién falta
/mystats [AAAA-MM] - Tu cumplimiento del mes
/ranking [AAAA-MM] - Ranking de cumplimiento del mes`

	if h.config.IsAdmin(message.Chat.ID) {
		text += `

👑 Administración:
/workers - Lista de trabajadores
/setschedule <clave> <MON_FRI|MON_SAT|ALL_DAYS> - Cambiar horario
/setcountry <clave> <CC> - Cambiar país
/holidays <on|off> <clave> - Descansar o no en feriados
/deactivate <clave> - Desactivar trabajador
/activate <clave> - Activar trabajador`
	}

	h.reply(message.Chat.ID, text)
}
