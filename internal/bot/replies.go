package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/jotabarber/barberbot/internal/booking"
)

// Reply copy preserved from the shop's existing conversational scripts.
const (
	replyAdminMenu = "👑 Menu de Administrador 👑\n\n" +
		"Digite o que você deseja fazer:\n\n" +
		"*listar hoje*: Ver agendamentos para o dia de hoje.\n" +
		"*listar futuros*: Ver todos os agendamentos futuros (pendentes e confirmados).\n" +
		"*confirmar [ID]*: Confirma agendamento (Ex: confirmar 55219...).\n" +
		"*cancelar [ID]*: Cancela e *exclui* agendamento.\n\n" +
		"Atenção: Agendamentos cancelados são *excluídos*."

	replyMainMenu = "Olá! ✂️ Seja bem-vindo à *JotaBarber!*\n\n" +
		"1 - Agendar um corte\n" +
		"2 - Consultar/Cancelar horário\n" +
		"3 - Falar com atendente\n\n" +
		"Digite o número da opção desejada."

	replyBookingPrompt = "🗓️ Perfeito! Vamos marcar seu horário.\n" +
		"Por favor, me diga o dia e hora que você prefere (exemplo: sexta às 15:30 ou amanhã 10:00)."

	replyHandoff = "💈 Um atendente humano entrará em contato com você em breve!"

	replyNoOwnBookings = "📅 Você ainda não possui nenhum horário marcado."

	replyOwnCancelled = "✅ Seu agendamento foi cancelado com sucesso e *removido* do sistema."

	replyNoPendingToCancel = "❌ Você não possui nenhum agendamento pendente para cancelar."

	replyParseFailed = "❌ Não consegui entender a data e hora. " +
		"Tente um formato mais claro, como: 'amanhã às 14:00' ou 'sexta 10:30'."

	replyNoPendingForHandle = "❌ Nenhum agendamento pendente encontrado para este número."

	replyNoActiveForHandle = "❌ Nenhum agendamento ativo encontrado para este número."

	replyConfirmedNotice = "✅ Seu agendamento foi *confirmado*! 💈"

	replyCancelledNotice = "❌ Seu agendamento foi *cancelado* pelo barbeiro e *removido* do sistema."

	replyInternalError = "😕 Tivemos um problema por aqui. Tente novamente em instantes."

	replyOnline = "✅ O JotaBarber está online e pronto para agendar! 💈\n\n" +
		"Digite *admin* para ver o menu de gerenciamento."

	listTitleToday    = "📋 Agendamentos para HOJE:"
	listTitleUpcoming = "📋 Agendamentos Futuros (Ativos):"
)

const displayTimeLayout = "02/01/2006 15:04"

func formatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(displayTimeLayout)
}

func formatTimeOnly(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

func renderAdminList(title string, bookings []booking.Booking, loc *time.Location) string {
	if len(bookings) == 0 {
		return fmt.Sprintf("📭 %s\nNenhum agendamento encontrado.", title)
	}
	lines := make([]string, 0, len(bookings)+1)
	lines = append(lines, title+"\n")
	for _, b := range bookings {
		name := b.CustomerName
		if name == "" {
			name = "N/D"
		}
		lines = append(lines, fmt.Sprintf("[%s] [%s] %s | Status: %s",
			name, b.ShortID(), formatDateTime(b.ScheduledAt, loc), b.Status))
	}
	return strings.Join(lines, "\n")
}

func renderOwnList(bookings []booking.Booking, loc *time.Location) string {
	if len(bookings) == 0 {
		return replyNoOwnBookings
	}
	lines := make([]string, 0, len(bookings)+1)
	lines = append(lines, "📋 Seus horários marcados:")
	for _, b := range bookings {
		lines = append(lines, fmt.Sprintf("📋 %s (%s)", formatDateTime(b.ScheduledAt, loc), b.Status))
	}
	return strings.Join(lines, "\n")
}

func renderSlotUnavailable(requested, suggested time.Time, loc *time.Location) string {
	return fmt.Sprintf(
		"⛔️ Sentimos muito, mas o horário de *%s* já está *reservado*!\n\n"+
			"O próximo horário disponível é às *%s*.\n\n"+
			"Por favor, digite o horário disponível (*%s*) para confirmar seu agendamento, "+
			"ou escolha outro dia/hora.",
		formatDateTime(requested, loc),
		formatDateTime(suggested, loc),
		formatTimeOnly(suggested, loc),
	)
}

func renderPendingCreated(scheduledAt time.Time, loc *time.Location) string {
	return fmt.Sprintf(
		"✅ Agendamento pré-registrado para *%s*.\n\n"+
			"Por favor, aguarde a confirmação do barbeiro 💈. (Status: pendente)",
		formatDateTime(scheduledAt, loc),
	)
}

func renderOwnerNewBookingAlert(b *booking.Booking, originalText string, loc *time.Location) string {
	name := b.CustomerName
	if name == "" {
		name = "Cliente Desconhecido"
	}
	return fmt.Sprintf(
		"🚨 *NOVO AGENDAMENTO PENDENTE* 🚨\n"+
			"*Nome:* %s\n"+
			"Cliente: %s\n"+
			"Horário sugerido: %s\n"+
			"Texto Original: %s\n\n"+
			"Para confirmar, digite: *confirmar %s*\n"+
			"Para cancelar, digite: *cancelar %s*",
		name, b.CustomerHandle, formatDateTime(b.ScheduledAt, loc), originalText,
		b.CustomerHandle, b.CustomerHandle,
	)
}

func renderAdminConfirmed(b *booking.Booking) string {
	name := b.CustomerName
	if name == "" {
		name = b.CustomerHandle
	}
	return fmt.Sprintf("✅ Agendamento de %s foi confirmado com sucesso!", name)
}

func renderAdminCancelled(b *booking.Booking) string {
	name := b.CustomerName
	if name == "" {
		name = b.CustomerHandle
	}
	return fmt.Sprintf("❌ Agendamento de %s foi cancelado e *excluído* do sistema.", name)
}
