// Package texts holds the user-facing wording of the bot.
package texts

import (
	"fmt"
	"strings"

	"github.com/m3rciful/regbot/core/telegram/format"
	"github.com/m3rciful/regbot/internal/config"
	"github.com/m3rciful/regbot/internal/participant"
)

// Button labels.
const (
	RegisterButton    = "📝 Зарегистрироваться"
	ParticipateButton = "🎟 Участвовать"
	AdminPanelButton  = "🛠 Панель админа"
	PrevButton        = "◀️ Назад"
	NextButton        = "▶️ Далее"
	ReceiptButton     = "🧾 Показать чек"
	DeleteButton      = "🗑 Удалить"
	RegisteredButton  = "✅ Зарегистрированные"
	ConfirmButton     = "✅ Да, удалить"
	KeepButton        = "↩️ Отмена"
)

// Participant prompts.
const (
	AskName           = "Введите имя и фамилию:"
	EmptyName         = "Имя не может быть пустым. Введите имя и фамилию:"
	AskPhone          = "Введите номер телефона:"
	EmptyPhone        = "Телефон не может быть пустым. Введите номер телефона:"
	RemindReceipt     = "Пожалуйста, отправьте чек об оплате фото или документом."
	ThanksRegistered  = "Спасибо! Ваша регистрация принята 🎉"
	AlreadyRegistered = "Вы уже зарегистрированы ✅"
	StartFirst        = "Нажмите /start, чтобы начать."
	Cancelled         = "Регистрация отменена."
	StaleButton       = "Кнопка устарела, нажмите /start."
)

// Admin wording.
const (
	Denied            = "⛔ Доступ запрещён."
	NoParticipants    = "Пока нет участников."
	NoRegistered      = "Пока нет зарегистрированных участников."
	ReceiptMissing    = "Чек недоступен."
	Deleted           = "Запись удалена."
	RegisteredHeading = "Зарегистрированные участники:"
)

// AfterForm asks for the receipt, preceded by payment instructions when set.
func AfterForm(payment string) string {
	msg := "Спасибо! Теперь отправьте чек об оплате (фото или документ)."
	if p := strings.TrimSpace(payment); p != "" {
		return p + "\n\n" + msg
	}
	return msg
}

// Caption renders the event card in Markdown.
func Caption(ev config.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n📅 %s\n📍 %s\n\n%s",
		format.EscapeMarkdown(ev.Title),
		format.EscapeMarkdown(ev.Date),
		format.EscapeMarkdown(ev.City),
		format.EscapeMarkdown(ev.Price),
	)
	if ev.Payment != "" {
		b.WriteString("\n\n")
		b.WriteString(format.EscapeMarkdown(ev.Payment))
	}
	return b.String()
}

// Handle renders "@name" or a dash when the participant has no handle.
func Handle(h string) string {
	if h == "" {
		return "—"
	}
	return "@" + h
}

// AdminNewStarted announces that a participant opened the form.
func AdminNewStarted(id int64, handle string) string {
	return fmt.Sprintf("🆕 Начата регистрация: %s (id %d)", Handle(handle), id)
}

// AdminNewReceipt announces a submitted receipt.
func AdminNewReceipt(r participant.Record) string {
	return fmt.Sprintf("💳 Новый чек\nИмя: %s\nТелефон: %s\nНик: %s\nID: %d",
		dash(r.FullName()), dash(r.Phone), Handle(r.Handle), r.ID)
}

// Card renders one record for the admin panel in Markdown.
func Card(r participant.Record, pos, total int) string {
	receipt := "нет"
	if r.HasReceipt() {
		receipt = string(r.Receipt.Kind)
	}
	return fmt.Sprintf("*Участник %d из %d*\n"+
		"Имя: %s\nТелефон: %s\nНик: %s\nID: `%d`\nСтатус: %s\nЧек: %s",
		pos+1, total,
		format.EscapeMarkdown(dash(r.FullName())),
		format.EscapeMarkdown(dash(r.Phone)),
		format.EscapeMarkdown(Handle(r.Handle)),
		r.ID,
		format.EscapeMarkdown(string(r.Status)),
		format.EscapeMarkdown(receipt),
	)
}

// RegisteredLine renders one entry of the registered listing.
func RegisteredLine(n int, r participant.Record) string {
	return fmt.Sprintf("%d. %s, %s, %s", n, dash(r.FullName()), dash(r.Phone), Handle(r.Handle))
}

// ConfirmDelete asks to confirm deleting a record.
func ConfirmDelete(r participant.Record) string {
	return fmt.Sprintf("Удалить запись %s (id %d)? Действие необратимо.", dash(r.FullName()), r.ID)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
