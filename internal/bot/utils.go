package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/qualitypulse/tracker/internal/dialog"
)

/*** HELPERS ***/

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Error("callback answer failed", "err", err)
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) (tgbotapi.Message, bool) {
	m, err := b.api.Send(msg)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return m, false
	}
	return m, true
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// fail logs err and tells the chat what could not be done.
func (b *Bot) fail(chatID int64, what string, err error) {
	b.log.Error(what, "chat_id", chatID, "err", err)
	b.reply(chatID, "Could not "+what+". Try again later.")
}

// clearPrevStep removes the inline buttons of the previous step, if any.
func (b *Bot) clearPrevStep(ctx context.Context, chatID int64) {
	st, _ := b.states.Get(ctx, chatID)
	if st == nil || st.Payload == nil {
		return
	}
	if mid, ok := dialog.GetInt64(st.Payload, dialog.KeyLastMID); ok {
		rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, int(mid), rm))
	}
}

// step sends a dialog prompt and stores it as the chat's last step.
func (b *Bot) step(ctx context.Context, chatID int64, next dialog.State, payload dialog.Payload, msg tgbotapi.MessageConfig) {
	b.clearPrevStep(ctx, chatID)
	sent, ok := b.send(msg)
	if payload == nil {
		payload = dialog.Payload{}
	}
	if ok {
		payload[dialog.KeyLastMID] = int64(sent.MessageID)
	} else {
		delete(payload, dialog.KeyLastMID)
	}
	if err := b.states.Set(ctx, chatID, next, payload); err != nil {
		b.log.Error("dialog state save failed", "chat_id", chatID, "err", err)
	}
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}
