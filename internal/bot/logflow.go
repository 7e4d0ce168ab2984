package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/qualitypulse/tracker/internal/dialog"
	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/planning"
	"github.com/qualitypulse/tracker/internal/domain/rates"
)

// Callback prefixes of the log dialog
const (
	cbClient  = "log:c"
	cbProject = "log:p"
	cbProduct = "log:d"
	cbMedia   = "log:m"
	cbSave    = "log:save"
	cbNoMedia = "log:m:skip"
	cbNoCause = "log:r:skip"
)

// plannedOrNil fetches the planning sheet. The dialog degrades to typed
// answers when the sheet is unavailable.
func (b *Bot) plannedOrNil(ctx context.Context, chatID int64) []planning.LineItem {
	items, err := b.dash.PlannedItems(ctx)
	if err != nil {
		b.log.Warn("planning unavailable for dialog", "chat_id", chatID, "err", err)
		return nil
	}
	return items
}

func payloadFor(raw entries.Raw, editID int64) dialog.Payload {
	p := dialog.WithDraft(dialog.Payload{}, raw)
	if editID > 0 {
		p[dialog.KeyEditID] = editID
	}
	return p
}

func editIDOf(p dialog.Payload) int64 {
	id, _ := dialog.GetInt64(p, dialog.KeyEditID)
	return id
}

// choose asks the user to pick among options, or to type when there are none.
func (b *Bot) choose(ctx context.Context, chatID int64, next dialog.State, p dialog.Payload, prefix, prompt string, options []string, back bool) {
	p[dialog.KeyOptions] = options
	msg := tgbotapi.NewMessage(chatID, prompt)
	if len(options) > 0 {
		msg.ReplyMarkup = choiceKeyboard(prefix, options, back)
	} else {
		msg.Text = prompt + "\nType it as a message."
		msg.ReplyMarkup = navKeyboard(back, true)
	}
	b.step(ctx, chatID, next, p, msg)
}

func (b *Bot) startLog(ctx context.Context, chatID int64) {
	clients := planning.Clients(b.plannedOrNil(ctx, chatID))
	b.choose(ctx, chatID, dialog.StateLogClient, payloadFor(entries.Raw{}, 0), cbClient, "Client?", clients, false)
}

func (b *Bot) askProject(ctx context.Context, chatID int64, raw entries.Raw) {
	projects := planning.ProjectsFor(b.plannedOrNil(ctx, chatID), raw.ClientName)
	b.choose(ctx, chatID, dialog.StateLogProject, payloadFor(raw, 0), cbProject,
		fmt.Sprintf("%s\nProject?", raw.ClientName), projects, true)
}

func (b *Bot) askProduct(ctx context.Context, chatID int64, raw entries.Raw) {
	var names []string
	for _, li := range planning.ProductsFor(b.plannedOrNil(ctx, chatID), raw.ClientName, raw.ProjectName) {
		if name := strings.TrimSpace(li.Product); name != "" {
			names = append(names, name)
		}
	}
	b.choose(ctx, chatID, dialog.StateLogProduct, payloadFor(raw, 0), cbProduct,
		fmt.Sprintf("%s | %s\nProduct?", raw.ClientName, raw.ProjectName), names, true)
}

// onProduct fills order quantity and descriptive fields from the planning line.
func (b *Bot) onProduct(ctx context.Context, chatID int64, raw entries.Raw, product string) {
	raw.Product = strings.TrimSpace(product)
	if li, ok := planning.Find(b.plannedOrNil(ctx, chatID), raw.ClientName, raw.ProjectName, raw.Product); ok {
		raw.MasterQty = li.MasterQty
		raw.Vertical = li.Vertical
		raw.PrintMedia = li.PrintMedia
		raw.Lamination = li.Lamination
		raw.Size = li.Size
		raw.PrinterModel = li.PrinterModel
	}

	if raw.PrintMedia == "" {
		opts, err := b.dash.MasterOptions(ctx)
		if err != nil {
			b.log.Warn("master options unavailable", "err", err)
		}
		if len(opts.PrintMedia) > 0 {
			p := payloadFor(raw, 0)
			p[dialog.KeyOptions] = opts.PrintMedia
			msg := tgbotapi.NewMessage(chatID, "Print media?")
			kb := choiceKeyboard(cbMedia, opts.PrintMedia, true)
			kb.InlineKeyboard = append([][]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Skip", cbNoMedia)),
			}, kb.InlineKeyboard...)
			msg.ReplyMarkup = kb
			b.step(ctx, chatID, dialog.StateLogMedia, p, msg)
			return
		}
	}
	b.askBatch(ctx, chatID, raw, 0)
}

func (b *Bot) askBatch(ctx context.Context, chatID int64, raw entries.Raw, editID int64) {
	text := fmt.Sprintf("%s | %s | %s\n", raw.ClientName, raw.ProjectName, raw.Product)
	if raw.MasterQty > 0 {
		text += fmt.Sprintf("Order qty: %s\n", rates.Format(raw.MasterQty))
	}
	text += "Batch quantity produced?"
	if editID > 0 {
		text = fmt.Sprintf("Editing #%d, current batch %s.\n", editID, rates.Format(raw.BatchQty)) + text
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = navKeyboard(editID == 0, true)
	b.step(ctx, chatID, dialog.StateLogBatchQty, payloadFor(raw, editID), msg)
}

func (b *Bot) askRejections(ctx context.Context, chatID int64, raw entries.Raw, editID int64) {
	msg := tgbotapi.NewMessage(chatID,
		"Rejected units per stage, six numbers:\ndesign print lam cut pack media\n(for example: 0 2 0 1 0 0, or just 0)")
	msg.ReplyMarkup = navKeyboard(true, true)
	b.step(ctx, chatID, dialog.StateLogRejections, payloadFor(raw, editID), msg)
}

func (b *Bot) askReason(ctx context.Context, chatID int64, raw entries.Raw, editID int64) {
	msg := tgbotapi.NewMessage(chatID, "Reason for the rejections? Send - for none.")
	msg.ReplyMarkup = skipKeyboard(cbNoCause)
	b.step(ctx, chatID, dialog.StateLogReason, payloadFor(raw, editID), msg)
}

func (b *Bot) askConfirm(ctx context.Context, chatID int64, raw entries.Raw, editID int64) {
	msg := tgbotapi.NewMessage(chatID, formatDraft(raw))
	msg.ReplyMarkup = confirmKeyboard()
	b.step(ctx, chatID, dialog.StateLogConfirm, payloadFor(raw, editID), msg)
}

// startEdit reopens a stored entry at the batch quantity step.
func (b *Bot) startEdit(ctx context.Context, chatID int64, arg string) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 64)
	if err != nil || id <= 0 {
		b.reply(chatID, "Usage: /edit <id>")
		return
	}
	e, err := b.dash.Entry(ctx, id)
	if errors.Is(err, entries.ErrNotFound) {
		b.reply(chatID, fmt.Sprintf("Entry #%d not found.", id))
		return
	}
	if err != nil {
		b.fail(chatID, "load the entry", err)
		return
	}
	b.askBatch(ctx, chatID, e.Raw, e.ID)
}

// handleLogText advances the dialog with a typed answer.
func (b *Bot) handleLogText(ctx context.Context, chatID int64, st *dialog.Item, text string) bool {
	raw := dialog.Draft(st.Payload)
	editID := editIDOf(st.Payload)
	text = strings.TrimSpace(text)

	switch st.State {
	case dialog.StateLogClient:
		if text == "" {
			return true
		}
		raw.ClientName = text
		b.askProject(ctx, chatID, raw)
	case dialog.StateLogProject:
		if text == "" {
			return true
		}
		raw.ProjectName = text
		b.askProduct(ctx, chatID, raw)
	case dialog.StateLogProduct:
		if text == "" {
			return true
		}
		b.onProduct(ctx, chatID, raw, text)
	case dialog.StateLogMedia:
		raw.PrintMedia = text
		b.askBatch(ctx, chatID, raw, editID)
	case dialog.StateLogBatchQty:
		qty, err := parseQty(text)
		if err != nil {
			b.reply(chatID, "Batch quantity: "+err.Error()+".")
			return true
		}
		raw.BatchQty = qty
		b.askRejections(ctx, chatID, raw, editID)
	case dialog.StateLogRejections:
		rej, err := parseRejections(text)
		if err != nil {
			b.reply(chatID, err.Error()+".")
			return true
		}
		if rej.Total() > raw.BatchQty {
			b.reply(chatID, fmt.Sprintf("Heads up: %s rejected is more than the batch of %s.",
				rates.Format(rej.Total()), rates.Format(raw.BatchQty)))
		}
		raw.Rejections = rej
		b.askReason(ctx, chatID, raw, editID)
	case dialog.StateLogReason:
		if text == "-" {
			text = ""
		}
		raw.Reason = text
		b.askConfirm(ctx, chatID, raw, editID)
	default:
		return false
	}
	return true
}

// handleLogCallback handles option picks and the save button.
func (b *Bot) handleLogCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.answerCallback(cb, "Error", false)
		return
	}
	raw := dialog.Draft(st.Payload)
	editID := editIDOf(st.Payload)

	switch {
	case cb.Data == cbSave && st.State == dialog.StateLogConfirm:
		b.answerCallback(cb, "Saving…", false)
		b.save(ctx, chatID, cb.Message.MessageID, raw, editID)
		return
	case cb.Data == cbNoMedia && st.State == dialog.StateLogMedia:
		b.answerCallback(cb, "", false)
		b.askBatch(ctx, chatID, raw, editID)
		return
	case cb.Data == cbNoCause && st.State == dialog.StateLogReason:
		b.answerCallback(cb, "", false)
		raw.Reason = ""
		b.askConfirm(ctx, chatID, raw, editID)
		return
	}

	prefix, idxStr, ok := cutLast(cb.Data, ":")
	idx, err := strconv.Atoi(idxStr)
	options := dialog.GetStrings(st.Payload, dialog.KeyOptions)
	if !ok || err != nil || idx < 0 || idx >= len(options) {
		b.answerCallback(cb, "This button has expired", false)
		return
	}
	choice := options[idx]
	b.answerCallback(cb, choice, false)

	switch {
	case prefix == cbClient && st.State == dialog.StateLogClient:
		raw.ClientName = choice
		b.askProject(ctx, chatID, raw)
	case prefix == cbProject && st.State == dialog.StateLogProject:
		raw.ProjectName = choice
		b.askProduct(ctx, chatID, raw)
	case prefix == cbProduct && st.State == dialog.StateLogProduct:
		b.onProduct(ctx, chatID, raw, choice)
	case prefix == cbMedia && st.State == dialog.StateLogMedia:
		raw.PrintMedia = choice
		b.askBatch(ctx, chatID, raw, editID)
	}
}

// back moves the dialog one step back.
func (b *Bot) back(ctx context.Context, chatID int64, st *dialog.Item) {
	raw := dialog.Draft(st.Payload)
	editID := editIDOf(st.Payload)
	switch st.State {
	case dialog.StateLogProject:
		b.startLog(ctx, chatID)
	case dialog.StateLogProduct:
		b.askProject(ctx, chatID, raw)
	case dialog.StateLogMedia:
		b.askProduct(ctx, chatID, raw)
	case dialog.StateLogBatchQty:
		if editID == 0 {
			b.askProduct(ctx, chatID, raw)
		}
	case dialog.StateLogRejections:
		b.askBatch(ctx, chatID, raw, editID)
	case dialog.StateLogReason:
		b.askRejections(ctx, chatID, raw, editID)
	case dialog.StateLogConfirm:
		b.askReason(ctx, chatID, raw, editID)
	}
}

func (b *Bot) save(ctx context.Context, chatID int64, messageID int, raw entries.Raw, editID int64) {
	var (
		e   *entries.Entry
		err error
	)
	if editID > 0 {
		e, err = b.dash.EditEntry(ctx, editID, raw)
	} else {
		e, err = b.dash.LogEntry(ctx, raw)
	}
	if err != nil {
		b.log.Error("entry save failed", "chat_id", chatID, "err", err)
		b.editTextAndClear(chatID, messageID, formatDraft(raw)+"\n\n❌ Not saved: "+err.Error())
		return
	}
	_ = b.states.Reset(ctx, chatID)

	verb := "Saved"
	if editID > 0 {
		verb = "Updated"
	}
	b.editTextAndClear(chatID, messageID, fmt.Sprintf("%s\n\n✅ %s as #%d. Rate %s.",
		formatDraft(e.Raw), verb, e.ID, rates.FormatPercent(e.RejectionPercent)))
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
