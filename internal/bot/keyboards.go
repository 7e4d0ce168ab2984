package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply keyboard labels
const (
	btnLogBatch  = "Log batch"
	btnToday     = "Today"
	btnMonth     = "This month"
	btnPending   = "Pending"
	btnProjects  = "Projects"
	btnExport    = "Export"
	maxChoiceBtn = 40
)

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// choiceKeyboard lists options two per row. Callback data carries the option
// index; the options themselves stay in the dialog payload.
func choiceKeyboard(prefix string, options []string, back bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, o := range options {
		if i == maxChoiceBtn {
			break
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(o, fmt.Sprintf("%s:%d", prefix, i)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(back, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func skipKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Skip", data)),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Save", "log:save"),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func exportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Today", "exp:today"),
			tgbotapi.NewInlineKeyboardButtonData("This month", "exp:month"),
			tgbotapi.NewInlineKeyboardButtonData("All time", "exp:all"),
		),
	)
}

// mainReplyKeyboard is the bottom panel shown after /start.
func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnLogBatch)},
			{tgbotapi.NewKeyboardButton(btnToday), tgbotapi.NewKeyboardButton(btnMonth)},
			{tgbotapi.NewKeyboardButton(btnPending), tgbotapi.NewKeyboardButton(btnProjects)},
			{tgbotapi.NewKeyboardButton(btnExport)},
		},
	}
}
