package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/qualitypulse/tracker/internal/dashboard"
	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/projects"
)

const helpText = `Commands:
/today, /month, /all - rejection dashboard
/projects - per-project totals (all time)
/pending - what is still to be produced
/entries <client> | <project> - batches of one project
/archive <client> | <project>, /unarchive <client> | <project>
/edit <id>, /delete <id> - fix a logged batch
/export [today|month|all] - Excel file
/report [YYYY-MM] - monthly quality report
/masters, /addmaster <category> | <name> - media, lamination and printer lists
/backfill - fill missing media from the planning sheet
/cancel - stop the current dialog`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Hi! Log production batches with «Log batch», check quality with the buttons below.")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)

	case "help":
		b.reply(chatID, helpText)

	case "cancel":
		b.clearPrevStep(ctx, chatID)
		_ = b.states.Reset(ctx, chatID)
		b.reply(chatID, "Cancelled.")

	case "log":
		b.startLog(ctx, chatID)

	case "today":
		b.showOverview(ctx, chatID, dashboard.ModeToday)
	case "month":
		b.showOverview(ctx, chatID, dashboard.ModeMonth)
	case "all":
		b.showOverview(ctx, chatID, dashboard.ModeAll)

	case "projects":
		b.showProjects(ctx, chatID)

	case "pending":
		b.showPending(ctx, chatID)

	case "entries":
		client, project, err := parsePair(args)
		if err != nil {
			b.reply(chatID, "Usage: /entries <client> | <project>")
			return
		}
		rows, err := b.dash.Entries(ctx, dashboard.Query{Period: dashboard.Period{Mode: dashboard.ModeAll}, Client: client, Project: project})
		if err != nil {
			b.fail(chatID, "load entries", err)
			return
		}
		b.reply(chatID, fmt.Sprintf("%s | %s\n%s", client, project, formatEntries(rows)))

	case "archive", "unarchive":
		client, project, err := parsePair(args)
		if err != nil {
			b.reply(chatID, fmt.Sprintf("Usage: /%s <client> | <project>", msg.Command()))
			return
		}
		if msg.Command() == "archive" {
			err = b.dash.Archive(ctx, client, project)
		} else {
			err = b.dash.Unarchive(ctx, client, project)
		}
		if err != nil {
			b.fail(chatID, msg.Command()+" the project", err)
			return
		}
		b.reply(chatID, fmt.Sprintf("%s | %s: %sd.", client, project, msg.Command()))

	case "edit":
		b.startEdit(ctx, chatID, args)

	case "delete":
		if !b.isAdmin(chatID) {
			b.reply(chatID, "Access denied.")
			return
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(args, "#"), 10, 64)
		if err != nil || id <= 0 {
			b.reply(chatID, "Usage: /delete <id>")
			return
		}
		err = b.dash.DeleteEntry(ctx, id)
		if errors.Is(err, entries.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("Entry #%d not found.", id))
			return
		}
		if err != nil {
			b.fail(chatID, "delete the entry", err)
			return
		}
		b.reply(chatID, fmt.Sprintf("Entry #%d deleted.", id))

	case "export":
		if args == "" {
			m := tgbotapi.NewMessage(chatID, "Export which period?")
			m.ReplyMarkup = exportKeyboard()
			b.send(m)
			return
		}
		p, err := dashboard.ParsePeriod(args, "", "")
		if err != nil {
			b.reply(chatID, "Usage: /export [today|month|all]")
			return
		}
		b.sendExport(ctx, chatID, p)

	case "report":
		month, err := parseMonth(args, b.dash.Today())
		if err != nil {
			b.reply(chatID, err.Error())
			return
		}
		b.sendReport(ctx, chatID, month)

	case "backfill":
		if !b.isAdmin(chatID) {
			b.reply(chatID, "Access denied.")
			return
		}
		n, err := b.dash.BackfillMedia(ctx)
		if err != nil {
			b.fail(chatID, "backfill media", err)
			return
		}
		b.reply(chatID, fmt.Sprintf("Media filled on %d entries.", n))

	case "masters":
		opts, err := b.dash.MasterOptions(ctx)
		if err != nil {
			b.fail(chatID, "load master lists", err)
			return
		}
		b.reply(chatID, fmt.Sprintf("Print media: %s\nLamination: %s\nPrinters: %s",
			orDash(strings.Join(opts.PrintMedia, ", ")),
			orDash(strings.Join(opts.Lamination, ", ")),
			orDash(strings.Join(opts.Printers, ", "))))

	case "addmaster":
		if !b.isAdmin(chatID) {
			b.reply(chatID, "Access denied.")
			return
		}
		category, name, err := parsePair(args)
		if err != nil {
			b.reply(chatID, "Usage: /addmaster <media|lamination|printer> | <name>")
			return
		}
		m, err := b.dash.AddMaster(ctx, category, name)
		if err != nil {
			b.reply(chatID, "Not added: "+err.Error())
			return
		}
		b.reply(chatID, fmt.Sprintf("Added %s: %s", m.Category, m.Name))

	default:
		b.reply(chatID, "Unknown command. Try /help")
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Text {
	case btnLogBatch:
		b.startLog(ctx, chatID)
		return
	case btnToday:
		b.showOverview(ctx, chatID, dashboard.ModeToday)
		return
	case btnMonth:
		b.showOverview(ctx, chatID, dashboard.ModeMonth)
		return
	case btnPending:
		b.showPending(ctx, chatID)
		return
	case btnProjects:
		b.showProjects(ctx, chatID)
		return
	case btnExport:
		m := tgbotapi.NewMessage(chatID, "Export which period?")
		m.ReplyMarkup = exportKeyboard()
		b.send(m)
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.fail(chatID, "read the dialog", err)
		return
	}
	if b.handleLogText(ctx, chatID, st, msg.Text) {
		return
	}
	b.reply(chatID, "Use the buttons below or /help.")
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	data := cb.Data
	chatID := cb.Message.Chat.ID

	switch {
	case data == "nav:cancel":
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, cb.Message.MessageID, "Cancelled.")
		b.answerCallback(cb, "Cancelled", false)
	case data == "nav:back":
		st, err := b.states.Get(ctx, chatID)
		if err != nil {
			b.answerCallback(cb, "Error", false)
			return
		}
		b.answerCallback(cb, "", false)
		b.back(ctx, chatID, st)
	case strings.HasPrefix(data, "exp:"):
		p, err := dashboard.ParsePeriod(strings.TrimPrefix(data, "exp:"), "", "")
		if err != nil {
			b.answerCallback(cb, "Unknown period", false)
			return
		}
		b.answerCallback(cb, "Preparing file…", false)
		b.editTextAndClear(chatID, cb.Message.MessageID, "Export: "+p.Label(b.dash.Today()))
		b.sendExport(ctx, chatID, p)
	case strings.HasPrefix(data, "log:"):
		b.handleLogCallback(ctx, cb)
	default:
		b.answerCallback(cb, "", false)
	}
}

/*** Views ***/

func (b *Bot) showOverview(ctx context.Context, chatID int64, mode dashboard.Mode) {
	ov, err := b.dash.Overview(ctx, dashboard.Query{Period: dashboard.Period{Mode: mode}})
	if err != nil {
		b.fail(chatID, "build the dashboard", err)
		return
	}
	b.reply(chatID, formatOverview(ov))
	if mode == dashboard.ModeToday && len(ov.Projects) > 0 {
		b.reply(chatID, formatProjects(ov.Projects))
	}
}

func (b *Bot) showProjects(ctx context.Context, chatID int64) {
	ov, err := b.dash.Overview(ctx, dashboard.Query{Period: dashboard.Period{Mode: dashboard.ModeAll}})
	if err != nil {
		b.fail(chatID, "load projects", err)
		return
	}
	b.reply(chatID, formatProjects(ov.Projects))
}

func (b *Bot) showPending(ctx context.Context, chatID int64) {
	view, err := b.dash.Pending(ctx)
	if err != nil {
		b.fail(chatID, "reconcile pending production", err)
		return
	}
	b.reply(chatID, formatPending(view))
}

func (b *Bot) sendExport(ctx context.Context, chatID int64, p dashboard.Period) {
	data, name, err := b.dash.Export(ctx, dashboard.Query{Period: p})
	if err != nil {
		b.fail(chatID, "build the export", err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = "Projects and entries: " + p.Label(b.dash.Today())
	b.send(doc)
}

// sendReport mails the monthly report when mail is configured and always
// shows it in the chat.
func (b *Bot) sendReport(ctx context.Context, chatID int64, month time.Time) {
	r, err := b.dash.SendMonthlyReport(ctx, month)
	mailed := err == nil
	if errors.Is(err, dashboard.ErrMailDisabled) {
		r, err = b.dash.MonthlyReport(ctx, month)
	}
	if errors.Is(err, projects.ErrNoData) {
		b.reply(chatID, "No entries in "+month.Format("January 2006")+".")
		return
	}
	if err != nil {
		b.fail(chatID, "build the report", err)
		return
	}
	text := formatReport(r)
	if mailed {
		text += "\n(sent by email)"
	}
	b.reply(chatID, text)
}
