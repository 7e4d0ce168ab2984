// Package bot is the Telegram front end: dashboards on demand and a guided
// dialog for logging production batches.
package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/qualitypulse/tracker/internal/dashboard"
	"github.com/qualitypulse/tracker/internal/dialog"
	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/masters"
	"github.com/qualitypulse/tracker/internal/domain/planning"
	"github.com/qualitypulse/tracker/internal/domain/projects"
)

// Service is the part of the dashboard the bot talks to.
type Service interface {
	Today() time.Time
	Overview(ctx context.Context, q dashboard.Query) (dashboard.Overview, error)
	Entries(ctx context.Context, q dashboard.Query) ([]entries.Entry, error)
	Pending(ctx context.Context) (dashboard.PendingView, error)
	PlannedItems(ctx context.Context) ([]planning.LineItem, error)
	MasterOptions(ctx context.Context) (masters.Options, error)
	AddMaster(ctx context.Context, category, name string) (*masters.Master, error)

	Entry(ctx context.Context, id int64) (*entries.Entry, error)
	LogEntry(ctx context.Context, raw entries.Raw) (*entries.Entry, error)
	EditEntry(ctx context.Context, id int64, raw entries.Raw) (*entries.Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
	Archive(ctx context.Context, client, project string) error
	Unarchive(ctx context.Context, client, project string) error

	MonthlyReport(ctx context.Context, month time.Time) (projects.Report, error)
	SendMonthlyReport(ctx context.Context, month time.Time) (projects.Report, error)
	BackfillMedia(ctx context.Context) (int, error)
	Export(ctx context.Context, q dashboard.Query) ([]byte, string, error)
}

// StateStore persists the per-chat dialog.
type StateStore interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

type Bot struct {
	api       *tgbotapi.BotAPI
	log       *slog.Logger
	states    StateStore
	dash      Service
	adminChat int64
}

// New builds the bot. adminChatID restricts destructive commands to one chat;
// zero leaves them open to everyone.
func New(api *tgbotapi.BotAPI, log *slog.Logger, statesRepo StateStore, dash Service, adminChatID int64) *Bot {
	return &Bot{api: api, log: log, states: statesRepo, dash: dash, adminChat: adminChatID}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		b.onMessage(ctx, upd)
	} else if upd.CallbackQuery != nil {
		b.onCallback(ctx, upd)
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	b.handleCallback(ctx, upd.CallbackQuery)
}

func (b *Bot) isAdmin(chatID int64) bool {
	return b.adminChat == 0 || chatID == b.adminChat
}
