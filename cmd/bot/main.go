package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/qualitypulse/tracker/internal/app"
	"github.com/qualitypulse/tracker/internal/bot"
	"github.com/qualitypulse/tracker/internal/config"
	httpx "github.com/qualitypulse/tracker/internal/infra/http"
	"github.com/qualitypulse/tracker/internal/infra/logger"
)

func main() {
	configPath := flag.String("config", "config/example.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	log.Info("starting", "planning_source", cfg.Planning.Source, "http_addr", cfg.HTTP.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reg prometheus.Registerer
	if cfg.Metrics.Enabled {
		reg = prometheus.DefaultRegisterer
	}
	a, err := app.Build(ctx, cfg, log, reg)
	if err != nil {
		log.Error("startup failed", "err", err)
		return
	}
	defer a.Close()

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, a.Dashboard, log)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			log.Error("telegram init failed", "err", err)
			return
		}
		log.Info("telegram bot authorized", "username", api.Self.UserName)

		b := bot.New(api, log, a.States, a.Dashboard, cfg.Telegram.AdminChatID)
		go func() {
			if err := b.Run(ctx, cfg.Telegram.PollTimeout); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("bot stopped", "err", err)
			}
		}()
	} else {
		log.Warn("telegram.token is empty, bot disabled")
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
