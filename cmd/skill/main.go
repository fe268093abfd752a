package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tazhate/calendarskill/config"
	"github.com/tazhate/calendarskill/internal/bot"
	"github.com/tazhate/calendarskill/internal/clients/caldav"
	"github.com/tazhate/calendarskill/internal/clients/gcal"
	"github.com/tazhate/calendarskill/internal/dates"
	"github.com/tazhate/calendarskill/internal/dialog"
	"github.com/tazhate/calendarskill/internal/extract"
	"github.com/tazhate/calendarskill/internal/logging"
	"github.com/tazhate/calendarskill/internal/scheduler"
	"github.com/tazhate/calendarskill/internal/service"
	"github.com/tazhate/calendarskill/internal/skill"
	"github.com/tazhate/calendarskill/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := storage.New(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to init storage", zap.Error(err))
	}
	defer store.Close()

	renderer, err := dialog.NewRenderer(cfg.Locale.Lang)
	if err != nil {
		logger.Fatal("Failed to load dialogs", zap.Error(err))
	}

	tgBot, err := bot.New(cfg, renderer, logger)
	if err != nil {
		logger.Fatal("Failed to init bot", zap.Error(err))
	}

	connectors := []skill.Connector{
		skill.CalDAVConnector(caldav.Config{
			URL:          cfg.CalDAV.URL,
			Username:     cfg.CalDAV.Username,
			Password:     cfg.CalDAV.Password,
			CalendarPath: cfg.CalDAV.CalendarPath,
			Timeout:      cfg.CalDAV.Timeout,
			Location:     cfg.Timezone,
		}, store, logger),
		skill.GoogleConnector(gcal.Credentials{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Account:      cfg.Google.Account,
			TokenFile:    cfg.Google.TokenFile,
		}, store, gcal.Options{
			CalendarIDs: cfg.Google.CalendarIDs,
			Timeout:     cfg.Google.Timeout,
		}, logger),
	}

	sk := skill.New(skill.Options{
		Connectors: connectors,
		Calendar:   dates.NewCalendar(dates.SystemClock, cfg.Timezone),
		Format: dates.FormatOptions{
			Lang:      renderer.Lang(),
			Use24Hour: cfg.Locale.Use24Hour,
			UseAMPM:   cfg.Locale.UseAMPM,
		},
		Extractor: extract.New(),
		Speaker:   tgBot.Speaker(),
		Reminders: service.NewReminderService(store, logger),
		Logger:    logger,
	})
	tgBot.SetSkill(sk)

	sched := scheduler.New(sk, scheduler.Options{
		Location:       cfg.Timezone,
		CheckInterval:  cfg.Reminders.CheckInterval,
		InitialBackoff: cfg.Connect.InitialBackoff,
		MaxBackoff:     cfg.Connect.MaxBackoff,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			logger.Error("Scheduler error", zap.Error(err))
		}
	}()

	go func() {
		if err := tgBot.Start(ctx); err != nil {
			logger.Error("Bot error", zap.Error(err))
		}
	}()

	logger.Info("Calendar skill started", zap.String("timezone", cfg.Timezone.String()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := tgBot.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping bot", zap.Error(err))
	}

	logger.Info("Calendar skill stopped")
}
