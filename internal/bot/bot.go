package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tazhate/calendarskill/config"
	"github.com/tazhate/calendarskill/internal/dialog"
	"github.com/tazhate/calendarskill/internal/intent"
)

// Skill is what the bot forwards intents to
type Skill interface {
	Next(ctx context.Context) error
	Day(ctx context.Context, utterance string) error
	First(ctx context.Context, utterance string) error
	Add(ctx context.Context, title, utterance string) error
	Remind(ctx context.Context, message, utterance string) error
	Help(ctx context.Context) error
	Handle(ctx context.Context, in intent.Intent) (bool, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	sender   sender
	cfg      *config.Config
	skill    Skill
	matcher  *intent.Matcher
	renderer *dialog.Renderer
	server   *http.Server
	logger   *zap.Logger
}

func New(cfg *config.Config, renderer *dialog.Renderer, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "bot"))
	logger.Info("Authorized", zap.String("username", api.Self.UserName))

	b := &Bot{
		api:      api,
		sender:   api,
		cfg:      cfg,
		matcher:  intent.NewMatcher(intent.DefaultVocabulary),
		renderer: renderer,
		logger:   logger,
	}
	b.setCommands()
	return b, nil
}

// SetSkill attaches the skill; the skill itself speaks through the bot
func (b *Bot) SetSkill(skill Skill) {
	b.skill = skill
}

// Speaker returns the speech output bound to the owner chat
func (b *Bot) Speaker() *Speaker {
	return NewSpeaker(b.sender, b.cfg.Telegram.OwnerID, b.renderer)
}

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "next", Description: "Next appointment"},
		{Command: "day", Description: "Appointments on a day"},
		{Command: "first", Description: "First appointment of a day"},
		{Command: "add", Description: "Add an appointment"},
		{Command: "remind", Description: "Set a reminder"},
		{Command: "help", Description: "What I can do"},
	}

	cfg := tgbotapi.NewSetMyCommands(commands...)
	if _, err := b.sender.Request(cfg); err != nil {
		b.logger.Warn("Failed to set commands", zap.Error(err))
	}
}

func (b *Bot) setupWebhook() error {
	webhookURL := b.cfg.Telegram.WebhookURL + "/bot"

	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		b.logger.Warn("Webhook last error", zap.String("error", info.LastErrorMessage))
	}

	b.logger.Info("Webhook set", zap.String("url", webhookURL))
	return nil
}

// Start receives updates until ctx is done. With a webhook URL configured
// updates arrive over HTTP, otherwise by long polling.
func (b *Bot) Start(ctx context.Context) error {
	if b.skill == nil {
		return errors.New("bot started without a skill")
	}

	updates, err := b.updates(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) updates(ctx context.Context) (tgbotapi.UpdatesChannel, error) {
	if b.cfg.Telegram.WebhookURL == "" {
		if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			b.logger.Warn("Failed to delete webhook", zap.Error(err))
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		b.logger.Info("Polling for updates")
		return b.api.GetUpdatesChan(u), nil
	}

	if err := b.setupWebhook(); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	updates := make(chan tgbotapi.Update, b.api.Buffer)
	mux.HandleFunc("/bot", b.webhookHandler(ctx, updates))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	b.server = &http.Server{
		Addr:    ":" + b.cfg.Telegram.ServerPort,
		Handler: mux,
	}
	go func() {
		b.logger.Info("Starting webhook server", zap.String("port", b.cfg.Telegram.ServerPort))
		if err := b.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return updates, nil
}

// webhookHandler queues updates for Start. Once Start has returned nobody
// reads the channel, so a request gives up when ctx or the request ends.
func (b *Bot) webhookHandler(ctx context.Context, updates chan<- tgbotapi.Update) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			b.logger.Warn("Bad webhook update", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		select {
		case updates <- *update:
		case <-ctx.Done():
			w.WriteHeader(http.StatusServiceUnavailable)
		case <-r.Context().Done():
		}
	}
}

func (b *Bot) Stop(ctx context.Context) error {
	if b.server != nil {
		return b.server.Shutdown(ctx)
	}
	b.api.StopReceivingUpdates()
	return nil
}

// SendMessage sends plain text to a chat
func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.sender.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.sender.Send(msg)
	return err
}
