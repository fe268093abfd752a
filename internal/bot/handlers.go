package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if !b.cfg.IsAllowedUser(msg.From.ID) {
		b.logger.Warn("Rejected message from unknown user", zap.Int64("user_id", msg.From.ID))
		_ = b.SendMessage(chatID, "Access denied")
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	in, ok := b.matcher.Match(text)
	if !ok {
		b.logger.Debug("No intent matched", zap.String("text", text))
		_ = b.SendMessageWithKeyboard(chatID, "I did not catch that. Try one of these:", quickKeyboard())
		return
	}
	if _, err := b.skill.Handle(ctx, in); err != nil {
		b.logger.Error("Failed to handle intent", zap.String("intent", in.Name), zap.Error(err))
	}
}

// handleCallback serves the quick keyboard: "next", "day:<when>", "first:<when>"
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.From == nil || !b.cfg.IsAllowedUser(callback.From.ID) {
		_, _ = b.sender.Request(tgbotapi.NewCallback(callback.ID, "Access denied"))
		return
	}
	if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}

	action, arg, _ := strings.Cut(callback.Data, ":")
	var err error
	switch action {
	case "next":
		err = b.skill.Next(ctx)
	case "day":
		err = b.skill.Day(ctx, arg)
	case "first":
		err = b.skill.First(ctx, arg)
	default:
		b.logger.Warn("Unknown callback", zap.String("data", callback.Data))
	}
	if err != nil {
		b.logger.Error("Failed to handle callback", zap.String("data", callback.Data), zap.Error(err))
	}
}
