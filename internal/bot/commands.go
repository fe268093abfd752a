package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tazhate/calendarskill/internal/intent"
)

const (
	addUsage    = "Usage: /add <title> at <when>, e.g. /add Dentist at 3pm tomorrow"
	remindUsage = "Usage: /remind <message> at <when>, e.g. /remind call mom at 5pm"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	var err error
	switch msg.Command() {
	case "start", "help":
		err = b.cmdHelp(ctx, chatID)
	case "next":
		err = b.skill.Next(ctx)
	case "day":
		err = b.skill.Day(ctx, orToday(args))
	case "first":
		err = b.skill.First(ctx, orToday(args))
	case "add":
		err = b.cmdAdd(ctx, chatID, args)
	case "remind":
		err = b.cmdRemind(ctx, chatID, args)
	default:
		err = b.SendMessage(chatID, "Unknown command. /help lists what I can do")
	}
	if err != nil {
		b.logger.Error("Command failed", zap.String("command", msg.Command()), zap.Error(err))
	}
}

func (b *Bot) cmdHelp(ctx context.Context, chatID int64) error {
	if err := b.skill.Help(ctx); err != nil {
		return err
	}
	return b.SendMessageWithKeyboard(chatID, "Quick questions:", quickKeyboard())
}

// cmdAdd reads "<title> at <when>" with the same pattern as spoken requests
func (b *Bot) cmdAdd(ctx context.Context, chatID int64, args string) error {
	in, ok := b.matcher.Match("schedule " + args)
	if !ok || in.Name != intent.ScheduleAt {
		return b.SendMessage(chatID, addUsage)
	}
	return b.skill.Add(ctx, in.Slots[intent.SlotAppointmentTitle], in.Slots[intent.SlotWhen])
}

func (b *Bot) cmdRemind(ctx context.Context, chatID int64, args string) error {
	in, ok := b.matcher.Match("remind me to " + args)
	if !ok || in.Name != intent.RemindAt {
		return b.SendMessage(chatID, remindUsage)
	}
	return b.skill.Remind(ctx, in.Slots[intent.SlotMessage], in.Slots[intent.SlotWhen])
}

func orToday(args string) string {
	if args == "" {
		return "today"
	}
	return args
}
