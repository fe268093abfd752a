package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tazhate/calendarskill/internal/dialog"
)

// Speaker renders dialogs and sends them to one chat
type Speaker struct {
	sender   sender
	chatID   int64
	renderer *dialog.Renderer
}

func NewSpeaker(s sender, chatID int64, renderer *dialog.Renderer) *Speaker {
	return &Speaker{sender: s, chatID: chatID, renderer: renderer}
}

func (s *Speaker) SpeakDialog(ctx context.Context, resp dialog.Response) error {
	return s.Speak(ctx, s.renderer.Render(resp))
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if _, err := s.sender.Send(tgbotapi.NewMessage(s.chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
