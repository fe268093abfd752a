package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// quickKeyboard offers the common questions as buttons
func quickKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Next", "next"),
			tgbotapi.NewInlineKeyboardButtonData("Today", "day:today"),
			tgbotapi.NewInlineKeyboardButtonData("Tomorrow", "day:tomorrow"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("First tomorrow", "first:tomorrow"),
		),
	)
}
