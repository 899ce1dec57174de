package notify

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSink forwards broker messages to a Telegram chat. Optional; the
// simulation runs for days at a time unattended, so deal confirmations are
// worth surfacing outside the console.
type TelegramSink struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegramSink creates a sink for the given bot token and chat ID.
func NewTelegramSink(botToken, chatID string) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat ID: %w", err)
	}
	return &TelegramSink{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     3,
		retryDelayBase: time.Second,
	}, nil
}

// Push implements Sink with linear-backoff retries.
func (t *TelegramSink) Push(text, category string, priority bool) error {
	prefix := category
	if priority {
		prefix = "❗ " + category
	}
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("[%s] %s", prefix, text))

	var lastErr error
	for i := 0; i < t.maxRetries; i++ {
		if _, err := t.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(t.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("telegram push failed after %d retries: %w", t.maxRetries, lastErr)
}
