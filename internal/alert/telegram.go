package alert

import (
	"context"
	"fmt"

	"github.com/Alias1177/StockDashboard/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the notifier needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts anomaly alerts into a Telegram chat
type TelegramNotifier struct {
	bot    Sender
	chatID int64
}

// NewTelegramNotifier authorizes the bot token and returns a notifier for chatID
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// NewTelegramNotifierWithSender is used when the bot is created elsewhere
func NewTelegramNotifierWithSender(bot Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// Notify implements Notifier
func (n *TelegramNotifier) Notify(ctx context.Context, symbol string, anomalies []models.Anomaly) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatMessage(symbol, anomalies))
	msg.ParseMode = "Markdown"

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}
