package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
)

// Sender is the part of *tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client posts notifications to Telegram chats.
type Client struct {
	bot       Sender
	opsChatID int64
}

// New authorizes against the Bot API with token.
func New(token string, opsChatID int64) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	bot.Debug = false
	slog.Info("Telegram bot authorized", "account", bot.Self.UserName)
	return NewWithSender(bot, opsChatID), nil
}

func NewWithSender(bot Sender, opsChatID int64) *Client {
	return &Client{bot: bot, opsChatID: opsChatID}
}

// OpsChatID returns the operations chat, 0 when unset.
func (c *Client) OpsChatID() int64 {
	return c.opsChatID
}

// Send posts n to chatID as Markdown.
func (c *Client) Send(ctx context.Context, chatID int64, n notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, Format(n))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message to %d: %w", chatID, err)
	}
	return nil
}

// Format renders n as a Markdown message.
func Format(n notification.Notification) string {
	var b strings.Builder
	b.WriteString("*")
	b.WriteString(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, n.Title))
	b.WriteString("*\n")
	b.WriteString(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, n.Message))

	keys := make([]string, 0, len(n.Data))
	for k := range n.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, fmt.Sprintf("%s: %v", k, n.Data[k])))
	}
	return b.String()
}
