package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, msg)
	}
	return tgbotapi.Message{}, r.err
}

func TestClient_Send(t *testing.T) {
	sender := &recordingSender{}
	client := NewWithSender(sender, -100)

	n := notification.Notification{
		Title:   "Reconciliation completed",
		Message: "closed 3, backfilled 2",
		Data:    map[string]any{"closed": 3, "backfilled": 2},
	}
	require.NoError(t, client.Send(context.Background(), client.OpsChatID(), n))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, int64(-100), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Contains(t, msg.Text, "*Reconciliation completed*")
	assert.Contains(t, msg.Text, "backfilled: 2\nclosed: 3")
}

func TestClient_SendError(t *testing.T) {
	client := NewWithSender(&recordingSender{err: errors.New("chat not found")}, 0)
	err := client.Send(context.Background(), 42, notification.Notification{Title: "x"})
	assert.ErrorContains(t, err, "chat not found")
}

func TestFormat_EscapesMarkdown(t *testing.T) {
	text := Format(notification.Notification{Title: "late_arrival", Message: "see *note*"})
	assert.Contains(t, text, `late\_arrival`)
	assert.Contains(t, text, `see \*note\*`)
}
