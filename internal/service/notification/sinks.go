package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/sse"
)

// LogSink writes every notification to the structured log.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Deliver(ctx context.Context, n notification.Notification) error {
	slog.InfoContext(ctx, "Notification",
		"type", n.Type,
		"recipient_id", n.RecipientID,
		"title", n.Title,
		"message", n.Message,
	)
	return nil
}

// EventPayload is the JSON body of a notification SSE event.
type EventPayload struct {
	Type      notification.Type `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]any    `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SSESink pushes employee notifications to open event streams.
type SSESink struct {
	hub *sse.Hub
}

func NewSSESink(hub *sse.Hub) *SSESink {
	return &SSESink{hub: hub}
}

func (s *SSESink) Name() string { return "sse" }

func (s *SSESink) Deliver(_ context.Context, n notification.Notification) error {
	if n.IsOperational() {
		return notification.ErrNoRecipientAddr
	}
	s.hub.Publish(sse.Event{
		EmployeeID: n.RecipientID,
		Name:       string(n.Type),
		Data: EventPayload{
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Data:      n.Data,
			CreatedAt: n.CreatedAt,
		},
	})
	return nil
}

// EmailSink mails employee notifications to the address on the roster.
type EmailSink struct {
	email     email.EmailService
	directory employee.Directory
}

func NewEmailSink(emailService email.EmailService, directory employee.Directory) *EmailSink {
	return &EmailSink{email: emailService, directory: directory}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, n notification.Notification) error {
	if n.IsOperational() {
		return notification.ErrNoRecipientAddr
	}
	emp, err := s.directory.GetByID(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to load recipient: %w", err)
	}
	if emp.Email == nil || *emp.Email == "" {
		return notification.ErrNoRecipientAddr
	}
	return s.email.SendNotification(ctx, *emp.Email, emp.FullName, n)
}

// TelegramSender is the Telegram client used by TelegramSink.
type TelegramSender interface {
	Send(ctx context.Context, chatID int64, n notification.Notification) error
	OpsChatID() int64
}

// TelegramSink sends operational notifications to the ops chat and employee
// notifications to the employee's linked chat.
type TelegramSink struct {
	client    TelegramSender
	directory employee.Directory
}

func NewTelegramSink(client TelegramSender, directory employee.Directory) *TelegramSink {
	return &TelegramSink{client: client, directory: directory}
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(ctx context.Context, n notification.Notification) error {
	if n.IsOperational() {
		if s.client.OpsChatID() == 0 {
			return notification.ErrNoRecipientAddr
		}
		return s.client.Send(ctx, s.client.OpsChatID(), n)
	}

	emp, err := s.directory.GetByID(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to load recipient: %w", err)
	}
	if emp.TelegramChatID == nil || *emp.TelegramChatID == 0 {
		return notification.ErrNoRecipientAddr
	}
	return s.client.Send(ctx, *emp.TelegramChatID, n)
}
