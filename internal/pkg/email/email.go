package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService renders and sends notification emails.
type EmailService interface {
	SendNotification(ctx context.Context, to, recipientName string, n notification.Notification) error
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      SendFunc
	backoff   time.Duration
}

// NewEmailService creates an email service that delivers through net/smtp.
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	return newEmailService(cfg, smtp.SendMail, time.Second)
}

func newEmailService(cfg config.SMTPConfig, send SendFunc, backoff time.Duration) (*emailServiceImpl, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      send,
		backoff:   backoff,
	}, nil
}

type detail struct {
	Key   string
	Value string
}

type notificationEmailData struct {
	RecipientName string
	Title         string
	Message       string
	Details       []detail
	SentAt        string
}

func (s *emailServiceImpl) SendNotification(ctx context.Context, to, recipientName string, n notification.Notification) error {
	data := notificationEmailData{
		RecipientName: recipientName,
		Title:         n.Title,
		Message:       n.Message,
		SentAt:        n.CreatedAt.UTC().Format("2006-01-02 15:04 MST"),
	}
	for k, v := range n.Data {
		data.Details = append(data.Details, detail{Key: k, Value: fmt.Sprint(v)})
	}
	sort.Slice(data.Details, func(i, j int) bool { return data.Details[i].Key < data.Details[j].Key })

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "notification.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(ctx, to, n.Title, body.String())
}

func (s *emailServiceImpl) sendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if s.cfg.Host == "" {
		slog.WarnContext(ctx, "SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.InfoContext(ctx, "Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.ErrorContext(ctx, "Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// exponential backoff: 1x, 2x, 4x
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("failed to send email: %w", ctx.Err())
			case <-time.After(s.backoff << (attempt - 1)):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
