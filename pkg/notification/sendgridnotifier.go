package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridConfig holds SendGrid API configuration
type SendGridConfig struct {
	APIKey   string
	From     string
	FromName string
}

// SendGridNotifier sends email notices through the SendGrid HTTP API
type SendGridNotifier struct {
	config SendGridConfig
	client *sendgrid.Client
}

func NewSendGridNotifier(config SendGridConfig) (*SendGridNotifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	return &SendGridNotifier{
		config: config,
		client: sendgrid.NewSendClient(config.APIKey),
	}, nil
}

func (s *SendGridNotifier) Send(ctx context.Context, noticeType NoticeType, notification NotificationData, noticeTemplate NoticeTemplate) error {
	if notification.To == "" {
		return fmt.Errorf("email notification requires 'To' address")
	}

	content, err := renderNotice(notification, noticeTemplate)
	if err != nil {
		return fmt.Errorf("render notice: %w", err)
	}

	from := mail.NewEmail(s.config.FromName, s.config.From)
	to := mail.NewEmail("", notification.To)
	message := mail.NewSingleEmail(from, content.Subject, to, content.Text, content.Html)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		slog.Error("Failed to send email", "notice", noticeType, "to", notification.To, "err", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 300 {
		slog.Error("SendGrid rejected email", "notice", noticeType, "status_code", response.StatusCode)
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}

	slog.Info("Email sent successfully", "notice", noticeType, "to", notification.To, "status_code", response.StatusCode)
	return nil
}
