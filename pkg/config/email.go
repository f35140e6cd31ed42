package config

import (
	"github.com/tendant/simple-confirm/pkg/notification"
)

const (
	EmailTransportSMTP     = "smtp"
	EmailTransportSendGrid = "sendgrid"
)

// EmailConfig holds outgoing email configuration
type EmailConfig struct {
	Transport string `env:"EMAIL_TRANSPORT" env-default:"smtp"`
	Host      string `env:"EMAIL_HOST" env-default:"localhost"`
	Port      uint16 `env:"EMAIL_PORT" env-default:"1025"`
	Username  string `env:"EMAIL_USERNAME" env-default:""`
	Password  string `env:"EMAIL_PASSWORD" env-default:""`
	From      string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	FromName  string `env:"EMAIL_FROM_NAME" env-default:""`
	TLS       bool   `env:"EMAIL_TLS" env-default:"false"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
}

// ToSMTPConfig converts the config to a notification.SMTPConfig
func (e EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.Host,
		Port:     int(e.Port),
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
		TLS:      e.TLS,
	}
}

// ToSendGridConfig converts the config to a notification.SendGridConfig
func (e EmailConfig) ToSendGridConfig() notification.SendGridConfig {
	return notification.SendGridConfig{
		APIKey:   e.SendGridAPIKey,
		From:     e.From,
		FromName: e.FromName,
	}
}

// TransportOption returns the notification manager option for the configured transport
func (e EmailConfig) TransportOption() notification.NotificationManagerOption {
	if e.Transport == EmailTransportSendGrid {
		return notification.WithSendGrid(e.ToSendGridConfig())
	}
	return notification.WithSMTP(e.ToSMTPConfig())
}
