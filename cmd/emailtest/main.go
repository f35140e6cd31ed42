// emailtest sends a sample confirmation email through the configured
// transport so SMTP or SendGrid settings can be checked before going live.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tendant/simple-confirm/pkg/config"
	"github.com/tendant/simple-confirm/pkg/notification"
)

func main() {
	to := flag.String("to", "", "recipient address")
	link := flag.String("link", "http://localhost/confirm/0000000000000000000000000000000000000000/", "activation link placed in the message")
	timeout := flag.Duration("timeout", 30*time.Second, "send timeout")
	flag.Parse()

	if *to == "" {
		fmt.Println("Error: -to is required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	manager, err := notification.NewNotificationManagerWithOptions(
		cfg.Email.TransportOption(),
		notification.WithDefaultTemplates(),
	)
	if err != nil {
		slog.Error("Failed to create notification manager", "error", err)
		os.Exit(1)
	}

	siteName := cfg.Site.Name
	if siteName == "" {
		siteName = cfg.Site.Domain
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	err = manager.Send(ctx, notification.EmailConfirmationNotice, notification.NotificationData{
		To: *to,
		Data: map[string]string{
			"ActivateURL": *link,
			"Email":       *to,
			"SiteName":    siteName,
		},
	})
	if err != nil {
		slog.Error("Failed to send test email", "transport", cfg.Email.Transport, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Test confirmation email sent to %s via %s\n", *to, cfg.Email.Transport)
}
