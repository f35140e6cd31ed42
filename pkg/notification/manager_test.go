package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const webhookSystem NotificationSystem = "webhook"

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager()
	if nm == nil {
		t.Fatal("NewNotificationManager returned nil")
	}
	if nm.notifiers == nil {
		t.Error("notifiers map not initialized")
	}
	if nm.notificationRegistry == nil {
		t.Error("notificationRegistry map not initialized")
	}
}

func TestRegisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	mockNotifier := &MockNotifier{}

	// Test registering a notifier
	nm.RegisterNotifier(EmailSystem, mockNotifier)
	if n, exists := nm.notifiers[EmailSystem]; !exists {
		t.Error("Notifier not registered")
	} else if n != mockNotifier {
		t.Error("Wrong notifier registered")
	}

	// Test overwriting existing notifier
	newMockNotifier := &MockNotifier{}
	nm.RegisterNotifier(EmailSystem, newMockNotifier)
	if n := nm.notifiers[EmailSystem]; n != newMockNotifier {
		t.Error("Notifier not overwritten")
	}
}

func TestRegisterNotification(t *testing.T) {
	nm := NewNotificationManager()

	tests := []struct {
		name        string
		notifType   NoticeType
		system      NotificationSystem
		template    NoticeTemplate
		shouldError bool
	}{
		{
			name:      "Valid registration with both Text and Html",
			notifType: ExampleNotice,
			system:    EmailSystem,
			template:  NoticeTemplate{Subject: "Example Email", Text: "This is an example email", Html: "<p>This is an example email</p>"},
		},
		{
			name:      "Valid registration with Text only",
			notifType: ExampleNotice,
			system:    EmailSystem,
			template:  NoticeTemplate{Subject: "Example Email", Text: "This is an example email"},
		},
		{
			name:      "Valid registration with Html only",
			notifType: ExampleNotice,
			system:    EmailSystem,
			template:  NoticeTemplate{Subject: "Example Email", Html: "<p>This is an example email</p>"},
		},
		{
			name:        "Empty notification type",
			notifType:   "",
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Example Email", Text: "This is an example email"},
			shouldError: true,
		},
		{
			name:        "Empty system",
			notifType:   ExampleNotice,
			system:      "",
			template:    NoticeTemplate{Subject: "Example Email", Text: "This is an example email"},
			shouldError: true,
		},
		{
			name:        "Empty subject",
			notifType:   ExampleNotice,
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "", Text: "This is an example email"},
			shouldError: true,
		},
		{
			name:        "No content",
			notifType:   ExampleNotice,
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Example Email"},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := nm.RegisterNotification(tt.notifType, tt.system, tt.template)
			if tt.shouldError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tt.shouldError {
				if template, exists := nm.notificationRegistry[tt.notifType][tt.system]; !exists {
					t.Error("Template not registered")
				} else if template != tt.template {
					t.Errorf("Wrong template registered. Got %+v, want %+v", template, tt.template)
				}
			}
		})
	}
}

func TestSend(t *testing.T) {
	nm := NewNotificationManager()
	mockEmailNotifier := &MockNotifier{}
	mockWebhookNotifier := &MockNotifier{}

	nm.RegisterNotifier(EmailSystem, mockEmailNotifier)
	nm.RegisterNotifier(webhookSystem, mockWebhookNotifier)

	err := nm.RegisterNotification(ExampleNotice, EmailSystem, NoticeTemplate{Subject: "Example Notification", Text: "This is an example notification"})
	if err != nil {
		t.Fatalf("Failed to register email notification: %v", err)
	}
	err = nm.RegisterNotification(ExampleNotice, webhookSystem, NoticeTemplate{Subject: "Example Notification", Text: "{{.Key}}"})
	if err != nil {
		t.Fatalf("Failed to register webhook notification: %v", err)
	}

	testData := NotificationData{
		To:      "user@example.com",
		Subject: "Test Subject",
		Body:    "Test Body",
	}

	if err := nm.Send(context.Background(), ExampleNotice, testData); err != nil {
		t.Errorf("Failed to send notification: %v", err)
	}

	for name, mock := range map[string]*MockNotifier{"email": mockEmailNotifier, "webhook": mockWebhookNotifier} {
		if len(mock.SentNotifications) != 1 {
			t.Errorf("%s notification not sent", name)
			continue
		}
		sent := mock.SentNotifications[0]
		if sent.To != testData.To || sent.Subject != testData.Subject || sent.Body != testData.Body {
			t.Errorf("%s notification data mismatch", name)
		}
	}
	if got := mockWebhookNotifier.SentTemplates[0].Text; got != "{{.Key}}" {
		t.Errorf("webhook received wrong template: %q", got)
	}
}

func TestSendErrors(t *testing.T) {
	nm := NewNotificationManager()

	// Test sending with unregistered notification type
	err := nm.Send(context.Background(), "unregistered", NotificationData{})
	if err == nil {
		t.Error("Expected error for unregistered notification type")
	}

	// Register notification without registering notifier
	err = nm.RegisterNotification(ExampleNotice, EmailSystem, NoticeTemplate{Subject: "Example Notification", Html: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("Failed to register notification: %v", err)
	}

	err = nm.Send(context.Background(), ExampleNotice, NotificationData{})
	if err == nil {
		t.Error("Expected error for missing notifier")
	} else if err.Error() != "no notifier registered for system: email" {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestSendReportsNotifierFailure(t *testing.T) {
	boom := errors.New("smtp down")
	nm, err := NewNotificationManagerWithOptions(
		WithNotifier(EmailSystem, &MockNotifier{Err: boom}),
		WithDefaultTemplates(),
	)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	err = nm.Send(context.Background(), EmailConfirmationNotice, NotificationData{To: "user@example.com"})
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped notifier error, got %v", err)
	}
}

func TestEmailConfirmationTemplate(t *testing.T) {
	mock := &MockNotifier{}
	nm, err := NewNotificationManagerWithOptions(
		WithNotifier(EmailSystem, mock),
		WithEmailConfirmationTemplate(),
	)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	data := NotificationData{
		To: "user@example.com",
		Data: map[string]string{
			"ActivateURL": "http://example.com/confirm/abc/",
			"SiteName":    "Example",
			"Email":       "user@example.com",
		},
	}
	if err := nm.Send(context.Background(), EmailConfirmationNotice, data); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	if len(mock.SentTemplates) != 1 {
		t.Fatalf("Expected one template, got %d", len(mock.SentTemplates))
	}
	content, err := renderNotice(data, mock.SentTemplates[0])
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
	if !strings.Contains(content.Text, "http://example.com/confirm/abc/") {
		t.Errorf("Text body is missing the activation link: %q", content.Text)
	}
	if !strings.Contains(content.Html, `href="http://example.com/confirm/abc/"`) {
		t.Errorf("Html body is missing the activation link: %q", content.Html)
	}
	if !strings.Contains(content.Text, "Hello from Example!") {
		t.Errorf("Text body is missing the site name: %q", content.Text)
	}
}
