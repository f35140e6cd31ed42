package notification

import "testing"

func TestRenderNotice(t *testing.T) {
	tests := []struct {
		name     string
		data     NotificationData
		template NoticeTemplate
		want     rendered
	}{
		{
			name:     "template subject",
			data:     NotificationData{Data: map[string]string{"Name": "Ada"}},
			template: NoticeTemplate{Subject: "Hi", Text: "Hello {{.Name}}"},
			want:     rendered{Subject: "Hi", Text: "Hello Ada"},
		},
		{
			name:     "subject override",
			data:     NotificationData{Subject: "Override"},
			template: NoticeTemplate{Subject: "Hi", Text: "plain"},
			want:     rendered{Subject: "Override", Text: "plain"},
		},
		{
			name:     "html is escaped",
			data:     NotificationData{Data: map[string]string{"Name": "<b>"}},
			template: NoticeTemplate{Subject: "Hi", Html: "<p>{{.Name}}</p>"},
			want:     rendered{Subject: "Hi", Html: "<p>&lt;b&gt;</p>"},
		},
		{
			name:     "body fallback",
			data:     NotificationData{Body: "raw"},
			template: NoticeTemplate{Subject: "Hi"},
			want:     rendered{Subject: "Hi", Text: "raw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderNotice(tt.data, tt.template)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRenderNoticeBadTemplate(t *testing.T) {
	_, err := renderNotice(NotificationData{}, NoticeTemplate{Subject: "Hi", Text: "{{.Name"})
	if err == nil {
		t.Error("Expected parse error")
	}
}

func TestEmailNotifierRequiresRecipient(t *testing.T) {
	notifier, err := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@example.com"})
	if err != nil {
		t.Fatalf("Failed to create notifier: %v", err)
	}
	if _, err := notifier.buildMessage(NotificationData{}, NoticeTemplate{Subject: "Hi", Text: "x"}); err == nil {
		t.Error("Expected error for missing recipient")
	}
	msg, err := notifier.buildMessage(NotificationData{To: "user@example.com"}, NoticeTemplate{Subject: "Hi", Text: "x", Html: "<p>x</p>"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := msg.GetTo(); len(got) != 1 || got[0].Address != "user@example.com" {
		t.Errorf("Unexpected recipients: %v", got)
	}
}

func TestNewSendGridNotifierRequiresKey(t *testing.T) {
	if _, err := NewSendGridNotifier(SendGridConfig{From: "noreply@example.com"}); err == nil {
		t.Error("Expected error for missing api key")
	}
}
