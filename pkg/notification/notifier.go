package notification

import "context"

// NoticeType identifies a kind of notice (e.g. "email_confirmation")
type NoticeType string

const (
	EmailConfirmationNotice NoticeType = "email_confirmation"
	ExampleNotice           NoticeType = "example"
)

type NotificationData struct {
	To      string            // Recipient address
	Subject string            // Optional: overrides the template subject
	Body    string            // Optional: raw content when no template applies
	Data    map[string]string // Template variables
}

// NoticeTemplate holds the subject and bodies rendered for a notice
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type Notifier interface {
	Send(ctx context.Context, noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
