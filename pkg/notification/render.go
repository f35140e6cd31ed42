package notification

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// rendered holds a notice ready to hand to a transport
type rendered struct {
	Subject string
	Text    string
	Html    string
}

func renderNotice(notification NotificationData, noticeTemplate NoticeTemplate) (rendered, error) {
	out := rendered{Subject: noticeTemplate.Subject}
	if notification.Subject != "" {
		out.Subject = notification.Subject
	}

	if noticeTemplate.Text != "" {
		tmpl, err := texttemplate.New("text").Parse(noticeTemplate.Text)
		if err != nil {
			return rendered{}, err
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, notification.Data); err != nil {
			return rendered{}, err
		}
		out.Text = buf.String()
	}

	if noticeTemplate.Html != "" {
		tmpl, err := htmltemplate.New("html").Parse(noticeTemplate.Html)
		if err != nil {
			return rendered{}, err
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, notification.Data); err != nil {
			return rendered{}, err
		}
		out.Html = buf.String()
	}

	if out.Text == "" && out.Html == "" {
		out.Text = notification.Body
	}
	return out, nil
}
