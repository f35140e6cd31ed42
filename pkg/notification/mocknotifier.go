package notification

import (
	"context"
	"sync"
)

type MockNotifier struct {
	mu                sync.Mutex
	SentNotifications []NotificationData
	SentTemplates     []NoticeTemplate
	Err               error
}

func (m *MockNotifier) Send(ctx context.Context, noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.SentNotifications = append(m.SentNotifications, notification)
	m.SentTemplates = append(m.SentTemplates, template)
	return nil
}
