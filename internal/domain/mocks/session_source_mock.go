package mocks

import (
	"context"

	"github.com/mansidw/aakar-cli/internal/domain"
)

// MockSessionSource is a mock implementation of domain.SessionSource
type MockSessionSource struct {
	ListSessionsFunc       func(ctx context.Context, userID string) ([]domain.RemoteSession, error)
	GetSessionMessagesFunc func(ctx context.Context, sessionID string) ([]domain.RemoteMessage, error)
}

// ListSessions mocks the ListSessions method
func (m *MockSessionSource) ListSessions(ctx context.Context, userID string) ([]domain.RemoteSession, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx, userID)
	}
	return []domain.RemoteSession{}, nil
}

// GetSessionMessages mocks the GetSessionMessages method
func (m *MockSessionSource) GetSessionMessages(ctx context.Context, sessionID string) ([]domain.RemoteMessage, error) {
	if m.GetSessionMessagesFunc != nil {
		return m.GetSessionMessagesFunc(ctx, sessionID)
	}
	return []domain.RemoteMessage{}, nil
}
