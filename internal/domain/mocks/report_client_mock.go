package mocks

import (
	"context"
	"sync"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// MockReportClient is a mock implementation of domain.ReportClient
type MockReportClient struct {
	GenerateReportFunc func(ctx context.Context, req domain.ReportRequest) entity.Result

	mu       sync.Mutex
	requests []domain.ReportRequest
}

// GenerateReport mocks the GenerateReport method and records the request
func (m *MockReportClient) GenerateReport(ctx context.Context, req domain.ReportRequest) entity.Result {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateReportFunc != nil {
		return m.GenerateReportFunc(ctx, req)
	}
	return entity.TextResult{Content: "report for: " + req.Query}
}

// Calls returns how many times GenerateReport was called
func (m *MockReportClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of the recorded requests
func (m *MockReportClient) Requests() []domain.ReportRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ReportRequest(nil), m.requests...)
}
