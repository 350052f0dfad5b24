package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/reportdash/backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockAlertRepository mocks the AlertRepository interface
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) ReplaceAll(ctx context.Context, rows []domain.AlertSnapshot) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockAlertRepository) GetAll(ctx context.Context) ([]domain.AlertSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AlertSnapshot), args.Error(1)
}

func (m *MockAlertRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSettingRepository mocks the SystemSettingRepository interface
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (*domain.SystemSetting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemSetting), args.Error(1)
}

func (m *MockSettingRepository) Set(ctx context.Context, setting *domain.SystemSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

// fakeTimeline records events in memory. Tasks write to it from their own
// goroutine, so it is safe for concurrent use.
type fakeTimeline struct {
	mu         sync.Mutex
	events     []domain.TimelineEvent
	cleanedFor []time.Duration
	cleanupErr error
}

func (f *fakeTimeline) Create(_ context.Context, event *domain.TimelineEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeTimeline) GetByResource(_ context.Context, resourceType string, resourceID string) ([]domain.TimelineEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TimelineEvent
	for _, e := range f.events {
		if e.ResourceType == resourceType && e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeTimeline) GetAll(_ context.Context, limit int) ([]domain.TimelineEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.events) {
		limit = len(f.events)
	}
	return append([]domain.TimelineEvent(nil), f.events[:limit]...), nil
}

func (f *fakeTimeline) CleanupOld(_ context.Context, olderThan time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanedFor = append(f.cleanedFor, olderThan)
	return f.cleanupErr
}

func (f *fakeTimeline) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type stringSource struct {
	body string
	err  error
}

func (s stringSource) Open(context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func (s stringSource) Describe() string { return "memory://alerts.csv" }
