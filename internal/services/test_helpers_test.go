package services

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"bondpulse/internal/dataprocessing"
	"bondpulse/pkg/contracts/domain"
	"bondpulse/pkg/contracts/events"
)

// MockPublisher records published dataset events
type MockPublisher struct {
	mock.Mock
	mu     sync.Mutex
	events []published
}

type published struct {
	Type events.MessageType
	Data events.DatasetEvent
}

func (m *MockPublisher) Publish(ctx context.Context, msgType events.MessageType, data any) {
	m.Called(msgType, data)
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, _ := data.(events.DatasetEvent)
	m.events = append(m.events, published{Type: msgType, Data: ev})
}

func (m *MockPublisher) Published() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]published, len(m.events))
	copy(out, m.events)
	return out
}

// MockTableSource is a mock for TableSource
type MockTableSource struct {
	mock.Mock
}

func (m *MockTableSource) Get(symbol string) (*domain.Table, error) {
	args := m.Called(symbol)
	table, _ := args.Get(0).(*domain.Table)
	return table, args.Error(1)
}

func (m *MockTableSource) List() []domain.TickerMeta {
	args := m.Called()
	metas, _ := args.Get(0).([]domain.TickerMeta)
	return metas
}

func (m *MockTableSource) Reload(ctx context.Context, symbol string) (domain.TickerMeta, error) {
	args := m.Called(ctx, symbol)
	meta, _ := args.Get(0).(domain.TickerMeta)
	return meta, args.Error(1)
}

// failingLoader fails for the listed symbols and delegates otherwise
type failingLoader struct {
	next Loader
	fail map[string]bool
}

var errBrokenFile = errors.New("broken tick file")

func (l failingLoader) Load(ctx context.Context, symbol, path string) (*domain.Table, dataprocessing.BuildStats, error) {
	if l.fail[symbol] {
		return nil, dataprocessing.BuildStats{}, errBrokenFile
	}
	return l.next.Load(ctx, symbol, path)
}
