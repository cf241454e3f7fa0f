package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/events"
)

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendPaymentReceipt(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	args := m.Called(ctx, user, payment)
	return args.Error(0)
}

func (m *MockNotifier) SendPaymentReminder(ctx context.Context, user *domain.User, summary *domain.PaymentSummary) error {
	args := m.Called(ctx, user, summary)
	return args.Error(0)
}

// MockSpaceCache
type MockSpaceCache struct {
	mock.Mock
}

func (m *MockSpaceCache) GetAvailable(ctx context.Context) ([]domain.Space, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.Space), args.Bool(1), args.Error(2)
}

func (m *MockSpaceCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSpaceCache) SetAvailable(ctx context.Context, generation int64, spaces []domain.Space) (bool, error) {
	args := m.Called(ctx, generation, spaces)
	return args.Bool(0), args.Error(1)
}

func (m *MockSpaceCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func eventOfType(t events.Type) interface{} {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == t })
}

// generationCache mirrors the redis cache: Invalidate bumps a generation and
// SetAvailable drops snapshots taken under an older one. beforeSet runs at
// the start of SetAvailable so a test can interleave a commit.
type generationCache struct {
	mu        sync.Mutex
	gen       int64
	spaces    []domain.Space
	cached    bool
	beforeSet func()
}

func (c *generationCache) GetAvailable(ctx context.Context) ([]domain.Space, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spaces, c.cached, nil
}

func (c *generationCache) Generation(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *generationCache) SetAvailable(ctx context.Context, generation int64, spaces []domain.Space) (bool, error) {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.gen {
		return false, nil
	}
	c.spaces, c.cached = spaces, true
	return true, nil
}

func (c *generationCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.spaces, c.cached = nil, false
	return nil
}
