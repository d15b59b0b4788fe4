package usecase

import (
	"context"
	"sync"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/infrastructure/bus"

	"github.com/stretchr/testify/mock"
)

type mockEventRepo struct{ mock.Mock }

func (m *mockEventRepo) ListMainEvents(ctx context.Context) ([]entity.MainEvent, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]entity.MainEvent)
	return events, args.Error(1)
}

func (m *mockEventRepo) ListSubEvents(ctx context.Context) ([]entity.SubEvent, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]entity.SubEvent)
	return events, args.Error(1)
}

func (m *mockEventRepo) FindMainEvent(ctx context.Context, id string) (*entity.MainEvent, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*entity.MainEvent)
	return event, args.Error(1)
}

func (m *mockEventRepo) SaveMainEvent(ctx context.Context, event *entity.MainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) SaveSubEvent(ctx context.Context, event *entity.SubEvent) error {
	return m.Called(ctx, event).Error(0)
}

type mockDelegationRepo struct{ mock.Mock }

func (m *mockDelegationRepo) List(ctx context.Context) ([]entity.Delegation, error) {
	args := m.Called(ctx)
	delegations, _ := args.Get(0).([]entity.Delegation)
	return delegations, args.Error(1)
}

func (m *mockDelegationRepo) FindByID(ctx context.Context, id string) (*entity.Delegation, error) {
	args := m.Called(ctx, id)
	delegation, _ := args.Get(0).(*entity.Delegation)
	return delegation, args.Error(1)
}

func (m *mockDelegationRepo) Save(ctx context.Context, delegation *entity.Delegation) error {
	return m.Called(ctx, delegation).Error(0)
}

func (m *mockDelegationRepo) AppendDepartureSession(ctx context.Context, delegationID string, session entity.DepartureSession) error {
	return m.Called(ctx, delegationID, session).Error(0)
}

func (m *mockDelegationRepo) ListDetachedSessions(ctx context.Context) ([]entity.DepartureSession, error) {
	args := m.Called(ctx)
	sessions, _ := args.Get(0).([]entity.DepartureSession)
	return sessions, args.Error(1)
}

type mockMemberRepo struct{ mock.Mock }

func (m *mockMemberRepo) List(ctx context.Context) ([]entity.Member, error) {
	args := m.Called(ctx)
	members, _ := args.Get(0).([]entity.Member)
	return members, args.Error(1)
}

func (m *mockMemberRepo) Save(ctx context.Context, member *entity.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *mockMemberRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAirlineRepo struct{ mock.Mock }

func (m *mockAirlineRepo) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	args := m.Called(ctx, code)
	airline, _ := args.Get(0).(*entity.Airline)
	return airline, args.Error(1)
}

func (m *mockAirlineRepo) List(ctx context.Context) ([]entity.Airline, error) {
	args := m.Called(ctx)
	airlines, _ := args.Get(0).([]entity.Airline)
	return airlines, args.Error(1)
}

type mockLegacyCache struct{ mock.Mock }

func (m *mockLegacyCache) Members(ctx context.Context) ([]entity.Member, error) {
	args := m.Called(ctx)
	members, _ := args.Get(0).([]entity.Member)
	return members, args.Error(1)
}

func (m *mockLegacyCache) Delegations(ctx context.Context) ([]entity.Delegation, error) {
	args := m.Called(ctx)
	delegations, _ := args.Get(0).([]entity.Delegation)
	return delegations, args.Error(1)
}

// recordingPublisher remembers published topics in order
type recordingPublisher struct {
	mu     sync.Mutex
	topics []bus.Topic
}

func (p *recordingPublisher) Publish(topic bus.Topic) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
}

func (p *recordingPublisher) Topics() []bus.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bus.Topic(nil), p.topics...)
}

type stubLoader struct {
	mu    sync.Mutex
	snap  Snapshot
	err   error
	calls int
}

func (l *stubLoader) Load(ctx context.Context) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.snap, l.err
}

func (l *stubLoader) set(snap Snapshot, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap, l.err = snap, err
}

func (l *stubLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
