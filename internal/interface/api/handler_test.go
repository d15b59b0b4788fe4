package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/domain/repository"
	"delegation-service/internal/infrastructure/bus"
	"delegation-service/internal/usecase"
	"delegation-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeView struct {
	rows      []entity.ReconciledMember
	issues    []entity.Issue
	updatedAt time.Time

	lastEvent string
	lastPath  [3]string
}

func (v *fakeView) Rows() []entity.ReconciledMember { return v.rows }
func (v *fakeView) Issues() []entity.Issue          { return v.issues }
func (v *fakeView) UpdatedAt() time.Time            { return v.updatedAt }

func (v *fakeView) RowsForEvent(segment string) []entity.ReconciledMember {
	v.lastEvent = segment
	return v.rows
}

func (v *fakeView) RowsForPath(eventSegment, subEventID, delegationID string) []entity.ReconciledMember {
	v.lastPath = [3]string{eventSegment, subEventID, delegationID}
	return nil
}

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

type topicRecorder struct {
	mu     sync.Mutex
	topics []bus.Topic
}

func (p *topicRecorder) Publish(topic bus.Topic) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
}

type handlerFixture struct {
	view        *fakeView
	events      *mockEventRepo
	delegations *mockDelegationRepo
	members     *mockMemberRepo
	published   *topicRecorder
	server      http.Handler
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		view:        &fakeView{},
		events:      new(mockEventRepo),
		delegations: new(mockDelegationRepo),
		members:     new(mockMemberRepo),
		published:   &topicRecorder{},
	}
	mutations := usecase.NewMutationService(f.events, f.delegations, f.members, f.published, logger.NewNop())
	h := NewHandler(f.view, mutations, logger.NewNop())

	r := chi.NewRouter()
	r.Route("/api", h.Routes)
	f.server = r
	return f
}

func (f *handlerFixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListMembers(t *testing.T) {
	f := newHandlerFixture()
	path := "/edex/s1/d1"
	f.view.rows = []entity.ReconciledMember{{MemberID: "m1", Status: entity.StatusNotDeparted, Path: &path}}
	f.view.updatedAt = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	rec := f.do(http.MethodGet, "/api/members", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp MembersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "2025-01-10T08:00:00Z", resp.UpdatedAt)
	require.NotNil(t, resp.Members[0].Path)
	assert.Equal(t, "/edex/s1/d1", *resp.Members[0].Path)
}

func TestHandler_ListMembersEmpty(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodGet, "/api/members", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"members":[],"count":0}`, rec.Body.String())
}

func TestHandler_ListIssues(t *testing.T) {
	f := newHandlerFixture()
	f.view.issues = []entity.Issue{{Kind: entity.IssueOverCapacity, EntityID: "d1", Detail: "4 members for 3 declared"}}

	rec := f.do(http.MethodGet, "/api/issues", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"issues":[{"kind":"over_capacity","entityId":"d1","detail":"4 members for 3 declared"}],"count":1}`,
		rec.Body.String())
}

func TestHandler_EventRoutesUnescapeSegments(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodGet, "/api/events/%D8%A7%D9%8A%D8%AF%D9%8A%D9%83%D8%B3/members", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ايديكس", f.view.lastEvent)

	rec = f.do(http.MethodGet, "/api/events/edex/s1/d%201/members", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [3]string{"edex", "s1", "d 1"}, f.view.lastPath)
}

func TestHandler_CreateMainEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		existing   []entity.MainEvent
		wantStatus int
	}{
		{name: "created", body: `{"displayName":"ايديكس","linkName":"EDEX"}`, wantStatus: http.StatusCreated},
		{name: "missing name", body: `{"linkName":"EDEX"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"displayName":"x","slug":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "empty slug", body: `{"displayName":"***"}`, wantStatus: http.StatusBadRequest},
		{
			name:       "slug taken",
			body:       `{"displayName":"Edex"}`,
			existing:   []entity.MainEvent{{ID: "e1", DisplayName: "ايديكس", LinkName: "EDEX"}},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			f.events.On("ListMainEvents", mock.Anything).Return(tt.existing, nil).Maybe()
			f.events.On("SaveMainEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

			rec := f.do(http.MethodPost, "/api/events", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusCreated {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "edex", resp["slug"])
				assert.Equal(t, "/edex", resp["path"])
			}
		})
	}
}

func TestHandler_CreateSubEventUnknownParent(t *testing.T) {
	f := newHandlerFixture()
	f.events.On("FindMainEvent", mock.Anything, "e9").Return(nil, repository.ErrNotFound)

	rec := f.do(http.MethodPost, "/api/events/e9/sub-events", `{"displayName":"Day 1"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_AddDeparture(t *testing.T) {
	delegation := &entity.Delegation{
		ID:                "d1",
		DepartureSessions: []entity.DepartureSession{{ID: "ds1", MemberIDs: []string{"m1"}}},
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "created", body: `{"scheduledDate":"2025-01-10","scheduledTime":"14:30","memberIds":["m2"]}`, wantStatus: http.StatusCreated},
		{name: "slashed date", body: `{"scheduledDate":"10/01/2025","memberIds":["m2"]}`, wantStatus: http.StatusCreated},
		{name: "bad date", body: `{"scheduledDate":"tomorrow","memberIds":["m2"]}`, wantStatus: http.StatusBadRequest},
		{name: "bad time", body: `{"scheduledDate":"2025-01-10","scheduledTime":"2pm","memberIds":["m2"]}`, wantStatus: http.StatusBadRequest},
		{name: "no members", body: `{"scheduledDate":"2025-01-10","memberIds":[]}`, wantStatus: http.StatusBadRequest},
		{name: "duplicate members", body: `{"scheduledDate":"2025-01-10","memberIds":["m2","m2"]}`, wantStatus: http.StatusBadRequest},
		{name: "already departed", body: `{"scheduledDate":"2025-01-10","memberIds":["m1"]}`, wantStatus: http.StatusConflict},
		{name: "departed in detached session", body: `{"scheduledDate":"2025-01-20","memberIds":["m3"]}`, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			f.delegations.On("FindByID", mock.Anything, "d1").Return(delegation, nil).Maybe()
			f.delegations.On("ListDetachedSessions", mock.Anything).Return([]entity.DepartureSession{
				{ID: "old", DelegationID: "d1", MemberIDs: []string{"m3"}},
			}, nil).Maybe()
			f.delegations.On("AppendDepartureSession", mock.Anything, "d1", mock.Anything).Return(nil).Maybe()

			rec := f.do(http.MethodPost, "/api/delegations/d1/departures", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_SaveMember(t *testing.T) {
	f := newHandlerFixture()
	f.members.On("Save", mock.Anything, mock.MatchedBy(func(m *entity.Member) bool {
		return m.ID == "m1" && m.Status == entity.StatusDeparted
	})).Return(nil)

	rec := f.do(http.MethodPut, "/api/members/m1",
		`{"name":"Member One","memberStatus":"DEPARTED","departureDate":"2025-01-10"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []bus.Topic{bus.TopicMember}, f.published.topics)

	rec = f.do(http.MethodPut, "/api/members/m1", `{"name":"Member One","memberStatus":"GONE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DeleteMember(t *testing.T) {
	f := newHandlerFixture()
	f.members.On("Delete", mock.Anything, "m1").Return(nil)
	f.members.On("Delete", mock.Anything, "gone").Return(repository.ErrNotFound)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/members/m1", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/members/gone", "").Code)
}

func TestHandler_InternalErrorsAreHidden(t *testing.T) {
	f := newHandlerFixture()
	f.delegations.On("Save", mock.Anything, mock.Anything).Return(assert.AnError)

	rec := f.do(http.MethodPut, "/api/delegations/d1", `{"nationality":"Egypt","headName":"Head"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestHandler_Refresh(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodPost, "/api/refresh", "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []bus.Topic{bus.TopicGeneric}, f.published.topics)
}
