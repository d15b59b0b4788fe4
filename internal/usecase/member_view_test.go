package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/infrastructure/bus"
	"delegation-service/pkg/logger"
	"delegation-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberView_Refresh(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	loader := &stubLoader{snap: edexSnapshot()}
	view := NewMemberView(loader, logger.NewNop(), m)

	assert.Empty(t, view.Rows())
	assert.True(t, view.UpdatedAt().IsZero())

	require.NoError(t, view.Refresh(context.Background()))

	rows := view.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "m1", rows[0].MemberID)
	assert.False(t, view.UpdatedAt().IsZero())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reconciliations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MembersByStatus.WithLabelValues(string(entity.StatusNotDeparted))))
}

func TestMemberView_RefreshFailureKeepsPreviousRows(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	loader := &stubLoader{snap: edexSnapshot()}
	view := NewMemberView(loader, logger.NewNop(), m)
	require.NoError(t, view.Refresh(context.Background()))

	loader.set(Snapshot{}, errors.New("mongo unavailable"))
	err := view.Refresh(context.Background())

	require.Error(t, err)
	assert.Len(t, view.Rows(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconcileFailures))
}

func TestMemberView_IssueGaugeTracksLatestView(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	snap := edexSnapshot()
	snap.Members = append(snap.Members, entity.Member{ID: "orphan"})
	loader := &stubLoader{snap: snap}
	view := NewMemberView(loader, logger.NewNop(), m)

	for i := 0; i < 3; i++ {
		require.NoError(t, view.Refresh(context.Background()))
	}

	require.Len(t, view.Issues(), 1)
	assert.Equal(t, entity.IssueUnresolvedDelegation, view.Issues()[0].Kind)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DataIssues.WithLabelValues(string(entity.IssueUnresolvedDelegation))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DataIssues.WithLabelValues(string(entity.IssueOverCapacity))))

	loader.set(edexSnapshot(), nil)
	require.NoError(t, view.Refresh(context.Background()))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DataIssues.WithLabelValues(string(entity.IssueUnresolvedDelegation))))
}

func TestMemberView_ReturnsCopies(t *testing.T) {
	snap := edexSnapshot()
	snap.Members = append(snap.Members, entity.Member{ID: "orphan"})
	view := NewMemberView(&stubLoader{snap: snap}, logger.NewNop(), nil)
	require.NoError(t, view.Refresh(context.Background()))

	rows := view.Rows()
	rows[0].Name = "changed"
	rows[0].Status = entity.StatusDeparted
	issues := view.Issues()
	issues[0].Detail = "changed"

	assert.Equal(t, "Member One", view.Rows()[0].Name)
	assert.Equal(t, entity.StatusNotDeparted, view.Rows()[0].Status)
	assert.NotEqual(t, "changed", view.Issues()[0].Detail)
}

func TestMemberView_RowsForEvent(t *testing.T) {
	snap := edexSnapshot()
	snap.MainEvents = append(snap.MainEvents, entity.MainEvent{ID: "e2", DisplayName: "Other Show"})
	snap.SubEvents = append(snap.SubEvents, entity.SubEvent{ID: "s2", MainEventID: "e2"})
	snap.Delegations = append(snap.Delegations, entity.Delegation{ID: "d2", SubEventID: "s2"})
	snap.Members = append(snap.Members, entity.Member{ID: "m2", DelegationID: "d2"})

	view := NewMemberView(&stubLoader{snap: snap}, logger.NewNop(), nil)
	require.NoError(t, view.Refresh(context.Background()))

	tests := []struct {
		name    string
		segment string
		want    []string
	}{
		{name: "link name slug", segment: "edex", want: []string{"m1"}},
		{name: "upper case", segment: "EDEX", want: []string{"m1"}},
		{name: "arabic display name", segment: "ايديكس", want: []string{"m1"}},
		{name: "display name without link", segment: "other-show", want: []string{"m2"}},
		{name: "unknown", segment: "nothing", want: nil},
		{name: "empty", segment: "--", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, row := range view.RowsForEvent(tt.segment) {
				got = append(got, row.MemberID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemberView_RowsForPath(t *testing.T) {
	view := NewMemberView(&stubLoader{snap: edexSnapshot()}, logger.NewNop(), nil)
	require.NoError(t, view.Refresh(context.Background()))

	assert.Len(t, view.RowsForPath("edex", "s1", "d1"), 1)
	assert.Empty(t, view.RowsForPath("edex", "s1", "d2"))
	assert.Empty(t, view.RowsForPath("edex", "s9", "d1"))
}

func TestMemberView_SubscribeRebuildsOnceForBurst(t *testing.T) {
	b := bus.New(logger.NewNop(), bus.WithWindow(20*time.Millisecond))
	defer b.Close()

	loader := &stubLoader{snap: edexSnapshot()}
	view := NewMemberView(loader, logger.NewNop(), nil)
	unsubscribe := view.Subscribe(b)
	defer unsubscribe()

	b.Publish(bus.TopicMember)
	b.Publish(bus.TopicDelegation)
	b.Publish(bus.TopicSession)

	require.Eventually(t, func() bool { return loader.Calls() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, loader.Calls())
	assert.Len(t, view.Rows(), 1)
}
