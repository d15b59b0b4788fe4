package usecase

import (
	"context"
	"slices"
	"sync"
	"time"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/infrastructure/bus"
	"delegation-service/pkg/logger"
	"delegation-service/pkg/metrics"
	"delegation-service/pkg/utils"
)

// Loader produces a fresh snapshot of all sources
type Loader interface {
	Load(ctx context.Context) (Snapshot, error)
}

// MemberView keeps the latest reconciled member rows and rebuilds them when
// the bus reports a change.
type MemberView struct {
	loader  Loader
	logger  logger.Logger
	metrics *metrics.Metrics

	refreshMu sync.Mutex // one refresh at a time

	mu        sync.RWMutex
	result    *ReconcileResult
	updatedAt time.Time
}

// NewMemberView creates an empty view. metrics may be nil.
func NewMemberView(loader Loader, logger logger.Logger, m *metrics.Metrics) *MemberView {
	return &MemberView{
		loader:  loader,
		logger:  logger,
		metrics: m,
		result:  &ReconcileResult{},
	}
}

// Subscribe rebuilds the view on any topic with a single coalesced subscription
func (v *MemberView) Subscribe(b *bus.Bus) (unsubscribe func()) {
	return b.SubscribeTopics(v.Refresh, bus.AllTopics()...)
}

// Refresh reloads all sources and reconciles them. On a load failure the
// previous rows stay published.
func (v *MemberView) Refresh(ctx context.Context) error {
	v.refreshMu.Lock()
	defer v.refreshMu.Unlock()

	start := time.Now()
	snap, err := v.loader.Load(ctx)
	if err != nil {
		if v.metrics != nil {
			v.metrics.ReconcileFailures.Inc()
		}
		return err
	}

	result := Reconcile(snap)

	v.mu.Lock()
	v.result = result
	v.updatedAt = time.Now()
	v.mu.Unlock()

	v.report(result, time.Since(start))
	return nil
}

func (v *MemberView) report(result *ReconcileResult, elapsed time.Duration) {
	departed := 0
	for _, row := range result.Members {
		if row.Status == entity.StatusDeparted {
			departed++
		}
	}

	issuesByKind := make(map[entity.IssueKind]int)
	for _, issue := range result.Issues {
		v.logger.Warn("Data quality issue",
			"kind", issue.Kind,
			"entityID", issue.EntityID,
			"detail", issue.Detail)
		issuesByKind[issue.Kind]++
	}

	if v.metrics != nil {
		for _, kind := range entity.IssueKinds() {
			v.metrics.DataIssues.WithLabelValues(string(kind)).Set(float64(issuesByKind[kind]))
		}
		v.metrics.Reconciliations.Inc()
		v.metrics.ReconcileTime.Observe(elapsed.Seconds())
		v.metrics.MembersByStatus.WithLabelValues(string(entity.StatusDeparted)).Set(float64(departed))
		v.metrics.MembersByStatus.WithLabelValues(string(entity.StatusNotDeparted)).Set(float64(len(result.Members) - departed))
	}

	v.logger.Info("Member view reconciled",
		"members", len(result.Members),
		"departed", departed,
		"issues", len(result.Issues),
		"duration", elapsed)
}

// Rows returns a copy of the latest reconciled rows. The delegation and event
// snapshots the rows point to are shared and must not be modified.
func (v *MemberView) Rows() []entity.ReconciledMember {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.result.Members)
}

// Issues returns a copy of the data-quality signals of the latest reconciliation
func (v *MemberView) Issues() []entity.Issue {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.result.Issues)
}

// UpdatedAt returns when the view was last rebuilt
func (v *MemberView) UpdatedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.updatedAt
}

// RowsForEvent returns rows whose main event matches the path segment
func (v *MemberView) RowsForEvent(segment string) []entity.ReconciledMember {
	var out []entity.ReconciledMember
	want := utils.Normalize(segment, "")
	if want == "" {
		return nil
	}
	for _, row := range v.Rows() {
		if row.MainEvent == nil {
			continue
		}
		// the slug may come from the link name, the display name is accepted too
		if want == row.MainEvent.Slug || utils.MatchesEvent(segment, row.MainEvent.DisplayName, "") {
			out = append(out, row)
		}
	}
	return out
}

// RowsForPath returns rows of one delegation addressed by its navigation path segments
func (v *MemberView) RowsForPath(eventSegment, subEventID, delegationID string) []entity.ReconciledMember {
	var out []entity.ReconciledMember
	for _, row := range v.RowsForEvent(eventSegment) {
		if row.SubEvent != nil && row.SubEvent.ID == subEventID && row.DelegationID == delegationID {
			out = append(out, row)
		}
	}
	return out
}
