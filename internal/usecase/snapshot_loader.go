package usecase

import (
	"context"
	"fmt"

	"delegation-service/internal/domain/repository"
	"delegation-service/pkg/logger"
)

// SnapshotLoader fetches every collection the member view needs
type SnapshotLoader struct {
	eventRepo      repository.EventRepository
	delegationRepo repository.DelegationRepository
	memberRepo     repository.MemberRepository
	airlineRepo    repository.AirlineRepository
	positionRepo   repository.PositionRepository
	legacy         repository.LegacyCache
	logger         logger.Logger
}

// NewSnapshotLoader creates a loader. Lookup repositories and legacy may be nil.
func NewSnapshotLoader(
	eventRepo repository.EventRepository,
	delegationRepo repository.DelegationRepository,
	memberRepo repository.MemberRepository,
	airlineRepo repository.AirlineRepository,
	positionRepo repository.PositionRepository,
	legacy repository.LegacyCache,
	logger logger.Logger,
) *SnapshotLoader {
	return &SnapshotLoader{
		eventRepo:      eventRepo,
		delegationRepo: delegationRepo,
		memberRepo:     memberRepo,
		airlineRepo:    airlineRepo,
		positionRepo:   positionRepo,
		legacy:         legacy,
		logger:         logger,
	}
}

// Load reads the remote store, the lookups and the legacy cache and merges them.
// Only remote store failures are returned; the rest degrade with a warning.
func (l *SnapshotLoader) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.MainEvents, err = l.eventRepo.ListMainEvents(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load main events: %w", err)
	}
	if snap.SubEvents, err = l.eventRepo.ListSubEvents(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load sub events: %w", err)
	}
	if snap.Delegations, err = l.delegationRepo.List(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load delegations: %w", err)
	}
	if snap.DepartureSessions, err = l.delegationRepo.ListDetachedSessions(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load departure sessions: %w", err)
	}
	if snap.Members, err = l.memberRepo.List(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load members: %w", err)
	}

	if l.airlineRepo != nil {
		if snap.Airlines, err = l.airlineRepo.List(ctx); err != nil {
			l.logger.Warn("Failed to load airlines, using raw codes", "error", err)
		}
	}
	if l.positionRepo != nil {
		if snap.Positions, err = l.positionRepo.List(ctx); err != nil {
			l.logger.Warn("Failed to load equivalent positions", "error", err)
		}
	}

	if l.legacy == nil {
		return snap, nil
	}

	var legacy Snapshot
	if legacy.Members, err = l.legacy.Members(ctx); err != nil {
		l.logger.Warn("Failed to read legacy members, using remote store only", "error", err)
		return snap, nil
	}
	if legacy.Delegations, err = l.legacy.Delegations(ctx); err != nil {
		l.logger.Warn("Failed to read legacy delegations, using remote store only", "error", err)
		return snap, nil
	}
	return MergeSnapshots(snap, legacy), nil
}
