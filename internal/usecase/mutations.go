package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/domain/repository"
	"delegation-service/internal/infrastructure/bus"
	"delegation-service/pkg/logger"
	"delegation-service/pkg/utils"

	"github.com/google/uuid"
)

var (
	// ErrEmptySlug is returned when an event name yields no usable path segment
	ErrEmptySlug = errors.New("event name does not produce a path segment")
	// ErrSlugTaken is returned when another event already normalizes to the same segment
	ErrSlugTaken = errors.New("event path segment already in use")
	// ErrAlreadyDeparted is returned when a member is already in another session of the delegation
	ErrAlreadyDeparted = errors.New("member already assigned to a departure session")
)

// MutationService writes entities and announces the change on the bus
type MutationService struct {
	eventRepo      repository.EventRepository
	delegationRepo repository.DelegationRepository
	memberRepo     repository.MemberRepository
	publisher      bus.Publisher
	logger         logger.Logger
	now            func() time.Time
}

// NewMutationService creates a new mutation service
func NewMutationService(
	eventRepo repository.EventRepository,
	delegationRepo repository.DelegationRepository,
	memberRepo repository.MemberRepository,
	publisher bus.Publisher,
	logger logger.Logger,
) *MutationService {
	return &MutationService{
		eventRepo:      eventRepo,
		delegationRepo: delegationRepo,
		memberRepo:     memberRepo,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
	}
}

// CreateMainEvent stores a new main event after checking its path segment is
// non-empty and not shared with an existing event. It returns the segment.
func (s *MutationService) CreateMainEvent(ctx context.Context, event *entity.MainEvent) (string, error) {
	slug := utils.Normalize(event.DisplayName, event.LinkName)
	if slug == "" {
		return "", ErrEmptySlug
	}

	existing, err := s.eventRepo.ListMainEvents(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list main events: %w", err)
	}
	for _, e := range existing {
		if utils.Normalize(e.DisplayName, e.LinkName) == slug {
			return "", fmt.Errorf("%w: %s (event %s)", ErrSlugTaken, slug, e.ID)
		}
	}

	if utils.LosesCompatibilityForms(event.DisplayName, event.LinkName) {
		s.logger.Warn("Event name has compatibility characters that are left out of its path segment",
			"displayName", event.DisplayName,
			"linkName", event.LinkName,
			"slug", slug)
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = s.now()
	event.UpdatedAt = event.CreatedAt
	if err := s.eventRepo.SaveMainEvent(ctx, event); err != nil {
		return "", fmt.Errorf("failed to save main event: %w", err)
	}

	s.logger.Info("Main event created", "eventID", event.ID, "slug", slug)
	s.publisher.Publish(bus.TopicEvent)
	return slug, nil
}

// CreateSubEvent stores a sub event under an existing main event
func (s *MutationService) CreateSubEvent(ctx context.Context, event *entity.SubEvent) error {
	if _, err := s.eventRepo.FindMainEvent(ctx, event.MainEventID); err != nil {
		return fmt.Errorf("failed to find main event %s: %w", event.MainEventID, err)
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = s.now()
	event.UpdatedAt = event.CreatedAt
	if err := s.eventRepo.SaveSubEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to save sub event: %w", err)
	}

	s.publisher.Publish(bus.TopicEvent)
	return nil
}

// SaveDelegation creates or replaces a delegation
func (s *MutationService) SaveDelegation(ctx context.Context, delegation *entity.Delegation) error {
	if delegation.ID == "" {
		delegation.ID = uuid.New().String()
	}
	// only written on insert by the repository
	if delegation.CreatedAt.IsZero() {
		delegation.CreatedAt = s.now()
	}
	delegation.UpdatedAt = s.now()
	if err := s.delegationRepo.Save(ctx, delegation); err != nil {
		return fmt.Errorf("failed to save delegation: %w", err)
	}

	s.publisher.Publish(bus.TopicDelegation)
	return nil
}

// AddDepartureSession appends a session to a delegation. Members already
// listed in another session of the same delegation are rejected, whether that
// session is embedded or stored on its own.
func (s *MutationService) AddDepartureSession(ctx context.Context, delegationID string, session *entity.DepartureSession) error {
	delegation, err := s.delegationRepo.FindByID(ctx, delegationID)
	if err != nil {
		return fmt.Errorf("failed to find delegation %s: %w", delegationID, err)
	}
	detached, err := s.delegationRepo.ListDetachedSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list departure sessions: %w", err)
	}

	sessions := append([]entity.DepartureSession(nil), delegation.DepartureSessions...)
	for _, d := range detached {
		if d.DelegationID == delegationID {
			sessions = append(sessions, d)
		}
	}

	var taken []string
	for _, memberID := range session.MemberIDs {
		for _, existing := range sessions {
			if existing.HasMember(memberID) {
				taken = append(taken, memberID)
				break
			}
		}
	}
	if len(taken) > 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyDeparted, strings.Join(taken, ", "))
	}

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.DelegationID = ""
	if err := s.delegationRepo.AppendDepartureSession(ctx, delegationID, *session); err != nil {
		return fmt.Errorf("failed to append departure session: %w", err)
	}

	s.logger.Info("Departure session added",
		"delegationID", delegationID,
		"sessionID", session.ID,
		"members", len(session.MemberIDs))
	s.publisher.Publish(bus.TopicSession)
	return nil
}

// SaveMember creates or replaces a member
func (s *MutationService) SaveMember(ctx context.Context, member *entity.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	// only written on insert by the repository
	if member.CreatedAt.IsZero() {
		member.CreatedAt = s.now()
	}
	member.UpdatedAt = s.now()
	if err := s.memberRepo.Save(ctx, member); err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}

	s.publisher.Publish(bus.TopicMember)
	return nil
}

// DeleteMember removes a member
func (s *MutationService) DeleteMember(ctx context.Context, id string) error {
	if err := s.memberRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete member %s: %w", id, err)
	}

	s.publisher.Publish(bus.TopicMember)
	return nil
}

// RequestRefresh asks every view to rebuild
func (s *MutationService) RequestRefresh() {
	s.publisher.Publish(bus.TopicGeneric)
}
