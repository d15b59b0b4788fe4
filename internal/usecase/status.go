package usecase

import (
	"strings"

	"delegation-service/internal/domain/entity"
)

// StatusSource tells where a derived status came from
type StatusSource string

const (
	SourceStoredStatus StatusSource = "stored"
	SourceSession      StatusSource = "session"
	SourceNone         StatusSource = "none"
)

// StatusResult is the derived membership status of one member
type StatusResult struct {
	Status                 entity.MemberStatus
	EffectiveDepartureDate *string
	SessionID              string
	Source                 StatusSource
	// AmbiguousSessionIDs lists later sessions that also contain the member
	AmbiguousSessionIDs []string
}

// DeriveStatus computes a member's status from its own stored status and the
// delegation's departure sessions.
//
// A stored DEPARTED status wins together with the member's own date. Otherwise
// the first session in stored order that lists the member decides. delegation
// may be nil.
func DeriveStatus(member entity.Member, delegation *entity.Delegation) StatusResult {
	if member.IsMarkedDeparted() {
		return StatusResult{
			Status:                 entity.StatusDeparted,
			EffectiveDepartureDate: optionalString(member.DepartureDate),
			Source:                 SourceStoredStatus,
		}
	}

	result := StatusResult{
		Status: entity.StatusNotDeparted,
		Source: SourceNone,
	}
	if delegation == nil {
		return result
	}

	for _, session := range delegation.DepartureSessions {
		if !session.HasMember(member.ID) {
			continue
		}
		if result.Source == SourceSession {
			result.AmbiguousSessionIDs = append(result.AmbiguousSessionIDs, session.ID)
			continue
		}
		result.Status = entity.StatusDeparted
		result.EffectiveDepartureDate = optionalString(session.ScheduledDate)
		result.SessionID = session.ID
		result.Source = SourceSession
	}
	return result
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
