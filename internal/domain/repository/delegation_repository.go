package repository

import (
	"context"

	"delegation-service/internal/domain/entity"
)

// DelegationRepository defines storage operations for delegations and their departure sessions
type DelegationRepository interface {
	List(ctx context.Context) ([]entity.Delegation, error)
	FindByID(ctx context.Context, id string) (*entity.Delegation, error)
	Save(ctx context.Context, delegation *entity.Delegation) error
	AppendDepartureSession(ctx context.Context, delegationID string, session entity.DepartureSession) error
	// ListDetachedSessions returns sessions stored outside their delegation document
	ListDetachedSessions(ctx context.Context) ([]entity.DepartureSession, error)
}
