package repository

import (
	"context"
	"errors"

	"delegation-service/internal/domain/entity"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// MemberRepository defines storage operations for members
type MemberRepository interface {
	List(ctx context.Context) ([]entity.Member, error)
	Save(ctx context.Context, member *entity.Member) error
	Delete(ctx context.Context, id string) error
}

// LegacyCache is the older key-value copy of members and delegations.
// Records may use historical key names.
type LegacyCache interface {
	Members(ctx context.Context) ([]entity.Member, error)
	Delegations(ctx context.Context) ([]entity.Delegation, error)
}
