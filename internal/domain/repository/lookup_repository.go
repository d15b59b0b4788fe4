package repository

import (
	"context"

	"delegation-service/internal/domain/entity"
)

// AirlineRepository defines the interface for airline lookups
type AirlineRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Airline, error)
	List(ctx context.Context) ([]entity.Airline, error)
}

// PositionRepository defines the interface for equivalent position lookups
type PositionRepository interface {
	List(ctx context.Context) ([]entity.EquivalentPosition, error)
}
