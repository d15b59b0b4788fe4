package repository

import (
	"context"

	"delegation-service/internal/domain/entity"
)

// EventRepository defines storage operations for main and sub events
type EventRepository interface {
	ListMainEvents(ctx context.Context) ([]entity.MainEvent, error)
	ListSubEvents(ctx context.Context) ([]entity.SubEvent, error)
	FindMainEvent(ctx context.Context, id string) (*entity.MainEvent, error)
	SaveMainEvent(ctx context.Context, event *entity.MainEvent) error
	SaveSubEvent(ctx context.Context, event *entity.SubEvent) error
}
