package repository

import (
	"context"
	"errors"
	"time"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirlineRepository implements the AirlineRepository interface
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db: db,
	}
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"column:code;unique"`
	Name      string         `gorm:"column:name;unique"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "m_airlines"
}

func (a Airlines) toEntity() entity.Airline {
	return entity.Airline{
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		DeletedAt: a.DeletedAt,
	}
}

// GetByCode finds an airline by code, including soft-deleted rows
func (r *GormAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	var airline Airlines
	result := r.db.WithContext(ctx).Unscoped().Where("code = ?", code).First(&airline)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	e := airline.toEntity()
	return &e, nil
}

// List returns all active airlines ordered by code
func (r *GormAirlineRepository) List(ctx context.Context) ([]entity.Airline, error) {
	var rows []Airlines
	if err := r.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}

	airlines := make([]entity.Airline, 0, len(rows))
	for _, row := range rows {
		airlines = append(airlines, row.toEntity())
	}
	return airlines, nil
}
