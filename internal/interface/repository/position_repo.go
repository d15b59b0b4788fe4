package repository

import (
	"context"
	"time"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormPositionRepository implements the PositionRepository interface
type GormPositionRepository struct {
	db *gorm.DB
}

// NewGormPositionRepository creates a new GORM equivalent position repository
func NewGormPositionRepository(db *gorm.DB) repository.PositionRepository {
	return &GormPositionRepository{db: db}
}

// EquivalentPositions GORM model for database mapping
type EquivalentPositions struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"column:code;unique"`
	Name      string         `gorm:"column:name"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (EquivalentPositions) TableName() string {
	return "m_equivalent_positions"
}

// List returns all active equivalent positions ordered by code
func (r *GormPositionRepository) List(ctx context.Context) ([]entity.EquivalentPosition, error) {
	var rows []EquivalentPositions
	if err := r.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}

	positions := make([]entity.EquivalentPosition, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, entity.EquivalentPosition{
			ID:        row.ID,
			Code:      row.Code,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
			DeletedAt: row.DeletedAt,
		})
	}
	return positions, nil
}
