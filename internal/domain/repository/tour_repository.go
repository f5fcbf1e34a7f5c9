package repository

import (
	"context"

	"github.com/wander-api/wander/internal/domain/entity"
)

// TourRepository defines the persistence contract for the tour catalog.
type TourRepository interface {
	Create(ctx context.Context, t *entity.Tour) error
	GetByID(ctx context.Context, id string) (*entity.Tour, error)
	Update(ctx context.Context, t *entity.Tour) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Tour, error)
}
