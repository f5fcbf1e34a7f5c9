package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/internal/domain/repository"
)

const tourColumns = `id, name, duration, max_group_size, difficulty, price,
		summary, description, image_cover, created_at, updated_at`

type TourRepository struct {
	pool *pgxpool.Pool
}

func NewTourRepository(pool *pgxpool.Pool) *TourRepository {
	return &TourRepository{pool: pool}
}

func (r *TourRepository) Create(ctx context.Context, t *entity.Tour) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tours (name, duration, max_group_size, difficulty, price, summary, description, image_cover)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, t.Name, t.Duration, t.MaxGroupSize, t.Difficulty, t.Price, t.Summary, t.Description, t.ImageCover)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TourRepository) GetByID(ctx context.Context, id string) (*entity.Tour, error) {
	t := &entity.Tour{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+tourColumns+`
		FROM tours
		WHERE id = $1
	`, id)
	if err := row.Scan(&t.ID, &t.Name, &t.Duration, &t.MaxGroupSize, &t.Difficulty,
		&t.Price, &t.Summary, &t.Description, &t.ImageCover, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TourRepository) Update(ctx context.Context, t *entity.Tour) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE tours
		SET name = $1, duration = $2, max_group_size = $3, difficulty = $4,
		    price = $5, summary = $6, description = $7, image_cover = $8, updated_at = now()
		WHERE id = $9
	`, t.Name, t.Duration, t.MaxGroupSize, t.Difficulty, t.Price, t.Summary, t.Description, t.ImageCover, t.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TourRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TourRepository) List(ctx context.Context) ([]*entity.Tour, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tourColumns+`
		FROM tours
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tours []*entity.Tour
	for rows.Next() {
		t := &entity.Tour{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Duration, &t.MaxGroupSize, &t.Difficulty,
			&t.Price, &t.Summary, &t.Description, &t.ImageCover, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

var _ repository.TourRepository = (*TourRepository)(nil)
