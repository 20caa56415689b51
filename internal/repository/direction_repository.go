package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/council-portal-api/internal/models"
)

// DirectionRepository persists council directions.
type DirectionRepository struct {
	db *sqlx.DB
}

// NewDirectionRepository constructs the repository.
func NewDirectionRepository(db *sqlx.DB) *DirectionRepository {
	return &DirectionRepository{db: db}
}

// List returns all directions ordered by name.
func (r *DirectionRepository) List(ctx context.Context) ([]models.Direction, error) {
	const query = `SELECT id, name, slug, description, created_at FROM directions ORDER BY name ASC`
	var directions []models.Direction
	if err := r.db.SelectContext(ctx, &directions, query); err != nil {
		return nil, fmt.Errorf("list directions: %w", err)
	}
	return directions, nil
}

// GetByID fetches one direction.
func (r *DirectionRepository) GetByID(ctx context.Context, id string) (*models.Direction, error) {
	const query = `SELECT id, name, slug, description, created_at FROM directions WHERE id = $1`
	var direction models.Direction
	if err := r.db.GetContext(ctx, &direction, query, id); err != nil {
		return nil, err
	}
	return &direction, nil
}

// Create inserts a direction.
func (r *DirectionRepository) Create(ctx context.Context, direction *models.Direction) error {
	if direction.ID == "" {
		direction.ID = uuid.NewString()
	}
	if direction.CreatedAt.IsZero() {
		direction.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO directions (id, name, slug, description, created_at) VALUES (:id, :name, :slug, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, direction); err != nil {
		return fmt.Errorf("create direction: %w", err)
	}
	return nil
}
