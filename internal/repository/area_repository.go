package repository

import (
	"context"
	"fmt"
	"strings"

	"textile-backoffice/internal/domain"
)

type areaRepository struct {
	db DB
}

// NewAreaRepository creates the area lookup repository.
func NewAreaRepository(db DB) AreaRepository {
	return &areaRepository{db: db}
}

// FindOrCreate returns the area with the given name, creating it on first
// use. The upsert keeps repeated submissions of the same name on one id;
// concurrent first submissions resolve last-write-wins on the unique name.
func (r *areaRepository) FindOrCreate(ctx context.Context, name string) (domain.Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Area{}, domain.Validationf("area name is required")
	}
	var area domain.Area
	err := r.db.QueryRow(ctx, `
		INSERT INTO areas (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`,
		name,
	).Scan(&area.ID, &area.Name, &area.CreatedAt)
	if err != nil {
		return domain.Area{}, fmt.Errorf("find or create area %q: %w", name, err)
	}
	return area, nil
}

func (r *areaRepository) List(ctx context.Context) ([]domain.Area, error) {
	var areas []domain.Area
	err := readRetry(ctx, func() error {
		rows, err := r.db.Query(ctx, "SELECT id, name, created_at FROM areas ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()
		areas = areas[:0]
		for rows.Next() {
			var area domain.Area
			if err := rows.Scan(&area.ID, &area.Name, &area.CreatedAt); err != nil {
				return err
			}
			areas = append(areas, area)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	return areas, nil
}
