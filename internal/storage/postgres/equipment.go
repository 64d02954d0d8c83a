package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/storage"
)

const equipmentColumns = `id, name, COALESCE(description, ''), COALESCE(category, ''), COALESCE(location, ''),
	COALESCE(image_url, ''), status, created_at, updated_at`

func (s *Store) ListEquipment(ctx context.Context, f storage.EquipmentFilter, p storage.Page) ([]models.Equipment, int, error) {
	where := &whereBuilder{}
	if f.Category != "" {
		where.add("category = %s", f.Category)
	}
	if f.Status != "" {
		where.add("status = %s", f.Status)
	}
	total, err := s.count(ctx, `SELECT COUNT(*) FROM equipment`+where.sql(), where.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count equipment: %w", err)
	}
	limit, args := where.page(p)
	rows, err := s.pool.Query(ctx, `SELECT `+equipmentColumns+` FROM equipment`+where.sql()+` ORDER BY name ASC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	items := []models.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (s *Store) GetEquipment(ctx context.Context, id int64) (models.Equipment, error) {
	return scanEquipment(s.pool.QueryRow(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id))
}

func (s *Store) CreateEquipment(ctx context.Context, e models.Equipment) (models.Equipment, error) {
	query := `
		INSERT INTO equipment (name, description, category, location, image_url, status)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING ` + equipmentColumns
	return scanEquipment(s.pool.QueryRow(ctx, query, e.Name, e.Description, e.Category, e.Location, e.ImageURL, e.Status))
}

func (s *Store) UpdateEquipment(ctx context.Context, e models.Equipment) (models.Equipment, error) {
	query := `
		UPDATE equipment
		SET name = $1, description = NULLIF($2, ''), category = NULLIF($3, ''), location = NULLIF($4, ''),
			image_url = NULLIF($5, ''), status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + equipmentColumns
	return scanEquipment(s.pool.QueryRow(ctx, query, e.Name, e.Description, e.Category, e.Location, e.ImageURL, e.Status, e.ID))
}

func (s *Store) DeleteEquipment(ctx context.Context, id int64) (models.Equipment, error) {
	return scanEquipment(s.pool.QueryRow(ctx, `DELETE FROM equipment WHERE id = $1 RETURNING `+equipmentColumns, id))
}

// EquipmentCategories lists the distinct non-null categories.
func (s *Store) EquipmentCategories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT category FROM equipment WHERE category IS NOT NULL ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("equipment categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("equipment categories: %w", err)
	}
	return categories, nil
}

func scanEquipment(row pgx.Row) (models.Equipment, error) {
	var e models.Equipment
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Category, &e.Location, &e.ImageURL, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return models.Equipment{}, mapErr(err)
	}
	return e, nil
}
