package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/storage"
)

const teamColumns = `id, name, role, COALESCE(bio, ''), COALESCE(email, ''), COALESCE(image_url, ''),
	order_index, active, created_at, updated_at`

func (s *Store) ListTeam(ctx context.Context, f storage.TeamFilter, p storage.Page) ([]models.TeamMember, int, error) {
	where := &whereBuilder{}
	if f.Active != nil {
		where.add("active = %s", *f.Active)
	}
	total, err := s.count(ctx, `SELECT COUNT(*) FROM team`+where.sql(), where.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count team: %w", err)
	}
	limit, args := where.page(p)
	rows, err := s.pool.Query(ctx, `SELECT `+teamColumns+` FROM team`+where.sql()+` ORDER BY order_index ASC, name ASC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list team: %w", err)
	}
	defer rows.Close()

	items := []models.TeamMember{}
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (s *Store) GetTeamMember(ctx context.Context, id int64) (models.TeamMember, error) {
	return scanTeamMember(s.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM team WHERE id = $1`, id))
}

func (s *Store) CreateTeamMember(ctx context.Context, m models.TeamMember) (models.TeamMember, error) {
	query := `
		INSERT INTO team (name, role, bio, email, image_url, order_index, active)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		RETURNING ` + teamColumns
	return scanTeamMember(s.pool.QueryRow(ctx, query, m.Name, m.Position, m.Bio, m.Email, m.ImageURL, m.OrderIndex, m.Active))
}

func (s *Store) UpdateTeamMember(ctx context.Context, m models.TeamMember) (models.TeamMember, error) {
	query := `
		UPDATE team
		SET name = $1, role = $2, bio = NULLIF($3, ''), email = NULLIF($4, ''), image_url = NULLIF($5, ''),
			order_index = $6, active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + teamColumns
	return scanTeamMember(s.pool.QueryRow(ctx, query, m.Name, m.Position, m.Bio, m.Email, m.ImageURL, m.OrderIndex, m.Active, m.ID))
}

func (s *Store) DeleteTeamMember(ctx context.Context, id int64) (models.TeamMember, error) {
	return scanTeamMember(s.pool.QueryRow(ctx, `DELETE FROM team WHERE id = $1 RETURNING `+teamColumns, id))
}

func scanTeamMember(row pgx.Row) (models.TeamMember, error) {
	var m models.TeamMember
	err := row.Scan(&m.ID, &m.Name, &m.Position, &m.Bio, &m.Email, &m.ImageURL, &m.OrderIndex, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return models.TeamMember{}, mapErr(err)
	}
	return m, nil
}
