package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/lab-portal/internal/models"
)

const userColumns = `id, username, email, full_name, role, password_hash, created_at, updated_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (username, email, full_name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.Username, user.Email, user.FullName, string(user.Role), user.PasswordHash)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByUsernameOrEmail fetches the first user matching the identifier as username or email.
func (s *Store) FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1 LIMIT 1`, identifier)
	return scanUser(row)
}

// UpdateRole changes a user's role.
func (s *Store) UpdateRole(ctx context.Context, id int64, role models.Role) (models.User, error) {
	row := s.pool.QueryRow(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2 RETURNING `+userColumns, string(role), id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var role string
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &role, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return models.User{}, mapErr(err)
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return models.User{}, err
	}
	user.Role = parsed
	return user, nil
}
