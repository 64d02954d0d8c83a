package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage"
)

const newsColumns = `n.id, n.title, n.content, COALESCE(n.excerpt, ''), COALESCE(n.category, ''), n.tags,
	n.status, n.featured, COALESCE(n.image_url, ''), n.author_id, COALESCE(u.full_name, ''),
	n.published_at, n.created_at, n.updated_at`

func newsWhere(f storage.NewsFilter) *whereBuilder {
	b := &whereBuilder{}
	if f.Status != "" {
		b.add("n.status = %s", f.Status)
	}
	if f.Category != "" {
		b.add("n.category = %s", f.Category)
	}
	if f.Featured != nil {
		b.add("n.featured = %s", *f.Featured)
	}
	if f.Search != "" {
		b.add("(n.title ILIKE %[1]s OR n.content ILIKE %[1]s)", likePattern(f.Search))
	}
	return b
}

// ListNews returns one page of news matching f and the total match count.
func (s *Store) ListNews(ctx context.Context, f storage.NewsFilter, p storage.Page) ([]models.News, int, error) {
	where := newsWhere(f)
	total, err := s.count(ctx, `SELECT COUNT(*) FROM news n`+where.sql(), where.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}
	limit, args := where.page(p)
	query := `SELECT ` + newsColumns + ` FROM news n LEFT JOIN users u ON n.author_id = u.id` +
		where.sql() + ` ORDER BY n.published_at DESC NULLS LAST, n.created_at DESC` + limit
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	items := []models.News{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

// GetNews fetches a news item regardless of status.
func (s *Store) GetNews(ctx context.Context, id int64) (models.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news n LEFT JOIN users u ON n.author_id = u.id WHERE n.id = $1`
	return scanNews(s.pool.QueryRow(ctx, query, id))
}

// CreateNews inserts n; published_at is set when the item is created as published.
func (s *Store) CreateNews(ctx context.Context, n models.News) (models.News, error) {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	query := `
		WITH inserted AS (
			INSERT INTO news (title, content, excerpt, category, tags, status, featured, image_url, author_id, published_at)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), $9,
				CASE WHEN $10 THEN NOW() END)
			RETURNING *
		)
		SELECT ` + newsColumns + ` FROM inserted n LEFT JOIN users u ON n.author_id = u.id`
	row := s.pool.QueryRow(ctx, query, n.Title, n.Content, n.Excerpt, n.Category, n.Tags, n.Status, n.Featured, n.ImageURL, n.AuthorID, n.Status == models.NewsPublished)
	return scanNews(row)
}

// UpdateNews applies the non-nil fields of in. published_at is only stamped on
// the transition into the published status.
func (s *Store) UpdateNews(ctx context.Context, id int64, in dto.NewsInput) (models.News, error) {
	var b setBuilder
	if in.Title != nil {
		b.set("title = %s", *in.Title)
	}
	if in.Content != nil {
		b.set("content = %s", *in.Content)
	}
	if in.Excerpt != nil {
		b.set("excerpt = NULLIF(%s, '')", *in.Excerpt)
	}
	if in.Category != nil {
		b.set("category = NULLIF(%s, '')", *in.Category)
	}
	if in.Tags != nil {
		tags := *in.Tags
		if tags == nil {
			tags = []string{}
		}
		b.set("tags = %s", tags)
	}
	if in.Featured != nil {
		b.set("featured = %s", *in.Featured)
	}
	if in.ImageURL != nil {
		b.set("image_url = NULLIF(%s, '')", *in.ImageURL)
	}
	if in.Status != nil {
		b.set("status = %s", *in.Status)
		b.set("published_at = CASE WHEN status <> 'published' AND %[1]s::text = 'published' THEN NOW() ELSE published_at END", *in.Status)
	}
	if b.empty() {
		return models.News{}, storage.ErrNoChanges
	}
	sets, idParam, args := b.sql(id)
	query := `
		WITH updated AS (
			UPDATE news SET ` + sets + ` WHERE id = ` + idParam + `
			RETURNING *
		)
		SELECT ` + newsColumns + ` FROM updated n LEFT JOIN users u ON n.author_id = u.id`
	return scanNews(s.pool.QueryRow(ctx, query, args...))
}

// DeleteNews removes a news item and returns the deleted row.
func (s *Store) DeleteNews(ctx context.Context, id int64) (models.News, error) {
	query := `
		WITH deleted AS (
			DELETE FROM news WHERE id = $1
			RETURNING *
		)
		SELECT ` + newsColumns + ` FROM deleted n LEFT JOIN users u ON n.author_id = u.id`
	return scanNews(s.pool.QueryRow(ctx, query, id))
}

func scanNews(row pgx.Row) (models.News, error) {
	var n models.News
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Excerpt, &n.Category, &n.Tags,
		&n.Status, &n.Featured, &n.ImageURL, &n.AuthorID, &n.AuthorName,
		&n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return models.News{}, mapErr(err)
	}
	return n, nil
}
