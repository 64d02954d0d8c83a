package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/storage"
)

const publicationColumns = `id, title, authors, COALESCE(abstract, ''), year, type, COALESCE(category, ''),
	COALESCE(file_url, ''), COALESCE(doi, ''), status, created_at, updated_at`

// distinctPublicationQueries whitelists the columns exposed by DistinctPublicationValues.
var distinctPublicationQueries = map[string]string{
	"type":     `SELECT DISTINCT type FROM publications WHERE status = 'published' ORDER BY type`,
	"category": `SELECT DISTINCT category FROM publications WHERE status = 'published' AND category IS NOT NULL ORDER BY category`,
	"year":     `SELECT year::text FROM publications WHERE status = 'published' GROUP BY year ORDER BY year DESC`,
}

func publicationWhere(f storage.PublicationFilter) *whereBuilder {
	b := &whereBuilder{}
	if f.Status != "" {
		b.add("status = %s", f.Status)
	}
	if f.Type != "" {
		b.add("type = %s", f.Type)
	}
	if f.Category != "" {
		b.add("category = %s", f.Category)
	}
	if f.Year != 0 {
		b.add("year = %s", f.Year)
	}
	if f.Search != "" {
		b.add("(title ILIKE %[1]s OR authors ILIKE %[1]s OR abstract ILIKE %[1]s)", likePattern(f.Search))
	}
	return b
}

// ListPublications returns one page of publications and the total match count.
func (s *Store) ListPublications(ctx context.Context, f storage.PublicationFilter, p storage.Page) ([]models.Publication, int, error) {
	where := publicationWhere(f)
	total, err := s.count(ctx, `SELECT COUNT(*) FROM publications`+where.sql(), where.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count publications: %w", err)
	}
	limit, args := where.page(p)
	rows, err := s.pool.Query(ctx, `SELECT `+publicationColumns+` FROM publications`+where.sql()+` ORDER BY year DESC, title ASC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()

	items := []models.Publication{}
	for rows.Next() {
		pub, err := scanPublication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, pub)
	}
	return items, total, rows.Err()
}

func (s *Store) GetPublication(ctx context.Context, id int64) (models.Publication, error) {
	return scanPublication(s.pool.QueryRow(ctx, `SELECT `+publicationColumns+` FROM publications WHERE id = $1`, id))
}

func (s *Store) CreatePublication(ctx context.Context, p models.Publication) (models.Publication, error) {
	query := `
		INSERT INTO publications (title, authors, abstract, year, type, category, file_url, doi, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)
		RETURNING ` + publicationColumns
	return scanPublication(s.pool.QueryRow(ctx, query, p.Title, p.Authors, p.Abstract, p.Year, p.Type, p.Category, p.FileURL, p.DOI, p.Status))
}

// UpdatePublication replaces every editable field of the row identified by p.ID.
func (s *Store) UpdatePublication(ctx context.Context, p models.Publication) (models.Publication, error) {
	query := `
		UPDATE publications
		SET title = $1, authors = $2, abstract = NULLIF($3, ''), year = $4, type = $5, category = NULLIF($6, ''),
			file_url = NULLIF($7, ''), doi = NULLIF($8, ''), status = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING ` + publicationColumns
	return scanPublication(s.pool.QueryRow(ctx, query, p.Title, p.Authors, p.Abstract, p.Year, p.Type, p.Category, p.FileURL, p.DOI, p.Status, p.ID))
}

func (s *Store) DeletePublication(ctx context.Context, id int64) (models.Publication, error) {
	return scanPublication(s.pool.QueryRow(ctx, `DELETE FROM publications WHERE id = $1 RETURNING `+publicationColumns, id))
}

// DistinctPublicationValues lists the distinct values of column ("type", "category" or "year")
// across published publications.
func (s *Store) DistinctPublicationValues(ctx context.Context, column string) ([]string, error) {
	query, ok := distinctPublicationQueries[column]
	if !ok {
		return nil, fmt.Errorf("distinct publication values: unsupported column %q", column)
	}
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct publication %s: %w", column, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("distinct publication %s: %w", column, err)
	}
	return values, nil
}

func scanPublication(row pgx.Row) (models.Publication, error) {
	var p models.Publication
	err := row.Scan(&p.ID, &p.Title, &p.Authors, &p.Abstract, &p.Year, &p.Type, &p.Category,
		&p.FileURL, &p.DOI, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Publication{}, mapErr(err)
	}
	return p, nil
}
