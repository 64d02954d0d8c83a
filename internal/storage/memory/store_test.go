package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage"
)

func ptr[T any](v T) *T { return &v }

func TestUsers_UniqueAndLookup(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, err := s.CreateUser(ctx, models.User{Username: "ana", Email: "ana@lab.org", Role: models.RoleUser})
	require.NoError(t, err)
	assert.Positive(t, u.ID)

	_, err = s.CreateUser(ctx, models.User{Username: "other", Email: "ana@lab.org"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	byEmail, err := s.FindByUsernameOrEmail(ctx, "ana@lab.org")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.FindByUsernameOrEmail(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	promoted, err := s.UpdateRole(ctx, u.ID, models.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, promoted.Role)

	_, err = s.UpdateRole(ctx, 999, models.RoleAdmin)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNews_PublishStampAndOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	author, err := s.CreateUser(ctx, models.User{Username: "ed", Email: "ed@lab.org", FullName: "Ed Itor"})
	require.NoError(t, err)

	draft, err := s.CreateNews(ctx, models.News{Title: "draft", Status: models.NewsDraft, AuthorID: &author.ID})
	require.NoError(t, err)
	assert.Nil(t, draft.PublishedAt)
	assert.Equal(t, "Ed Itor", draft.AuthorName)

	first, err := s.CreateNews(ctx, models.News{Title: "first", Status: models.NewsPublished})
	require.NoError(t, err)
	require.NotNil(t, first.PublishedAt)

	published, err := s.UpdateNews(ctx, draft.ID, dto.NewsInput{Status: ptr(models.NewsPublished)})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	stamp := *published.PublishedAt

	again, err := s.UpdateNews(ctx, draft.ID, dto.NewsInput{Status: ptr(models.NewsPublished), Title: ptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, stamp, *again.PublishedAt)

	items, total, err := s.ListNews(ctx, storage.NewsFilter{Status: models.NewsPublished}, storage.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "renamed", items[0].Title)
	assert.Equal(t, "first", items[1].Title)

	_, err = s.UpdateNews(ctx, draft.ID, dto.NewsInput{})
	assert.ErrorIs(t, err, storage.ErrNoChanges)
}

func TestNews_PaginationAndSearch(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, title := range []string{"Alpha grant", "Beta grant", "Gamma"} {
		_, err := s.CreateNews(ctx, models.News{Title: title, Status: models.NewsPublished})
		require.NoError(t, err)
	}
	items, total, err := s.ListNews(ctx, storage.NewsFilter{Search: "GRANT"}, storage.Page{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 1)

	items, _, err = s.ListNews(ctx, storage.NewsFilter{}, storage.Page{Page: 5, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPublications_Distinct(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, p := range []models.Publication{
		{Title: "a", Year: 2021, Type: "article", Category: "ml", Status: "published"},
		{Title: "b", Year: 2024, Type: "tcc", Status: "published"},
		{Title: "c", Year: 2021, Type: "article", Category: "bio", Status: "published"},
		{Title: "d", Year: 2025, Type: "report", Status: "submitted"},
	} {
		_, err := s.CreatePublication(ctx, p)
		require.NoError(t, err)
	}

	years, err := s.DistinctPublicationValues(ctx, "year")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "2021"}, years)

	types, err := s.DistinctPublicationValues(ctx, "type")
	require.NoError(t, err)
	assert.Equal(t, []string{"article", "tcc"}, types)

	categories, err := s.DistinctPublicationValues(ctx, "category")
	require.NoError(t, err)
	assert.Equal(t, []string{"bio", "ml"}, categories)

	_, err = s.DistinctPublicationValues(ctx, "title")
	assert.Error(t, err)
}

func TestTeam_OrderAndActiveFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, m := range []models.TeamMember{
		{Name: "Zed", OrderIndex: 0, Active: true},
		{Name: "Amy", OrderIndex: 1, Active: true},
		{Name: "Bob", OrderIndex: 0, Active: false},
	} {
		_, err := s.CreateTeamMember(ctx, m)
		require.NoError(t, err)
	}
	items, total, err := s.ListTeam(ctx, storage.TeamFilter{}, storage.Page{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"Bob", "Zed", "Amy"}, []string{items[0].Name, items[1].Name, items[2].Name})

	_, total, err = s.ListTeam(ctx, storage.TeamFilter{Active: ptr(true)}, storage.Page{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
