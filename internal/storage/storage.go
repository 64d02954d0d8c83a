package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrNoChanges indicates an update carried no fields.
var ErrNoChanges = errors.New("no fields to update")

// Page selects one page of a listing.
type Page struct {
	Page  int
	Limit int
}

// UserStore captures persistence operations needed by the auth handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	UpdateRole(ctx context.Context, id int64, role models.Role) (models.User, error)
}

// NewsFilter narrows a news listing. Empty fields are ignored.
type NewsFilter struct {
	Status   string
	Category string
	Search   string
	Featured *bool
}

type NewsStore interface {
	ListNews(ctx context.Context, f NewsFilter, p Page) ([]models.News, int, error)
	GetNews(ctx context.Context, id int64) (models.News, error)
	CreateNews(ctx context.Context, n models.News) (models.News, error)
	UpdateNews(ctx context.Context, id int64, in dto.NewsInput) (models.News, error)
	DeleteNews(ctx context.Context, id int64) (models.News, error)
}

type PublicationFilter struct {
	Status   string
	Type     string
	Category string
	Year     int
	Search   string
}

type PublicationStore interface {
	ListPublications(ctx context.Context, f PublicationFilter, p Page) ([]models.Publication, int, error)
	GetPublication(ctx context.Context, id int64) (models.Publication, error)
	CreatePublication(ctx context.Context, p models.Publication) (models.Publication, error)
	UpdatePublication(ctx context.Context, p models.Publication) (models.Publication, error)
	DeletePublication(ctx context.Context, id int64) (models.Publication, error)
	DistinctPublicationValues(ctx context.Context, column string) ([]string, error)
}

type EquipmentFilter struct {
	Category string
	Status   string
}

type EquipmentStore interface {
	ListEquipment(ctx context.Context, f EquipmentFilter, p Page) ([]models.Equipment, int, error)
	GetEquipment(ctx context.Context, id int64) (models.Equipment, error)
	CreateEquipment(ctx context.Context, e models.Equipment) (models.Equipment, error)
	UpdateEquipment(ctx context.Context, e models.Equipment) (models.Equipment, error)
	DeleteEquipment(ctx context.Context, id int64) (models.Equipment, error)
	EquipmentCategories(ctx context.Context) ([]string, error)
}

type TeamFilter struct {
	Active *bool
}

type TeamStore interface {
	ListTeam(ctx context.Context, f TeamFilter, p Page) ([]models.TeamMember, int, error)
	GetTeamMember(ctx context.Context, id int64) (models.TeamMember, error)
	CreateTeamMember(ctx context.Context, m models.TeamMember) (models.TeamMember, error)
	UpdateTeamMember(ctx context.Context, m models.TeamMember) (models.TeamMember, error)
	DeleteTeamMember(ctx context.Context, id int64) (models.TeamMember, error)
}

// Store aggregates every repository used by the server.
type Store interface {
	UserStore
	NewsStore
	PublicationStore
	EquipmentStore
	TeamStore
}
