package models

import "time"

// News statuses.
const (
	NewsDraft     = "draft"
	NewsPublished = "published"
)

// News is a lab announcement.
type News struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	Featured    bool       `json:"featured"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	AuthorID    *int64     `json:"authorId,omitempty"`
	AuthorName  string     `json:"authorName,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Publication types and statuses.
var (
	PublicationTypes    = []string{"article", "tcc", "material", "report", "presentation"}
	PublicationStatuses = []string{"published", "submitted", "in_progress"}
)

// Publication is a paper, thesis or other research output.
type Publication struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Authors   string    `json:"authors"`
	Abstract  string    `json:"abstract,omitempty"`
	Year      int       `json:"year"`
	Type      string    `json:"type"`
	Category  string    `json:"category,omitempty"`
	FileURL   string    `json:"fileUrl,omitempty"`
	DOI       string    `json:"doi,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EquipmentStatuses lists the accepted equipment states.
var EquipmentStatuses = []string{"available", "in_use", "maintenance", "retired"}

// Equipment is an inventory item.
type Equipment struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Location    string    `json:"location,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamMember is an entry of the lab roster. Position is free text
// ("Coordinator", "Researcher", ...) and unrelated to Role.
type TeamMember struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Position   string    `json:"role"`
	Bio        string    `json:"bio,omitempty"`
	Email      string    `json:"email,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	OrderIndex int       `json:"orderIndex"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total rows split by limit.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Offset is the number of rows to skip for the page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
