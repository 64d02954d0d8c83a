package dto

import "github.com/hongminglow/lab-portal/internal/models"

// NewsInput is used for both create and partial update; nil fields are left untouched on update.
type NewsInput struct {
	Title    *string   `json:"title" validate:"omitnil,min=1,max=255"`
	Content  *string   `json:"content" validate:"omitnil,min=1"`
	Excerpt  *string   `json:"excerpt" validate:"omitnil,max=500"`
	Category *string   `json:"category" validate:"omitnil,max=100"`
	Tags     *[]string `json:"tags" validate:"omitnil,dive,max=50"`
	Status   *string   `json:"status" validate:"omitnil,oneof=draft published"`
	Featured *bool     `json:"featured"`
	ImageURL *string   `json:"imageUrl" validate:"omitnil,max=500"`
}

type PublicationInput struct {
	Title    string `json:"title" validate:"required,max=255"`
	Authors  string `json:"authors" validate:"required"`
	Abstract string `json:"abstract"`
	Year     int    `json:"year" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=article tcc material report presentation"`
	Category string `json:"category" validate:"max=100"`
	FileURL  string `json:"fileUrl" validate:"max=500"`
	DOI      string `json:"doi" validate:"max=255"`
	Status   string `json:"status" validate:"omitempty,oneof=published submitted in_progress"`
}

type EquipmentInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category" validate:"max=100"`
	Location    string `json:"location" validate:"max=100"`
	ImageURL    string `json:"imageUrl" validate:"max=500"`
	Status      string `json:"status" validate:"omitempty,oneof=available in_use maintenance retired"`
}

type TeamMemberInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	Position   string `json:"role" validate:"required,max=100"`
	Bio        string `json:"bio" validate:"max=1000"`
	Email      string `json:"email" validate:"omitempty,email,max=100"`
	ImageURL   string `json:"imageUrl" validate:"max=500"`
	OrderIndex *int   `json:"orderIndex" validate:"omitnil,gte=0"`
	Active     *bool  `json:"active"`
}

type ListResponse[T any] struct {
	Items      []T               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
