package handlers

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/lab-portal/internal/apperr"
	"github.com/hongminglow/lab-portal/internal/auth"
	"github.com/hongminglow/lab-portal/internal/http/respond"
	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage"
)

const publishedPublication = "published"

// PublicationHandler serves /api/publications.
type PublicationHandler struct {
	store storage.PublicationStore
	now   func() time.Time
}

func NewPublicationHandler(store storage.PublicationStore) *PublicationHandler {
	return &PublicationHandler{store: store, now: time.Now}
}

func (h *PublicationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/publications", h.handleList)
	mux.HandleFunc("GET /api/publications/types", h.distinct("type"))
	mux.HandleFunc("GET /api/publications/categories", h.distinct("category"))
	mux.HandleFunc("GET /api/publications/years", h.handleYears)
	mux.HandleFunc("GET /api/publications/{id}", h.handleGet)
	mux.HandleFunc("POST /api/publications", h.handleCreate)
	mux.HandleFunc("PUT /api/publications/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/publications/{id}", h.handleDelete)
}

func (h *PublicationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, 10)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	q := r.URL.Query()
	filter := storage.PublicationFilter{
		Status:   q.Get("status"),
		Type:     strings.TrimSpace(q.Get("type")),
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(w, apperr.MalformedRequest, "year must be an integer")
			return
		}
		filter.Year = year
	}
	if filter.Status == "" {
		filter.Status = publishedPublication
	} else if !slices.Contains(models.PublicationStatuses, filter.Status) {
		respond.Error(w, apperr.MalformedRequest, "status must be one of: "+strings.Join(models.PublicationStatuses, ", "))
		return
	} else if filter.Status != publishedPublication && !isEditor(r) {
		respond.Error(w, apperr.InsufficientRole, "editor role required to list unpublished publications")
		return
	}

	items, total, err := h.store.ListPublications(r.Context(), filter, page)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.ListResponse[models.Publication]{
		Items:      items,
		Pagination: models.NewPagination(page.Page, page.Limit, total),
	})
}

func (h *PublicationHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	p, err := h.store.GetPublication(r.Context(), id)
	if err == nil && p.Status != publishedPublication && !isEditor(r) {
		err = storage.ErrNotFound
	}
	if err != nil {
		storeFailure(w, err, "publication not found")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", p)
}

func (h *PublicationHandler) distinct(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := h.store.DistinctPublicationValues(r.Context(), column)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, "ok", values)
	}
}

func (h *PublicationHandler) handleYears(w http.ResponseWriter, r *http.Request) {
	values, err := h.store.DistinctPublicationValues(r.Context(), "year")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	years := make([]int, 0, len(values))
	for _, v := range values {
		if y, err := strconv.Atoi(v); err == nil {
			years = append(years, y)
		}
	}
	respond.JSON(w, http.StatusOK, "ok", years)
}

func (h *PublicationHandler) readInput(w http.ResponseWriter, r *http.Request) (models.Publication, error) {
	var in dto.PublicationInput
	if err := decodeJSON(w, r, &in); err != nil {
		return models.Publication{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Authors = strings.TrimSpace(in.Authors)
	in.Type = strings.TrimSpace(in.Type)
	in.Category = strings.TrimSpace(in.Category)
	in.DOI = strings.TrimSpace(in.DOI)
	if err := validateStruct(in); err != nil {
		return models.Publication{}, err
	}
	if maxYear := h.now().Year() + 1; in.Year < 1900 || in.Year > maxYear {
		return models.Publication{}, apperr.New(apperr.MalformedRequest, "year must be between 1900 and "+strconv.Itoa(maxYear))
	}
	if in.Status == "" {
		in.Status = publishedPublication
	}
	return models.Publication{
		Title:    in.Title,
		Authors:  in.Authors,
		Abstract: in.Abstract,
		Year:     in.Year,
		Type:     in.Type,
		Category: in.Category,
		FileURL:  in.FileURL,
		DOI:      in.DOI,
		Status:   in.Status,
	}, nil
}

func (h *PublicationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	p, err := h.readInput(w, r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	created, err := h.store.CreatePublication(r.Context(), p)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "publication created", created)
}

func (h *PublicationHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	p, err := h.readInput(w, r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	p.ID = id
	updated, err := h.store.UpdatePublication(r.Context(), p)
	if err != nil {
		storeFailure(w, err, "publication not found")
		return
	}
	respond.JSON(w, http.StatusOK, "publication updated", updated)
}

func (h *PublicationHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if _, err := h.store.DeletePublication(r.Context(), id); err != nil {
		storeFailure(w, err, "publication not found")
		return
	}
	respond.JSON(w, http.StatusOK, "publication deleted", nil)
}
