package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/hongminglow/lab-portal/internal/apperr"
	"github.com/hongminglow/lab-portal/internal/auth"
	"github.com/hongminglow/lab-portal/internal/http/respond"
	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage"
)

// EquipmentHandler serves /api/equipment.
type EquipmentHandler struct {
	store storage.EquipmentStore
}

func NewEquipmentHandler(store storage.EquipmentStore) *EquipmentHandler {
	return &EquipmentHandler{store: store}
}

func (h *EquipmentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/equipment", h.handleList)
	mux.HandleFunc("GET /api/equipment/categories", h.handleCategories)
	mux.HandleFunc("GET /api/equipment/{id}", h.handleGet)
	mux.HandleFunc("POST /api/equipment", h.handleCreate)
	mux.HandleFunc("PUT /api/equipment/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/equipment/{id}", h.handleDelete)
}

func (h *EquipmentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, 10)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	q := r.URL.Query()
	filter := storage.EquipmentFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Status:   strings.TrimSpace(q.Get("status")),
	}
	if filter.Status != "" && !slices.Contains(models.EquipmentStatuses, filter.Status) {
		respond.Error(w, apperr.MalformedRequest, "status must be one of: "+strings.Join(models.EquipmentStatuses, ", "))
		return
	}
	items, total, err := h.store.ListEquipment(r.Context(), filter, page)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.ListResponse[models.Equipment]{
		Items:      items,
		Pagination: models.NewPagination(page.Page, page.Limit, total),
	})
}

func (h *EquipmentHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.EquipmentCategories(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", categories)
}

func (h *EquipmentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	e, err := h.store.GetEquipment(r.Context(), id)
	if err != nil {
		storeFailure(w, err, "equipment not found")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", e)
}

func readEquipment(w http.ResponseWriter, r *http.Request) (models.Equipment, error) {
	var in dto.EquipmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		return models.Equipment{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Location = strings.TrimSpace(in.Location)
	in.Status = strings.TrimSpace(in.Status)
	if err := validateStruct(in); err != nil {
		return models.Equipment{}, err
	}
	if in.Status == "" {
		in.Status = "available"
	}
	return models.Equipment{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		Status:      in.Status,
	}, nil
}

func (h *EquipmentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	e, err := readEquipment(w, r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	created, err := h.store.CreateEquipment(r.Context(), e)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "equipment created", created)
}

func (h *EquipmentHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	e, err := readEquipment(w, r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	e.ID = id
	updated, err := h.store.UpdateEquipment(r.Context(), e)
	if err != nil {
		storeFailure(w, err, "equipment not found")
		return
	}
	respond.JSON(w, http.StatusOK, "equipment updated", updated)
}

func (h *EquipmentHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if _, err := h.store.DeleteEquipment(r.Context(), id); err != nil {
		storeFailure(w, err, "equipment not found")
		return
	}
	respond.JSON(w, http.StatusOK, "equipment deleted", nil)
}
