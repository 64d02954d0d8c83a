package handlers

import (
	"net/http"
	"strings"

	"github.com/hongminglow/lab-portal/internal/auth"
	"github.com/hongminglow/lab-portal/internal/http/respond"
	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage"
)

// TeamHandler serves /api/team.
type TeamHandler struct {
	store storage.TeamStore
}

func NewTeamHandler(store storage.TeamStore) *TeamHandler {
	return &TeamHandler{store: store}
}

func (h *TeamHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/team", h.handleList)
	mux.HandleFunc("GET /api/team/{id}", h.handleGet)
	mux.HandleFunc("POST /api/team", h.handleCreate)
	mux.HandleFunc("PUT /api/team/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/team/{id}", h.handleDelete)
}

func (h *TeamHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, 50)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	active, err := boolParam(r, "active")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	items, total, err := h.store.ListTeam(r.Context(), storage.TeamFilter{Active: active}, page)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.ListResponse[models.TeamMember]{
		Items:      items,
		Pagination: models.NewPagination(page.Page, page.Limit, total),
	})
}

func (h *TeamHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	m, err := h.store.GetTeamMember(r.Context(), id)
	if err != nil {
		storeFailure(w, err, "team member not found")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", m)
}

func readTeamMember(w http.ResponseWriter, r *http.Request) (models.TeamMember, error) {
	var in dto.TeamMemberInput
	if err := decodeJSON(w, r, &in); err != nil {
		return models.TeamMember{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.TrimSpace(in.Position)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return models.TeamMember{}, err
	}
	m := models.TeamMember{
		Name:     in.Name,
		Position: in.Position,
		Bio:      strings.TrimSpace(in.Bio),
		Email:    in.Email,
		ImageURL: in.ImageURL,
		Active:   true,
	}
	if in.OrderIndex != nil {
		m.OrderIndex = *in.OrderIndex
	}
	if in.Active != nil {
		m.Active = *in.Active
	}
	return m, nil
}

func (h *TeamHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	m, err := readTeamMember(w, r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	created, err := h.store.CreateTeamMember(r.Context(), m)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "team member created", created)
}

func (h *TeamHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	m, err := readTeamMember(w, r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	m.ID = id
	updated, err := h.store.UpdateTeamMember(r.Context(), m)
	if err != nil {
		storeFailure(w, err, "team member not found")
		return
	}
	respond.JSON(w, http.StatusOK, "team member updated", updated)
}

func (h *TeamHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if _, err := h.store.DeleteTeamMember(r.Context(), id); err != nil {
		storeFailure(w, err, "team member not found")
		return
	}
	respond.JSON(w, http.StatusOK, "team member deleted", nil)
}
