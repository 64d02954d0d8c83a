package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/hongminglow/lab-portal/internal/apperr"
	"github.com/hongminglow/lab-portal/internal/auth"
	"github.com/hongminglow/lab-portal/internal/http/respond"
	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage"
)

// FileStore persists uploaded media and hands back public URLs.
type FileStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Delete(url string) error
}

// NewsHandler serves /api/news.
type NewsHandler struct {
	store     storage.NewsStore
	files     FileStore
	maxUpload int64
}

func NewNewsHandler(store storage.NewsStore, files FileStore, maxUpload int64) *NewsHandler {
	return &NewsHandler{store: store, files: files, maxUpload: maxUpload}
}

func (h *NewsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/news", h.handleList)
	mux.HandleFunc("GET /api/news/{id}", h.handleGet)
	mux.HandleFunc("POST /api/news", h.handleCreate)
	mux.HandleFunc("PUT /api/news/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/news/{id}", h.handleDelete)
}

func isEditor(r *http.Request) bool {
	id, ok := auth.IdentityFrom(r.Context())
	return ok && id.Role.AtLeast(models.RoleEditor)
}

func (h *NewsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, 10)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	featured, err := boolParam(r, "featured")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	q := r.URL.Query()
	filter := storage.NewsFilter{
		Status:   q.Get("status"),
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
		Featured: featured,
	}
	switch filter.Status {
	case "":
		filter.Status = models.NewsPublished
	case models.NewsPublished:
	case models.NewsDraft, "all":
		if !isEditor(r) {
			respond.Error(w, apperr.InsufficientRole, "editor role required to list unpublished news")
			return
		}
		if filter.Status == "all" {
			filter.Status = ""
		}
	default:
		respond.Error(w, apperr.MalformedRequest, "status must be one of: draft, published, all")
		return
	}

	items, total, err := h.store.ListNews(r.Context(), filter, page)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.ListResponse[models.News]{
		Items:      items,
		Pagination: models.NewPagination(page.Page, page.Limit, total),
	})
}

func (h *NewsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	n, err := h.store.GetNews(r.Context(), id)
	if err == nil && n.Status != models.NewsPublished && !isEditor(r) {
		err = storage.ErrNotFound
	}
	if err != nil {
		storeFailure(w, err, "news not found")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", n)
}

func (h *NewsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.RequireRole(w, r, models.RoleEditor)
	if !ok {
		return
	}
	in, uploaded, err := h.readInput(w, r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	// uploaded images are orphaned unless the insert succeeds
	cleanup := func() {
		if uploaded != "" {
			if err := h.files.Delete(uploaded); err != nil {
				log.Printf("news: remove orphaned upload %s: %v", uploaded, err)
			}
		}
	}
	if err := validateStruct(in); err != nil {
		cleanup()
		respond.Fail(w, err)
		return
	}
	if in.Title == nil || in.Content == nil {
		cleanup()
		respond.Error(w, apperr.MalformedRequest, "title and content are required")
		return
	}

	n := models.News{
		Title:    *in.Title,
		Content:  *in.Content,
		Status:   models.NewsDraft,
		AuthorID: &identity.UserID,
	}
	if in.Excerpt != nil {
		n.Excerpt = *in.Excerpt
	}
	if in.Category != nil {
		n.Category = *in.Category
	}
	if in.Tags != nil {
		n.Tags = *in.Tags
	}
	if in.Status != nil {
		n.Status = *in.Status
	}
	if in.Featured != nil {
		n.Featured = *in.Featured
	}
	if in.ImageURL != nil {
		n.ImageURL = *in.ImageURL
	}

	created, err := h.store.CreateNews(r.Context(), n)
	if err != nil {
		cleanup()
		log.Printf("news: create: %v", err)
		respond.Error(w, apperr.Internal, "failed to save news")
		return
	}
	respond.JSON(w, http.StatusCreated, "news created", created)
}

func (h *NewsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var in dto.NewsInput
	if err := decodeJSON(w, r, &in); err != nil {
		respond.Fail(w, err)
		return
	}
	trimNewsInput(&in)
	if err := validateStruct(in); err != nil {
		respond.Fail(w, err)
		return
	}
	updated, err := h.store.UpdateNews(r.Context(), id, in)
	if err != nil {
		storeFailure(w, err, "news not found")
		return
	}
	respond.JSON(w, http.StatusOK, "news updated", updated)
}

func (h *NewsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	deleted, err := h.store.DeleteNews(r.Context(), id)
	if err != nil {
		storeFailure(w, err, "news not found")
		return
	}
	if deleted.ImageURL != "" {
		// the row is gone either way; a stale file is only logged
		if err := h.files.Delete(deleted.ImageURL); err != nil {
			log.Printf("news: delete image %s: %v", deleted.ImageURL, err)
		}
	}
	respond.JSON(w, http.StatusOK, "news deleted", nil)
}

// readInput accepts either JSON or a multipart form with an optional "image" file.
// The returned URL is non-empty when a file was stored.
func (h *NewsHandler) readInput(w http.ResponseWriter, r *http.Request) (dto.NewsInput, string, error) {
	var in dto.NewsInput
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := decodeJSON(w, r, &in); err != nil {
			return in, "", err
		}
		trimNewsInput(&in)
		return in, "", nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+maxJSONBody)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return in, "", apperr.New(apperr.MalformedRequest, "invalid multipart form")
	}
	field := func(name string) *string {
		if vals, ok := r.MultipartForm.Value[name]; ok && len(vals) > 0 {
			v := vals[0]
			return &v
		}
		return nil
	}
	in.Title = field("title")
	in.Content = field("content")
	in.Excerpt = field("excerpt")
	in.Category = field("category")
	in.Status = field("status")
	if raw := field("featured"); raw != nil {
		b, err := strconv.ParseBool(*raw)
		if err != nil {
			return in, "", apperr.New(apperr.MalformedRequest, "featured must be a boolean")
		}
		in.Featured = &b
	}
	if raw := field("tags"); raw != nil {
		tags, err := parseTags(*raw)
		if err != nil {
			return in, "", err
		}
		in.Tags = &tags
	}
	trimNewsInput(&in)

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, "", nil
	}
	if err != nil {
		return in, "", apperr.New(apperr.MalformedRequest, "invalid image upload")
	}
	defer file.Close()
	url, err := h.files.Save(header.Filename, file)
	if err != nil {
		return in, "", uploadError(err)
	}
	in.ImageURL = &url
	return in, url, nil
}

// parseTags accepts a JSON array or a comma separated list.
func parseTags(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil, apperr.New(apperr.MalformedRequest, "tags must be a JSON array of strings")
		}
		return tags, nil
	}
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func trimNewsInput(in *dto.NewsInput) {
	trimPtr(in.Title)
	trimPtr(in.Excerpt)
	trimPtr(in.Category)
	trimPtr(in.Status)
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		*in.Content = ""
	}
}
