package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hongminglow/lab-portal/internal/apperr"
	"github.com/hongminglow/lab-portal/internal/auth"
	"github.com/hongminglow/lab-portal/internal/http/respond"
	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage/files"
)

// UploadHandler stores standalone files (photos, PDFs, manuals) for editors.
type UploadHandler struct {
	files     FileStore
	maxUpload int64
}

func NewUploadHandler(fs FileStore, maxUpload int64) *UploadHandler {
	return &UploadHandler{files: fs, maxUpload: maxUpload}
}

func (h *UploadHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/uploads", h.handleUpload)
}

func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleEditor); !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+maxJSONBody)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respond.Error(w, apperr.MalformedRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, apperr.MalformedRequest, "file is required")
		return
	}
	defer file.Close()

	url, err := h.files.Save(header.Filename, file)
	if err != nil {
		respond.Fail(w, uploadError(err))
		return
	}
	respond.JSON(w, http.StatusCreated, "file uploaded", dto.UploadResponse{URL: url})
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, files.ErrUnsupportedType):
		return apperr.New(apperr.MalformedRequest, "unsupported file type")
	case errors.Is(err, files.ErrTooLarge):
		return apperr.New(apperr.MalformedRequest, "file too large")
	default:
		return fmt.Errorf("store upload: %w", err)
	}
}
