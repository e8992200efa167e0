// Package upload handles user file uploads.
package upload

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"postboard/internal/httpx"
	"postboard/pkg/file"
	"postboard/pkg/logger"
)

// Handler accepts multipart uploads and stores them via file.Storage.
type Handler struct {
	storage file.Storage
	maxSize int64
	log     *slog.Logger
}

// NewHandler returns the upload HTTP handler. maxSize bounds the accepted
// file size in bytes.
func NewHandler(storage file.Storage, maxSize int64, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{storage: storage, maxSize: maxSize, log: log}
}

// Routes mounts the upload endpoint on r behind the requireUser middleware.
func (h *Handler) Routes(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.With(requireUser).Post("/upload", h.upload)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		httpx.Detail(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Missing file field")
		return
	}
	_ = f.Close()

	if err := file.ValidateSize(fh, h.maxSize); err != nil {
		httpx.Detail(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return
	}

	// Prefix with a random ID so concurrent uploads of the same filename
	// never overwrite each other.
	name := file.SanitizeFilename(fh.Filename)
	path := fmt.Sprintf("%s_%s", uuid.NewString(), name)

	stored, err := h.storage.Save(r.Context(), fh, path)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to store uploaded file", logger.Error(err))
		httpx.Detail(w, http.StatusInternalServerError, "There was an error uploading the file")
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{
		"detail":   fmt.Sprintf("Successfully uploaded %s", stored.Filename),
		"file_url": h.storage.URL(stored.RelativePath),
	})
}
