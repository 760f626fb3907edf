package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"arifmusic/core/apperr"
	"arifmusic/logger"
	"arifmusic/storage"
)

// UploadMediaHandler stores a cover art or profile image in MinIO and returns
// the URL the client should reference.
func (h *APIHandler) UploadMediaHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := GetUserIDFromContext(r.Context()); err != nil {
		respondError(w, err)
		return
	}

	if err := r.ParseMultipartForm(16 << 20); err != nil { // 16MB max memory
		respondError(w, apperr.Wrap(apperr.Validation, "Failed to parse multipart form", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, apperr.New(apperr.Validation, "Missing 'file' in form"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		respondError(w, apperr.New(apperr.Validation, "Unsupported image type"))
		return
	}

	objectName := "media/" + uuid.NewString() + ext
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := storage.PutMedia(r.Context(), objectName, file, header.Size, contentType); err != nil {
		respondError(w, err)
		return
	}

	logger.Info("media uploaded", logger.String("object", objectName), logger.Int64("size", header.Size))
	respondJSON(w, http.StatusCreated, map[string]string{"url": "/" + objectName})
}

// ServeMediaHandler proxies a stored object out of MinIO.
func (h *APIHandler) ServeMediaHandler(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/")

	object, err := storage.GetMedia(r.Context(), objectPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	var contentType string
	switch strings.ToLower(filepath.Ext(objectPath)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	default:
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	if _, err := io.Copy(w, object); err != nil {
		logger.Warn("error serving media", logger.String("object", objectPath), logger.ErrorField(err))
	}
}
