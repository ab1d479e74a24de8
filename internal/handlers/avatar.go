package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sophia-wwww/accountd/internal/services"
	"github.com/sophia-wwww/accountd/internal/storage"
	"github.com/sophia-wwww/accountd/internal/store"
	"go.uber.org/zap"
)

const (
	maxAvatarMemory = 8 << 20
	maxAvatarBytes  = 5 << 20
	formFieldAvatar = "avatar"
)

// AvatarHandler stores and serves profile avatars from object storage.
type AvatarHandler struct {
	service *services.AccountService
	avatars *storage.Storage
	log     *zap.Logger
}

// NewAvatarHandler constructs an AvatarHandler with the provided dependencies.
func NewAvatarHandler(service *services.AccountService, avatars *storage.Storage, log *zap.Logger) *AvatarHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AvatarHandler{service: service, avatars: avatars, log: log}
}

// AvatarRouter registers avatar routes on the given router.
func AvatarRouter(r chi.Router, service *services.AccountService, avatars *storage.Storage, log *zap.Logger) {
	handler := NewAvatarHandler(service, avatars, log)

	r.Put("/profile/{username}/avatar", handler.Upload)
	r.Get("/profile/{username}/avatar", handler.Download)
	r.Delete("/profile/{username}/avatar", handler.Delete)
}

// Upload stores the multipart "avatar" file for an existing user.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxAvatarMemory); err != nil {
		writeFailed(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldAvatar)
	if err != nil {
		writeFailed(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	if header.Size > maxAvatarBytes {
		writeFailed(w, http.StatusBadRequest, "avatar file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := h.avatars.Put(r.Context(), avatarKey(username), file, header.Size, contentType); err != nil {
		h.log.Error("failed to store avatar", zap.String("username", username), zap.Error(err))
		writeServerError(w, "failed to store avatar")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess, Message: "avatar stored"})
}

// Download streams the stored avatar back to the client.
func (h *AvatarHandler) Download(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	reader, err := h.avatars.Get(r.Context(), avatarKey(username))
	if err != nil {
		writeFailed(w, http.StatusNotFound, "avatar not found")
		return
	}
	defer reader.Close()

	// Both backends may defer the missing-object error to the first read,
	// so buffer before committing to a status code.
	data, err := io.ReadAll(io.LimitReader(reader, maxAvatarBytes))
	if err != nil {
		writeFailed(w, http.StatusNotFound, "avatar not found")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete removes the stored avatar for an existing user.
func (h *AvatarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.avatars.Delete(r.Context(), avatarKey(username)); err != nil {
		h.log.Error("failed to delete avatar", zap.String("username", username), zap.Error(err))
		writeServerError(w, "failed to delete avatar")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess, Message: "avatar deleted"})
}

func (h *AvatarHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	username := chi.URLParam(r, "username")

	if _, err := h.service.GetProfile(r.Context(), username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailed(w, http.StatusNotFound, "user not found")
			return "", false
		}
		h.log.Error("failed to load user", zap.String("username", username), zap.Error(err))
		writeServerError(w, "failed to load user")
		return "", false
	}
	return username, true
}

func avatarKey(username string) string {
	return "avatars/" + username
}
