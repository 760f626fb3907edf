package server

import (
	"context"
	"encoding/json"
	"net/http"

	"arifmusic/cache"
	"arifmusic/config"
	"arifmusic/core/apperr"
	"arifmusic/logger"
	"arifmusic/model"
	"arifmusic/repository"
)

// APIHandler carries the dependencies of every HTTP handler.
type APIHandler struct {
	userRepo      repository.UserRepository
	playlistRepo  repository.PlaylistRepository
	watchlistRepo repository.WatchlistRepository
	followRepo    repository.FollowRepository
	libraryCache  *cache.LibraryCache
	cfg           *config.Config
}

// NewAPIHandler creates a new APIHandler. libraryCache may be nil to disable
// Redis caching.
func NewAPIHandler(
	userRepo repository.UserRepository,
	playlistRepo repository.PlaylistRepository,
	watchlistRepo repository.WatchlistRepository,
	followRepo repository.FollowRepository,
	libraryCache *cache.LibraryCache,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:      userRepo,
		playlistRepo:  playlistRepo,
		watchlistRepo: watchlistRepo,
		followRepo:    followRepo,
		libraryCache:  libraryCache,
		cfg:           cfg,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError maps an error through the taxonomy to its fixed HTTP status
// with a plain {message} body.
func respondError(w http.ResponseWriter, err error) {
	status := apperr.StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Error("internal error", logger.ErrorField(err))
		respondJSON(w, status, messageResponse{Message: "Internal server error"})
		return
	}
	respondJSON(w, status, messageResponse{Message: apperr.Message(err)})
}

type contextKey string

const (
	ctxUserID   contextKey = "userID"
	ctxUserType contextKey = "userType"
)

// GetUserIDFromContext extracts the authenticated user id.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(ctxUserID).(string)
	if !ok || userID == "" {
		return "", apperr.New(apperr.Unauthenticated, "Not authenticated")
	}
	return userID, nil
}

// GetUserTypeFromContext extracts the authenticated user's type.
func GetUserTypeFromContext(ctx context.Context) model.UserType {
	userType, ok := ctx.Value(ctxUserType).(model.UserType)
	if !ok {
		return model.UserTypeGuest
	}
	return userType
}

// isAdmin reports whether the request context belongs to an admin.
func isAdmin(ctx context.Context) bool {
	return GetUserTypeFromContext(ctx) == model.UserTypeAdmin
}

// canMutate applies the shared ownership rule: owner or admin.
func canMutate(ctx context.Context, ownerID string) bool {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return false
	}
	return userID == ownerID || isAdmin(ctx)
}

// decodeBody decodes a JSON request body, reporting a Validation error on
// malformed input.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.Validation, "Invalid request body", err)
	}
	return nil
}
