package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

// PlaylistRequest is the creation body. The id is client-assigned.
type PlaylistRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverArtURL string `json:"coverArtUrl"`
	IsPublic    *bool  `json:"isPublic"`
}

// PlaylistUpdateRequest is the update body. Nil fields are left as-is.
type PlaylistUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CoverArtURL *string `json:"coverArtUrl"`
	IsPublic    *bool   `json:"isPublic"`
}

// AddSongRequest carries the music id for membership mutations.
type AddSongRequest struct {
	MusicID string `json:"musicId"`
}

// CreatePlaylistHandler creates a playlist owned by the caller.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req PlaylistRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.ID == "" || req.Name == "" {
		respondError(w, apperr.New(apperr.Validation, "Please provide playlist ID and name"))
		return
	}

	playlist := &model.Playlist{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		CoverArtURL: req.CoverArtURL,
		CreatedBy:   userID,
		IsPublic:    true,
		Songs:       []string{},
	}
	if req.IsPublic != nil {
		playlist.IsPublic = *req.IsPublic
	}

	if err := h.playlistRepo.Create(r.Context(), playlist); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), userID)
	respondJSON(w, http.StatusCreated, playlist)
}

// ListPlaylistsHandler returns the caller's playlists, served from the Redis
// cache when warm.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if cached, err := h.libraryCache.Playlists(r.Context(), userID); err == nil && cached != nil {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	playlists, err := h.playlistRepo.ListByOwner(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.StorePlaylists(r.Context(), userID, playlists)
	respondJSON(w, http.StatusOK, playlists)
}

// GetPlaylistHandler returns one playlist, honoring the public flag.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlistRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !playlist.IsPublic && !canMutate(r.Context(), playlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to view this playlist"))
		return
	}
	respondJSON(w, http.StatusOK, playlist)
}

// UpdatePlaylistHandler updates playlist metadata. Owner or admin only.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlistRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !canMutate(r.Context(), playlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to update this playlist"))
		return
	}

	var req PlaylistUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Name != nil && *req.Name != "" {
		playlist.Name = *req.Name
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}
	if req.CoverArtURL != nil && *req.CoverArtURL != "" {
		playlist.CoverArtURL = *req.CoverArtURL
	}
	if req.IsPublic != nil {
		playlist.IsPublic = *req.IsPublic
	}

	if err := h.playlistRepo.Update(r.Context(), playlist); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), playlist.CreatedBy)
	respondJSON(w, http.StatusOK, playlist)
}

// DeletePlaylistHandler removes a playlist. Owner or admin only.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlistRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !canMutate(r.Context(), playlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to delete this playlist"))
		return
	}
	if err := h.playlistRepo.Delete(r.Context(), playlist.ID); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), playlist.CreatedBy)
	respondJSON(w, http.StatusOK, messageResponse{Message: "Playlist removed"})
}

// AddPlaylistSongHandler appends a song. Duplicates are rejected.
func (h *APIHandler) AddPlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlistRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !canMutate(r.Context(), playlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to update this playlist"))
		return
	}

	var req AddSongRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.MusicID == "" {
		respondError(w, apperr.New(apperr.Validation, "Please provide a music ID"))
		return
	}

	if err := h.playlistRepo.AddSong(r.Context(), playlist.ID, req.MusicID); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), playlist.CreatedBy)
	playlist.Songs = append(playlist.Songs, req.MusicID)
	respondJSON(w, http.StatusOK, playlist)
}

// RemovePlaylistSongHandler removes a song. Removing an absent song is an
// error, not a no-op.
func (h *APIHandler) RemovePlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playlist, err := h.playlistRepo.GetByID(r.Context(), vars["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !canMutate(r.Context(), playlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to update this playlist"))
		return
	}

	if err := h.playlistRepo.RemoveSong(r.Context(), playlist.ID, vars["musicId"]); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), playlist.CreatedBy)

	songs := playlist.Songs[:0]
	for _, id := range playlist.Songs {
		if id != vars["musicId"] {
			songs = append(songs, id)
		}
	}
	playlist.Songs = songs
	respondJSON(w, http.StatusOK, playlist)
}
