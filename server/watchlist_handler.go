package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

// WatchlistRequest is the creation body. Same shape as playlists minus the
// public flag.
type WatchlistRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// WatchlistUpdateRequest is the update body.
type WatchlistUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateWatchlistHandler creates a watchlist owned by the caller.
func (h *APIHandler) CreateWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req WatchlistRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.ID == "" || req.Name == "" {
		respondError(w, apperr.New(apperr.Validation, "Please provide watchlist ID and name"))
		return
	}

	watchlist := &model.Watchlist{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
		Songs:       []string{},
	}
	if err := h.watchlistRepo.Create(r.Context(), watchlist); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), userID)
	respondJSON(w, http.StatusCreated, watchlist)
}

// ListWatchlistsHandler returns the caller's watchlists.
func (h *APIHandler) ListWatchlistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if cached, err := h.libraryCache.Watchlists(r.Context(), userID); err == nil && cached != nil {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	watchlists, err := h.watchlistRepo.ListByOwner(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.StoreWatchlists(r.Context(), userID, watchlists)
	respondJSON(w, http.StatusOK, watchlists)
}

// GetWatchlistHandler returns one watchlist. Watchlists are always private.
func (h *APIHandler) GetWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	watchlist, err := h.watchlistRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !canMutate(r.Context(), watchlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to view this watchlist"))
		return
	}
	respondJSON(w, http.StatusOK, watchlist)
}

// UpdateWatchlistHandler updates watchlist metadata. Owner or admin only.
func (h *APIHandler) UpdateWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	watchlist, err := h.watchlistRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !canMutate(r.Context(), watchlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to update this watchlist"))
		return
	}

	var req WatchlistUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Name != nil && *req.Name != "" {
		watchlist.Name = *req.Name
	}
	if req.Description != nil {
		watchlist.Description = *req.Description
	}

	if err := h.watchlistRepo.Update(r.Context(), watchlist); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), watchlist.CreatedBy)
	respondJSON(w, http.StatusOK, watchlist)
}

// DeleteWatchlistHandler removes a watchlist. Owner or admin only.
func (h *APIHandler) DeleteWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	watchlist, err := h.watchlistRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !canMutate(r.Context(), watchlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to delete this watchlist"))
		return
	}
	if err := h.watchlistRepo.Delete(r.Context(), watchlist.ID); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), watchlist.CreatedBy)
	respondJSON(w, http.StatusOK, messageResponse{Message: "Watchlist removed"})
}

// AddWatchlistSongHandler adds a song to a watchlist. Duplicates rejected.
func (h *APIHandler) AddWatchlistSongHandler(w http.ResponseWriter, r *http.Request) {
	watchlist, err := h.watchlistRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !canMutate(r.Context(), watchlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to update this watchlist"))
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

	if err := h.watchlistRepo.AddSong(r.Context(), watchlist.ID, req.MusicID); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), watchlist.CreatedBy)
	watchlist.Songs = append(watchlist.Songs, req.MusicID)
	respondJSON(w, http.StatusOK, watchlist)
}

// RemoveWatchlistSongHandler removes a song from a watchlist.
func (h *APIHandler) RemoveWatchlistSongHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	watchlist, err := h.watchlistRepo.GetByID(r.Context(), vars["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !canMutate(r.Context(), watchlist.CreatedBy) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to update this watchlist"))
		return
	}

	if err := h.watchlistRepo.RemoveSong(r.Context(), watchlist.ID, vars["musicId"]); err != nil {
		respondError(w, err)
		return
	}
	h.libraryCache.Invalidate(r.Context(), watchlist.CreatedBy)

	songs := watchlist.Songs[:0]
	for _, id := range watchlist.Songs {
		if id != vars["musicId"] {
			songs = append(songs, id)
		}
	}
	watchlist.Songs = songs
	respondJSON(w, http.StatusOK, watchlist)
}

// CheckWatchlistsHandler reports which of the caller's watchlists contain the
// given track. The client derives favorite status from this membership.
func (h *APIHandler) CheckWatchlistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	infos, err := h.watchlistRepo.ListContaining(r.Context(), userID, mux.Vars(r)["musicId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"inWatchlist": len(infos) > 0,
		"watchlists":  infos,
	})
}
