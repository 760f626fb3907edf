package syncrepo

import (
	"context"

	"github.com/google/uuid"

	"arifmusic/client/remote"
	"arifmusic/client/session"
	"arifmusic/client/store"
	"arifmusic/core/apperr"
	"arifmusic/model"
)

// favoritesName is the reserved watchlist backing the favorite toggle.
const favoritesName = "Favorites"

// Library manages playlists, watchlists and favorites, server-first with the
// local store as the offline mirror.
type Library struct {
	gw    *remote.Gateway
	store *store.Store
	sess  *session.Manager
	conn  Connectivity
}

// NewLibrary wires the library repository.
func NewLibrary(gw *remote.Gateway, st *store.Store, sess *session.Manager, conn Connectivity) *Library {
	return &Library{gw: gw, store: st, sess: sess, conn: conn}
}

func (l *Library) userID() (string, error) {
	id := l.sess.UserID()
	if id == "" {
		return "", apperr.New(apperr.Unauthenticated, "Not logged in")
	}
	return id, nil
}

// mirrorPlaylist writes a remote playlist into the local store.
func (l *Library) mirrorPlaylist(ctx context.Context, p *model.Playlist) error {
	if err := l.store.SavePlaylist(ctx, p); err != nil {
		return err
	}
	return l.store.ReplacePlaylistSongs(ctx, p.ID, p.Songs)
}

// mirrorWatchlist writes a remote watchlist into the local store.
func (l *Library) mirrorWatchlist(ctx context.Context, wl *model.Watchlist) error {
	if err := l.store.SaveWatchlist(ctx, wl); err != nil {
		return err
	}
	return l.store.ReplaceWatchlistSongs(ctx, wl.ID, wl.Songs)
}

// CreatePlaylist creates a playlist with a locally assigned id, so offline
// creations keep their identity when the server learns about them later.
func (l *Library) CreatePlaylist(ctx context.Context, name, description string, isPublic bool) (*model.Playlist, error) {
	userID, err := l.userID()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperr.New(apperr.Validation, "Name is required")
	}

	p := &model.Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedBy:   userID,
		IsPublic:    isPublic,
		Songs:       []string{},
	}

	if l.conn.Online(ctx) {
		created, err := l.gw.CreatePlaylist(ctx, remote.PlaylistRequest{
			ID:          p.ID,
			Name:        name,
			Description: description,
			IsPublic:    &isPublic,
		})
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			p = created
		}
	}

	if err := l.mirrorPlaylist(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Playlists lists the user's playlists, mirroring the server set when
// reachable.
func (l *Library) Playlists(ctx context.Context) ([]*model.Playlist, error) {
	userID, err := l.userID()
	if err != nil {
		return nil, err
	}

	if l.conn.Online(ctx) {
		lists, err := l.gw.Playlists(ctx)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			for _, p := range lists {
				if err := l.mirrorPlaylist(ctx, p); err != nil {
					return nil, err
				}
			}
			return lists, nil
		}
	}
	return l.store.PlaylistsByOwner(ctx, userID)
}

// Playlist fetches one playlist.
func (l *Library) Playlist(ctx context.Context, id string) (*model.Playlist, error) {
	if l.conn.Online(ctx) {
		p, err := l.gw.Playlist(ctx, id)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if err := l.mirrorPlaylist(ctx, p); err != nil {
				return nil, err
			}
			return p, nil
		}
	}
	return l.store.PlaylistByID(ctx, id)
}

// UpdatePlaylist edits playlist metadata.
func (l *Library) UpdatePlaylist(ctx context.Context, id string, req remote.PlaylistUpdateRequest) (*model.Playlist, error) {
	if _, err := l.userID(); err != nil {
		return nil, err
	}

	if l.conn.Online(ctx) {
		p, err := l.gw.UpdatePlaylist(ctx, id, req)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if err := l.mirrorPlaylist(ctx, p); err != nil {
				return nil, err
			}
			return p, nil
		}
	}

	p, err := l.store.PlaylistByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.CoverArtURL != nil {
		p.CoverArtURL = *req.CoverArtURL
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}
	if err := l.store.SavePlaylist(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePlaylist removes a playlist.
func (l *Library) DeletePlaylist(ctx context.Context, id string) error {
	if _, err := l.userID(); err != nil {
		return err
	}
	if l.conn.Online(ctx) {
		if err := l.gw.DeletePlaylist(ctx, id); err != nil && !offline(err) {
			return err
		}
	}
	return l.store.DeletePlaylist(ctx, id)
}

// AddPlaylistSong appends a track to a playlist. The track id must resolve
// locally; duplicates are rejected without touching the playlist.
func (l *Library) AddPlaylistSong(ctx context.Context, playlistID, musicID string) (*model.Playlist, error) {
	if _, err := l.userID(); err != nil {
		return nil, err
	}
	if _, err := l.store.MusicByID(ctx, musicID); err != nil {
		return nil, err
	}

	if l.conn.Online(ctx) {
		p, err := l.gw.AddPlaylistSong(ctx, playlistID, musicID)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if err := l.mirrorPlaylist(ctx, p); err != nil {
				return nil, err
			}
			return p, nil
		}
	}

	if err := l.store.AddPlaylistSong(ctx, playlistID, musicID); err != nil {
		return nil, err
	}
	return l.store.PlaylistByID(ctx, playlistID)
}

// RemovePlaylistSong removes a track from a playlist; absence is a conflict.
func (l *Library) RemovePlaylistSong(ctx context.Context, playlistID, musicID string) (*model.Playlist, error) {
	if _, err := l.userID(); err != nil {
		return nil, err
	}

	if l.conn.Online(ctx) {
		p, err := l.gw.RemovePlaylistSong(ctx, playlistID, musicID)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if err := l.mirrorPlaylist(ctx, p); err != nil {
				return nil, err
			}
			return p, nil
		}
	}

	if err := l.store.RemovePlaylistSong(ctx, playlistID, musicID); err != nil {
		return nil, err
	}
	return l.store.PlaylistByID(ctx, playlistID)
}

// CreateWatchlist creates a watchlist with a locally assigned id.
func (l *Library) CreateWatchlist(ctx context.Context, name, description string) (*model.Watchlist, error) {
	userID, err := l.userID()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperr.New(apperr.Validation, "Name is required")
	}

	wl := &model.Watchlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedBy:   userID,
		Songs:       []string{},
	}

	if l.conn.Online(ctx) {
		created, err := l.gw.CreateWatchlist(ctx, remote.WatchlistRequest{
			ID:          wl.ID,
			Name:        name,
			Description: description,
		})
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			wl = created
		}
	}

	if err := l.mirrorWatchlist(ctx, wl); err != nil {
		return nil, err
	}
	return wl, nil
}

// Watchlists lists the user's watchlists.
func (l *Library) Watchlists(ctx context.Context) ([]*model.Watchlist, error) {
	userID, err := l.userID()
	if err != nil {
		return nil, err
	}

	if l.conn.Online(ctx) {
		lists, err := l.gw.Watchlists(ctx)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			for _, wl := range lists {
				if err := l.mirrorWatchlist(ctx, wl); err != nil {
					return nil, err
				}
			}
			return lists, nil
		}
	}
	return l.store.WatchlistsByOwner(ctx, userID)
}

// Watchlist fetches one watchlist.
func (l *Library) Watchlist(ctx context.Context, id string) (*model.Watchlist, error) {
	if l.conn.Online(ctx) {
		wl, err := l.gw.Watchlist(ctx, id)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if err := l.mirrorWatchlist(ctx, wl); err != nil {
				return nil, err
			}
			return wl, nil
		}
	}
	return l.store.WatchlistByID(ctx, id)
}

// DeleteWatchlist removes a watchlist.
func (l *Library) DeleteWatchlist(ctx context.Context, id string) error {
	if _, err := l.userID(); err != nil {
		return err
	}
	if l.conn.Online(ctx) {
		if err := l.gw.DeleteWatchlist(ctx, id); err != nil && !offline(err) {
			return err
		}
	}
	return l.store.DeleteWatchlist(ctx, id)
}

// AddWatchlistSong adds a track to a watchlist. The track id must resolve
// locally.
func (l *Library) AddWatchlistSong(ctx context.Context, watchlistID, musicID string) (*model.Watchlist, error) {
	if _, err := l.userID(); err != nil {
		return nil, err
	}
	if _, err := l.store.MusicByID(ctx, musicID); err != nil {
		return nil, err
	}

	if l.conn.Online(ctx) {
		wl, err := l.gw.AddWatchlistSong(ctx, watchlistID, musicID)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if err := l.mirrorWatchlist(ctx, wl); err != nil {
				return nil, err
			}
			return wl, nil
		}
	}

	if err := l.store.AddWatchlistSong(ctx, watchlistID, musicID); err != nil {
		return nil, err
	}
	return l.store.WatchlistByID(ctx, watchlistID)
}

// RemoveWatchlistSong removes a track from a watchlist.
func (l *Library) RemoveWatchlistSong(ctx context.Context, watchlistID, musicID string) (*model.Watchlist, error) {
	if _, err := l.userID(); err != nil {
		return nil, err
	}

	if l.conn.Online(ctx) {
		wl, err := l.gw.RemoveWatchlistSong(ctx, watchlistID, musicID)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if err := l.mirrorWatchlist(ctx, wl); err != nil {
				return nil, err
			}
			return wl, nil
		}
	}

	if err := l.store.RemoveWatchlistSong(ctx, watchlistID, musicID); err != nil {
		return nil, err
	}
	return l.store.WatchlistByID(ctx, watchlistID)
}

// CheckWatchlists reports which of the user's watchlists contain the track.
func (l *Library) CheckWatchlists(ctx context.Context, musicID string) ([]model.WatchlistInfo, error) {
	userID, err := l.userID()
	if err != nil {
		return nil, err
	}

	if l.conn.Online(ctx) {
		resp, err := l.gw.CheckWatchlists(ctx, musicID)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			return resp.Watchlists, nil
		}
	}
	return l.store.WatchlistsContaining(ctx, userID, musicID)
}

// favorites returns the user's favorites watchlist, creating it on first use.
func (l *Library) favorites(ctx context.Context) (*model.Watchlist, error) {
	userID, err := l.userID()
	if err != nil {
		return nil, err
	}
	wl, err := l.store.WatchlistByName(ctx, userID, favoritesName)
	if err == nil {
		return wl, nil
	}
	if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}
	return l.CreateWatchlist(ctx, favoritesName, "Liked songs")
}

// IsFavorite reports whether the track is in the favorites watchlist.
func (l *Library) IsFavorite(ctx context.Context, musicID string) (bool, error) {
	lists, err := l.CheckWatchlists(ctx, musicID)
	if err != nil {
		return false, err
	}
	for _, info := range lists {
		if info.Name == favoritesName {
			return true, nil
		}
	}
	return false, nil
}

// ToggleFavorite flips the track's membership in the favorites watchlist and
// reports the new state.
func (l *Library) ToggleFavorite(ctx context.Context, musicID string) (bool, error) {
	wl, err := l.favorites(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range wl.Songs {
		if id == musicID {
			if _, err := l.RemoveWatchlistSong(ctx, wl.ID, musicID); err != nil {
				return false, err
			}
			return false, nil
		}
	}
	if _, err := l.AddWatchlistSong(ctx, wl.ID, musicID); err != nil {
		return false, err
	}
	return true, nil
}
