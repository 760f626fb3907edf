// Package remote is the typed HTTP client for the ArifMusic REST API. Every
// method maps to one endpoint; transport failures come back tagged as Network
// errors so the syncing repositories can absorb them and fall back to the
// local store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"arifmusic/client/session"
	"arifmusic/core/apperr"
	"arifmusic/model"
)

// Gateway is the API client.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Manager
}

// NewGateway creates an API client. The session manager supplies the bearer
// token on authenticated calls.
func NewGateway(baseURL string, sess *session.Manager) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		session: sess,
	}
}

// SetTimeout overrides the request timeout.
func (g *Gateway) SetTimeout(timeout time.Duration) {
	g.httpClient.Timeout = timeout
}

// do runs one API call: encodes body, attaches auth, decodes the response
// into out (when non-nil) and maps failures into the error taxonomy.
func (g *Gateway) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := g.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.Network, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil || msg.Message == "" {
			msg.Message = resp.Status
		}
		return apperr.FromStatus(resp.StatusCode, msg.Message)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Register creates an account.
func (g *Gateway) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := g.do(ctx, http.MethodPost, "/api/users/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with email and password.
func (g *Gateway) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := LoginRequest{Email: email, Password: password}
	if err := g.do(ctx, http.MethodPost, "/api/users/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserExists checks whether an email is registered.
func (g *Gateway) UserExists(ctx context.Context, email string) (bool, error) {
	var resp struct {
		Exists bool `json:"exists"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/users/exists/"+email, nil, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// Profile fetches the caller's own user record.
func (g *Gateway) Profile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := g.do(ctx, http.MethodGet, "/api/users/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the caller's own profile.
func (g *Gateway) UpdateProfile(ctx context.Context, req UserUpdateRequest) (*model.User, error) {
	var user model.User
	if err := g.do(ctx, http.MethodPut, "/api/users/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByID fetches a user by id.
func (g *Gateway) UserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := g.do(ctx, http.MethodGet, "/api/users/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (g *Gateway) DeleteUser(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/api/users/"+id, nil, nil)
}

// Follow creates a follow edge from the caller to the target.
func (g *Gateway) Follow(ctx context.Context, userID string) error {
	return g.do(ctx, http.MethodPost, "/api/users/"+userID+"/follow", nil, nil)
}

// Unfollow removes a follow edge.
func (g *Gateway) Unfollow(ctx context.Context, userID string) error {
	return g.do(ctx, http.MethodDelete, "/api/users/"+userID+"/follow", nil, nil)
}

// Followers lists the target's followers.
func (g *Gateway) Followers(ctx context.Context, userID string) ([]*model.User, error) {
	var users []*model.User
	if err := g.do(ctx, http.MethodGet, "/api/users/"+userID+"/followers", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Following lists who the target follows.
func (g *Gateway) Following(ctx context.Context, userID string) ([]*model.User, error) {
	var users []*model.User
	if err := g.do(ctx, http.MethodGet, "/api/users/"+userID+"/following", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreatePlaylist creates a playlist.
func (g *Gateway) CreatePlaylist(ctx context.Context, req PlaylistRequest) (*model.Playlist, error) {
	var p model.Playlist
	if err := g.do(ctx, http.MethodPost, "/api/playlists", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Playlists lists the caller's playlists.
func (g *Gateway) Playlists(ctx context.Context) ([]*model.Playlist, error) {
	var out []*model.Playlist
	if err := g.do(ctx, http.MethodGet, "/api/playlists", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Playlist fetches one playlist.
func (g *Gateway) Playlist(ctx context.Context, id string) (*model.Playlist, error) {
	var p model.Playlist
	if err := g.do(ctx, http.MethodGet, "/api/playlists/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePlaylist updates playlist metadata.
func (g *Gateway) UpdatePlaylist(ctx context.Context, id string, req PlaylistUpdateRequest) (*model.Playlist, error) {
	var p model.Playlist
	if err := g.do(ctx, http.MethodPut, "/api/playlists/"+id, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePlaylist removes a playlist.
func (g *Gateway) DeletePlaylist(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/api/playlists/"+id, nil, nil)
}

// AddPlaylistSong appends a song to a playlist.
func (g *Gateway) AddPlaylistSong(ctx context.Context, playlistID, musicID string) (*model.Playlist, error) {
	var p model.Playlist
	if err := g.do(ctx, http.MethodPost, "/api/playlists/"+playlistID+"/songs", AddSongRequest{MusicID: musicID}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RemovePlaylistSong removes a song from a playlist.
func (g *Gateway) RemovePlaylistSong(ctx context.Context, playlistID, musicID string) (*model.Playlist, error) {
	var p model.Playlist
	if err := g.do(ctx, http.MethodDelete, "/api/playlists/"+playlistID+"/songs/"+musicID, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateWatchlist creates a watchlist.
func (g *Gateway) CreateWatchlist(ctx context.Context, req WatchlistRequest) (*model.Watchlist, error) {
	var wl model.Watchlist
	if err := g.do(ctx, http.MethodPost, "/api/watchlists", req, &wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

// Watchlists lists the caller's watchlists.
func (g *Gateway) Watchlists(ctx context.Context) ([]*model.Watchlist, error) {
	var out []*model.Watchlist
	if err := g.do(ctx, http.MethodGet, "/api/watchlists", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Watchlist fetches one watchlist.
func (g *Gateway) Watchlist(ctx context.Context, id string) (*model.Watchlist, error) {
	var wl model.Watchlist
	if err := g.do(ctx, http.MethodGet, "/api/watchlists/"+id, nil, &wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

// UpdateWatchlist updates watchlist metadata.
func (g *Gateway) UpdateWatchlist(ctx context.Context, id string, req WatchlistUpdateRequest) (*model.Watchlist, error) {
	var wl model.Watchlist
	if err := g.do(ctx, http.MethodPut, "/api/watchlists/"+id, req, &wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

// DeleteWatchlist removes a watchlist.
func (g *Gateway) DeleteWatchlist(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/api/watchlists/"+id, nil, nil)
}

// AddWatchlistSong adds a song to a watchlist.
func (g *Gateway) AddWatchlistSong(ctx context.Context, watchlistID, musicID string) (*model.Watchlist, error) {
	var wl model.Watchlist
	if err := g.do(ctx, http.MethodPost, "/api/watchlists/"+watchlistID+"/songs", AddSongRequest{MusicID: musicID}, &wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

// RemoveWatchlistSong removes a song from a watchlist.
func (g *Gateway) RemoveWatchlistSong(ctx context.Context, watchlistID, musicID string) (*model.Watchlist, error) {
	var wl model.Watchlist
	if err := g.do(ctx, http.MethodDelete, "/api/watchlists/"+watchlistID+"/songs/"+musicID, nil, &wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

// CheckWatchlists reports which of the caller's watchlists contain the track.
func (g *Gateway) CheckWatchlists(ctx context.Context, musicID string) (*CheckWatchlistResponse, error) {
	var resp CheckWatchlistResponse
	if err := g.do(ctx, http.MethodGet, "/api/watchlists/check/"+musicID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
