package server

import (
	"context"
	"sync"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

// In-memory repository fakes. They reproduce the real repositories' error
// contracts (NotFound on missing rows, Conflict on duplicates) so handlers
// are exercised against the same taxonomy.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return apperr.New(apperr.Conflict, "User already exists")
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperr.New(apperr.Conflict, "User already exists")
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "User not found")
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperr.New(apperr.NotFound, "User not found")
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperr.New(apperr.NotFound, "User not found")
	}
	delete(r.users, id)
	return nil
}

type fakePlaylistRepo struct {
	mu        sync.Mutex
	playlists map[string]*model.Playlist
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{playlists: map[string]*model.Playlist{}}
}

func clonePlaylist(p *model.Playlist) *model.Playlist {
	clone := *p
	clone.Songs = append([]string{}, p.Songs...)
	return &clone
}

func (r *fakePlaylistRepo) Create(_ context.Context, p *model.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.playlists[p.ID]; ok {
		return apperr.New(apperr.Conflict, "Playlist already exists")
	}
	r.playlists[p.ID] = clonePlaylist(p)
	return nil
}

func (r *fakePlaylistRepo) GetByID(_ context.Context, id string) (*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Playlist not found")
	}
	return clonePlaylist(p), nil
}

func (r *fakePlaylistRepo) ListByOwner(_ context.Context, userID string) ([]*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Playlist
	for _, p := range r.playlists {
		if p.CreatedBy == userID {
			out = append(out, clonePlaylist(p))
		}
	}
	return out, nil
}

func (r *fakePlaylistRepo) Update(_ context.Context, p *model.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.playlists[p.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "Playlist not found")
	}
	songs := stored.Songs
	r.playlists[p.ID] = clonePlaylist(p)
	r.playlists[p.ID].Songs = songs
	return nil
}

func (r *fakePlaylistRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.playlists[id]; !ok {
		return apperr.New(apperr.NotFound, "Playlist not found")
	}
	delete(r.playlists, id)
	return nil
}

func (r *fakePlaylistRepo) AddSong(_ context.Context, playlistID, musicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[playlistID]
	if !ok {
		return apperr.New(apperr.NotFound, "Playlist not found")
	}
	for _, id := range p.Songs {
		if id == musicID {
			return apperr.New(apperr.Conflict, "Song already in playlist")
		}
	}
	p.Songs = append(p.Songs, musicID)
	return nil
}

func (r *fakePlaylistRepo) RemoveSong(_ context.Context, playlistID, musicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[playlistID]
	if !ok {
		return apperr.New(apperr.NotFound, "Playlist not found")
	}
	for i, id := range p.Songs {
		if id == musicID {
			p.Songs = append(p.Songs[:i], p.Songs[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.Conflict, "Song not in playlist")
}

type fakeWatchlistRepo struct {
	mu         sync.Mutex
	watchlists map[string]*model.Watchlist
}

func newFakeWatchlistRepo() *fakeWatchlistRepo {
	return &fakeWatchlistRepo{watchlists: map[string]*model.Watchlist{}}
}

func cloneWatchlist(wl *model.Watchlist) *model.Watchlist {
	clone := *wl
	clone.Songs = append([]string{}, wl.Songs...)
	return &clone
}

func (r *fakeWatchlistRepo) Create(_ context.Context, wl *model.Watchlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watchlists[wl.ID]; ok {
		return apperr.New(apperr.Conflict, "Watchlist already exists")
	}
	r.watchlists[wl.ID] = cloneWatchlist(wl)
	return nil
}

func (r *fakeWatchlistRepo) GetByID(_ context.Context, id string) (*model.Watchlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wl, ok := r.watchlists[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Watchlist not found")
	}
	return cloneWatchlist(wl), nil
}

func (r *fakeWatchlistRepo) ListByOwner(_ context.Context, userID string) ([]*model.Watchlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Watchlist
	for _, wl := range r.watchlists {
		if wl.CreatedBy == userID {
			out = append(out, cloneWatchlist(wl))
		}
	}
	return out, nil
}

func (r *fakeWatchlistRepo) Update(_ context.Context, wl *model.Watchlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.watchlists[wl.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "Watchlist not found")
	}
	songs := stored.Songs
	r.watchlists[wl.ID] = cloneWatchlist(wl)
	r.watchlists[wl.ID].Songs = songs
	return nil
}

func (r *fakeWatchlistRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watchlists[id]; !ok {
		return apperr.New(apperr.NotFound, "Watchlist not found")
	}
	delete(r.watchlists, id)
	return nil
}

func (r *fakeWatchlistRepo) AddSong(_ context.Context, watchlistID, musicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	wl, ok := r.watchlists[watchlistID]
	if !ok {
		return apperr.New(apperr.NotFound, "Watchlist not found")
	}
	for _, id := range wl.Songs {
		if id == musicID {
			return apperr.New(apperr.Conflict, "Song already in watchlist")
		}
	}
	wl.Songs = append(wl.Songs, musicID)
	return nil
}

func (r *fakeWatchlistRepo) RemoveSong(_ context.Context, watchlistID, musicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	wl, ok := r.watchlists[watchlistID]
	if !ok {
		return apperr.New(apperr.NotFound, "Watchlist not found")
	}
	for i, id := range wl.Songs {
		if id == musicID {
			wl.Songs = append(wl.Songs[:i], wl.Songs[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.Conflict, "Song not in watchlist")
}

func (r *fakeWatchlistRepo) ListContaining(_ context.Context, userID, musicID string) ([]model.WatchlistInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.WatchlistInfo
	for _, wl := range r.watchlists {
		if wl.CreatedBy != userID {
			continue
		}
		for _, id := range wl.Songs {
			if id == musicID {
				out = append(out, model.WatchlistInfo{ID: wl.ID, Name: wl.Name})
				break
			}
		}
	}
	return out, nil
}

type followEdge struct {
	follower, following string
}

type fakeFollowRepo struct {
	mu    sync.Mutex
	edges map[followEdge]bool
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: map[followEdge]bool{}}
}

func (r *fakeFollowRepo) Create(_ context.Context, followerID, followingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	edge := followEdge{followerID, followingID}
	if r.edges[edge] {
		return apperr.New(apperr.Conflict, "Already following this user")
	}
	r.edges[edge] = true
	return nil
}

func (r *fakeFollowRepo) Delete(_ context.Context, followerID, followingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	edge := followEdge{followerID, followingID}
	if !r.edges[edge] {
		return apperr.New(apperr.NotFound, "Not following this user")
	}
	delete(r.edges, edge)
	return nil
}

func (r *fakeFollowRepo) Followers(_ context.Context, userID string) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for edge := range r.edges {
		if edge.following == userID {
			out = append(out, &model.User{ID: edge.follower})
		}
	}
	return out, nil
}

func (r *fakeFollowRepo) Following(_ context.Context, userID string) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for edge := range r.edges {
		if edge.follower == userID {
			out = append(out, &model.User{ID: edge.following})
		}
	}
	return out, nil
}
