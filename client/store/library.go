package store

import (
	"context"
	"database/sql"
	"time"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

// SavePlaylist inserts or refreshes playlist metadata. Songs are managed
// separately through the membership methods.
func (s *Store) SavePlaylist(ctx context.Context, p *model.Playlist) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, description, cover_art_url, created_by, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			cover_art_url = excluded.cover_art_url,
			is_public = excluded.is_public,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Description, p.CoverArtURL, p.CreatedBy, p.IsPublic,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to save playlist", err)
	}
	return nil
}

// PlaylistByID returns a playlist with its songs in order.
func (s *Store) PlaylistByID(ctx context.Context, id string) (*model.Playlist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, cover_art_url, created_by, is_public, created_at, updated_at
		FROM playlists WHERE id = ?`, id)

	var p model.Playlist
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CoverArtURL, &p.CreatedBy,
		&p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "Playlist not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read playlist", err)
	}

	p.Songs, err = s.playlistSongs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) playlistSongs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT music_id FROM playlist_songs WHERE playlist_id = ? ORDER BY position`,
		playlistID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list playlist songs", err)
	}
	defer rows.Close()

	songs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to read playlist song", err)
		}
		songs = append(songs, id)
	}
	return songs, rows.Err()
}

// PlaylistsByOwner lists a user's playlists with songs populated.
func (s *Store) PlaylistsByOwner(ctx context.Context, ownerID string) ([]*model.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, cover_art_url, created_by, is_public, created_at, updated_at
		FROM playlists WHERE created_by = ? ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list playlists", err)
	}
	defer rows.Close()

	var out []*model.Playlist
	for rows.Next() {
		var p model.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CoverArtURL,
			&p.CreatedBy, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to read playlist", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		if p.Songs, err = s.playlistSongs(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeletePlaylist removes a playlist and its memberships.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlist_id = ?`, id); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete playlist songs", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete playlist", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Playlist not found")
	}
	return tx.Commit()
}

// AddPlaylistSong appends a song. Duplicate membership is a conflict and the
// playlist is left unchanged.
func (s *Store) AddPlaylistSong(ctx context.Context, playlistID, musicID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, music_id, position)
		SELECT ?, ?, COALESCE(MAX(position), -1) + 1
		FROM playlist_songs WHERE playlist_id = ?`,
		playlistID, musicID, playlistID,
	)
	if isDuplicate(err) {
		return apperr.New(apperr.Conflict, "Song already in playlist")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to add playlist song", err)
	}
	return nil
}

// RemovePlaylistSong removes a song; absence is a conflict.
func (s *Store) RemovePlaylistSong(ctx context.Context, playlistID, musicID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_songs WHERE playlist_id = ? AND music_id = ?`,
		playlistID, musicID,
	)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to remove playlist song", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.Conflict, "Song not in playlist")
	}
	return nil
}

// ReplacePlaylistSongs overwrites the membership rows with the given order.
// Used when mirroring a remote playlist.
func (s *Store) ReplacePlaylistSongs(ctx context.Context, playlistID string, songs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlist_id = ?`, playlistID); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to clear playlist songs", err)
	}
	for i, musicID := range songs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO playlist_songs (playlist_id, music_id, position) VALUES (?, ?, ?)`,
			playlistID, musicID, i,
		); err != nil {
			return apperr.Wrap(apperr.Internal, "failed to write playlist song", err)
		}
	}
	return tx.Commit()
}

// SaveWatchlist inserts or refreshes watchlist metadata.
func (s *Store) SaveWatchlist(ctx context.Context, wl *model.Watchlist) error {
	if wl.CreatedAt.IsZero() {
		wl.CreatedAt = time.Now().UTC()
	}
	wl.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watchlists (id, name, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = excluded.updated_at`,
		wl.ID, wl.Name, wl.Description, wl.CreatedBy, wl.CreatedAt, wl.UpdatedAt,
	)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to save watchlist", err)
	}
	return nil
}

// WatchlistByID returns a watchlist with its songs.
func (s *Store) WatchlistByID(ctx context.Context, id string) (*model.Watchlist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM watchlists WHERE id = ?`, id)

	var wl model.Watchlist
	err := row.Scan(&wl.ID, &wl.Name, &wl.Description, &wl.CreatedBy, &wl.CreatedAt, &wl.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "Watchlist not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read watchlist", err)
	}

	wl.Songs, err = s.watchlistSongs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &wl, nil
}

func (s *Store) watchlistSongs(ctx context.Context, watchlistID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT music_id FROM watchlist_songs WHERE watchlist_id = ? ORDER BY rowid`,
		watchlistID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list watchlist songs", err)
	}
	defer rows.Close()

	songs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to read watchlist song", err)
		}
		songs = append(songs, id)
	}
	return songs, rows.Err()
}

// WatchlistsByOwner lists a user's watchlists with songs populated.
func (s *Store) WatchlistsByOwner(ctx context.Context, ownerID string) ([]*model.Watchlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM watchlists WHERE created_by = ? ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list watchlists", err)
	}
	defer rows.Close()

	var out []*model.Watchlist
	for rows.Next() {
		var wl model.Watchlist
		if err := rows.Scan(&wl.ID, &wl.Name, &wl.Description, &wl.CreatedBy,
			&wl.CreatedAt, &wl.UpdatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to read watchlist", err)
		}
		out = append(out, &wl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, wl := range out {
		if wl.Songs, err = s.watchlistSongs(ctx, wl.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteWatchlist removes a watchlist and its memberships.
func (s *Store) DeleteWatchlist(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM watchlist_songs WHERE watchlist_id = ?`, id); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete watchlist songs", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM watchlists WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete watchlist", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Watchlist not found")
	}
	return tx.Commit()
}

// AddWatchlistSong adds a song; duplicates are a conflict.
func (s *Store) AddWatchlistSong(ctx context.Context, watchlistID, musicID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watchlist_songs (watchlist_id, music_id) VALUES (?, ?)`,
		watchlistID, musicID,
	)
	if isDuplicate(err) {
		return apperr.New(apperr.Conflict, "Song already in watchlist")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to add watchlist song", err)
	}
	return nil
}

// RemoveWatchlistSong removes a song; absence is a conflict.
func (s *Store) RemoveWatchlistSong(ctx context.Context, watchlistID, musicID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM watchlist_songs WHERE watchlist_id = ? AND music_id = ?`,
		watchlistID, musicID,
	)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to remove watchlist song", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.Conflict, "Song not in watchlist")
	}
	return nil
}

// ReplaceWatchlistSongs overwrites membership rows. Used when mirroring a
// remote watchlist.
func (s *Store) ReplaceWatchlistSongs(ctx context.Context, watchlistID string, songs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM watchlist_songs WHERE watchlist_id = ?`, watchlistID); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to clear watchlist songs", err)
	}
	for _, musicID := range songs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO watchlist_songs (watchlist_id, music_id) VALUES (?, ?)`,
			watchlistID, musicID,
		); err != nil {
			return apperr.Wrap(apperr.Internal, "failed to write watchlist song", err)
		}
	}
	return tx.Commit()
}

// WatchlistsContaining lists the owner's watchlists holding the track.
func (s *Store) WatchlistsContaining(ctx context.Context, ownerID, musicID string) ([]model.WatchlistInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.name
		FROM watchlists w
		JOIN watchlist_songs ws ON ws.watchlist_id = w.id
		WHERE w.created_by = ? AND ws.music_id = ?
		ORDER BY w.created_at`,
		ownerID, musicID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to check watchlists", err)
	}
	defer rows.Close()

	var out []model.WatchlistInfo
	for rows.Next() {
		var info model.WatchlistInfo
		if err := rows.Scan(&info.ID, &info.Name); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to read watchlist", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// WatchlistByName finds an owner's watchlist by exact name. The favorites
// flow uses this to locate or lazily create its backing list.
func (s *Store) WatchlistByName(ctx context.Context, ownerID, name string) (*model.Watchlist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM watchlists WHERE created_by = ? AND name = ?`, ownerID, name)

	var wl model.Watchlist
	err := row.Scan(&wl.ID, &wl.Name, &wl.Description, &wl.CreatedBy, &wl.CreatedAt, &wl.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "Watchlist not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read watchlist", err)
	}
	wl.Songs, err = s.watchlistSongs(ctx, wl.ID)
	if err != nil {
		return nil, err
	}
	return &wl, nil
}
