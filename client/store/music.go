package store

import (
	"context"
	"database/sql"
	"time"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

const musicColumns = `id, title, artist, artist_id, album, genre, duration_ms, path,
	artwork_url, play_count, approval_status, uploaded_at`

func scanMusicRows(rows *sql.Rows) ([]*model.Music, error) {
	defer rows.Close()
	var out []*model.Music
	for rows.Next() {
		var m model.Music
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Artist, &m.ArtistID, &m.Album, &m.Genre,
			&m.DurationMs, &m.Path, &m.ArtworkURL, &m.PlayCount,
			&m.ApprovalStatus, &m.UploadedAt,
		); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to read track", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// SaveMusic inserts or refreshes a track.
func (s *Store) SaveMusic(ctx context.Context, m *model.Music) error {
	if m.UploadedAt.IsZero() {
		m.UploadedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO music (`+musicColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			artist_id = excluded.artist_id,
			album = excluded.album,
			genre = excluded.genre,
			duration_ms = excluded.duration_ms,
			path = excluded.path,
			artwork_url = excluded.artwork_url,
			approval_status = excluded.approval_status`,
		m.ID, m.Title, m.Artist, m.ArtistID, m.Album, m.Genre, m.DurationMs,
		m.Path, m.ArtworkURL, m.PlayCount, m.ApprovalStatus, m.UploadedAt,
	)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to save track", err)
	}
	return nil
}

// MusicByID returns one track.
func (s *Store) MusicByID(ctx context.Context, id string) (*model.Music, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+musicColumns+` FROM music WHERE id = ?`, id)
	var m model.Music
	err := row.Scan(
		&m.ID, &m.Title, &m.Artist, &m.ArtistID, &m.Album, &m.Genre,
		&m.DurationMs, &m.Path, &m.ArtworkURL, &m.PlayCount,
		&m.ApprovalStatus, &m.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "Music not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read track", err)
	}
	return &m, nil
}

// AllMusic lists approved tracks, newest first.
func (s *Store) AllMusic(ctx context.Context) ([]*model.Music, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+musicColumns+` FROM music
		WHERE approval_status = ? ORDER BY uploaded_at DESC`,
		model.MusicApproved,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list tracks", err)
	}
	return scanMusicRows(rows)
}

// ArtistMusic lists every track by an artist, whatever its approval status.
func (s *Store) ArtistMusic(ctx context.Context, artistID string) ([]*model.Music, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+musicColumns+` FROM music
		WHERE artist_id = ? ORDER BY uploaded_at DESC`,
		artistID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list artist tracks", err)
	}
	return scanMusicRows(rows)
}

// PendingMusic lists tracks awaiting moderation.
func (s *Store) PendingMusic(ctx context.Context) ([]*model.Music, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+musicColumns+` FROM music
		WHERE approval_status = ? ORDER BY uploaded_at`,
		model.MusicPending,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list pending tracks", err)
	}
	return scanMusicRows(rows)
}

// Trending lists the most-played approved tracks.
func (s *Store) Trending(ctx context.Context, limit int) ([]*model.Music, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+musicColumns+` FROM music
		WHERE approval_status = ? ORDER BY play_count DESC, uploaded_at DESC LIMIT ?`,
		model.MusicApproved, limit,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list trending tracks", err)
	}
	return scanMusicRows(rows)
}

// NewReleases lists the most recently uploaded approved tracks.
func (s *Store) NewReleases(ctx context.Context, limit int) ([]*model.Music, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+musicColumns+` FROM music
		WHERE approval_status = ? ORDER BY uploaded_at DESC LIMIT ?`,
		model.MusicApproved, limit,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list new releases", err)
	}
	return scanMusicRows(rows)
}

// SetApprovalStatus moves a track through moderation.
func (s *Store) SetApprovalStatus(ctx context.Context, id string, status model.MusicApprovalStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE music SET approval_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to update approval status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Music not found")
	}
	return nil
}

// DeleteMusic removes a track along with its play history and any playlist or
// watchlist memberships.
func (s *Store) DeleteMusic(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM play_history WHERE music_id = ?`,
		`DELETE FROM playlist_songs WHERE music_id = ?`,
		`DELETE FROM watchlist_songs WHERE music_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return apperr.Wrap(apperr.Internal, "failed to delete track references", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM music WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete track", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Music not found")
	}
	return tx.Commit()
}

// RecordPlay bumps a track's play count at most once per user. Repeat plays by
// the same user are recorded in history terms only and leave the count alone.
// Returns whether the count changed.
func (s *Store) RecordPlay(ctx context.Context, userID, musicID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO play_history (user_id, music_id, played_at) VALUES (?, ?, ?)`,
		userID, musicID, time.Now().UTC(),
	)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to record play", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Not this user's first play.
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `UPDATE music SET play_count = play_count + 1 WHERE id = ?`, musicID); err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to bump play count", err)
	}
	return true, tx.Commit()
}
