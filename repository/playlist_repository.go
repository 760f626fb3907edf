package repository

import (
	"context"
	"database/sql"
	"fmt"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

// PlaylistRepository defines the interface for playlist data operations.
// AddSong and RemoveSong implement strict add-if-absent / remove-if-present
// semantics: violating either is a Conflict, not a no-op.
type PlaylistRepository interface {
	Create(ctx context.Context, p *model.Playlist) error
	GetByID(ctx context.Context, id string) (*model.Playlist, error)
	ListByOwner(ctx context.Context, userID string) ([]*model.Playlist, error)
	Update(ctx context.Context, p *model.Playlist) error
	Delete(ctx context.Context, id string) error
	AddSong(ctx context.Context, playlistID, musicID string) error
	RemoveSong(ctx context.Context, playlistID, musicID string) error
}

type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

func (r *mysqlPlaylistRepository) Create(ctx context.Context, p *model.Playlist) error {
	query := `INSERT INTO playlists (id, name, description, cover_art_url, created_by, is_public)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.CoverArtURL, p.CreatedBy, p.IsPublic)
	if err != nil {
		if isDuplicate(err) {
			return apperr.New(apperr.Conflict, "Playlist with this ID already exists")
		}
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (r *mysqlPlaylistRepository) GetByID(ctx context.Context, id string) (*model.Playlist, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, cover_art_url, created_by, is_public, created_at, updated_at
		 FROM playlists WHERE id = ?`, id)
	p := &model.Playlist{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CoverArtURL, &p.CreatedBy, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.New(apperr.NotFound, "Playlist not found")
		}
		return nil, fmt.Errorf("failed to scan playlist row: %w", err)
	}
	if p.Songs, err = r.songs(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *mysqlPlaylistRepository) songs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT music_id FROM playlist_songs WHERE playlist_id = ? ORDER BY position", playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	songs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist song: %w", err)
		}
		songs = append(songs, id)
	}
	return songs, rows.Err()
}

func (r *mysqlPlaylistRepository) ListByOwner(ctx context.Context, userID string) ([]*model.Playlist, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, cover_art_url, created_by, is_public, created_at, updated_at
		 FROM playlists WHERE created_by = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for user %s: %w", userID, err)
	}
	defer rows.Close()

	playlists := []*model.Playlist{}
	for rows.Next() {
		p := &model.Playlist{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CoverArtURL, &p.CreatedBy, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range playlists {
		if p.Songs, err = r.songs(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

func (r *mysqlPlaylistRepository) Update(ctx context.Context, p *model.Playlist) error {
	query := `UPDATE playlists SET name = ?, description = ?, cover_art_url = ?, is_public = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, p.Name, p.Description, p.CoverArtURL, p.IsPublic, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist %s: %w", p.ID, err)
	}
	return nil
}

func (r *mysqlPlaylistRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE playlist_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete playlist songs: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete playlist %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return apperr.New(apperr.NotFound, "Playlist not found")
	}
	return tx.Commit()
}

// AddSong appends musicID at the end of the playlist. The unique key on
// (playlist_id, music_id) rejects duplicates.
func (r *mysqlPlaylistRepository) AddSong(ctx context.Context, playlistID, musicID string) error {
	query := `INSERT INTO playlist_songs (playlist_id, music_id, position)
		SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM playlist_songs WHERE playlist_id = ?`
	_, err := r.db.ExecContext(ctx, query, playlistID, musicID, playlistID)
	if err != nil {
		if isDuplicate(err) {
			return apperr.New(apperr.Conflict, "Song already in playlist")
		}
		return fmt.Errorf("failed to add song to playlist: %w", err)
	}
	return nil
}

func (r *mysqlPlaylistRepository) RemoveSong(ctx context.Context, playlistID, musicID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM playlist_songs WHERE playlist_id = ? AND music_id = ?", playlistID, musicID)
	if err != nil {
		return fmt.Errorf("failed to remove song from playlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.Conflict, "Song not in playlist")
	}
	return nil
}
