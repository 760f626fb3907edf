package repository

import (
	"context"
	"database/sql"
	"fmt"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

// WatchlistRepository mirrors PlaylistRepository minus the public flag, plus
// the membership check used by the favorite toggle.
type WatchlistRepository interface {
	Create(ctx context.Context, w *model.Watchlist) error
	GetByID(ctx context.Context, id string) (*model.Watchlist, error)
	ListByOwner(ctx context.Context, userID string) ([]*model.Watchlist, error)
	Update(ctx context.Context, w *model.Watchlist) error
	Delete(ctx context.Context, id string) error
	AddSong(ctx context.Context, watchlistID, musicID string) error
	RemoveSong(ctx context.Context, watchlistID, musicID string) error
	ListContaining(ctx context.Context, userID, musicID string) ([]model.WatchlistInfo, error)
}

type mysqlWatchlistRepository struct {
	db *sql.DB
}

// NewMySQLWatchlistRepository creates a new mysqlWatchlistRepository.
func NewMySQLWatchlistRepository(db *sql.DB) WatchlistRepository {
	return &mysqlWatchlistRepository{db: db}
}

func (r *mysqlWatchlistRepository) Create(ctx context.Context, w *model.Watchlist) error {
	query := "INSERT INTO watchlists (id, name, description, created_by) VALUES (?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query, w.ID, w.Name, w.Description, w.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return apperr.New(apperr.Conflict, "Watchlist with this ID already exists")
		}
		return fmt.Errorf("failed to create watchlist: %w", err)
	}
	return nil
}

func (r *mysqlWatchlistRepository) GetByID(ctx context.Context, id string) (*model.Watchlist, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at, updated_at FROM watchlists WHERE id = ?", id)
	w := &model.Watchlist{}
	err := row.Scan(&w.ID, &w.Name, &w.Description, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.New(apperr.NotFound, "Watchlist not found")
		}
		return nil, fmt.Errorf("failed to scan watchlist row: %w", err)
	}
	if w.Songs, err = r.songs(ctx, id); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *mysqlWatchlistRepository) songs(ctx context.Context, watchlistID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT music_id FROM watchlist_songs WHERE watchlist_id = ? ORDER BY created_at", watchlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist songs: %w", err)
	}
	defer rows.Close()

	songs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist song: %w", err)
		}
		songs = append(songs, id)
	}
	return songs, rows.Err()
}

func (r *mysqlWatchlistRepository) ListByOwner(ctx context.Context, userID string) ([]*model.Watchlist, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_by, created_at, updated_at
		 FROM watchlists WHERE created_by = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlists for user %s: %w", userID, err)
	}
	defer rows.Close()

	watchlists := []*model.Watchlist{}
	for rows.Next() {
		w := &model.Watchlist{}
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist row: %w", err)
		}
		watchlists = append(watchlists, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, w := range watchlists {
		if w.Songs, err = r.songs(ctx, w.ID); err != nil {
			return nil, err
		}
	}
	return watchlists, nil
}

func (r *mysqlWatchlistRepository) Update(ctx context.Context, w *model.Watchlist) error {
	query := "UPDATE watchlists SET name = ?, description = ?, updated_at = NOW() WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, w.Name, w.Description, w.ID)
	if err != nil {
		return fmt.Errorf("failed to update watchlist %s: %w", w.ID, err)
	}
	return nil
}

func (r *mysqlWatchlistRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM watchlist_songs WHERE watchlist_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete watchlist songs: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM watchlists WHERE id = ?", id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete watchlist %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return apperr.New(apperr.NotFound, "Watchlist not found")
	}
	return tx.Commit()
}

func (r *mysqlWatchlistRepository) AddSong(ctx context.Context, watchlistID, musicID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO watchlist_songs (watchlist_id, music_id) VALUES (?, ?)", watchlistID, musicID)
	if err != nil {
		if isDuplicate(err) {
			return apperr.New(apperr.Conflict, "Song already in watchlist")
		}
		return fmt.Errorf("failed to add song to watchlist: %w", err)
	}
	return nil
}

func (r *mysqlWatchlistRepository) RemoveSong(ctx context.Context, watchlistID, musicID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM watchlist_songs WHERE watchlist_id = ? AND music_id = ?", watchlistID, musicID)
	if err != nil {
		return fmt.Errorf("failed to remove song from watchlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.Conflict, "Song not in watchlist")
	}
	return nil
}

// ListContaining returns the caller's watchlists that contain musicID.
func (r *mysqlWatchlistRepository) ListContaining(ctx context.Context, userID, musicID string) ([]model.WatchlistInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT w.id, w.name FROM watchlists w
		 JOIN watchlist_songs s ON s.watchlist_id = w.id
		 WHERE w.created_by = ? AND s.music_id = ?`, userID, musicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlists containing %s: %w", musicID, err)
	}
	defer rows.Close()

	infos := []model.WatchlistInfo{}
	for rows.Next() {
		var info model.WatchlistInfo
		if err := rows.Scan(&info.ID, &info.Name); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
