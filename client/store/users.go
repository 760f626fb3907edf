package store

import (
	"context"
	"database/sql"
	"time"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

const userColumns = `id, email, password_hash, name, full_name, user_type, verification_status,
	is_approved, is_suspended, bio, profile_image_url, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.FullName, &u.UserType,
		&u.VerificationStatus, &u.IsApproved, &u.IsSuspended, &u.Bio,
		&u.ProfileImageURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read user", err)
	}
	return &u, nil
}

// SaveUser inserts or refreshes a user row. The id decides identity so remote
// mirrors overwrite the cached copy cleanly.
func (s *Store) SaveUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			password_hash = CASE WHEN excluded.password_hash != '' THEN excluded.password_hash ELSE users.password_hash END,
			name = excluded.name,
			full_name = excluded.full_name,
			user_type = excluded.user_type,
			verification_status = excluded.verification_status,
			is_approved = excluded.is_approved,
			is_suspended = excluded.is_suspended,
			bio = excluded.bio,
			profile_image_url = excluded.profile_image_url,
			updated_at = excluded.updated_at`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.FullName, u.UserType,
		u.VerificationStatus, u.IsApproved, u.IsSuspended, u.Bio,
		u.ProfileImageURL, u.CreatedAt, u.UpdatedAt,
	)
	if isDuplicate(err) {
		return apperr.New(apperr.Conflict, "User already exists")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to save user", err)
	}
	return nil
}

// UserByID returns the cached user with the given id.
func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// UserByEmail returns the cached user with the given email. Used for offline
// login.
func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// DeleteUser removes a user and their play history.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM play_history WHERE user_id = ?`, id); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete play history", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "User not found")
	}
	return tx.Commit()
}

// Follow records a directed follow edge. Already-present edges are a
// conflict, matching the remote behavior.
func (s *Store) Follow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
		followerID, followingID, time.Now().UTC(),
	)
	if isDuplicate(err) {
		return apperr.New(apperr.Conflict, "Already following this user")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to save follow", err)
	}
	return nil
}

// Unfollow removes a follow edge.
func (s *Store) Unfollow(ctx context.Context, followerID, followingID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID,
	)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete follow", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Not following this user")
	}
	return nil
}

// Following lists the ids the user follows.
func (s *Store) Following(ctx context.Context, followerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT following_id FROM follows WHERE follower_id = ? ORDER BY created_at`,
		followerID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list follows", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to read follow", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
