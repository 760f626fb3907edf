package repository

import (
	"context"
	"database/sql"
	"fmt"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

// FollowRepository manages the directed follower graph.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
	Followers(ctx context.Context, userID string) ([]*model.User, error)
	Following(ctx context.Context, userID string) ([]*model.User, error)
}

type mysqlFollowRepository struct {
	db *sql.DB
}

// NewMySQLFollowRepository creates a new mysqlFollowRepository.
func NewMySQLFollowRepository(db *sql.DB) FollowRepository {
	return &mysqlFollowRepository{db: db}
}

// Create adds a follow edge. Following twice is a Conflict.
func (r *mysqlFollowRepository) Create(ctx context.Context, followerID, followingID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO follows (follower_id, following_id) VALUES (?, ?)", followerID, followingID)
	if err != nil {
		if isDuplicate(err) {
			return apperr.New(apperr.Conflict, "Already following this user")
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

// Delete removes a follow edge. Unfollowing someone not followed is NotFound.
func (r *mysqlFollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM follows WHERE follower_id = ? AND following_id = ?", followerID, followingID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Not following this user")
	}
	return nil
}

func (r *mysqlFollowRepository) Followers(ctx context.Context, userID string) ([]*model.User, error) {
	return r.edgeUsers(ctx,
		`SELECT u.id, u.email, u.name, u.full_name, u.user_type, u.verification_status, u.profile_image_url
		 FROM follows f JOIN users u ON u.id = f.follower_id WHERE f.following_id = ?`, userID)
}

func (r *mysqlFollowRepository) Following(ctx context.Context, userID string) ([]*model.User, error) {
	return r.edgeUsers(ctx,
		`SELECT u.id, u.email, u.name, u.full_name, u.user_type, u.verification_status, u.profile_image_url
		 FROM follows f JOIN users u ON u.id = f.following_id WHERE f.follower_id = ?`, userID)
}

func (r *mysqlFollowRepository) edgeUsers(ctx context.Context, query, userID string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow edges: %w", err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u := &model.User{}
		var imageURL sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.FullName, &u.UserType, &u.VerificationStatus, &imageURL); err != nil {
			return nil, fmt.Errorf("failed to scan follow user: %w", err)
		}
		u.ProfileImageURL = imageURL.String
		users = append(users, u)
	}
	return users, rows.Err()
}
