package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

const mysqlErrDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL unique-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, email, password_hash, name, full_name, user_type, verification_status, is_approved, is_suspended, bio, profile_image_url, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var bio, imageURL sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.FullName,
		&user.UserType, &user.VerificationStatus, &user.IsApproved, &user.IsSuspended,
		&bio, &imageURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	user.Bio = bio.String
	user.ProfileImageURL = imageURL.String
	return user, nil
}

// Create adds a new user. A duplicate id or email yields a Conflict error.
func (r *mysqlUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, email, password_hash, name, full_name, user_type, verification_status, is_approved, is_suspended, bio, profile_image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.FullName,
		user.UserType, user.VerificationStatus, user.IsApproved, user.IsSuspended,
		user.Bio, user.ProfileImageURL)
	if err != nil {
		if isDuplicate(err) {
			return apperr.New(apperr.Conflict, "User already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *mysqlUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetByEmail retrieves a user by email address.
func (r *mysqlUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// Update overwrites the mutable columns of a user.
func (r *mysqlUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET password_hash = ?, full_name = ?, user_type = ?, verification_status = ?,
		is_approved = ?, is_suspended = ?, bio = ?, profile_image_url = ?, updated_at = NOW() WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		user.PasswordHash, user.FullName, user.UserType, user.VerificationStatus,
		user.IsApproved, user.IsSuspended, user.Bio, user.ProfileImageURL, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL also reports 0 when nothing changed; re-check existence.
		if _, err := r.GetByID(ctx, user.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a user by id.
func (r *mysqlUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "User not found")
	}
	return nil
}
