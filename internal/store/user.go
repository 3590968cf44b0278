package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/taskdesk/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, email, password_hash, first_name, last_name, phone, role, department, bio, created_at
		FROM users
		WHERE email = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&user.Department,
		&user.Bio,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// Create inserts a new user. A unique violation on email surfaces as
// ErrDuplicate so callers can report a conflict rather than a generic
// failure.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (types.User, error) {
	const query = `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`
	user := types.User{
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := r.db.QueryRowContext(ctx, query, email, passwordHash).Scan(&user.ID, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	return user, nil
}

// UpdatePassword overwrites the stored password hash for the given email.
func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $1 WHERE email = $2`
	result, err := r.db.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile fully overwrites the profile columns for the given
// email. Nil fields persist as NULL; there are no partial-patch
// semantics.
func (r *UserRepository) UpdateProfile(ctx context.Context, email string, profile types.Profile) error {
	const query = `
		UPDATE users
		SET first_name = $1,
			last_name = $2,
			phone = $3,
			role = $4,
			department = $5,
			bio = $6
		WHERE email = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		profile.FirstName,
		profile.LastName,
		profile.Phone,
		profile.Role,
		profile.Department,
		profile.Bio,
		email,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
