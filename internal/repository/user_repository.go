package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/arkana/auth-service/internal/model"
)

// UserRepo is the durable user record store backed by the `users` table.
// The auth core only ever patches `is_verified`, `hashed_password` and
// `updated_at`; record deletion is out of its hands.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,full_name,hashed_password,is_active,is_verified,created_at,updated_at"

// Create inserts a user with schema defaults (active, unverified) and
// returns its ID. The email is normalized to lower case before storage.
func (r *UserRepo) Create(ctx context.Context, email, fullName, hashedPassword string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, full_name, hashed_password) VALUES (?,?,?)",
		email, fullName, hashedPassword)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// SetVerified flips is_verified and stamps updated_at. Returns the number
// of rows touched so callers can detect a vanished record.
func (r *UserRepo) SetVerified(ctx context.Context, email string, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_verified=1, updated_at=? WHERE email=?",
		now, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetPassword overwrites the stored password hash and stamps updated_at.
func (r *UserRepo) SetPassword(ctx context.Context, email, hashedPassword string, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET hashed_password=?, updated_at=? WHERE email=?",
		hashedPassword, now, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u         model.User
		updatedAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.HashedPassword,
		&u.IsActive, &u.IsVerified, &u.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		u.UpdatedAt = &t
	}
	return u, nil
}
