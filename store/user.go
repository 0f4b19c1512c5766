package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"inkwell/domain"
)

var ErrUsernameTaken = errors.New("store: username already taken")

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// GetByUsername returns the user and their bcrypt password hash.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (domain.User, string, error) {
	var u domain.User
	var hash string
	row := s.db.QueryRowContext(ctx, `SELECT id, username, email, password FROM users WHERE username = $1`, username)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, "", ErrNotFound
		}
		return u, "", fmt.Errorf("fetching user %q: %w", username, err)
	}

	return u, hash, nil
}

func (s *UserStore) Create(ctx context.Context, u domain.User, passwordHash string) error {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(username) FROM users WHERE username = $1`, u.Username)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("checking username %q: %w", u.Username, err)
	}
	if count != 0 {
		return ErrUsernameTaken
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, username, email, password, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Username, u.Email, passwordHash, now, now)
	if err != nil {
		return fmt.Errorf("inserting user %q: %w", u.Username, err)
	}

	return nil
}
