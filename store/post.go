package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"inkwell/domain"
)

var (
	ErrNotFound   = errors.New("store: post not found")
	ErrSlugExists = errors.New("store: slug already exists")
)

type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// ListAll returns slug and title for every post, most recently updated first.
func (s *PostStore) ListAll(ctx context.Context) ([]domain.PostListing, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, title FROM posts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	all := make([]domain.PostListing, 0)
	for rows.Next() {
		var l domain.PostListing
		if err := rows.Scan(&l.Slug, &l.Title); err != nil {
			return nil, fmt.Errorf("scanning post listing: %w", err)
		}
		all = append(all, l)
	}

	return all, rows.Err()
}

func (s *PostStore) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	var p domain.Post
	row := s.db.QueryRowContext(ctx, `SELECT slug, title, markdown, created_at, updated_at FROM posts WHERE slug = $1`, slug)
	if err := row.Scan(&p.Slug, &p.Title, &p.Markdown, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("fetching post %q: %w", slug, err)
	}

	return p, nil
}

// Create inserts a new post. The slug must not be in use; a duplicate is a
// conflict, never a silent overwrite.
func (s *PostStore) Create(ctx context.Context, title, slug, markdown string) error {
	taken, err := s.slugTaken(ctx, slug)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugExists
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `INSERT INTO posts (slug, title, markdown, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		slug, title, markdown, now, now)
	if err != nil {
		return fmt.Errorf("inserting post %q: %w", slug, err)
	}

	return nil
}

// Update replaces the record identified by slug with the submitted fields.
// The new slug may differ from the old one, which re-keys the post.
func (s *PostStore) Update(ctx context.Context, slug, title, newSlug, markdown string) error {
	if newSlug != slug {
		taken, err := s.slugTaken(ctx, newSlug)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlugExists
		}
	}

	result, err := s.db.ExecContext(ctx, `UPDATE posts SET slug = $1, title = $2, markdown = $3, updated_at = $4 WHERE slug = $5`,
		newSlug, title, markdown, time.Now().UTC(), slug)
	if err != nil {
		return fmt.Errorf("updating post %q: %w", slug, err)
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

// Delete removes the post identified by slug. Deleting an unknown slug
// reports ErrNotFound rather than succeeding silently.
func (s *PostStore) Delete(ctx context.Context, slug string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("deleting post %q: %w", slug, err)
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

func (s *PostStore) slugTaken(ctx context.Context, slug string) (bool, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(slug) FROM posts WHERE slug = $1`, slug)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("checking slug %q: %w", slug, err)
	}

	return count != 0, nil
}
