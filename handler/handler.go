package handler

import (
	"context"

	"inkwell/domain"
)

// PostStore is the persistence contract the post handlers depend on.
// *store.PostStore satisfies it; tests substitute a fake.
type PostStore interface {
	ListAll(ctx context.Context) ([]domain.PostListing, error)
	GetBySlug(ctx context.Context, slug string) (domain.Post, error)
	Create(ctx context.Context, title, slug, markdown string) error
	Update(ctx context.Context, slug, title, newSlug, markdown string) error
	Delete(ctx context.Context, slug string) error
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (domain.User, string, error)
	Create(ctx context.Context, u domain.User, passwordHash string) error
}

type Handler struct {
	Posts        PostStore
	Users        UserStore
	JWTSecret    string
	AdminEmail   string
	EnableSignup bool
	Environment  string
}
