package domain

import (
	"time"
)

// Post is one blog entry, keyed by its URL slug.
type Post struct {
	Slug      string
	Title     string
	Markdown  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostListing carries the fields needed to link to a post from the admin
// navigation without shipping its whole body.
type PostListing struct {
	Slug  string
	Title string
}
