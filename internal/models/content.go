package models

import "time"

// ContentKind groups portal pages.
type ContentKind string

const (
	ContentKindNews  ContentKind = "news"
	ContentKindGuide ContentKind = "guide"
	ContentKindFAQ   ContentKind = "faq"
)

// Valid reports whether k is a known kind.
func (k ContentKind) Valid() bool {
	switch k {
	case ContentKindNews, ContentKindGuide, ContentKindFAQ:
		return true
	default:
		return false
	}
}

// Content is a news item, guide or FAQ entry.
type Content struct {
	ID          string      `db:"id" json:"id"`
	Kind        ContentKind `db:"kind" json:"kind"`
	Slug        string      `db:"slug" json:"slug"`
	Title       string      `db:"title" json:"title"`
	Body        string      `db:"body" json:"body"`
	Published   bool        `db:"published" json:"published"`
	PublishedAt *time.Time  `db:"published_at" json:"published_at,omitempty"`
	CreatedBy   string      `db:"created_by" json:"created_by"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// ContentFilter allows listing content.
type ContentFilter struct {
	Kind          ContentKind
	PublishedOnly bool
	Page          int
	PageSize      int
}
