package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `bun:",nullzero" json:"user_id"`
	User      *User     `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	BookID    string    `bun:",nullzero" json:"book_id"`
	Rating    int       `json:"rating"`
	Title     *string   `json:"title"`
	Content   string    `bun:",nullzero" json:"content"`

	// Reviewer is filled from User when reviews are listed for a book.
	Reviewer *PublicProfile `bun:"-" json:"user,omitempty"`
}
