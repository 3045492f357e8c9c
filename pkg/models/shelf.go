package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Shelf struct {
	bun.BaseModel `bun:"table:shelves,alias:s"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `bun:",nullzero" json:"user_id"`
	User      *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Name      string    `bun:",nullzero" json:"name"`
}

// BookEntry records that a book sits on one of a user's shelves.
type BookEntry struct {
	bun.BaseModel `bun:"table:book_entries,alias:be"`

	ID      string    `bun:",pk" json:"id"`
	AddedAt time.Time `json:"added_at"`
	UserID  string    `bun:",nullzero" json:"user_id"`
	User    *User     `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	BookID  string    `bun:",nullzero" json:"book_id"`
	Book    *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	ShelfID string    `bun:",nullzero" json:"shelf_id"`
	Shelf   *Shelf    `bun:"rel:belongs-to,join:shelf_id=id" json:"shelf,omitempty"`

	// Owner is filled from User when entries are listed for a book.
	Owner *PublicProfile `bun:"-" json:"user,omitempty"`
}
