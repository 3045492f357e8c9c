package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              string     `bun:",pk" json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Title           string     `bun:",nullzero" json:"title"`
	Author          string     `bun:",nullzero" json:"author"`
	ISBN10          *string    `bun:"isbn10" json:"isbn10"`
	ISBN13          *string    `bun:"isbn13" json:"isbn13"`
	Description     *string    `json:"description"`
	CoverImageURL   *string    `json:"cover_image_url"`
	PublicationDate *time.Time `json:"publication_date"`
	Publisher       *string    `json:"publisher"`
	PageCount       *int       `json:"page_count"`
	Genres          []string   `bun:",notnull" json:"genres"`
	AverageRating   *float64   `json:"average_rating"`
}
