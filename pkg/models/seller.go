package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Seller types.
const (
	SellerTypeLibrary = "Library"
	SellerTypeSeller  = "Seller"
)

// Listing transaction types, in display order.
const (
	TransactionTypeFree   = "Free"
	TransactionTypeBorrow = "Borrow"
	TransactionTypeBuy    = "Buy"
)

const DefaultCurrency = "UZS"

type Seller struct {
	bun.BaseModel `bun:"table:sellers,alias:sl"`

	ID           string    `bun:",pk" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `bun:",nullzero" json:"name"`
	Type         string    `bun:",nullzero" json:"type"`
	Location     string    `json:"location"`
	LocationLink string    `json:"location_link"`
	WebsiteURL   *string   `json:"website_url"`
	PhoneNumber  *string   `json:"phone_number"`
	Instagram    *string   `json:"instagram"`
	Telegram     *string   `json:"telegram"`
	Facebook     *string   `json:"facebook"`
	ImageURL     *string   `json:"image_url"`
}

type SellerListing struct {
	bun.BaseModel `bun:"table:seller_listings,alias:lst"`

	ID              string    `bun:",pk" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	BookID          string    `bun:",nullzero" json:"book_id"`
	Book            *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	SellerID        string    `bun:",nullzero" json:"seller_id"`
	Seller          *Seller   `bun:"rel:belongs-to,join:seller_id=id" json:"seller,omitempty"`
	Price           float64   `json:"price"`
	Currency        string    `bun:",nullzero" json:"currency"`
	Available       bool      `json:"available"`
	TransactionType string    `bun:",nullzero" json:"transaction_type"`
	ProductLink     string    `json:"product_link"`
}
