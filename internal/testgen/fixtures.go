package testgen

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// UserOptions configures CreateUser. Zero values get unique defaults.
type UserOptions struct {
	ExternalID string
	Email      string
	Name       *string
}

func CreateUser(t *testing.T, db bun.IDB, opts UserOptions) *models.User {
	t.Helper()
	id := uuid.New().String()
	if opts.ExternalID == "" {
		opts.ExternalID = "ext-" + id
	}
	if opts.Email == "" {
		opts.Email = id + "@example.com"
	}
	now := time.Now()
	user := &models.User{
		ID:         id,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExternalID: opts.ExternalID,
		Email:      opts.Email,
		Name:       opts.Name,
	}
	_, err := db.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)
	return user
}

// BookOptions configures CreateBook. Title and Author default to unique
// values.
type BookOptions struct {
	Title         string
	Author        string
	ISBN13        *string
	Genres        []string
	AverageRating *float64
}

func CreateBook(t *testing.T, db bun.IDB, opts BookOptions) *models.Book {
	t.Helper()
	id := uuid.New().String()
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("Book %s", id[:8])
	}
	if opts.Author == "" {
		opts.Author = "Anonymous"
	}
	if opts.Genres == nil {
		opts.Genres = []string{}
	}
	now := time.Now()
	book := &models.Book{
		ID:            id,
		CreatedAt:     now,
		UpdatedAt:     now,
		Title:         opts.Title,
		Author:        opts.Author,
		ISBN13:        opts.ISBN13,
		Genres:        opts.Genres,
		AverageRating: opts.AverageRating,
	}
	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)
	return book
}

func CreateShelf(t *testing.T, db bun.IDB, user *models.User, name string) *models.Shelf {
	t.Helper()
	now := time.Now()
	shelf := &models.Shelf{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    user.ID,
		Name:      name,
	}
	_, err := db.NewInsert().Model(shelf).Exec(context.Background())
	require.NoError(t, err)
	return shelf
}

func CreateBookEntry(t *testing.T, db bun.IDB, shelf *models.Shelf, book *models.Book) *models.BookEntry {
	t.Helper()
	entry := &models.BookEntry{
		ID:      uuid.New().String(),
		AddedAt: time.Now(),
		UserID:  shelf.UserID,
		BookID:  book.ID,
		ShelfID: shelf.ID,
	}
	_, err := db.NewInsert().Model(entry).Exec(context.Background())
	require.NoError(t, err)
	return entry
}

func CreateReview(t *testing.T, db bun.IDB, user *models.User, book *models.Book, rating int) *models.Review {
	t.Helper()
	now := time.Now()
	review := &models.Review{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    user.ID,
		BookID:    book.ID,
		Rating:    rating,
		Content:   fmt.Sprintf("Rated %d", rating),
	}
	_, err := db.NewInsert().Model(review).Exec(context.Background())
	require.NoError(t, err)
	return review
}

func CreateSeller(t *testing.T, db bun.IDB, name, sellerType string) *models.Seller {
	t.Helper()
	now := time.Now()
	seller := &models.Seller{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         name,
		Type:         sellerType,
		Location:     "Tashkent",
		LocationLink: "https://maps.example.com/" + name,
	}
	_, err := db.NewInsert().Model(seller).Exec(context.Background())
	require.NoError(t, err)
	return seller
}

func CreateListing(t *testing.T, db bun.IDB, seller *models.Seller, book *models.Book, transactionType string, price float64) *models.SellerListing {
	t.Helper()
	now := time.Now()
	listing := &models.SellerListing{
		ID:              uuid.New().String(),
		CreatedAt:       now,
		UpdatedAt:       now,
		BookID:          book.ID,
		SellerID:        seller.ID,
		Price:           price,
		Currency:        models.DefaultCurrency,
		Available:       true,
		TransactionType: transactionType,
		ProductLink:     "https://shop.example.com/" + book.ID,
	}
	_, err := db.NewInsert().Model(listing).Exec(context.Background())
	require.NoError(t, err)
	return listing
}
