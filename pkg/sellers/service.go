package sellers

import (
	"context"
	"database/sql"

	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveSeller(ctx context.Context, id string) (*models.Seller, error) {
	seller := &models.Seller{}
	err := svc.db.NewSelect().
		Model(seller).
		Where("sl.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Seller")
		}
		return nil, errors.WithStack(err)
	}
	return seller, nil
}

// ListListingsForBook returns a book's listings with their sellers. Free
// listings come first, then borrowable ones, then those for sale, each group
// cheapest first.
func (svc *Service) ListListingsForBook(ctx context.Context, bookID string) ([]*models.SellerListing, error) {
	exists, err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("b.id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !exists {
		return nil, errcodes.NotFound("Book")
	}

	listings := []*models.SellerListing{}
	err = svc.db.NewSelect().
		Model(&listings).
		Relation("Seller").
		Where("lst.book_id = ?", bookID).
		OrderExpr("CASE lst.transaction_type WHEN ? THEN 1 WHEN ? THEN 2 WHEN ? THEN 3 ELSE 4 END ASC",
			models.TransactionTypeFree, models.TransactionTypeBorrow, models.TransactionTypeBuy).
		Order("lst.price ASC", "lst.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return listings, nil
}

// ListBooksForSeller returns the distinct books a seller has listings for,
// ordered by title.
func (svc *Service) ListBooksForSeller(ctx context.Context, sellerID string) ([]*models.Book, error) {
	if _, err := svc.RetrieveSeller(ctx, sellerID); err != nil {
		return nil, err
	}

	books := []*models.Book{}
	err := svc.db.NewSelect().
		Model(&books).
		Where("b.id IN (?)", svc.db.NewSelect().
			Model((*models.SellerListing)(nil)).
			Column("book_id").
			Where("seller_id = ?", sellerID)).
		Order("b.title ASC", "b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}
