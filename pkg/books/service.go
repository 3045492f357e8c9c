package books

import (
	"context"
	"database/sql"

	"github.com/kitobxon/kitobxon/pkg/cache"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// ListLimit caps the popular and category listings.
const ListLimit = 20

type Service struct {
	db    *bun.DB
	cache cache.Cache
}

// NewService returns a book service reading through c. A nil cache reads
// straight from the database.
func NewService(db *bun.DB, c cache.Cache) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{db, c}
}

func (svc *Service) RetrieveBook(ctx context.Context, id string) (*models.Book, error) {
	return cache.GetOrLoad(ctx, svc.cache, cache.KeyBook(id), func() (*models.Book, error) {
		book := &models.Book{}
		err := svc.db.NewSelect().
			Model(book).
			Where("b.id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, errcodes.NotFound("Book")
			}
			return nil, errors.WithStack(err)
		}
		return book, nil
	})
}

// ListPopular returns the highest rated books. Unrated books sort last.
func (svc *Service) ListPopular(ctx context.Context) ([]*models.Book, error) {
	return cache.GetOrLoad(ctx, svc.cache, cache.KeyPopularBooks, func() ([]*models.Book, error) {
		books := []*models.Book{}
		err := svc.ranked(svc.db.NewSelect().Model(&books)).Scan(ctx)
		return books, errors.WithStack(err)
	})
}

// ListByCategory returns the highest rated books tagged with genre.
func (svc *Service) ListByCategory(ctx context.Context, genre string) ([]*models.Book, error) {
	if !models.IsValidGenre(genre) {
		return nil, errcodes.ValidationError("Unknown category: " + genre)
	}
	return cache.GetOrLoad(ctx, svc.cache, cache.KeyCategory(genre), func() ([]*models.Book, error) {
		books := []*models.Book{}
		q := svc.db.NewSelect().
			Model(&books).
			Where("EXISTS (SELECT 1 FROM json_each(b.genres) WHERE json_each.value = ?)", genre)
		err := svc.ranked(q).Scan(ctx)
		return books, errors.WithStack(err)
	})
}

func (svc *Service) ranked(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		OrderExpr("b.average_rating IS NULL ASC").
		OrderExpr("b.average_rating DESC").
		Order("b.id ASC").
		Limit(ListLimit)
}
