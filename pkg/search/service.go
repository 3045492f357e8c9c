package search

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

const (
	DefaultLimit = 5
	MaxLimit     = 50
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Result is a book matched by a search.
type Result struct {
	ID            string  `bun:"id" json:"id"`
	Title         string  `bun:"title" json:"title"`
	Author        string  `bun:"author" json:"author"`
	CoverImageURL *string `bun:"cover_image_url" json:"cover_image_url"`
}

// SearchBooks finds books whose title or author words start with the query.
// An exact ISBN match is listed first. Limits outside 1..MaxLimit fall back to
// DefaultLimit or MaxLimit.
func (svc *Service) SearchBooks(ctx context.Context, query string, limit int) ([]Result, error) {
	results := []Result{}
	ftsQuery := BuildPrefixQuery(query)
	if ftsQuery == "" {
		return results, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	seen := map[string]bool{}
	if isbns := isbnCandidates(query); len(isbns) > 0 {
		err := svc.db.NewSelect().
			TableExpr("books AS b").
			ColumnExpr("b.id, b.title, b.author, b.cover_image_url").
			Where("b.isbn13 IN (?) OR b.isbn10 IN (?)", bun.In(isbns), bun.In(isbns)).
			OrderExpr("b.id ASC").
			Limit(limit).
			Scan(ctx, &results)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		for _, r := range results {
			seen[r.ID] = true
		}
	}

	remaining := limit - len(results)
	if remaining <= 0 {
		return results, nil
	}

	matches := []Result{}
	err := svc.db.NewSelect().
		TableExpr("books_fts").
		ColumnExpr("b.id, b.title, b.author, b.cover_image_url").
		Join("JOIN books AS b ON b.id = books_fts.book_id").
		Where("books_fts MATCH ?", ftsQuery).
		OrderExpr("rank, b.id").
		Limit(remaining + len(seen)).
		Scan(ctx, &matches)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, r := range matches {
		if seen[r.ID] || len(results) >= limit {
			continue
		}
		results = append(results, r)
		seen[r.ID] = true
	}
	return results, nil
}

// Reindex rebuilds the search index from the books table and returns the
// number of indexed books. The triggers keep the index current, so this is
// only needed after bulk loads that bypass them.
func (svc *Service) Reindex(ctx context.Context) (int, error) {
	var indexed int64
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM books_fts"); err != nil {
			return errors.WithStack(err)
		}
		res, err := tx.ExecContext(ctx, "INSERT INTO books_fts (book_id, title, author) SELECT id, title, author FROM books")
		if err != nil {
			return errors.WithStack(err)
		}
		indexed, err = res.RowsAffected()
		return errors.WithStack(err)
	})
	if err != nil {
		return 0, err
	}
	return int(indexed), nil
}
