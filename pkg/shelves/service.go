package shelves

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kitobxon/kitobxon/pkg/database"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/kitobxon/kitobxon/pkg/users"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// MaxNameLength is the longest shelf name accepted, in characters.
const MaxNameLength = 100

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

type SetBookShelvesOptions struct {
	ExternalUserID string
	BookID         string
	ShelfIDs       []string
}

// SetBookShelvesResult describes the membership after reconciliation.
type SetBookShelvesResult struct {
	ShelfIDs []string
	Added    int
	Removed  int
}

// SetBookShelves makes the given shelves the complete set of the user's
// shelves holding the book. Entries on other shelves are removed, missing
// ones are added and matching ones are left untouched.
func (svc *Service) SetBookShelves(ctx context.Context, opts SetBookShelvesOptions) (*SetBookShelvesResult, error) {
	desired := uniqueSorted(opts.ShelfIDs)
	result := &SetBookShelvesResult{ShelfIDs: desired}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		userID, err := users.ResolveID(ctx, tx, opts.ExternalUserID)
		if err != nil {
			return err
		}

		if err := requireBook(ctx, tx, opts.BookID); err != nil {
			return err
		}

		if len(desired) > 0 {
			owned, err := tx.NewSelect().
				Model((*models.Shelf)(nil)).
				Where("s.user_id = ?", userID).
				Where("s.id IN (?)", bun.In(desired)).
				Count(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if owned != len(desired) {
				return errcodes.NotFound("Shelf")
			}
		}

		var current []*models.BookEntry
		err = tx.NewSelect().
			Model(&current).
			Where("be.user_id = ?", userID).
			Where("be.book_id = ?", opts.BookID).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		wanted := make(map[string]bool, len(desired))
		for _, id := range desired {
			wanted[id] = true
		}
		have := make(map[string]bool, len(current))
		toRemove := []string{}
		for _, entry := range current {
			have[entry.ShelfID] = true
			if !wanted[entry.ShelfID] {
				toRemove = append(toRemove, entry.ID)
			}
		}
		now := time.Now()
		toAdd := []*models.BookEntry{}
		for _, shelfID := range desired {
			if have[shelfID] {
				continue
			}
			toAdd = append(toAdd, &models.BookEntry{
				ID:      uuid.New().String(),
				AddedAt: now,
				UserID:  userID,
				BookID:  opts.BookID,
				ShelfID: shelfID,
			})
		}

		if len(toRemove) > 0 {
			_, err := tx.NewDelete().
				Model((*models.BookEntry)(nil)).
				Where("id IN (?)", bun.In(toRemove)).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		if len(toAdd) > 0 {
			_, err := tx.NewInsert().
				Model(&toAdd).
				Exec(ctx)
			if database.IsUniqueViolation(err) {
				return errcodes.Conflict("Shelf membership changed concurrently. Retry the request.")
			}
			if err != nil {
				return errors.WithStack(err)
			}
		}

		result.Added = len(toAdd)
		result.Removed = len(toRemove)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Added > 0 || result.Removed > 0 {
		logger.FromContext(ctx).Info("updated shelf membership", logger.Data{
			"book_id": opts.BookID,
			"added":   result.Added,
			"removed": result.Removed,
		})
	}
	return result, nil
}

// CreateShelf returns the user's shelf with the given name, creating it when
// it doesn't exist yet. The boolean reports whether a shelf was created.
func (svc *Service) CreateShelf(ctx context.Context, externalUserID, name string) (*models.Shelf, bool, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, false, err
	}

	shelf := &models.Shelf{}
	created := false
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		userID, err := users.ResolveID(ctx, tx, externalUserID)
		if err != nil {
			return err
		}

		found, err := findByName(ctx, tx, userID, name, shelf)
		if err != nil || found {
			return err
		}

		now := time.Now()
		*shelf = models.Shelf{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
			UserID:    userID,
			Name:      name,
		}
		_, err = tx.NewInsert().Model(shelf).Exec(ctx)
		if database.IsUniqueViolation(err) {
			// Another request created it first.
			found, err = findByName(ctx, tx, userID, name, shelf)
			if err != nil {
				return err
			}
			if !found {
				return errcodes.Conflict("Shelf was modified concurrently. Retry the request.")
			}
			return nil
		}
		if err != nil {
			return errors.WithStack(err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return shelf, created, nil
}

// RenameShelf renames one of the user's shelves. Shelves of other users are
// reported as missing.
func (svc *Service) RenameShelf(ctx context.Context, externalUserID, shelfID, name string) (*models.Shelf, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	shelf := &models.Shelf{}
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		userID, err := users.ResolveID(ctx, tx, externalUserID)
		if err != nil {
			return err
		}

		if err := findOwned(ctx, tx, userID, shelfID, shelf); err != nil {
			return err
		}
		if shelf.Name == name {
			return nil
		}

		taken, err := tx.NewSelect().
			Model((*models.Shelf)(nil)).
			Where("s.user_id = ?", userID).
			Where("s.name = ?", name).
			Where("s.id != ?", shelfID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if taken {
			return errcodes.Conflict("You already have a shelf with that name.")
		}

		shelf.Name = name
		shelf.UpdatedAt = time.Now()
		_, err = tx.NewUpdate().
			Model(shelf).
			Column("name", "updated_at").
			WherePK().
			Exec(ctx)
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("You already have a shelf with that name.")
		}
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}
	return shelf, nil
}

// DeleteShelf removes one of the user's shelves along with its entries.
func (svc *Service) DeleteShelf(ctx context.Context, externalUserID, shelfID string) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		userID, err := users.ResolveID(ctx, tx, externalUserID)
		if err != nil {
			return err
		}

		shelf := &models.Shelf{}
		if err := findOwned(ctx, tx, userID, shelfID, shelf); err != nil {
			return err
		}

		_, err = tx.NewDelete().
			Model((*models.BookEntry)(nil)).
			Where("shelf_id = ?", shelf.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().
			Model(shelf).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// ShelfSummary is a shelf with the number of books on it.
type ShelfSummary struct {
	ID        string    `bun:"id" json:"id"`
	Name      string    `bun:"name" json:"name"`
	BookCount int       `bun:"book_count" json:"book_count"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at" json:"updated_at"`
}

func (svc *Service) ListShelves(ctx context.Context, externalUserID string) ([]*ShelfSummary, error) {
	userID, err := users.ResolveID(ctx, svc.db, externalUserID)
	if err != nil {
		return nil, err
	}

	shelves := []*ShelfSummary{}
	err = svc.db.NewSelect().
		Model((*models.Shelf)(nil)).
		Column("s.id", "s.name", "s.created_at", "s.updated_at").
		ColumnExpr("(SELECT COUNT(*) FROM book_entries AS be WHERE be.shelf_id = s.id) AS book_count").
		Where("s.user_id = ?", userID).
		Order("s.name ASC").
		Scan(ctx, &shelves)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return shelves, nil
}

// ShelfWithBook is one of a user's shelves annotated with whether a given
// book is on it.
type ShelfWithBook struct {
	ID      string `bun:"id" json:"id"`
	Name    string `bun:"name" json:"name"`
	HasBook bool   `bun:"has_book" json:"has_book"`
}

// ListShelvesWithBook returns all of the user's shelves by name, flagging
// the ones holding bookID.
func (svc *Service) ListShelvesWithBook(ctx context.Context, externalUserID, bookID string) ([]*ShelfWithBook, error) {
	userID, err := users.ResolveID(ctx, svc.db, externalUserID)
	if err != nil {
		return nil, err
	}
	if err := requireBook(ctx, svc.db, bookID); err != nil {
		return nil, err
	}

	shelves := []*ShelfWithBook{}
	err = svc.db.NewSelect().
		Model((*models.Shelf)(nil)).
		Column("s.id", "s.name").
		ColumnExpr("EXISTS (SELECT 1 FROM book_entries AS be WHERE be.shelf_id = s.id AND be.book_id = ?) AS has_book", bookID).
		Where("s.user_id = ?", userID).
		Order("s.name ASC").
		Scan(ctx, &shelves)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return shelves, nil
}

// LibraryBook is a book in a user's library with the shelves holding it.
type LibraryBook struct {
	Book       *models.Book `json:"book"`
	ShelfIDs   []string     `json:"shelf_ids"`
	ShelfNames []string     `json:"shelf_names"`
	// AddedAt is when the book first landed on any of the user's shelves.
	AddedAt time.Time `json:"added_at"`
}

type ListLibraryBooksOptions struct {
	ExternalUserID string
	ShelfID        *string
}

// ListLibraryBooks returns every distinct book on the user's shelves, newest
// additions first. With ShelfID set only books on that shelf are returned,
// still listing all of the shelves each one is on.
func (svc *Service) ListLibraryBooks(ctx context.Context, opts ListLibraryBooksOptions) ([]*LibraryBook, error) {
	userID, err := users.ResolveID(ctx, svc.db, opts.ExternalUserID)
	if err != nil {
		return nil, err
	}

	if opts.ShelfID != nil {
		if err := findOwned(ctx, svc.db, userID, *opts.ShelfID, &models.Shelf{}); err != nil {
			return nil, err
		}
	}

	var entries []*models.BookEntry
	q := svc.db.NewSelect().
		Model(&entries).
		Relation("Book").
		Relation("Shelf").
		Where("be.user_id = ?", userID).
		Order("be.added_at ASC", "be.id ASC")
	if opts.ShelfID != nil {
		q = q.Where("be.book_id IN (?)", svc.db.NewSelect().
			Model((*models.BookEntry)(nil)).
			Column("book_id").
			Where("shelf_id = ?", *opts.ShelfID))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	byBook := map[string]*LibraryBook{}
	library := []*LibraryBook{}
	for _, entry := range entries {
		lb, ok := byBook[entry.BookID]
		if !ok {
			lb = &LibraryBook{Book: entry.Book, AddedAt: entry.AddedAt}
			byBook[entry.BookID] = lb
			library = append(library, lb)
		}
		lb.ShelfIDs = append(lb.ShelfIDs, entry.ShelfID)
		if entry.Shelf != nil {
			lb.ShelfNames = append(lb.ShelfNames, entry.Shelf.Name)
		}
	}
	for _, lb := range library {
		sort.Strings(lb.ShelfIDs)
		sort.Strings(lb.ShelfNames)
	}
	sort.SliceStable(library, func(i, j int) bool {
		if !library[i].AddedAt.Equal(library[j].AddedAt) {
			return library[i].AddedAt.After(library[j].AddedAt)
		}
		return library[i].Book.ID < library[j].Book.ID
	})
	return library, nil
}

// ListBookEntriesForBook returns every shelf entry for a book across all
// users, newest first, with each owner's public profile.
func (svc *Service) ListBookEntriesForBook(ctx context.Context, bookID string) ([]*models.BookEntry, error) {
	if err := requireBook(ctx, svc.db, bookID); err != nil {
		return nil, err
	}

	entries := []*models.BookEntry{}
	err := svc.db.NewSelect().
		Model(&entries).
		Relation("Shelf").
		Relation("User").
		Where("be.book_id = ?", bookID).
		Order("be.added_at DESC", "be.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, entry := range entries {
		if entry.User != nil {
			entry.Owner = entry.User.PublicProfile()
		}
	}
	return entries, nil
}

func findByName(ctx context.Context, db bun.IDB, userID, name string, shelf *models.Shelf) (bool, error) {
	err := db.NewSelect().
		Model(shelf).
		Where("s.user_id = ?", userID).
		Where("s.name = ?", name).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}

func findOwned(ctx context.Context, db bun.IDB, userID, shelfID string, shelf *models.Shelf) error {
	err := db.NewSelect().
		Model(shelf).
		Where("s.id = ?", shelfID).
		Where("s.user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return errcodes.NotFound("Shelf")
	}
	return errors.WithStack(err)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errcodes.ValidationError("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", errcodes.ValidationError("name must be at most 100 characters")
	}
	return name, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// requireBook returns NotFound when bookID has no row.
func requireBook(ctx context.Context, db bun.IDB, bookID string) error {
	exists, err := db.NewSelect().
		Model((*models.Book)(nil)).
		Where("b.id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Book")
	}
	return nil
}
