package reviews

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kitobxon/kitobxon/pkg/cache"
	"github.com/kitobxon/kitobxon/pkg/database"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/htmlutil"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/kitobxon/kitobxon/pkg/users"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type Service struct {
	db    *bun.DB
	cache cache.Cache
}

// NewService returns a review service that invalidates c whenever a book's
// average rating changes. A nil cache disables invalidation.
func NewService(db *bun.DB, c cache.Cache) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{db, c}
}

// UserIDForExternalID resolves the acting user of an authenticated request.
func (svc *Service) UserIDForExternalID(ctx context.Context, externalID string) (string, error) {
	return users.ResolveID(ctx, svc.db, externalID)
}

type CreateReviewOptions struct {
	BookID  string
	UserID  string
	Rating  int
	Title   *string
	Content string
	// ActorUserID is the authenticated user making the request, if any. When
	// set it must match UserID.
	ActorUserID *string
}

func (svc *Service) CreateReview(ctx context.Context, opts CreateReviewOptions) (*models.Review, error) {
	if err := validateRating(opts.Rating); err != nil {
		return nil, err
	}
	content := htmlutil.PlainText(opts.Content)
	if content == "" {
		return nil, errcodes.ValidationError("content is required")
	}
	if opts.ActorUserID != nil && *opts.ActorUserID != opts.UserID {
		return nil, errcodes.Forbidden("Reviewing as another user")
	}

	review := &models.Review{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		userExists, err := tx.NewSelect().
			Model((*models.User)(nil)).
			Where("u.id = ?", opts.UserID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !userExists {
			return errcodes.NotAuthenticated("User not found.")
		}

		bookExists, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("b.id = ?", opts.BookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !bookExists {
			return errcodes.NotFound("Book")
		}

		reviewed, err := tx.NewSelect().
			Model((*models.Review)(nil)).
			Where("r.user_id = ?", opts.UserID).
			Where("r.book_id = ?", opts.BookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if reviewed {
			return errcodes.Conflict("You have already reviewed this book.")
		}

		now := timestamp()
		*review = models.Review{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
			UserID:    opts.UserID,
			BookID:    opts.BookID,
			Rating:    opts.Rating,
			Title:     normalizeTitle(opts.Title),
			Content:   content,
		}
		_, err = tx.NewInsert().Model(review).Exec(ctx)
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("You have already reviewed this book.")
		}
		if err != nil {
			return errors.WithStack(err)
		}

		return recomputeAverageRating(ctx, tx, opts.BookID)
	})
	if err != nil {
		return nil, err
	}

	svc.invalidate(ctx, review.BookID)
	return review, nil
}

// UpdateReviewOptions holds a partial update. Nil fields are left unchanged;
// an empty Title clears the title.
type UpdateReviewOptions struct {
	Rating      *int
	Title       *string
	Content     *string
	ActorUserID *string
}

func (svc *Service) UpdateReview(ctx context.Context, reviewID string, opts UpdateReviewOptions) (*models.Review, error) {
	if opts.Rating != nil {
		if err := validateRating(*opts.Rating); err != nil {
			return nil, err
		}
	}
	var content string
	if opts.Content != nil {
		content = htmlutil.PlainText(*opts.Content)
		if content == "" {
			return nil, errcodes.ValidationError("content can't be empty")
		}
	}

	review := &models.Review{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := findReview(ctx, tx, reviewID, review); err != nil {
			return err
		}
		if opts.ActorUserID != nil && *opts.ActorUserID != review.UserID {
			return errcodes.Forbidden("Editing another user's review")
		}

		columns := []string{"updated_at"}
		if opts.Rating != nil {
			review.Rating = *opts.Rating
			columns = append(columns, "rating")
		}
		if opts.Title != nil {
			review.Title = normalizeTitle(opts.Title)
			columns = append(columns, "title")
		}
		if opts.Content != nil {
			review.Content = content
			columns = append(columns, "content")
		}
		review.UpdatedAt = nextUpdatedAt(review.UpdatedAt)

		_, err := tx.NewUpdate().
			Model(review).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if opts.Rating != nil {
			return recomputeAverageRating(ctx, tx, review.BookID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.Rating != nil {
		svc.invalidate(ctx, review.BookID)
	}
	return review, nil
}

// DeleteReview removes a review. actorUserID, when set, must own it.
func (svc *Service) DeleteReview(ctx context.Context, reviewID string, actorUserID *string) error {
	review := &models.Review{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := findReview(ctx, tx, reviewID, review); err != nil {
			return err
		}
		if actorUserID != nil && *actorUserID != review.UserID {
			return errcodes.Forbidden("Deleting another user's review")
		}

		_, err := tx.NewDelete().
			Model(review).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return recomputeAverageRating(ctx, tx, review.BookID)
	})
	if err != nil {
		return err
	}

	svc.invalidate(ctx, review.BookID)
	return nil
}

// ListReviewsForBook returns a book's reviews, newest first, each with the
// reviewer's public profile.
func (svc *Service) ListReviewsForBook(ctx context.Context, bookID string) ([]*models.Review, error) {
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

	reviews := []*models.Review{}
	err = svc.db.NewSelect().
		Model(&reviews).
		Relation("User").
		Where("r.book_id = ?", bookID).
		Order("r.created_at DESC", "r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, review := range reviews {
		if review.User != nil {
			review.Reviewer = review.User.PublicProfile()
		}
	}
	return reviews, nil
}

// recomputeAverageRating sets the book's cached average to the mean of its
// reviews, or NULL when it has none.
func recomputeAverageRating(ctx context.Context, tx bun.Tx, bookID string) error {
	_, err := tx.NewUpdate().
		Model((*models.Book)(nil)).
		Set("average_rating = (SELECT AVG(rating) FROM reviews WHERE reviews.book_id = ?)", bookID).
		Where("id = ?", bookID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) invalidate(ctx context.Context, bookID string) {
	log := logger.FromContext(ctx)
	if err := svc.cache.Delete(ctx, cache.KeyPopularBooks, cache.KeyBook(bookID)); err != nil {
		log.Warn("failed to invalidate book cache", logger.Data{"book_id": bookID, "error": err.Error()})
	}
	if err := svc.cache.DeletePrefix(ctx, cache.CategoryPrefix()); err != nil {
		log.Warn("failed to invalidate category cache", logger.Data{"book_id": bookID, "error": err.Error()})
	}
}

func findReview(ctx context.Context, tx bun.Tx, reviewID string, review *models.Review) error {
	err := tx.NewSelect().
		Model(review).
		Where("r.id = ?", reviewID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return errcodes.NotFound("Review")
	}
	return errors.WithStack(err)
}

func validateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return errcodes.ValidationError("rating must be between 1 and 5")
	}
	return nil
}

func normalizeTitle(title *string) *string {
	if title == nil {
		return nil
	}
	trimmed := strings.Join(strings.Fields(htmlutil.PlainText(*title)), " ")
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// nextUpdatedAt returns the current time, or one microsecond past prev when
// the clock hasn't moved beyond it.
func nextUpdatedAt(prev time.Time) time.Time {
	now := timestamp()
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
