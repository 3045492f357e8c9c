package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kitobxon/kitobxon/internal/testgen"
	"github.com/kitobxon/kitobxon/pkg/cache"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func averageRating(t *testing.T, db *bun.DB, bookID string) *float64 {
	t.Helper()
	book := &models.Book{}
	require.NoError(t, db.NewSelect().Model(book).Where("b.id = ?", bookID).Scan(context.Background()))
	return book.AverageRating
}

func TestService_CreateReview(t *testing.T) {
	ctx := context.Background()
	db := testgen.NewDB(t)
	svc := NewService(db, nil)
	user := testgen.CreateUser(t, db, testgen.UserOptions{})
	book := testgen.CreateBook(t, db, testgen.BookOptions{})

	review, err := svc.CreateReview(ctx, CreateReviewOptions{
		BookID:  book.ID,
		UserID:  user.ID,
		Rating:  5,
		Title:   pointerutil.String("  "),
		Content: " Great ",
	})
	require.NoError(t, err)
	assert.Equal(t, review.CreatedAt, review.UpdatedAt)
	assert.Equal(t, "Great", review.Content)
	assert.Nil(t, review.Title)

	t.Run("second review for the same book conflicts", func(t *testing.T) {
		_, err := svc.CreateReview(ctx, CreateReviewOptions{
			BookID: book.ID, UserID: user.ID, Rating: 1, Content: "Changed my mind",
		})
		assert.Equal(t, "conflict", errcodes.CodeOf(err))
		assert.Equal(t, 1, testgen.Count(t, db, "reviews", "user_id = ? AND book_id = ?", user.ID, book.ID))
	})

	t.Run("validates input before touching the store", func(t *testing.T) {
		_, err := svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: user.ID, Rating: 0, Content: "x"})
		assert.Equal(t, "validation_error", errcodes.CodeOf(err))
		_, err = svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: user.ID, Rating: 6, Content: "x"})
		assert.Equal(t, "validation_error", errcodes.CodeOf(err))
		_, err = svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: user.ID, Rating: 3, Content: "   "})
		assert.Equal(t, "validation_error", errcodes.CodeOf(err))
	})

	t.Run("markup is reduced to plain text", func(t *testing.T) {
		other := testgen.CreateBook(t, db, testgen.BookOptions{})
		review, err := svc.CreateReview(ctx, CreateReviewOptions{
			BookID:  other.ID,
			UserID:  user.ID,
			Rating:  4,
			Title:   pointerutil.String("<b>Must</b>   read"),
			Content: "<p>Loved it &amp; more</p><script>alert(1)</script>",
		})
		require.NoError(t, err)
		assert.Equal(t, "Loved it & more", review.Content)
		require.NotNil(t, review.Title)
		assert.Equal(t, "Must read", *review.Title)

		_, err = svc.CreateReview(ctx, CreateReviewOptions{
			BookID: testgen.CreateBook(t, db, testgen.BookOptions{}).ID, UserID: user.ID, Rating: 4, Content: "<p> </p>",
		})
		assert.Equal(t, "validation_error", errcodes.CodeOf(err))
	})

	t.Run("unknown user and book", func(t *testing.T) {
		_, err := svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: "missing", Rating: 3, Content: "x"})
		assert.Equal(t, "not_authenticated", errcodes.CodeOf(err))
		_, err = svc.CreateReview(ctx, CreateReviewOptions{BookID: "missing", UserID: user.ID, Rating: 3, Content: "x"})
		assert.True(t, errors.Is(err, errcodes.NotFound("Book")))
	})

	t.Run("cannot review as someone else", func(t *testing.T) {
		other := testgen.CreateUser(t, db, testgen.UserOptions{})
		_, err := svc.CreateReview(ctx, CreateReviewOptions{
			BookID: book.ID, UserID: user.ID, Rating: 3, Content: "x", ActorUserID: &other.ID,
		})
		assert.Equal(t, "forbidden", errcodes.CodeOf(err))
	})
}

func TestService_UpdateReview(t *testing.T) {
	ctx := context.Background()
	db := testgen.NewDB(t)
	svc := NewService(db, nil)
	user := testgen.CreateUser(t, db, testgen.UserOptions{})
	book := testgen.CreateBook(t, db, testgen.BookOptions{})

	review, err := svc.CreateReview(ctx, CreateReviewOptions{
		BookID: book.ID, UserID: user.ID, Rating: 5, Title: pointerutil.String("Loved it"), Content: "Great",
	})
	require.NoError(t, err)

	t.Run("leaves omitted fields alone", func(t *testing.T) {
		updated, err := svc.UpdateReview(ctx, review.ID, UpdateReviewOptions{Rating: pointerutil.Int(4)})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Rating)
		require.NotNil(t, updated.Title)
		assert.Equal(t, "Loved it", *updated.Title)
		assert.Equal(t, "Great", updated.Content)
		assert.True(t, updated.UpdatedAt.After(review.UpdatedAt))
		assert.True(t, updated.CreatedAt.Equal(review.CreatedAt))
	})

	t.Run("updated_at strictly increases on rapid updates", func(t *testing.T) {
		prev := review.UpdatedAt
		for i := 0; i < 5; i++ {
			updated, err := svc.UpdateReview(ctx, review.ID, UpdateReviewOptions{})
			require.NoError(t, err)
			assert.True(t, updated.UpdatedAt.After(prev), "update %d", i)
			prev = updated.UpdatedAt
		}
	})

	t.Run("empty title clears it", func(t *testing.T) {
		updated, err := svc.UpdateReview(ctx, review.ID, UpdateReviewOptions{Title: pointerutil.String("")})
		require.NoError(t, err)
		assert.Nil(t, updated.Title)
		assert.Equal(t, 1, testgen.Count(t, db, "reviews", "id = ? AND title IS NULL", review.ID))
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		_, err := svc.UpdateReview(ctx, review.ID, UpdateReviewOptions{Content: pointerutil.String(" ")})
		assert.Equal(t, "validation_error", errcodes.CodeOf(err))
	})

	t.Run("unknown review", func(t *testing.T) {
		_, err := svc.UpdateReview(ctx, "missing", UpdateReviewOptions{Rating: pointerutil.Int(3)})
		assert.True(t, errors.Is(err, errcodes.NotFound("Review")))
	})

	t.Run("only the author may edit", func(t *testing.T) {
		other := testgen.CreateUser(t, db, testgen.UserOptions{})
		_, err := svc.UpdateReview(ctx, review.ID, UpdateReviewOptions{Rating: pointerutil.Int(1), ActorUserID: &other.ID})
		assert.Equal(t, "forbidden", errcodes.CodeOf(err))
		err = svc.DeleteReview(ctx, review.ID, &other.ID)
		assert.Equal(t, "forbidden", errcodes.CodeOf(err))
	})
}

func TestService_DeleteAndRecreate(t *testing.T) {
	ctx := context.Background()
	db := testgen.NewDB(t)
	svc := NewService(db, nil)
	user := testgen.CreateUser(t, db, testgen.UserOptions{})
	book := testgen.CreateBook(t, db, testgen.BookOptions{})

	review, err := svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: user.ID, Rating: 5, Content: "Great"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReview(ctx, review.ID, nil))
	assert.Equal(t, 0, testgen.Count(t, db, "reviews", "id = ?", review.ID))
	assert.Nil(t, averageRating(t, db, book.ID))

	err = svc.DeleteReview(ctx, review.ID, nil)
	assert.True(t, errors.Is(err, errcodes.NotFound("Review")))

	again, err := svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: user.ID, Rating: 3, Content: "Second look"})
	require.NoError(t, err)
	assert.NotEqual(t, review.ID, again.ID)
}

func TestService_AverageRating(t *testing.T) {
	ctx := context.Background()
	db := testgen.NewDB(t)
	svc := NewService(db, nil)
	book := testgen.CreateBook(t, db, testgen.BookOptions{})
	alice := testgen.CreateUser(t, db, testgen.UserOptions{})
	bob := testgen.CreateUser(t, db, testgen.UserOptions{})

	assert.Nil(t, averageRating(t, db, book.ID))

	r1, err := svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: alice.ID, Rating: 5, Content: "a"})
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: bob.ID, Rating: 2, Content: "b"})
	require.NoError(t, err)
	avg := averageRating(t, db, book.ID)
	require.NotNil(t, avg)
	assert.InDelta(t, 3.5, *avg, 0.0001)

	_, err = svc.UpdateReview(ctx, r1.ID, UpdateReviewOptions{Rating: pointerutil.Int(4)})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, *averageRating(t, db, book.ID), 0.0001)

	require.NoError(t, svc.DeleteReview(ctx, r1.ID, nil))
	assert.InDelta(t, 2.0, *averageRating(t, db, book.ID), 0.0001)
}

func TestService_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := cache.NewRedisCache(mr.Addr(), "", time.Minute)
	db := testgen.NewDB(t)
	svc := NewService(db, c)
	user := testgen.CreateUser(t, db, testgen.UserOptions{})
	book := testgen.CreateBook(t, db, testgen.BookOptions{Genres: []string{models.GenreFantasy}})

	require.NoError(t, c.Set(ctx, cache.KeyPopularBooks, []string{"stale"}))
	require.NoError(t, c.Set(ctx, cache.KeyBook(book.ID), "stale"))
	require.NoError(t, c.Set(ctx, cache.KeyCategory(models.GenreFantasy), []string{"stale"}))

	_, err := svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: user.ID, Rating: 4, Content: "Nice"})
	require.NoError(t, err)

	for _, key := range []string{cache.KeyPopularBooks, cache.KeyBook(book.ID), cache.KeyCategory(models.GenreFantasy)} {
		var dest interface{}
		found, err := c.Get(ctx, key, &dest)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
}

func TestService_ListReviewsForBook(t *testing.T) {
	ctx := context.Background()
	db := testgen.NewDB(t)
	svc := NewService(db, nil)
	book := testgen.CreateBook(t, db, testgen.BookOptions{})
	alice := testgen.CreateUser(t, db, testgen.UserOptions{Name: pointerutil.String("Alice")})
	bob := testgen.CreateUser(t, db, testgen.UserOptions{Name: pointerutil.String("Bob")})

	_, err := svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: alice.ID, Rating: 4, Content: "first"})
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, CreateReviewOptions{BookID: book.ID, UserID: bob.ID, Rating: 2, Content: "second"})
	require.NoError(t, err)

	reviews, err := svc.ListReviewsForBook(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "second", reviews[0].Content)
	require.NotNil(t, reviews[0].Reviewer)
	assert.Equal(t, "Bob", *reviews[0].Reviewer.Name)
	assert.Equal(t, bob.ExternalID, reviews[0].Reviewer.ExternalID)

	_, err = svc.ListReviewsForBook(ctx, "missing")
	assert.True(t, errors.Is(err, errcodes.NotFound("Book")))
}
