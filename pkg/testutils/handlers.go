package testutils

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kitobxon/kitobxon/pkg/auth"
	"github.com/kitobxon/kitobxon/pkg/cache"
	"github.com/kitobxon/kitobxon/pkg/database"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/htmlutil"
	"github.com/kitobxon/kitobxon/pkg/identifiers"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/kitobxon/kitobxon/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type handler struct {
	db          *bun.DB
	cache       cache.Cache
	verifier    *auth.Verifier
	userService *users.Service
}

// createUser registers a user the way the first authenticated sync would.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.SyncUser(ctx, users.SyncUserOptions{
		ExternalID: params.ExternalUserID,
		Email:      params.Email,
		Name:       params.Name,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, user))
}

// createToken mints a bearer token for external_user_id.
// POST /test/tokens.
func (h *handler) createToken(c echo.Context) error {
	if h.verifier == nil {
		return errcodes.ServiceUnavailable("Token verification is disabled.")
	}

	params := CreateTokenPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	claims := auth.Claims{
		Email:        params.Email,
		UserMetadata: auth.UserMetadata{FullName: params.Name},
	}
	claims.Subject = params.ExternalUserID
	token, err := h.verifier.IssueToken(claims)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, echo.Map{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(auth.TokenExpiry.Seconds()),
	}))
}

// createBook adds a catalog book.
// POST /test/books.
func (h *handler) createBook(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.ISBN10 != nil {
		isbn, kind := identifiers.ParseISBN(*params.ISBN10)
		if kind != identifiers.KindISBN10 {
			return errcodes.ValidationError("isbn10 is not a valid ISBN-10.")
		}
		params.ISBN10 = &isbn
	}
	if params.ISBN13 != nil {
		isbn, kind := identifiers.ParseISBN(*params.ISBN13)
		if kind != identifiers.KindISBN13 {
			return errcodes.ValidationError("isbn13 is not a valid ISBN-13.")
		}
		params.ISBN13 = &isbn
	}
	if params.Description != nil {
		description := htmlutil.PlainText(*params.Description)
		params.Description = &description
	}
	if params.Genres == nil {
		params.Genres = []string{}
	}
	var published *time.Time
	if params.Published != nil && *params.Published != "" {
		d, err := time.Parse(time.DateOnly, *params.Published)
		if err != nil {
			return errcodes.ValidationError(`"publication_date" is not a real date`)
		}
		published = &d
	}

	now := time.Now()
	book := &models.Book{
		ID:              uuid.New().String(),
		CreatedAt:       now,
		UpdatedAt:       now,
		Title:           params.Title,
		Author:          params.Author,
		ISBN10:          params.ISBN10,
		ISBN13:          params.ISBN13,
		Description:     params.Description,
		CoverImageURL:   params.CoverImageURL,
		Publisher:       params.Publisher,
		PageCount:       params.PageCount,
		PublicationDate: published,
		Genres:          params.Genres,
	}
	if _, err := h.db.NewInsert().Model(book).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("A book with this ISBN already exists.")
		}
		return errors.WithStack(err)
	}

	h.invalidateLists(ctx)

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

// createSeller adds a seller or library.
// POST /test/sellers.
func (h *handler) createSeller(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateSellerPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	seller := &models.Seller{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         params.Name,
		Type:         params.Type,
		Location:     params.Location,
		LocationLink: params.LocationLink,
		WebsiteURL:   params.WebsiteURL,
		PhoneNumber:  params.PhoneNumber,
		Telegram:     params.Telegram,
	}
	if _, err := h.db.NewInsert().Model(seller).Exec(ctx); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, seller))
}

// createListing offers a book at a seller.
// POST /test/listings.
func (h *handler) createListing(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateListingPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.Currency == "" {
		params.Currency = models.DefaultCurrency
	}
	available := true
	if params.Available != nil {
		available = *params.Available
	}

	now := time.Now()
	listing := &models.SellerListing{
		ID:              uuid.New().String(),
		CreatedAt:       now,
		UpdatedAt:       now,
		BookID:          params.BookID,
		SellerID:        params.SellerID,
		Price:           params.Price,
		Currency:        params.Currency,
		Available:       available,
		TransactionType: params.TransactionType,
		ProductLink:     params.ProductLink,
	}
	if _, err := h.db.NewInsert().Model(listing).Exec(ctx); err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.NotFound("Book or seller")
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, listing))
}

// reset deletes every row, children first.
// DELETE /test/data.
func (h *handler) reset(c echo.Context) error {
	ctx := c.Request().Context()

	tables := []interface{}{
		(*models.BookEntry)(nil),
		(*models.Shelf)(nil),
		(*models.Review)(nil),
		(*models.SellerListing)(nil),
		(*models.Seller)(nil),
		(*models.Book)(nil),
		(*models.User)(nil),
	}
	deleted := int64(0)
	err := h.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range tables {
			res, err := tx.NewDelete().Model(model).Where("1=1").Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			n, _ := res.RowsAffected()
			deleted += n
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.invalidateLists(ctx)

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"deleted": deleted}))
}

func (h *handler) invalidateLists(ctx context.Context) {
	log := logger.FromContext(ctx)
	if err := h.cache.Delete(ctx, cache.KeyPopularBooks); err != nil {
		log.Warn("failed to invalidate popular books", logger.Data{"error": err.Error()})
	}
	if err := h.cache.DeletePrefix(ctx, cache.CategoryPrefix()); err != nil {
		log.Warn("failed to invalidate categories", logger.Data{"error": err.Error()})
	}
}
