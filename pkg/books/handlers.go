package books

import (
	"net/http"
	"net/url"

	"github.com/kitobxon/kitobxon/pkg/reviews"
	"github.com/kitobxon/kitobxon/pkg/sellers"
	"github.com/kitobxon/kitobxon/pkg/shelves"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	bookService   *Service
	reviewService *reviews.Service
	shelfService  *shelves.Service
	sellerService *sellers.Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPath{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, params.BookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) popular(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListPopular(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"books": books}))
}

func (h *handler) category(c echo.Context) error {
	ctx := c.Request().Context()

	genre, err := url.PathUnescape(c.Param("category"))
	if err != nil {
		genre = c.Param("category")
	}

	books, err := h.bookService.ListByCategory(ctx, genre)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"books": books}))
}

func (h *handler) reviews(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPath{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reviews, err := h.reviewService.ListReviewsForBook(ctx, params.BookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"reviews": reviews}))
}

func (h *handler) entries(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPath{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	entries, err := h.shelfService.ListBookEntriesForBook(ctx, params.BookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"entries": entries}))
}

func (h *handler) listings(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPath{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	listings, err := h.sellerService.ListListingsForBook(ctx, params.BookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"listings": listings}))
}
