package search

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	books *Service
}

// search answers the catalog search box. A blank query yields an empty list
// rather than an error.
func (h *handler) search(c echo.Context) error {
	var q SearchQuery
	if err := c.Bind(&q); err != nil {
		return errors.WithStack(err)
	}

	found, err := h.books.SearchBooks(c.Request().Context(), q.Query, q.Limit)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"results": found}))
}
