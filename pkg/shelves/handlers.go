package shelves

import (
	"net/http"

	"github.com/kitobxon/kitobxon/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	shelfService *Service
}

func (h *handler) setBookShelves(c echo.Context) error {
	ctx := c.Request().Context()

	params := SetBookShelvesPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	externalUserID, err := auth.ResolveExternalUserID(c, params.ExternalUserID)
	if err != nil {
		return errors.WithStack(err)
	}

	result, err := h.shelfService.SetBookShelves(ctx, SetBookShelvesOptions{
		ExternalUserID: externalUserID,
		BookID:         params.BookID,
		ShelfIDs:       params.ShelfIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"shelf_ids": result.ShelfIDs}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateShelfPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	externalUserID, err := auth.ResolveExternalUserID(c, params.ExternalUserID)
	if err != nil {
		return errors.WithStack(err)
	}

	shelf, created, err := h.shelfService.CreateShelf(ctx, externalUserID, params.Name)
	if err != nil {
		return errors.WithStack(err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return errors.WithStack(c.JSON(status, echo.Map{"shelf": echo.Map{"id": shelf.ID, "name": shelf.Name}}))
}

func (h *handler) rename(c echo.Context) error {
	ctx := c.Request().Context()

	params := RenameShelfPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	externalUserID, err := auth.ResolveExternalUserID(c, params.ExternalUserID)
	if err != nil {
		return errors.WithStack(err)
	}

	shelf, err := h.shelfService.RenameShelf(ctx, externalUserID, params.ShelfID, params.Name)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, shelf))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	params := ShelfQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	externalUserID, err := auth.ResolveExternalUserID(c, params.ExternalUserID)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.shelfService.DeleteShelf(ctx, externalUserID, params.ShelfID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := UserQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	externalUserID, err := auth.ResolveExternalUserID(c, params.ExternalUserID)
	if err != nil {
		return errors.WithStack(err)
	}

	shelves, err := h.shelfService.ListShelves(ctx, externalUserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"shelves": shelves}))
}

func (h *handler) listWithBook(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookShelvesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	externalUserID, err := auth.ResolveExternalUserID(c, params.ExternalUserID)
	if err != nil {
		return errors.WithStack(err)
	}

	shelves, err := h.shelfService.ListShelvesWithBook(ctx, externalUserID, params.BookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"shelves": shelves}))
}

func (h *handler) library(c echo.Context) error {
	ctx := c.Request().Context()

	params := LibraryQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	externalUserID, err := auth.ResolveExternalUserID(c, params.ExternalUserID)
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.shelfService.ListLibraryBooks(ctx, ListLibraryBooksOptions{
		ExternalUserID: externalUserID,
		ShelfID:        params.ShelfID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"books": books}))
}
