package sellers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	sellers *Service
}

func (h *handler) retrieve(c echo.Context) error {
	params := SellerPath{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	seller, err := h.sellers.RetrieveSeller(c.Request().Context(), params.SellerID)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, seller))
}

// books lists what a seller stocks, each book once however many listings it
// has.
func (h *handler) books(c echo.Context) error {
	params := SellerPath{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	stocked, err := h.sellers.ListBooksForSeller(c.Request().Context(), params.SellerID)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"books": stocked}))
}
