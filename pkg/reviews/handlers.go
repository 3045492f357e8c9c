package reviews

import (
	"net/http"

	"github.com/kitobxon/kitobxon/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	reviewService *Service
}

// actor returns the internal id of the authenticated user, or nil when the
// request carries no session.
func (h *handler) actor(c echo.Context) (*string, error) {
	externalID, ok := auth.SessionExternalUserID(c)
	if !ok {
		return nil, nil
	}
	id, err := h.reviewService.UserIDForExternalID(c.Request().Context(), externalID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateReviewPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	actor, err := h.actor(c)
	if err != nil {
		return errors.WithStack(err)
	}

	review, err := h.reviewService.CreateReview(ctx, CreateReviewOptions{
		BookID:      params.BookID,
		UserID:      params.UserID,
		Rating:      params.Rating,
		Title:       params.Title,
		Content:     params.Content,
		ActorUserID: actor,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, review))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateReviewPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	actor, err := h.actor(c)
	if err != nil {
		return errors.WithStack(err)
	}

	review, err := h.reviewService.UpdateReview(ctx, params.ReviewID, UpdateReviewOptions{
		Rating:      params.Rating,
		Title:       params.Title,
		Content:     params.Content,
		ActorUserID: actor,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, review))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	params := ReviewPath{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	actor, err := h.actor(c)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.reviewService.DeleteReview(ctx, params.ReviewID, actor); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"success": true}))
}
