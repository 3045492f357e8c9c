package reviews

import (
	"github.com/kitobxon/kitobxon/pkg/cache"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers review mutation routes on a group that
// already authenticates its requests.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, c cache.Cache) *Service {
	reviewService := NewService(db, c)

	h := &handler{
		reviewService: reviewService,
	}

	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)

	return reviewService
}
