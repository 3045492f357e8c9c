package sellers

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup mounts the public seller pages and returns the
// service so book routes can share it for listings.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) *Service {
	svc := NewService(db)
	h := &handler{sellers: svc}

	g.GET("/:id", h.retrieve)
	g.GET("/:id/books", h.books)

	return svc
}
