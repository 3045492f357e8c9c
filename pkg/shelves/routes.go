package shelves

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers shelf routes on a group that already
// authenticates its requests.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) *Service {
	shelfService := NewService(db)

	h := &handler{
		shelfService: shelfService,
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/library", h.library)
	g.GET("/books/:bookId", h.listWithBook)
	g.PUT("/books/:bookId", h.setBookShelves)
	g.PATCH("/:id", h.rename)
	g.DELETE("/:id", h.delete)

	return shelfService
}
