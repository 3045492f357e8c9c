package books

import (
	"github.com/kitobxon/kitobxon/pkg/cache"
	"github.com/kitobxon/kitobxon/pkg/reviews"
	"github.com/kitobxon/kitobxon/pkg/sellers"
	"github.com/kitobxon/kitobxon/pkg/shelves"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the public catalog routes on a
// pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, c cache.Cache) {
	h := &handler{
		bookService:   NewService(db, c),
		reviewService: reviews.NewService(db, c),
		shelfService:  shelves.NewService(db),
		sellerService: sellers.NewService(db),
	}

	g.GET("/popular", h.popular)
	g.GET("/categories/:category", h.category)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/reviews", h.reviews)
	g.GET("/:id/entries", h.entries)
	g.GET("/:id/listings", h.listings)
}
