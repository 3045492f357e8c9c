// Package testutils provides seed endpoints for end-to-end tests. They are
// only registered when enable_test_routes is set.
package testutils

import (
	"github.com/kitobxon/kitobxon/pkg/auth"
	"github.com/kitobxon/kitobxon/pkg/cache"
	"github.com/kitobxon/kitobxon/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the seed routes under /test. verifier may be nil,
// in which case token minting is unavailable.
func RegisterRoutes(e *echo.Echo, db *bun.DB, c cache.Cache, verifier *auth.Verifier) {
	if c == nil {
		c = cache.Noop{}
	}
	h := &handler{
		db:          db,
		cache:       c,
		verifier:    verifier,
		userService: users.NewService(db, nil),
	}

	test := e.Group("/test")
	test.POST("/users", h.createUser)
	test.POST("/tokens", h.createToken)
	test.POST("/books", h.createBook)
	test.POST("/sellers", h.createSeller)
	test.POST("/listings", h.createListing)
	test.DELETE("/data", h.reset)
}
