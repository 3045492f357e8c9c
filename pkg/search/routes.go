package search

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup mounts book search at the root of g.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{books: NewService(db)}
	g.GET("", h.search)
}
