package users

import (
	"github.com/kitobxon/kitobxon/pkg/auth"
	"github.com/kitobxon/kitobxon/pkg/blobstore"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the profile routes and the login sync route.
func RegisterRoutes(e *echo.Echo, db *bun.DB, store blobstore.Store, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db, store)

	h := &handler{
		userService: userService,
	}

	e.POST("/auth/sync", h.sync, authMiddleware.Authenticate)

	users := e.Group("/users")
	users.GET("/:externalId", h.retrieve)
	users.PATCH("/:externalId", h.update, authMiddleware.Authenticate)
	users.POST("/:externalId/avatar", h.uploadAvatar, authMiddleware.Authenticate)

	return userService
}
