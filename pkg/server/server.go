package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kitobxon/kitobxon/pkg/auth"
	"github.com/kitobxon/kitobxon/pkg/binder"
	"github.com/kitobxon/kitobxon/pkg/blobstore"
	"github.com/kitobxon/kitobxon/pkg/books"
	"github.com/kitobxon/kitobxon/pkg/cache"
	"github.com/kitobxon/kitobxon/pkg/config"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/reviews"
	"github.com/kitobxon/kitobxon/pkg/search"
	"github.com/kitobxon/kitobxon/pkg/sellers"
	"github.com/kitobxon/kitobxon/pkg/shelves"
	"github.com/kitobxon/kitobxon/pkg/testutils"
	"github.com/kitobxon/kitobxon/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

// Dependencies are the optional backends the API runs with. Any of them may
// be nil: a nil cache reads straight from the database, a nil store disables
// avatar uploads and a nil verifier disables bearer token checks.
type Dependencies struct {
	Cache    cache.Cache
	Store    blobstore.Store
	Verifier *auth.Verifier
}

func New(cfg *config.Config, db *bun.DB, deps Dependencies) (*http.Server, error) {
	e, err := newEcho(cfg, db, deps)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, deps Dependencies) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(cors(cfg.CORSAllowedOrigins))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeout(cfg.RequestTimeout))
	}

	health.RegisterRoutes(e)

	authMiddleware := auth.NewMiddleware(deps.Verifier)

	users.RegisterRoutes(e, db, deps.Store, authMiddleware)
	registerCatalogRoutes(e, db, deps.Cache, authMiddleware)
	registerMemberRoutes(e, db, deps.Cache, authMiddleware)

	if cfg.EnableTestRoutes {
		testutils.RegisterRoutes(e, db, deps.Cache, deps.Verifier)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

// registerCatalogRoutes registers the read-only catalog. A session is
// accepted but not required.
func registerCatalogRoutes(e *echo.Echo, db *bun.DB, c cache.Cache, authMiddleware *auth.Middleware) {
	booksGroup := e.Group("/books")
	booksGroup.Use(authMiddleware.AuthenticateOptional)
	books.RegisterRoutesWithGroup(booksGroup, db, c)

	sellersGroup := e.Group("/sellers")
	sellersGroup.Use(authMiddleware.AuthenticateOptional)
	sellers.RegisterRoutesWithGroup(sellersGroup, db)

	searchGroup := e.Group("/search")
	searchGroup.Use(authMiddleware.AuthenticateOptional)
	search.RegisterRoutesWithGroup(searchGroup, db)
}

// registerMemberRoutes registers the routes that act on a user's own shelves
// and reviews.
func registerMemberRoutes(e *echo.Echo, db *bun.DB, c cache.Cache, authMiddleware *auth.Middleware) {
	shelvesGroup := e.Group("/shelves")
	shelvesGroup.Use(authMiddleware.Authenticate)
	shelves.RegisterRoutesWithGroup(shelvesGroup, db)

	reviewsGroup := e.Group("/reviews")
	reviewsGroup.Use(authMiddleware.Authenticate)
	reviews.RegisterRoutesWithGroup(reviewsGroup, db, c)
}

func cors(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		return middleware.CORS()
	}
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderOrigin,
		},
	})
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
