package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kitobxon/kitobxon/pkg/auth"
	"github.com/kitobxon/kitobxon/pkg/blobstore"
	"github.com/kitobxon/kitobxon/pkg/cache"
	"github.com/kitobxon/kitobxon/pkg/config"
	"github.com/kitobxon/kitobxon/pkg/database"
	"github.com/kitobxon/kitobxon/pkg/migrations"
	"github.com/kitobxon/kitobxon/pkg/server"
	"github.com/kitobxon/kitobxon/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/uptrace/bun"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()
	log := logger.New()
	log.Info("starting kitobxon", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	deps, closeDeps, err := dependencies(ctx, cfg, log)
	if err != nil {
		log.Err(err).Fatal("dependency error")
	}

	srv, err := server.New(cfg, db, deps)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort))
	if err != nil {
		log.Err(err).Fatal("failed to bind port")
	}

	graceful := signals.Setup()
	go func() {
		log.Info("server started", logger.Data{"addr": listener.Addr().String()})
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
	}()

	<-graceful
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Err(err).Error("server shutdown error")
	}
	closeDeps()
	if err := db.Close(); err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("shutdown complete")
}

// openDatabase connects, verifies FTS5 is available for the search index and
// applies pending migrations.
func openDatabase(ctx context.Context, cfg *config.Config, log logger.Logger) (*bun.DB, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.CheckFTS5Support(ctx, db); err != nil {
		return nil, err
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		return nil, err
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}
	return db, nil
}

// dependencies builds the optional backends. Each one stays disabled when its
// config is empty. The returned func releases whatever was opened.
func dependencies(ctx context.Context, cfg *config.Config, log logger.Logger) (server.Dependencies, func(), error) {
	deps := server.Dependencies{}
	closer := func() {}

	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
		if err := rc.Ping(ctx); err != nil {
			return deps, closer, errors.Wrap(err, "redis")
		}
		deps.Cache = rc
		closer = func() {
			if err := rc.Close(); err != nil {
				log.Err(err).Error("redis close error")
			}
		}
		log.Info("catalog cache enabled", logger.Data{"addr": cfg.RedisAddr})
	}

	if cfg.BlobEndpoint != "" {
		store, err := blobstore.NewMinioStore(ctx, blobstore.Config{
			Endpoint:  cfg.BlobEndpoint,
			AccessKey: cfg.BlobAccessKey,
			SecretKey: cfg.BlobSecretKey,
			Bucket:    cfg.BlobBucket,
			UseSSL:    cfg.BlobUseSSL,
			PublicURL: cfg.BlobPublicURL,
		})
		if err != nil {
			return deps, closer, errors.Wrap(err, "blob store")
		}
		deps.Store = store
		log.Info("avatar uploads enabled", logger.Data{"bucket": cfg.BlobBucket})
	}

	if cfg.IdentityJWTSecret == "" {
		log.Warn("identity_jwt_secret is not set; bearer tokens are not verified")
		return deps, closer, nil
	}
	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Secret:   cfg.IdentityJWTSecret,
		Issuer:   cfg.IdentityIssuer,
		Audience: cfg.IdentityAudience,
		Leeway:   cfg.IdentityLeeway,
	})
	if err != nil {
		return deps, closer, errors.Wrap(err, "identity")
	}
	deps.Verifier = verifier
	return deps, closer, nil
}
