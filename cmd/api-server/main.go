package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"bookhub/database"
	"bookhub/internal/catalog"
	"bookhub/internal/config"
	"bookhub/internal/identity"
	"bookhub/internal/logger"
	"bookhub/internal/metrics"
	"bookhub/internal/microservices/http-api/handler"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/microservices/http-api/repository/memory"
	"bookhub/internal/microservices/http-api/service"
)

const tokenIssuer = "bookhub"

type stores struct {
	activity repository.ActivityRepository
	friends  repository.FriendRepository
	users    repository.UserRepository
	close    func()
	ping     func(context.Context) error
}

func main() {
	issueFor := flag.String("issue-token", "", "print a development token for this user id and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	verifier := identity.NewVerifier(cfg.JWTSecret, tokenIssuer)
	if *issueFor != "" {
		token, err := verifier.Issue(*issueFor, *issueFor, identity.DefaultScopes, 24*time.Hour)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to issue token")
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer st.close()

	gateway := catalog.NewGateway(
		catalog.NewClient(catalog.ClientConfig{
			BaseURL:    cfg.GoogleBooksAPIURL,
			APIKey:     cfg.GoogleBooksAPIKey,
			RateLimit:  cfg.CatalogRateLimit,
			MaxRetries: cfg.CatalogMaxRetries,
			Logger:     logger.Component(log, "catalog"),
		}),
		openCache(ctx, cfg, log),
		cfg.CatalogTimeout,
		logger.Component(log, "gateway"),
	)

	blender := service.NewRatingBlender(st.activity)
	bookService := service.NewBookService(gateway, blender, st.activity, cfg.FanoutLimit, logger.Component(log, "books"))
	activityService := service.NewActivityService(st.activity, bookService, logger.Component(log, "activity"))
	feedService := service.NewFeedService(st.users, st.friends, activityService, cfg.FanoutLimit, logger.Component(log, "feed"))
	friendService := service.NewFriendService(st.friends, st.users, logger.Component(log, "friends"))
	userService := service.NewUserService(st.users, st.activity)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.Component(log, "http")))

	r.GET("/check-conn", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := st.ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and store connected"})
	})

	if cfg.PrometheusEnabled {
		registry := prometheus.NewRegistry()
		metrics.MustRegister(registry)
		r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	}

	api := r.Group("/api", middleware.AuthMiddleware(verifier))
	handler.NewBookHandler(bookService, activityService).RegisterRoutes(api)
	handler.NewUserHandler(userService, activityService, friendService).RegisterRoutes(api)
	handler.NewSocialHandler(feedService, friendService).RegisterRoutes(api)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("using the in-memory store, data is lost on restart")
		return &stores{
			activity: memory.NewActivityRepository(nil),
			friends:  memory.NewFriendRepository(nil),
			users:    memory.NewUserRepository(nil),
			close:    func() {},
			ping:     func(context.Context) error { return nil },
		}, nil
	}

	db, err := database.Connect(ctx, cfg, logger.Component(log, "database"))
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		activity: repository.NewActivityRepository(db.Gorm),
		friends:  repository.NewFriendRepository(db.Gorm),
		users:    repository.NewUserRepository(db.Gorm),
		close:    db.Close,
		ping:     db.Ping,
	}, nil
}

// openCache returns nil when redis is unreachable; the gateway then reads
// through to the catalog on every lookup.
func openCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) catalog.VolumeCache {
	if cfg.RedisURL == "" {
		return nil
	}
	client, err := catalog.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, catalog cache disabled")
		return nil
	}
	return catalog.NewRedisVolumeCache(client, cfg.CacheDuration(), logger.Component(log, "cache"))
}
