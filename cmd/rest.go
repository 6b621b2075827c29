package cmd

import (
	"context"
	"html/template"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/releaserr/releaserr/core/config"
	"github.com/releaserr/releaserr/core/database"
	"github.com/releaserr/releaserr/integrations/jellyseerr"
	"github.com/releaserr/releaserr/integrations/omdb"
	"github.com/releaserr/releaserr/integrations/tmdb"
	"github.com/releaserr/releaserr/pkg/httpclient"
	"github.com/releaserr/releaserr/pkg/ratelimit"
	"github.com/releaserr/releaserr/pkg/ttlcache"
	"github.com/releaserr/releaserr/repository"
	"github.com/releaserr/releaserr/ui/rest"
	"github.com/releaserr/releaserr/ui/rest/middleware"
	"github.com/releaserr/releaserr/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the release dashboard over http",
	Run:   restServer,
}

func init() {
	restCmd.Flags().String("port", "", "Port to listen on (overrides APP_PORT)")
	restCmd.Flags().Bool("debug", false, "Enable debug logging")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalln("[INIT]", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.App.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.App.Debug = true
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence for hidden media.
	db, err := database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalln("[INIT]", err)
	}
	hiddenRepo, err := repository.NewHiddenGormRepository(db)
	if err != nil {
		logrus.Fatalln("[INIT]", err)
	}

	// Shared HTTP client with retry, plus the two upstream caches.
	api := httpclient.New(httpclient.RetryConfig{
		MaxRetries:   cfg.Retry.MaxRetries,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
	})
	tvDetails := ttlcache.New[tmdb.TVShowDetails](ttlcache.Options{
		Name:     "tv_details",
		TTL:      cfg.Cache.TTL,
		Capacity: cfg.Cache.MaxEntries,
	})
	omdbRatings := ttlcache.New[omdb.Ratings](ttlcache.Options{
		Name:     "omdb_ratings",
		TTL:      cfg.Cache.TTL,
		Capacity: cfg.Cache.MaxEntries,
	})

	tmdbClient := tmdb.NewClient(api, cfg.TMDB.APIKey, tvDetails)
	omdbClient := omdb.NewClient(api, cfg.OMDB.APIKey, omdbRatings)
	jellyseerrClient := jellyseerr.NewClient(api, cfg.Jellyseerr.APIKey, cfg.Jellyseerr.URL)

	cacheUsecase := usecase.NewCacheService(cfg.Paths.Cache, cfg.Cache.SaveInterval, tvDetails, omdbRatings)
	releaseUsecase := usecase.NewReleaseService(tmdbClient, omdbClient, jellyseerrClient, hiddenRepo)
	requestUsecase := usecase.NewRequestService(jellyseerrClient, releaseUsecase)

	if err := cacheUsecase.Load(ctx); err != nil {
		logrus.Fatalln("[INIT]", err)
	}

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)

	// Background tasks are tied to ctx, cancelled on shutdown.
	limiter.StartReaper(ctx, 10*time.Minute, 30*time.Minute)
	releaseUsecase.StartBackgroundRefresh(ctx, cfg.TMDB.RefreshInterval)
	cacheUsecase.StartAutosave(ctx)

	indexTemplate, err := template.ParseFS(embedViews, "views/index.html")
	if err != nil {
		logrus.Fatalln("[INIT] failed to parse index template:", err)
	}

	fiberConfig := fiber.Config{
		Network:               "tcp",
		AppName:               "Releaserr",
		DisableStartupMessage: false,
		ServerHeader:          "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.EnableTrustedProxyCheck = true
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.App.CorsOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, X-CSRF-Token, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https://image.tmdb.org https://via.placeholder.com; connect-src 'self'",
	}))
	app.Use(middleware.RateLimit(limiter))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	base := app.Group(cfg.App.BasePath)
	apiGroup := base.Group("/api")
	apiGroup.Use(middleware.CSRF())

	rest.InitRestRelease(base, apiGroup, releaseUsecase, indexTemplate, cfg.App.Version)
	rest.InitRestRequest(apiGroup, requestUsecase, releaseUsecase)
	rest.InitRestCache(apiGroup, cacheUsecase)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Graceful shutdown: stop accepting, cancel background work, flush caches.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] termination signal received, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] error during shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("[REST]", err)
	}

	cancel()
	if err := cacheUsecase.SaveNow(context.Background()); err != nil {
		logrus.Errorf("[REST] final cache save failed: %v", err)
	}
	logrus.Info("[REST] shutdown complete")
}
