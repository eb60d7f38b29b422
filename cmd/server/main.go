package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"                // Loads .env files into the process environment
	"github.com/labstack/echo/v4"             // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's built-in middleware (logger, recover)

	"github.com/agrigestion/farm-api/internal/config"     // Internal config loader
	"github.com/agrigestion/farm-api/internal/database"   // MySQL connection pool
	"github.com/agrigestion/farm-api/internal/handler"    // HTTP handlers
	"github.com/agrigestion/farm-api/internal/middleware" // Rate limit and cache middleware
	"github.com/agrigestion/farm-api/internal/queue"      // Validation event consumer
	"github.com/agrigestion/farm-api/internal/repository" // Data access layer
	"github.com/agrigestion/farm-api/internal/router"     // Route registration
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	exploitations := repository.NewExploitationRepo(db)
	parcelles := repository.NewParcelleRepo(db)
	cultures := repository.NewCultureRepo(db)
	charges := repository.NewChargeRepo(db)
	recoltes := repository.NewRecolteRepo(db)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	userH := handler.NewUserHandler(cfg, users)
	farmH := handler.NewFarmHandler(exploitations, parcelles, cultures, charges, recoltes)
	statsH := handler.NewStatsHandler(exploitations, cultures)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Redis backs the global rate limiter and the stats response cache.
	// A nil client (Redis down at boot) disables both; the API still serves.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and stats cache disabled")
	}
	var statsCache []echo.MiddlewareFunc
	if rdb != nil {
		rlCfg := config.LoadRateLimitConfig()
		if rlCfg.Enabled {
			e.Use(middleware.NewTokenBucket(rlCfg, rdb))
		}
		cacheCfg := config.LoadCacheConfig()
		if cacheCfg.Enabled {
			statsCache = append(statsCache, middleware.NewRedisCache(cacheCfg, rdb))
		}
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterFarm(e, farmH, userH, cfg.JWTSecret)
	router.RegisterAdmin(e, userH, cfg.JWTSecret)
	router.RegisterStats(e, statsH, cfg.JWTSecret, statsCache...)

	// Audit consumer for culture.validated events runs for the lifetime of
	// the process and reconnects on broker failures.
	go func() {
		if err := queue.StartValidationConsumer(); err != nil {
			log.Printf("validation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
