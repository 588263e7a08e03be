package main // Entry point package

import (
	"log" // Logging library
	"os"

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/arkana/auth-service/internal/config"
	"github.com/arkana/auth-service/internal/database"
	"github.com/arkana/auth-service/internal/handler"
	"github.com/arkana/auth-service/internal/mailer"
	"github.com/arkana/auth-service/internal/middleware"
	"github.com/arkana/auth-service/internal/queue"
	"github.com/arkana/auth-service/internal/repository"
	"github.com/arkana/auth-service/internal/router"
	"github.com/arkana/auth-service/internal/service"
	"github.com/arkana/auth-service/internal/store"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("godotenv: %v", err)
	}
	cfg := config.Load()

	// Durable user record store. A down database is fatal at startup.
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()

	// Ephemeral token store. Without Redis there is nothing to hold
	// refresh or action tokens, so this one is fatal too.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed")
	}
	defer rdb.Close()

	// Email dispatch is best-effort: events go to RabbitMQ and a background
	// consumer drains them for the mail relay.
	var m service.Mailer = mailer.NewQueueMailer(cfg.BaseURL)
	if os.Getenv("EMAIL_DISPATCH_DISABLED") == "true" {
		m = mailer.NopMailer{}
	} else {
		go func() {
			if err := queue.StartEmailConsumer(); err != nil {
				log.Printf("email consumer stopped: %v", err)
			}
		}()
	}

	users := repository.NewUserRepo(db)
	tokens := store.NewRedisStore(rdb)
	svc := service.NewAuthService(cfg, users, tokens, m)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, handler.NewHealthHandler(db, rdb))
	router.RegisterAuth(e, handler.NewAuthHandler(svc), handler.NewUserHandler(svc), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
