package main // Entry point package

import (
	"log" // Logging library
	"os"  // env flag for the optional consumer

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/auth-service/internal/cache"
	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/database"
	"github.com/iliyamo/auth-service/internal/handler"
	"github.com/iliyamo/auth-service/internal/queue"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/router"
	"github.com/iliyamo/auth-service/internal/service"
	"github.com/iliyamo/auth-service/internal/utils"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is a best-effort accelerator: a nil client just disables the
	// token mirror.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, token mirror disabled")
	}

	codec := utils.NewTokenCodec(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	engine := service.NewEngine(service.Deps{
		Users:      repository.NewUserRepo(db),
		Tokens:     repository.NewTokenRepo(db),
		Sessions:   repository.NewSessionRepo(db),
		Revoker:    repository.NewAuthTx(db),
		Cache:      cache.NewTokenCache(rdb, cfg.RefreshTTL),
		Replicator: queue.NewPublisher(),
		Codec:      codec,
		Hasher:     utils.NewBcryptHasher(cfg.BcryptCost),
		SessionTTL: cfg.SessionTTL,
	})

	// Optional local stand-in for the profile service; consumes
	// user.created events and writes the replication audit log.
	if os.Getenv("REPLICATION_CONSUMER") == "true" {
		go func() {
			if err := queue.StartUserCreatedConsumer(); err != nil {
				log.Printf("user-consumer: %v", err)
			}
		}()
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(engine), handler.NewGoogleAuthHandler(engine, cfg.GoogleClientID), codec)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
