// Package main is the entry point for the Migoculto API server.
// It initializes the database, the Redis-backed collaborators and all
// HTTP routes.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/caiofrota/migoculto/internal/auth"
	"github.com/caiofrota/migoculto/internal/config"
	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/handlers"
	"github.com/caiofrota/migoculto/internal/middleware"
	"github.com/caiofrota/migoculto/internal/notify"
	"github.com/caiofrota/migoculto/internal/realtime"
	"github.com/caiofrota/migoculto/internal/security"
	"github.com/caiofrota/migoculto/internal/services"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(&database.Config{URL: cfg.DatabaseURL}); err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis collaborators are best effort; the core lifecycle never
	// depends on them.
	notifier := notify.NewAsynqNotifier(cfg.RedisAddr, cfg.RedisPassword)
	defer notifier.Close()

	var refresher realtime.Refresher = realtime.NopRefresher{}
	if r, err := realtime.NewRedisRefresher(cfg.RedisAddr, cfg.RedisPassword); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, live refresh disabled")
	} else {
		refresher = r
		defer r.Close()
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	validator := security.NewValidationService(security.DefaultSecurityConfig())

	drawer := services.NewDrawer()
	groupService := services.NewGroupService(drawer, notifier, refresher)
	messageService := services.NewMessageService(notifier, refresher)
	authService := services.NewAuthService(cfg.BcryptCost)

	authHandler := handlers.NewAuthHandler(authService, jwtManager, validator)
	groupHandler := handlers.NewGroupHandler(groupService, validator)
	messageHandler := handlers.NewMessageHandler(messageService, validator)
	wishlistHandler := handlers.NewWishlistHandler(groupService, validator)

	app := fiber.New(fiber.Config{
		AppName: "migoculto",
	})
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api/v1")

	authAPI := api.Group("/auth")
	authAPI.Post("/register", authHandler.Register)
	authAPI.Post("/login", authHandler.Login)
	authAPI.Post("/refresh", authHandler.Refresh)

	groups := api.Group("/groups", middleware.AuthRequired(jwtManager))
	groups.Get("/", groupHandler.List)
	groups.Post("/", groupHandler.Create)
	groups.Post("/join", groupHandler.JoinByCode)
	groups.Get("/:id", groupHandler.Get)
	groups.Post("/:id/join", groupHandler.Join)
	groups.Post("/:id/leave", groupHandler.Leave)
	groups.Post("/:id/remove/:memberID", groupHandler.RemoveMember)
	groups.Post("/:id/draw", groupHandler.Draw)
	groups.Post("/:id/close", groupHandler.Close)
	groups.Post("/:id/read", groupHandler.MarkAsRead)
	groups.Post("/:id/messages", messageHandler.Post)
	groups.Post("/:id/wishlist", wishlistHandler.Add)
	groups.Delete("/:id/wishlist/:itemID", wishlistHandler.Remove)

	app.Get("/health", func(c *fiber.Ctx) error {
		if !database.IsConnected() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logrus.WithField("addr", addr).Info("Server starting")
	if err := app.Listen(addr); err != nil {
		logrus.Fatalf("Server stopped: %v", err)
	}
}
