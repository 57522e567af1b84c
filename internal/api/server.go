package api

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/apartrent/apartment-service/config"
	"github.com/apartrent/apartment-service/infra/queue"
	"github.com/apartrent/apartment-service/internal/api/rest/handlers"
	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/helper"
	"github.com/apartrent/apartment-service/internal/interfaces"
	"github.com/apartrent/apartment-service/internal/repository"
	"github.com/apartrent/apartment-service/internal/repository/gormstore"
	"github.com/apartrent/apartment-service/internal/repository/mongostore"
	"github.com/apartrent/apartment-service/internal/services"
)

func StartServer(cfg config.Config) {
	app := fiber.New()

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// ---------- Store ----------
	ctx := context.Background()
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	log.Printf("storage connected (%s)", cfg.StorageBackend)

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema error: %v", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("index error: %v", err)
	}
	log.Println("schema and indexes ready")

	seedAdmin(ctx, store, cfg)

	// ---------- Infra ----------
	var producer interfaces.ProducerHandler
	if cfg.KafkaBroker != "" {
		producer = queue.NewProducer(
			cfg.KafkaBroker,
			cfg.KafkaTopic,
			cfg.KafkaUsername,
			cfg.KafkaPassword,
		)
	}

	authHelper := helper.SetupAuth(cfg.AccessSecret)

	// ---------- Services ----------
	userSvc := services.NewUserService(store, authHelper, producer)
	aptSvc := services.NewApartmentService(store, producer)

	// ---------- Handlers ----------
	handlers.NewUserHandler(userSvc, aptSvc).SetupRoutes(app)
	handlers.NewApartmentHandler(aptSvc, userSvc).SetupRoutes(app)
	handlers.NewAdminHandler(userSvc, aptSvc).SetupRoutes(app)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}

// OpenStore picks the storage adapter by configuration. Both adapters sit
// behind the same repository interface; nothing above this call knows which
// engine is live.
func OpenStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	switch cfg.StorageBackend {
	case "mongo":
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	case "postgres":
		return gormstore.Open("postgres", cfg.DatabaseDSN)
	default:
		return nil, errors.New("unknown storage backend: " + cfg.StorageBackend)
	}
}

// seedAdmin makes sure a moderator account exists on a fresh database.
// Without ADMIN_PASSWORD the seed is skipped entirely.
func seedAdmin(ctx context.Context, store repository.Store, cfg config.Config) {
	if cfg.AdminPassword == "" {
		return
	}
	if _, err := store.FindUserByEmail(ctx, cfg.AdminEmail); err == nil {
		return
	}

	auth := helper.SetupAuth(cfg.AccessSecret)
	hashed, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Printf("admin seed error: %v", err)
		return
	}

	_, err = store.CreateUser(ctx, &domain.User{
		Email:        cfg.AdminEmail,
		PasswordHash: hashed,
		FirstName:    "Admin",
		LastName:     "User",
		IsAdmin:      true,
		IsActive:     true,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicateKey) {
		log.Printf("admin seed error: %v", err)
		return
	}
	log.Printf("seeded admin user %s", cfg.AdminEmail)
}
