package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kobopay/kobopay/internal/auth"
	"github.com/kobopay/kobopay/internal/billing"
	"github.com/kobopay/kobopay/internal/config"
	"github.com/kobopay/kobopay/internal/identity"
	"github.com/kobopay/kobopay/internal/ledger"
	"github.com/kobopay/kobopay/internal/middleware"
	"github.com/kobopay/kobopay/internal/notification"
	"github.com/kobopay/kobopay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a database
// the service falls back to in-memory stores, which is only acceptable in dev.
func Setup(app *fiber.App, d Deps) error {
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	notifier := notification.NewLoggerNotifier(d.Logger)

	var (
		entries    ledger.Store
		walletRepo wallet.Repository
		engine     wallet.Engine
		userRepo   identity.Repository
		billRepo   billing.Repository
	)
	if d.DB != nil {
		pgEntries := ledger.NewPostgresStore(d.DB)
		entries = pgEntries
		walletRepo = wallet.NewPostgresRepository(d.DB)
		engine = wallet.NewPostgresEngine(d.DB, pgEntries)
		userRepo = identity.NewPostgresRepository(d.DB)
		billRepo = billing.NewPostgresRepository(d.DB)
	} else {
		memEntries := ledger.NewMemoryStore()
		memWallets := wallet.NewMemoryRepository()
		entries = memEntries
		walletRepo = memWallets
		engine = wallet.NewMemoryEngine(memWallets, memEntries)
		userRepo = identity.NewMemoryRepository(memWallets)
		billRepo = billing.NewMemoryRepository()
	}

	walletSvc := wallet.NewService(walletRepo, engine, entries, d.Cache, d.Cfg.BalanceCacheTTL, notifier, d.Logger)
	identitySvc := identity.NewService(userRepo, walletRepo, d.Cfg.BcryptCost, d.Logger)
	authSvc := auth.NewService(d.Cfg, identitySvc)
	billingSvc := billing.NewService(walletSvc, billRepo, billing.StaticProvider{}, notifier, d.Logger)

	identityHandler := identity.NewHandler(identitySvc)
	authHandler := auth.NewHandler(authSvc)
	walletHandler := wallet.NewHandler(walletSvc)
	billingHandler := billing.NewHandler(billingSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("request_id").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, identityHandler, rateLimiter)

	jwtmw := middleware.JWTAuth(d.Cfg)
	protected := api.Group("", jwtmw)
	RegisterUserRoutes(protected, identityHandler)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterBillRoutes(protected, billingHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
