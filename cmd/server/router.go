package main

import (
	"context"
	"strings"
	"time"

	"note-sage/cmd/server/handlers"
	"note-sage/cmd/server/handlers/auth"
	"note-sage/cmd/server/handlers/httperr"
	notesHandlers "note-sage/cmd/server/handlers/notes"
	"note-sage/cmd/server/middlewares"
	"note-sage/internal/clients/groq"
	"note-sage/internal/clients/mongo"
	"note-sage/internal/config"
	"note-sage/internal/logger"
	authServices "note-sage/internal/services/auth"
	notesServices "note-sage/internal/services/notes"
	"note-sage/internal/utils/crypto"

	_ "note-sage/docs" // Load swagger docs

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(ctx context.Context, cfg config.Config) *fiber.App {

	// Initialize validator and register password validation
	v := validator.New()
	if err := crypto.RegisterPasswordValidator(v); err != nil {
		logger.L().Error("failed to register password validator", "err", err)
		panic(err)
	}

	// Validate JWT algorithm at boot
	alg := strings.ToUpper(cfg.JWTAlgorithm)
	switch alg {
	case "HS256":
		// Valid algorithm
	default:
		logger.L().Error(authServices.ErrUnsupportedJWTAlg.Error(), "algorithm", cfg.JWTAlgorithm)
		panic(authServices.ErrUnsupportedJWTAlg.Error() + ": " + cfg.JWTAlgorithm)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app)
	}

	// Health check endpoint, outside the API prefix to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz)

	app.Get("/docs/*", swagger.HandlerDefault)

	// Page navigation gate: unauthenticated visitors never reach the
	// dashboard, signed-in visitors skip the auth pages.
	app.Use(middlewares.PageGate(cfg))

	app.Static("/", "./web-ui", fiber.Static{
		Browse: false,
		Index:  "index.html",
	})

	var api fiber.Router
	if cfg.RequestLoggingEnabled {
		api = app.Group("/api", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		api = app.Group("/api")
		logger.L().Info("request logging disabled")
	}
	v1 := api.Group("/v1")

	jwtMiddleware := middlewares.JWT(cfg)

	limiterMW := limiter.New(limiter.Config{
		Max:        cfg.SignInRatePerMin,
		Expiration: RateLimitExpiration,
		LimitReached: func(c *fiber.Ctx) error {
			return httperr.Fail(httperr.ErrTooManyRequests)
		},
	})

	authGrp := v1.Group("/auth", limiterMW)

	usersRepo, newUsersRepoErr := mongo.NewUsersRepo(ctx, mongo.DB())
	if newUsersRepoErr != nil {
		logger.L().Error("failed to create users repository", "error", newUsersRepoErr)
		panic(newUsersRepoErr)
	}
	authSvc := authServices.NewService(usersRepo, cfg, logger.L())
	cookieTTL := time.Duration(cfg.JWTExpiryMinutes) * time.Minute
	authHandlers := auth.NewHandlers(authSvc, v, cookieTTL)

	authGrp.Post("/sign-up", authHandlers.SignUp)
	authGrp.Post("/sign-in", authHandlers.SignIn)
	authGrp.Post("/sign-out", authHandlers.SignOut)

	// Notes routes
	notesRepo, err := mongo.NewNotesRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error(notesServices.ErrCreateNotesRepo.Error(), "error", err)
		panic(err)
	}
	hub := notesServices.NewHub(cfg.WSOutboxBuffer)
	summarizer := groq.New(cfg, logger.L())
	notesSvc := notesServices.NewService(notesRepo, hub, summarizer, logger.L())
	notesH := notesHandlers.NewHandlers(notesSvc, v)

	notesGrp := api.Group("/notes", jwtMiddleware)
	notesGrp.Get("/", notesH.List)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Put("/:id", notesH.Update)
	notesGrp.Delete("/:id", notesH.Delete)
	notesGrp.Post("/:id/summarize", notesH.Summarize)

	// WebSocket routes
	wsHandlers := notesHandlers.NewWebSocketHandlers(hub, cfg.JWTSecret, cfg.WSMaxSessionSec)
	app.Use("/ws", notesHandlers.LogWSConnections(cfg.JWTSecret))
	app.Get("/ws/notes/stream", wsHandlers.WSUpgrade, websocket.New(wsHandlers.WSNotesStream))

	// User profile endpoint (for testing JWT middleware and for future use)
	v1.Get("/me", jwtMiddleware, handlers.Me)

	return app
}
