package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/gofiber/fiber/v3/middleware/static"
	"go.uber.org/zap"

	"smartroute/internal/config"
	"smartroute/internal/handlers"
	"smartroute/internal/logging"
	"smartroute/web"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App    *fiber.App
	Cfg    *config.Config
	logger *zap.Logger

	submitLimiter fiber.Handler
}

// New creates a new server with middleware configured. Sessions are kept in
// storage, or in process memory when storage is nil.
func New(cfg *config.Config, storage fiber.Storage, log *zap.Logger) *Server {
	log = logging.OrNop(log)

	engine := web.NewEngine(cfg.IsDev())

	app := fiber.New(fiber.Config{
		AppName:      cfg.SiteTitle,
		Views:        engine,
		ViewsLayout:  web.Layout,
		ErrorHandler: handlers.ErrorHandler(cfg),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	// CORS middleware
	corsOrigins := cfg.BaseURL
	if cfg.CORSOrigins != "" {
		corsOrigins = cfg.CORSOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(corsOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "HX-Request", "HX-Current-URL", "HX-Target", "HX-Trigger"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Cookie encryption middleware
	secret := cfg.SessionSecret
	if secret == "" {
		log.Warn("SESSION_SECRET not set, sessions will not survive a restart")
		secret = randomSecret()
	}
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: deriveEncryptionKey(secret),
	}))

	// Session middleware
	sessionMiddleware, _ := session.NewWithStore(session.Config{
		Storage:        storage,
		IdleTimeout:    cfg.SessionTTL,
		CookieSecure:   !cfg.IsDev(),
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	// Static files
	app.Get("/static/*", static.New("", static.Config{FS: web.Static()}))

	s := &Server{
		App:    app,
		Cfg:    cfg,
		logger: log,
	}
	s.submitLimiter = s.newSubmitLimiter()
	return s
}

// newSubmitLimiter limits generation requests per client IP.
func (s *Server) newSubmitLimiter() fiber.Handler {
	if s.Cfg.SubmitRateLimit <= 0 {
		return func(c fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        s.Cfg.SubmitRateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		},
	})
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.Cfg.ServerAddr))
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// deriveEncryptionKey derives a 32-byte encryption key from the session secret.
func deriveEncryptionKey(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(hash[:])
}

func randomSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}
