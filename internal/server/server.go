// Package server contains the HTTP and WebSocket handlers of the SkillHive API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"skillhive/internal/config"
	"skillhive/internal/featureflags"
	"skillhive/internal/middleware"
	"skillhive/internal/models"
	"skillhive/internal/notifications"
	"skillhive/internal/observability"
	"skillhive/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultOrigins = "http://localhost:5173,http://localhost:3000"

// Deps are the collaborators a Server is built from. Redis and DB are optional.
type Deps struct {
	Config   *config.Config
	Services *service.Services
	Hub      *notifications.Hub
	Redis    *redis.Client
	DB       *gorm.DB
	// Registerer receives the HTTP metrics. Nil uses the default registry.
	Registerer prometheus.Registerer
}

// Server holds all dependencies and provides handlers
type Server struct {
	config  *config.Config
	svc     *service.Services
	hub     *notifications.Hub
	redis   *redis.Client
	db      *gorm.DB
	auth    *middleware.Auth
	limiter *middleware.RateLimiter
	flags   *featureflags.Manager
	quizzes *quizBook

	promMiddleware *fiberprometheus.FiberPrometheus
	app            *fiber.App
}

// New creates a server and builds its Fiber app.
func New(d Deps) *Server {
	cfg := d.Config
	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	hub := d.Hub
	if hub == nil {
		hub = notifications.NewHub()
	}

	s := &Server{
		config:         cfg,
		svc:            d.Services,
		hub:            hub,
		redis:          d.Redis,
		db:             d.DB,
		auth:           middleware.NewAuth(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour),
		limiter:        middleware.NewRateLimiter(d.Redis, true),
		flags:          featureflags.NewManager(cfg.FeatureFlags),
		quizzes:        newQuizBook(quizTTL),
		promMiddleware: fiberprometheus.NewWithRegistry(reg, "skillhive-api", "http", "", nil),
	}

	app := fiber.New(fiber.Config{
		AppName:   "SkillHive API",
		BodyLimit: bodyLimit(cfg),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			observability.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.Respond(c, models.NewInternalError(err))
		},
	})
	s.app = app
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return s
}

// bodyLimit leaves room for multipart overhead above the media upload cap.
func bodyLimit(cfg *config.Config) int {
	mb := cfg.MediaMaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return (mb + 1) << 20
}

// App returns the configured Fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Auth returns the token issuer used by the server.
func (s *Server) Auth() *middleware.Auth { return s.auth }

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(s.promMiddleware.Middleware)
	app.Use(helmet.New(helmet.Config{
		// Uploaded media is embedded by the web client from another origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	s.promMiddleware.RegisterAt(app, "/metrics")
	app.Static(s.svc.Media.PublicPrefix(), s.svc.Media.UploadDir(), fiber.Static{MaxAge: 86400})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", s.limiter.Limit("signup", 5, 10*time.Minute, middleware.FailOpen), s.Signup)
	auth.Post("/login", s.limiter.Limit("login", 10, 5*time.Minute, middleware.FailOpen), s.Login)
	api.Get("/badges", s.GetBadges)

	protected := api.Group("", s.auth.Required())
	protected.Get("/ws", s.WebSocketUpgrade, s.WebsocketHandler())
	protected.Get("/feature-flags", s.GetFeatureFlags)

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Post("/me/avatar", s.UploadAvatar)
	users.Get("/", s.GetAllUsers)
	users.Post("/:id/block", s.BlockUser)
	users.Delete("/:id/block", s.UnblockUser)
	users.Get("/:id", s.GetUserProfile)

	skills := protected.Group("/skills")
	skills.Get("/", s.GetSkills)
	skills.Post("/", s.AddSkill)
	skills.Get("/:id/quiz", s.aiLimit("quiz"), s.StartSkillQuiz)
	skills.Post("/:id/quiz", s.SubmitSkillQuiz)
	skills.Delete("/:id", s.DeleteSkill)

	matches := protected.Group("/matches")
	matches.Get("/", s.GetMatches)
	matches.Post("/", s.CreateMatch)
	matches.Post("/:id/accept", s.AcceptMatch)
	matches.Post("/:id/decline", s.DeclineMatch)
	matches.Post("/:id/schedule", s.ScheduleSession)
	matches.Post("/:id/complete", s.CompleteSession)
	matches.Get("/:id/messages/last", s.GetLastMessage)
	matches.Get("/:id/messages", s.GetMessages)
	matches.Post("/:id/messages", s.limiter.Limit("send_message", 30, time.Minute, middleware.FailOpen), s.SendMessage)
	matches.Post("/:id/read", s.MarkMessagesRead)
	matches.Put("/:id/typing", s.SetTyping)
	matches.Get("/:id/typing", s.GetPartnerTyping)
	matches.Get("/:id/whiteboard", s.GetWhiteboard)
	matches.Put("/:id/whiteboard", s.SaveWhiteboard)
	matches.Get("/:id", s.GetMatch)
	matches.Put("/:id", s.UpdateMatch)

	protected.Get("/sessions", s.GetMySessions)
	protected.Get("/feedback", s.GetMyFeedback)
	protected.Post("/feedback", s.LeaveFeedback)

	notes := protected.Group("/notifications")
	notes.Get("/", s.GetNotifications)
	notes.Post("/read-all", s.MarkAllNotificationsRead)
	notes.Post("/:id/read", s.MarkNotificationRead)

	tasks := protected.Group("/tasks")
	tasks.Get("/", s.GetTasks)
	tasks.Post("/", s.CreateTask)
	tasks.Post("/:id/complete", s.CompleteTask)

	protected.Post("/reports", s.CreateReport)

	posts := protected.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", s.limiter.Limit("create_post", 10, 5*time.Minute, middleware.FailOpen), s.CreatePost)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/comments", s.limiter.Limit("create_comment", 20, time.Minute, middleware.FailOpen), s.AddComment)
	posts.Post("/:id/ai-reply", s.aiLimit("post_reply"), s.AIReplyToPost)

	protected.Post("/media", s.limiter.Limit("media_upload", 20, 10*time.Minute, middleware.FailOpen), s.UploadMedia)

	assistant := protected.Group("/ai", s.aiLimit("assistant"))
	assistant.Get("/recommendations", s.GetRecommendations)
	assistant.Get("/discoveries", s.GetDiscoveries)
	assistant.Post("/roadmap", s.GetRoadmap)
	assistant.Post("/chat", s.ChatWithGuide)
	assistant.Delete("/chat/:id", s.EndGuideChat)

	admin := protected.Group("/admin", middleware.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Get("/matches", s.GetAllMatches)
	admin.Put("/users/:id", s.AdminUpdateUser)
	admin.Delete("/users/:id", s.AdminDeleteUser)
	admin.Post("/skills/:id/verify", s.AdminVerifySkill)
	admin.Get("/reports", s.GetReports)
	admin.Post("/reports/:id/resolve", s.ResolveReport)
}

// aiLimit throttles the Gemini-backed endpoints. Redis errors reject the
// request so an outage cannot run up model costs.
func (s *Server) aiLimit(name string) fiber.Handler {
	return s.limiter.Limit("ai_"+name, 20, time.Minute, middleware.FailClosed)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck pings the optional Redis and PostgreSQL connections.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if s.db != nil {
		dbStatus = "healthy"
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "unhealthy"
		}
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overall,
		"backend": s.config.Backend,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"ai":   s.svc.Assistant.Enabled(),
		"time": time.Now().UTC(),
	})
}

// Start listens on the configured port until Shutdown.
func (s *Server) Start() error {
	observability.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and closes every websocket client. The
// Redis and database handles belong to the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
	}
	if err := s.hub.Shutdown(ctx); err != nil {
		observability.Logger.Error("error shutting down websocket hub", slog.String("error", err.Error()))
	}
	observability.Logger.Info("server shutdown complete")
	return nil
}
