package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cpptutor/cpptutor-backend/internal/config"
	"github.com/cpptutor/cpptutor-backend/internal/handler"
	"github.com/cpptutor/cpptutor-backend/internal/middleware"
	"github.com/cpptutor/cpptutor-backend/internal/response"
	"github.com/cpptutor/cpptutor-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth *handler.AuthHandler
	Chat *handler.ChatHandler
	Quiz *handler.QuizHandler
	Page *handler.PageHandler
	WS   *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// The paths mirror the browser form flow: chat on /, auth forms on
// /register and /login, and the quiz lifecycle on /quiz and /take_quiz.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Auth (Public, Rate Limited) ───────────────────────────────────
	// 30 requests per minute per IP on the credential forms.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	router.GET("/register", handlers.Auth.ShowRegister)
	router.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
	router.GET("/login", handlers.Auth.ShowLogin)
	router.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

	// ─── Static pages ──────────────────────────────────────────────────
	router.GET("/compile", handlers.Page.Compile)
	router.POST("/compile", handlers.Page.Compile)

	// ─── Protected (Session + Active Check) ────────────────────────────
	protected := router.Group("/")
	protected.Use(
		middleware.RequireSession(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		protected.GET("/", handlers.Chat.ChatPage)
		protected.POST("/", handlers.Chat.Chat)
		protected.GET("/logout", handlers.Auth.Logout)

		protected.GET("/quiz", handlers.Quiz.ShowDifficultySelect)
		protected.POST("/quiz", handlers.Quiz.GenerateQuiz)
		protected.GET("/take_quiz", handlers.Quiz.ShowQuiz)
		protected.POST("/take_quiz", handlers.Quiz.SubmitQuiz)
		protected.GET("/history", handlers.Quiz.History)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireSession(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		ws.GET("/tutor/stream", handlers.WS.TutorStream)
	}

	return router
}
