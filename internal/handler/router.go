package handler

import (
	"database/sql"

	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/service"
	"github.com/cleberrangel/diane-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// RouterConfig reúne as dependências das rotas
type RouterConfig struct {
	Version      string
	DB           *sql.DB
	CORSOrigins  []string
	MetricsToken string

	Sessions    *middleware.SessionStore
	CSRF        *middleware.CSRFMiddleware
	RateLimiter *middleware.RateLimiter // opcional
	Hub         *websocket.Hub          // opcional

	Auth       *service.AuthService
	Captures   *service.CaptureService
	Tasks      *service.TaskService
	Shopping   *service.ShoppingService
	Calendar   *service.CalendarService
	BrainDumps *service.BrainDumpService
	Excel      *service.ExcelGenerator
}

// NewRouter monta o engine gin com todas as rotas
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	health := NewHealthHandler(cfg.DB, cfg.Hub, cfg.Version)

	// Health check (público)
	r.GET("/health", health.DetailedHealthCheck)
	r.GET("/health/live", health.LivenessCheck)
	r.GET("/health/ready", health.ReadinessCheck)

	ops := r.Group("/")
	ops.Use(middleware.BearerAuth(middleware.AuthConfig{TokenAPI: cfg.MetricsToken}))
	{
		ops.GET("/metrics", health.GetMetrics)
		ops.GET("/metrics/summary", health.GetMetricsSummary)
		ops.GET("/metrics/endpoints", health.GetEndpointMetrics)
		ops.GET("/debug/memory", health.Memory)
	}

	api := r.Group("/api")
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware())
	}
	api.Use(middleware.AuditMiddleware())

	auth := NewAuthHandler(cfg.Auth)
	api.POST("/auth/login", auth.Login)
	api.POST("/auth/signup", auth.Signup)

	protected := api.Group("")
	protected.Use(cfg.Sessions.RequireSession())
	if cfg.CSRF != nil {
		protected.Use(cfg.CSRF.RequireCSRF())
	}
	{
		protected.POST("/auth/logout", auth.Logout)
		protected.GET("/auth/me", auth.Me)

		captures := NewCaptureHandler(cfg.Captures)
		protected.GET("/capture", captures.Get)
		protected.POST("/capture", captures.Submit)
		protected.PUT("/capture/draft", captures.SaveDraft)
		protected.GET("/captures", captures.History)

		tasks := NewTaskHandler(cfg.Tasks, cfg.Excel)
		protected.GET("/tasks", tasks.List)
		protected.POST("/tasks", tasks.Create)
		protected.GET("/tasks/export", tasks.Export)
		protected.GET("/tasks/:id", tasks.Get)
		protected.PUT("/tasks/:id", tasks.Update)
		protected.DELETE("/tasks/:id", tasks.Delete)
		protected.PUT("/tasks/:id/subtasks/:subtask_id", tasks.UpdateSubtask)
		protected.DELETE("/tasks/:id/subtasks/:subtask_id", tasks.DeleteSubtask)

		shopping := NewShoppingHandler(cfg.Shopping, cfg.Excel)
		protected.GET("/shopping-items", shopping.List)
		protected.POST("/shopping-items", shopping.Create)
		protected.GET("/shopping-items/export", shopping.Export)
		protected.PUT("/shopping-items/:id", shopping.Update)
		protected.DELETE("/shopping-items/:id", shopping.Delete)

		calendar := NewCalendarHandler(cfg.Calendar)
		protected.GET("/calendar", calendar.List)
		protected.POST("/calendar", calendar.Create)
		protected.PUT("/calendar/:id", calendar.Update)
		protected.DELETE("/calendar/:id", calendar.Delete)

		dumps := NewBrainDumpHandler(cfg.BrainDumps)
		protected.POST("/brain-dumps", dumps.Save)

		if cfg.Hub != nil {
			ws := NewWebSocketHandler(cfg.Hub)
			protected.GET("/ws", ws.HandleConnection)
			protected.GET("/ws/stats", ws.GetConnectionStats)
			protected.GET("/ws/me", ws.GetUserConnections)
		}
	}

	return r
}
