package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleberrangel/diane-api/internal/capture"
	"github.com/cleberrangel/diane-api/internal/config"
	"github.com/cleberrangel/diane-api/internal/database"
	"github.com/cleberrangel/diane-api/internal/handler"
	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/migration"
	"github.com/cleberrangel/diane-api/internal/repository"
	"github.com/cleberrangel/diane-api/internal/service"
	"github.com/cleberrangel/diane-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "0.3.0"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	logger.InitAudit()
	metrics.Init()
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Str("capture_mode", cfg.CaptureMode).
		Msg("Diane API iniciando")

	// Banco de dados e migrations
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao conectar ao banco")
	}
	defer db.Close()

	if err := migration.NewMigrator(db).Run(); err != nil {
		log.Fatal().Err(err).Msg("Erro ao aplicar migrations")
	}

	// Sessões, CSRF e rate limit
	sessions := middleware.NewSessionStore(middleware.SessionConfig{
		SessionDuration: cfg.SessionTTL,
		CookieSecure:    cfg.CookieSecure,
		CookieHTTPOnly:  true,
	})
	defer sessions.Stop()

	csrf := middleware.NewCSRFMiddleware(middleware.CSRFConfig{
		TokenDuration: cfg.SessionTTL,
		CookieSecure:  cfg.CookieSecure,
	})
	defer csrf.Stop()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimitPerMinute,
	})
	defer rateLimiter.Stop()

	// WebSocket hub
	hub := websocket.NewHub(cfg.CORSAllowOrigins)
	go hub.Run()
	defer hub.Stop()

	// Serviços
	tasks := service.NewTaskService(db)
	webhook := service.NewWebhookService(cfg.NotifyWebhookURL, 5*time.Second)

	captures, err := service.NewCaptureService(
		service.CaptureConfig{
			Mode:    cfg.CaptureMode,
			Delay:   cfg.CaptureDelay,
			FormTTL: cfg.CaptureFormTTL,
		},
		tasks,
		repository.NewCaptureRepository(db),
		capture.Notifiers{hub, webhook},
		hub,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao criar serviço de captura")
	}
	defer captures.Stop()

	// Logout ou expiração da sessão descartam o formulário
	sessions.OnEnd(func(s *middleware.Session) {
		captures.Discard(s.ID)
	})

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	router := handler.NewRouter(handler.RouterConfig{
		Version:      Version,
		DB:           db,
		CORSOrigins:  cfg.CORSAllowOrigins,
		MetricsToken: cfg.MetricsToken,
		Sessions:     sessions,
		CSRF:         csrf,
		RateLimiter:  rateLimiter,
		Hub:          hub,
		Auth:         service.NewAuthService(repository.NewUserRepository(db), sessions, csrf),
		Captures:     captures,
		Tasks:        tasks,
		Shopping:     service.NewShoppingService(db),
		Calendar:     service.NewCalendarService(db),
		BrainDumps:   service.NewBrainDumpService(db),
		Excel:        service.NewExcelGenerator(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inicia servidor
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Erro ao iniciar servidor")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro no shutdown")
	}
}
