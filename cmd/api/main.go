// @title Mission Desk API
// @version 1.0
// @description Participant API of the Service 2 mission desk: assigned exam, submissions, AI analysis, action plan and final verdict.
// @host localhost:8090
// @BasePath /service2
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mission-desk/internal/adapter"
	"mission-desk/internal/adapter/analyzer"
	"mission-desk/internal/adapter/storage"
	"mission-desk/internal/cache"
	"mission-desk/internal/config"
	"mission-desk/internal/database"
	"mission-desk/internal/domain"
	"mission-desk/internal/handler"
	"mission-desk/internal/logger"
	"mission-desk/internal/middleware"
	"mission-desk/internal/repository"
	"mission-desk/internal/service"
	"mission-desk/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// answerDraftTTL is how long an autosaved answer survives without edits.
const answerDraftTTL = 7 * 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis client
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("RedisCacheAdapter initialized")

	// Initialize the analysis model
	model, err := analyzer.NewModel(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	appLogger.Info("LLM client initialized", zap.String("provider", cfg.LLM.Provider), zap.String("model", cfg.LLM.Model))
	llmAnalyzer := analyzer.NewLLMAnalyzer(model, cfg.LLM.Timeout, cfg.LLM.AttachPDF)
	verdictGenerator := analyzer.NewLLMVerdictGenerator(model, cfg.LLM.Timeout)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	objectStorage, err := storage.NewObjectStorage(initCtx, cfg.Storage)
	cancelInit()
	if err != nil {
		appLogger.Fatal("Failed to initialize report storage", zap.Error(err))
	}

	policy, err := domain.NewCompletionPolicy(cfg.Plan.CompletionPolicy, cfg.Plan.ScoreThreshold)
	if err != nil {
		appLogger.Fatal("Invalid plan completion policy", zap.Error(err))
	}

	// Initialize repositories
	accountRepository := repository.NewAccountDatabaseAdapter(db)
	examRepository := repository.NewExamDatabaseAdapter(db)
	submissionRepository := repository.NewSubmissionDatabaseAdapter(db)
	planRepository := repository.NewPlanDatabaseAdapter(db)
	reportRepository := repository.NewReportDatabaseAdapter(db)
	slotRepository := repository.NewSlotDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize services
	authService, err := service.NewAuthService(accountRepository, cacheAdapter, cfg.JWT)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	examService := service.NewExamService(examRepository, slotRepository)
	submissionService := service.NewSubmissionService(examRepository, submissionRepository, llmAnalyzer)
	planService := service.NewPlanService(examRepository, planRepository, llmAnalyzer, objectStorage, txManager, policy, cfg.Upload.MaxPDFBytes)
	reportService := service.NewReportService(examRepository, submissionRepository, planRepository, reportRepository, verdictGenerator, cacheAdapter, 2*cfg.LLM.Timeout)
	draftService := service.NewDraftService(adapter.NewCacheDraftStore(cacheAdapter, answerDraftTTL))
	appLogger.Info("Services initialized")

	// Initialize handlers
	validator := validation.NewValidator()
	limiter := middleware.NewAccountRateLimiter(cfg.RateLimit.AnalyzePerMinute, cfg.RateLimit.Burst)
	defer limiter.Close()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		// Multipart overhead on top of the largest accepted PDF.
		BodyLimit:    int(cfg.Upload.MaxPDFBytes) + 1<<20,
		ErrorHandler: middleware.ErrorHandler(),
	})

	middleware.RegisterMetrics()
	app.Use(middleware.Metrics())
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return domain.NewInternalError("database unavailable", err)
		}
		if err := cacheAdapter.Ping(ctx); err != nil {
			return domain.NewInternalError("cache unavailable", err)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", middleware.MetricsHandler())

	handler.RegisterRoutes(app, handler.Routes{
		AuthService:    authService,
		Auth:           handler.NewAuthHandler(authService, validator),
		Mission:        handler.NewMissionHandler(examService, submissionService, reportService, validator),
		Plan:           handler.NewPlanHandler(planService, validator, cfg.Upload.MaxPDFBytes),
		Draft:          handler.NewDraftHandler(draftService, validator),
		AnalyzeLimiter: limiter,
	})

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
