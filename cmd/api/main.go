package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"hiringdesk/hiring-assistant/internal/config"
	"hiringdesk/hiring-assistant/internal/handlers"
	"hiringdesk/hiring-assistant/internal/logger"
	"hiringdesk/hiring-assistant/internal/services"
	"hiringdesk/hiring-assistant/internal/storage"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Persistence backend for the analysis snapshot.
	var store storage.Store
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		store, err = storage.NewPostgresStore(cfg.GetDatabaseDSN(), cfg.Server.Env == "development", log)
	default:
		store, err = storage.NewFileStore(cfg.Storage.DataPath, log)
	}
	if err != nil {
		log.Fatal("failed to initialize storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	log.Info("storage initialized", zap.String("backend", cfg.Storage.Backend))

	ctx := context.Background()

	assistant, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		log.Fatal("failed to initialize gemini", zap.Error(err))
	}
	log.Info("gemini initialized", zap.String("model", cfg.Gemini.Model))

	extractor := services.NewPDFExtractor()

	svc, err := services.NewAnalysisService(store, assistant, extractor, cfg.Screening.Concurrency, log)
	if err != nil {
		log.Fatal("failed to initialize analysis service", zap.Error(err))
	}

	analysisHandler := handlers.NewAnalysisHandler(svc)
	screeningHandler := handlers.NewScreeningHandler(svc, cfg.Storage.MaxFileSize, log)
	exportHandler := handlers.NewExportHandler(svc)

	app := fiber.New(fiber.Config{
		AppName:      "Hiring Assistant API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 2,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/analyses", analysisHandler.HandleList)
	api.Post("/analyses", analysisHandler.HandleCreate)
	api.Get("/analyses/:id", analysisHandler.HandleGet)
	api.Delete("/analyses/:id", analysisHandler.HandleDelete)
	api.Post("/analyses/:id/role-analysis", analysisHandler.HandleAnalyzeRole)
	api.Post("/analyses/:id/questions", analysisHandler.HandleGenerateQuestions)

	api.Post("/analyses/:id/resumes", screeningHandler.HandleUploadResumes)
	api.Get("/analyses/:id/resumes", screeningHandler.HandleListResumes)
	api.Post("/analyses/:id/resumes/screen", screeningHandler.HandleScreen)
	api.Delete("/analyses/:id/resumes/:resumeID", screeningHandler.HandleRemoveResume)
	api.Delete("/analyses/:id/resumes", screeningHandler.HandleClearResumes)

	api.Get("/analyses/:id/export", exportHandler.HandleExport)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		// Drain in-flight extraction and scoring before closing.
		svc.Wait()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
