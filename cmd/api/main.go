package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/robfig/cron/v3"

	"github.com/appdever01/pilox-backend/internal/ai"
	"github.com/appdever01/pilox-backend/internal/auth"
	"github.com/appdever01/pilox-backend/internal/config"
	"github.com/appdever01/pilox-backend/internal/email"
	"github.com/appdever01/pilox-backend/internal/handlers"
	"github.com/appdever01/pilox-backend/internal/jobs"
	"github.com/appdever01/pilox-backend/internal/ledger"
	"github.com/appdever01/pilox-backend/internal/metered"
	"github.com/appdever01/pilox-backend/internal/payment"
	"github.com/appdever01/pilox-backend/internal/pdf"
	"github.com/appdever01/pilox-backend/internal/pricing"
	"github.com/appdever01/pilox-backend/internal/progress"
	"github.com/appdever01/pilox-backend/internal/shared/database"
	"github.com/appdever01/pilox-backend/internal/shared/utils"
	"github.com/appdever01/pilox-backend/internal/upload"
	"github.com/appdever01/pilox-backend/internal/video"
	"github.com/appdever01/pilox-backend/internal/youtube"
)

func main() {
	cfg := config.LoadConfig()
	utils.InitLogger()

	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Credit accounting
	creditLedger := ledger.New(ledger.NewGormStore(db.GORM))
	runner := metered.NewRunner(creditLedger)
	prices := pricing.NewTable(cfg)

	// Progress store: Redis when configured, in-process otherwise.
	var progressStore progress.Store
	if cfg.RedisURL != "" {
		redisStore, err := progress.NewRedisStore(cfg.RedisURL, cfg.ProgressTTL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		progressStore = redisStore
	} else {
		progressStore = progress.NewMemoryStore()
	}
	tracker := progress.NewTracker(progressStore)

	// External services
	aiService := ai.NewService(cfg)

	uploadProvider, err := upload.NewProviderFromConfig(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create upload provider: %v", err)
	}
	uploads := upload.NewService(uploadProvider)

	emails := email.NewService(cfg)

	// Background jobs
	queue := jobs.NewQueue(db.GORM)
	worker := jobs.NewWorker(queue, jobs.DefaultWorkerConfig())

	renderer, err := video.NewFFmpegRenderer(cfg.UploadBasePath + "/work")
	if err != nil {
		log.Fatalf("❌ Failed to create video renderer: %v", err)
	}
	var ttsKey string
	if len(cfg.OpenAIAPIKeys) > 0 {
		ttsKey = cfg.OpenAIAPIKeys[0]
	}
	speech := video.NewOpenAISpeech(ttsKey, cfg.UploadBasePath+"/work")

	generator := video.NewGenerator(renderer, speech, tracker)
	videos := video.NewService(db.GORM, runner, prices, queue, tracker)
	worker.RegisterHandler(video.NewJobHandler(db.GORM, generator, uploads, runner, emails, tracker))

	// Domain services
	pdfs := pdf.NewService(db.GORM, aiService, runner, prices, uploads)
	transcripts := youtube.NewHTTPTranscriptSource(cfg.TranscriptAPIURL)
	yt := youtube.NewService(db.GORM, transcripts, aiService, runner, prices)

	paystack := payment.NewPaystackClient(cfg.PaystackSecretKey)
	payments := payment.NewService(db.GORM, paystack, creditLedger, payment.Rates{
		Default: cfg.DefaultCreditRate,
		Nigeria: cfg.NigeriaCreditRate,
	}, cfg.WebhookSecret)

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	accounts := auth.NewService(db.GORM, jwtService, creditLedger, emails, cfg.BaseURL, cfg.WelcomeCredit, cfg.ReferralCredit)

	// HTTP surface
	app := fiber.New(fiber.Config{
		BodyLimit: 60 * 1024 * 1024, // PDFs come in as multipart bodies
	})
	app.Use(cors.New())

	router := handlers.NewRouter(
		jwtService,
		handlers.NewAuthHandler(accounts),
		handlers.NewCreditHandler(creditLedger),
		handlers.NewPDFHandler(pdfs, videos, tracker),
		handlers.NewYouTubeHandler(yt),
		handlers.NewPaymentHandler(payments),
	)
	router.Register(app)

	// Reconciliation crons
	scheduler := cron.New()
	scheduler.AddFunc("@every 10m", func() {
		ctx := context.Background()
		if failed, err := creditLedger.FailStaleReservations(ctx, cfg.StaleReservationAge); err != nil {
			utils.LogError("stale reservation sweep failed", err, nil)
		} else if failed > 0 {
			utils.LogInfo("stale reservation sweep", map[string]interface{}{"failed": failed})
		}
	})
	scheduler.AddFunc("@every 10m", func() {
		if removed, err := tracker.Sweep(context.Background(), cfg.ProgressTTL); err != nil {
			utils.LogError("progress sweep failed", err, nil)
		} else if removed > 0 {
			utils.LogInfo("progress sweep", map[string]interface{}{"removed": removed})
		}
	})
	scheduler.AddFunc("@daily", func() {
		if deleted, err := queue.DeleteOldJobs(context.Background(), 7*24*time.Hour); err != nil {
			utils.LogError("job cleanup failed", err, nil)
		} else if deleted > 0 {
			utils.LogInfo("job cleanup", map[string]interface{}{"deleted": deleted})
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	if err := worker.Start(workerCtx); err != nil {
		log.Fatalf("❌ Failed to start job worker: %v", err)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		utils.LogInfo("Shutting down...", nil)
		stopWorker()
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			utils.LogError("server shutdown failed", err, nil)
		}
	}()

	log.Printf("🚀 API running at :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
}
