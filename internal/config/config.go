package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string
	BaseURL     string

	JWTSecret string

	// AI provider
	AIProvider    string
	GeminiAPIKeys []string
	OpenAIAPIKeys []string
	AIModel       string

	// Progress store
	RedisURL string

	// YouTube transcript endpoint
	TranscriptAPIURL string

	// Payments
	PaystackSecretKey string
	WebhookSecret     string
	DefaultCreditRate float64
	NigeriaCreditRate float64

	// Signup bonuses
	WelcomeCredit  float64
	ReferralCredit float64

	// Metered operation pricing
	PDFGenerationCredit        float64
	PDFAnalysisCredit          float64
	PDFVideoCredit             float64
	QuizCreditPerQuestion      float64
	FlashcardCreditPerQuestion float64
	TheoryQuestionCredit       float64
	TheoryVerificationCredit   float64
	YouTubeChatCredit          float64

	// Reconciliation
	StaleReservationAge time.Duration
	ProgressTTL         time.Duration

	// Upload provider
	UploadProvider    string
	UploadBasePath    string
	CloudinaryCloud   string
	CloudinaryKey     string
	CloudinarySecret  string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string

	// Email provider
	EmailProvider string
	BrevoAPIKey   string
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        os.Getenv("PORT"),
		Env:         os.Getenv("ENV"),
		BaseURL:     os.Getenv("BASE_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AIProvider:    os.Getenv("AI_PROVIDER"),
		GeminiAPIKeys: splitKeys(os.Getenv("GEMINI_API_KEYS")),
		OpenAIAPIKeys: splitKeys(os.Getenv("OPENAI_API_KEYS")),
		AIModel:       os.Getenv("AI_MODEL"),

		RedisURL: os.Getenv("REDIS_URL"),

		TranscriptAPIURL: os.Getenv("TRANSCRIPT_API_URL"),

		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		DefaultCreditRate: envFloat("DEFAULT_CREDIT_RATE", 0.35),
		NigeriaCreditRate: envFloat("NIGERIA_CREDIT_RATE", 100),

		WelcomeCredit:  envFloat("WELCOME_CREDIT", 15),
		ReferralCredit: envFloat("REFERRAL_CREDIT", 5),

		PDFGenerationCredit:        envFloat("PDF_GENERATION_CREDIT", 2),
		PDFAnalysisCredit:          envFloat("PDF_ANALYSIS_CREDIT", 1),
		PDFVideoCredit:             envFloat("PDF_VIDEO_GENERATION_CREDIT", 3),
		QuizCreditPerQuestion:      envFloat("PDF_QUIZ_CREDIT_PER_QUESTION", 0.01),
		FlashcardCreditPerQuestion: envFloat("PDF_FLASHCARD_CREDIT_PER_QUESTION", 0.01),
		TheoryQuestionCredit:       envFloat("PDF_THEORY_QUESTION_CREDIT", 1),
		TheoryVerificationCredit:   envFloat("THEORY_ANSWER_VERIFICATION_CREDIT", 0.1),
		YouTubeChatCredit:          envFloat("CHAT_WITH_YOUTUBE_CREDIT", 3),

		StaleReservationAge: envDuration("STALE_RESERVATION_AGE", time.Hour),
		ProgressTTL:         envDuration("PROGRESS_TTL", 10*time.Minute),

		UploadProvider:    os.Getenv("UPLOAD_PROVIDER"),
		UploadBasePath:    os.Getenv("UPLOAD_BASE_PATH"),
		CloudinaryCloud:   os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:     os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret:  os.Getenv("CLOUDINARY_API_SECRET"),
		S3AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Region:          os.Getenv("AWS_REGION"),
		S3Bucket:          os.Getenv("S3_BUCKET"),

		EmailProvider: os.Getenv("EMAIL_PROVIDER"),
		BrevoAPIKey:   os.Getenv("BREVO_API_KEY"),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     os.Getenv("EMAIL_FROM"),
		EmailFromName: os.Getenv("EMAIL_FROM_NAME"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.AIProvider == "" {
		cfg.AIProvider = "gemini"
	}
	if cfg.TranscriptAPIURL == "" {
		cfg.TranscriptAPIURL = "https://transcript.pilox.chat/api/transcript"
	}
	if cfg.UploadBasePath == "" {
		cfg.UploadBasePath = "./uploads"
	}
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = "noreply@pilox.chat"
	}
	if cfg.EmailFromName == "" {
		cfg.EmailFromName = "Pilox"
	}

	return cfg
}

func splitKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func envFloat(name string, fallback float64) float64 {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
		log.Printf("⚠️ Invalid value for %s, using default %v", name, fallback)
	}
	return fallback
}

func envDuration(name string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(name); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
		log.Printf("⚠️ Invalid value for %s, using default %v", name, fallback)
	}
	return fallback
}
