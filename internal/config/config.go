package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Ai       AIConfig
	Extract  ExtractConfig
	Workflow WorkflowConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	UploadDir          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	// NotifyEmail receives course-published notices. Auth lives at the
	// gateway, so there is no per-user address to send to.
	NotifyEmail string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	LLMBaseURL        string
	LLMAPIKey         string
	GoogleGemini      string
	Jina              string
}

type ExtractConfig struct {
	DocumentServiceURL   string
	TranscribeServiceURL string
}

// WorkflowConfig tunes the orchestration engine. Defaults match the
// documented behavior; override per deployment.
type WorkflowConfig struct {
	QuizBaseCount      int     // questions per topic before adjustment
	QuizPerSession     int     // questions pulled per tutoring quiz
	MasterySmoothing   float64 // exponential weight of the newest attempt
	ReviewIntervalDays int     // spaced-repetition due interval
	ReadinessThreshold float64 // minimum score to pass validation
	StepTimeoutSeconds int     // per external call
	CheckpointTTLHours int     // in-memory checkpoint retention
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "CourseBuilder"),
			NotifyEmail: getEnv("SMTP_NOTIFY_EMAIL", getEnv("SMTP_EMAIL", "")),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:         getEnv("LLM_API_KEY", ""),
			GoogleGemini:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:              getEnv("JINA_API_KEY", ""),
		},
		Extract: ExtractConfig{
			DocumentServiceURL:   getEnv("EXTRACT_SERVICE_URL", "http://localhost:8070"),
			TranscribeServiceURL: getEnv("TRANSCRIBE_SERVICE_URL", "http://localhost:8071"),
		},
		Workflow: WorkflowConfig{
			QuizBaseCount:      getEnvAsInt("QUIZ_BASE_COUNT", 5),
			QuizPerSession:     getEnvAsInt("QUIZ_PER_SESSION", 3),
			MasterySmoothing:   getEnvAsFloat("MASTERY_SMOOTHING", 0.3),
			ReviewIntervalDays: getEnvAsInt("REVIEW_INTERVAL_DAYS", 7),
			ReadinessThreshold: getEnvAsFloat("READINESS_THRESHOLD", 0.8),
			StepTimeoutSeconds: getEnvAsInt("STEP_TIMEOUT_SECONDS", 120),
			CheckpointTTLHours: getEnvAsInt("CHECKPOINT_TTL_HOURS", 72),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
