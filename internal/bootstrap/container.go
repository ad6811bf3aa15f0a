package bootstrap

import (
	"context"
	"log"
	"os"
	"time"

	"ai-coursebuilder-be/internal/config"
	"ai-coursebuilder-be/internal/controller"
	"ai-coursebuilder-be/internal/pkg/logger"
	"ai-coursebuilder-be/internal/pkg/mailer"
	"ai-coursebuilder-be/internal/repository/unitofwork"
	"ai-coursebuilder-be/internal/service"
	"ai-coursebuilder-be/internal/websocket"
	"ai-coursebuilder-be/pkg/embedding"
	"ai-coursebuilder-be/pkg/embedding/jina"
	"ai-coursebuilder-be/pkg/extract"
	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/llm/factory"
	pktNats "ai-coursebuilder-be/pkg/nats"
	"ai-coursebuilder-be/pkg/workflow/checkpoint"
	"ai-coursebuilder-be/pkg/workflow/constructor"
	wfevents "ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/ingestion"
	"ai-coursebuilder-be/pkg/workflow/quizgen"
	"ai-coursebuilder-be/pkg/workflow/structure"
	"ai-coursebuilder-be/pkg/workflow/tutor"
	"ai-coursebuilder-be/pkg/workflow/validation"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ConstructorController controller.IConstructorController
	TutorController       controller.ITutorController
	CourseController      controller.ICourseController

	// WebSockets & step streaming
	WebSocketHub *websocket.Hub
	StepBus      *wfevents.Bus
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Ai.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	llmProvider = llm.WithCallTimeout(llmProvider, time.Duration(cfg.Workflow.StepTimeoutSeconds)*time.Second)
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisUp = false
	}

	// Checkpoints survive restarts when redis is up, otherwise fall
	// back to the in-process store.
	checkpointTTL := time.Duration(cfg.Workflow.CheckpointTTLHours) * time.Hour
	var store checkpoint.Store
	if redisUp {
		store = checkpoint.NewRedisStore(rdb, checkpointTTL)
	} else {
		store = checkpoint.NewMemoryStore(checkpointTTL)
	}

	// 4. Step-event bus and websocket hub
	stepBus := wfevents.NewBus(watermill.NewStdLogger(false, false))

	wsLogger := logger.NewIsolatedLogger("logs/workflow_steps.log")
	var hubRedis *redis.Client
	if redisUp {
		hubRedis = rdb
	}
	wsHub := websocket.NewHub(hubRedis, wsLogger)
	go wsHub.Run()

	// 5. Workflow engine
	wfLogger := log.New(os.Stdout, "[workflow] ", log.LstdFlags)

	extractors := extract.NewRegistry()
	textExtractor := extract.NewTextExtractor()
	extractors.Register(extract.TypeText, textExtractor)
	extractors.Register(extract.TypeMarkdown, textExtractor)
	documentExtractor := extract.NewDocumentExtractor(cfg.Extract.DocumentServiceURL)
	extractors.Register(extract.TypePDF, documentExtractor)
	extractors.Register(extract.TypeSlides, documentExtractor)
	extractors.Register(extract.TypeDocument, documentExtractor)
	extractors.Register(extract.TypeAudio, extract.NewTranscribeExtractor(cfg.Extract.TranscribeServiceURL))

	chunkIndexer := service.NewChunkIndexer(uowFactory)
	finalizer := service.NewCourseFinalizer(uowFactory, emailService, natsPub, cfg, sysLogger)

	buildConstructor := func() *constructor.Coordinator {
		return constructor.NewCoordinator(
			llmProvider,
			finalizer,
			stepBus,
			wfLogger,
			ingestion.NewPipeline(extractors, embeddingProvider, chunkIndexer, stepBus, wfLogger),
			structure.NewPipeline(llmProvider, stepBus, wfLogger),
			quizgen.NewPipeline(llmProvider, stepBus, wfLogger, cfg.Workflow.QuizBaseCount),
			validation.NewPipeline(llmProvider, stepBus, wfLogger, cfg.Workflow.ReadinessThreshold),
		)
	}
	constructorOrch := constructor.NewOrchestrator(buildConstructor, store, stepBus, wfLogger)

	tutorBackend := service.NewTutorBackend(
		uowFactory,
		embeddingProvider,
		natsPub,
		cfg.Workflow.MasterySmoothing,
		sysLogger,
	)
	buildTutor := func() *tutor.Coordinator {
		return tutor.NewCoordinator(llmProvider, tutor.Deps{
			Course:         tutorBackend,
			Retriever:      tutorBackend,
			Attempts:       tutorBackend,
			Closer:         tutorBackend,
			Bus:            stepBus,
			Logger:         wfLogger,
			Smoothing:      cfg.Workflow.MasterySmoothing,
			ReviewInterval: time.Duration(cfg.Workflow.ReviewIntervalDays) * 24 * time.Hour,
			QuizSize:       cfg.Workflow.QuizPerSession,
		})
	}
	tutorOrch := tutor.NewOrchestrator(buildTutor, store, stepBus, wfLogger)
	tutorOrch.Seeder = tutorBackend

	// 6. Services
	constructorService := service.NewConstructorService(constructorOrch, uowFactory, sysLogger)
	tutorService := service.NewTutorService(tutorOrch, uowFactory, sysLogger)
	courseService := service.NewCourseService(uowFactory)

	// 7. Event relay (NATS -> websocket clients)
	if natsSub != nil {
		relay := service.NewEventRelayService(natsSub, wsHub, wsLogger)
		go relay.Start()
	}

	return &Container{
		ConstructorController: controller.NewConstructorController(constructorService, cfg.App.UploadDir),
		TutorController:       controller.NewTutorController(tutorService),
		CourseController:      controller.NewCourseController(courseService),

		WebSocketHub: wsHub,
		StepBus:      stepBus,
	}
}
