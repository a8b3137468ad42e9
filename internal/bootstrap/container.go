package bootstrap

import (
	"log"
	"os"

	"ai-interview-be/internal/config"
	"ai-interview-be/internal/controller"
	"ai-interview-be/internal/pkg/logger"
	"ai-interview-be/internal/repository/contract"
	"ai-interview-be/internal/repository/implementation"
	"ai-interview-be/internal/repository/memory"
	"ai-interview-be/internal/service"
	"ai-interview-be/pkg/interview/executor"
	"ai-interview-be/pkg/interview/sandbox"
	"ai-interview-be/pkg/interview/session"
	"ai-interview-be/pkg/llm/factory"

	pktNats "ai-interview-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	InterviewController controller.IInterviewController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

// NewContainer wires the application. db may be nil; the turn ledger is then
// disabled and everything else keeps working.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipeLogger := log.New(os.Stdout, "", log.LstdFlags)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Optional NATS mirror for the trust ledger
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 3. Oracle
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.GroqAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Session storage: redis primary, in-memory fallback
	var rdb *redis.Client
	if opts, err := redis.ParseURL(cfg.App.RedisURL); err == nil {
		rdb = redis.NewClient(opts)
	} else {
		log.Printf("[WARN] Invalid REDIS_URL, sessions are in-memory only: %v", err)
	}
	sessionRepo := memory.NewSessionRepository()
	sessions := session.NewManager(rdb, sessionRepo, pipeLogger)

	// 5. Sandbox
	harnesses := sandbox.NewHarnessRegistry()
	sandboxCli := sandbox.NewClient(cfg.Sandbox.PistonURL, harnesses, pipeLogger)

	// 6. The interview pipeline
	pipeline := executor.NewPipeline(llmProvider, sandboxCli, sessions, pipeLogger)

	// 7. Persistence (optional)
	var turnRepo contract.InterviewTurnRepository
	if db != nil {
		turnRepo = implementation.NewInterviewTurnRepository(db)
	} else {
		log.Printf("[WARN] No database configured, turn ledger disabled")
	}

	// 8. Services
	interviewService := service.NewInterviewService(
		pipeline,
		sandboxCli,
		pubSub,
		natsPub,
		turnRepo,
		cfg.App.TurnTopicName,
		sysLogger,
	)
	consumerService := service.NewConsumerService(pubSub, cfg.App.TurnTopicName, turnRepo)

	// 9. Controllers
	interviewController := controller.NewInterviewController(interviewService)

	return &Container{
		InterviewController: interviewController,
		ConsumerService:     consumerService,
	}
}
