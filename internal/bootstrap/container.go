package bootstrap

import (
	"context"
	"log"
	"time"

	"classguard-be/internal/config"
	"classguard-be/internal/controller"
	"classguard-be/internal/handler"
	"classguard-be/internal/pkg/logger"
	"classguard-be/internal/repository/unitofwork"
	"classguard-be/internal/service"
	"classguard-be/internal/websocket"
	"classguard-be/pkg/gemini"
	"classguard-be/pkg/imaging"
	"classguard-be/pkg/ratelimit"
	"classguard-be/pkg/screenstore"

	pktNats "classguard-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const violationTopic = "violations.detected"

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	AiController   controller.IAiController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	MonitorHandler *handler.MonitorHandler
	WebSocketHub   *websocket.Hub

	shutdown func()
}

// BindShutdown lets the server hand its stop function to the container
// after construction, so the shutdown_server command can reach it.
func (c *Container) BindShutdown(fn func()) {
	c.shutdown = fn
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	container := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	screens := screenstore.NewStore(rdb, time.Duration(cfg.Monitor.ScreenshotTTLSecs)*time.Second)

	// WebSocket layer
	wsLogger := logger.NewIsolatedLogger(cfg.App.MonitorLogFilePath)
	registry := websocket.NewRegistry()
	wsHub := websocket.NewHub(registry, wsLogger)

	// 3. Services
	geminiClient := gemini.NewClient(
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.Model,
		time.Duration(cfg.Ai.TimeoutSeconds)*time.Second,
	)
	if !geminiClient.Enabled() {
		log.Println("[WARN] GEMINI_API_KEY not set, AI features run in fallback mode")
	}

	aiLimiter := ratelimit.NewLimiter(cfg.Ai.MaxCallsPerMin, time.Minute)
	ingestLimiter := ratelimit.NewLimiter(cfg.Monitor.IngestMaxPerMin, time.Minute)
	aiCache := gocache.New(time.Duration(cfg.Ai.CacheTTLSecs)*time.Second, 10*time.Minute)

	compressor := imaging.NewCompressor(
		cfg.Monitor.ScreenshotQuality,
		cfg.Monitor.ScreenshotMaxWidth,
		cfg.Monitor.ScreenshotMaxHeight,
	)
	detector := service.NewViolationDetector(nil)

	violationPub := service.NewPublisherService(violationTopic, pubSub)

	authService := service.NewAuthService(uowFactory, cfg.Auth.JwtSecret, time.Duration(cfg.Auth.TokenTTLHour)*time.Hour)
	monitorService := service.NewMonitorService(
		uowFactory,
		compressor,
		screens,
		ingestLimiter,
		detector,
		violationPub,
		wsHub,
		wsLogger,
	)
	relayService := service.NewRelayService(uowFactory, wsHub, func() {
		if container.shutdown != nil {
			container.shutdown()
		}
	}, wsLogger)
	aiService := service.NewAiService(geminiClient, aiLimiter, aiCache, sysLogger)

	container.ConsumerService = service.NewConsumerService(pubSub, violationTopic, wsHub, natsPub, wsLogger)

	// 4. Handler & Controllers
	container.MonitorHandler = handler.NewMonitorHandler(
		authService,
		monitorService,
		relayService,
		registry,
		wsHub,
		natsPub,
		wsLogger,
	)
	container.WebSocketHub = wsHub
	container.AuthController = controller.NewAuthController(authService)
	container.AiController = controller.NewAiController(aiService)

	return container
}
