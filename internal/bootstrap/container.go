package bootstrap

import (
	"context"
	"log"
	"time"

	"browser-connector-be/internal/config"
	"browser-connector-be/internal/controller"
	"browser-connector-be/internal/handler"
	"browser-connector-be/internal/pkg/logger"
	"browser-connector-be/internal/repository/contract"
	"browser-connector-be/internal/repository/implementation"
	"browser-connector-be/internal/repository/memory"
	"browser-connector-be/internal/service"
	"browser-connector-be/internal/websocket"

	"browser-connector-be/pkg/events"
	pktNats "browser-connector-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Topic carrying saved-recording notifications from the recording service to
// the viz pipeline.
const topicRecordingSaved = "RECORDING_SAVED_EVENTS"

type Container struct {
	// Controllers
	IdentityController   controller.IIdentityController
	RecordingController  controller.IRecordingController
	ScreenshotController controller.IScreenshotController
	TelemetryController  controller.ITelemetryController

	// Background Services (Exposed for main.go to run)
	VizService service.IVizService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	// Shared infrastructure
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
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
	var eventsPub service.IEventPublisher
	if natsPub != nil {
		eventsPub = natsPub
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
		rdb = nil
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Relay mirrored capture events back onto the extension stream so viz
	// tooling on other instances still sees them.
	if natsPub != nil {
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			subCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := natsSub.Subscribe(subCtx, "capture.>", "connector-stream-relay", func(ctx context.Context, event events.Event) error {
				wsHub.BroadcastEvent(event)
				return nil
			})
			cancel()
			if err != nil {
				log.Printf("[WARN] Failed to subscribe to capture events: %v", err)
			}
		}
	}

	// 3. Repositories
	// Postgres is optional; without it the connector keeps its index in
	// memory and still serves the full protocol.
	var (
		recordingRepo  contract.RecordingRepository
		screenshotRepo contract.ScreenshotRepository
	)
	if db != nil {
		recordingRepo = implementation.NewRecordingRepository(db)
		screenshotRepo = implementation.NewScreenshotRepository(db)
	} else {
		log.Printf("[WARN] No database configured, using in-memory repositories")
		recordingRepo = memory.NewRecordingRepository()
		screenshotRepo = memory.NewScreenshotRepository()
	}

	// 4. Services
	publisherService := service.NewPublisherService(topicRecordingSaved, pubSub)
	recordingService := service.NewRecordingService(recordingRepo, publisherService, eventsPub, sysLogger, cfg.Storage.RecordingsDir)
	screenshotService := service.NewScreenshotService(screenshotRepo, eventsPub, sysLogger, cfg.Storage.ScreenshotsDir)
	telemetryService := service.NewTelemetryService(eventsPub, sysLogger)
	vizService := service.NewVizService(pubSub, topicRecordingSaved, wsHub, recordingRepo, eventsPub)

	// 5. Controllers & Handlers
	identityController := controller.NewIdentityController(cfg.Collector.Name, cfg.Collector.Version)
	recordingController := controller.NewRecordingController(recordingService)
	screenshotController := controller.NewScreenshotController(screenshotService)
	telemetryController := controller.NewTelemetryController(telemetryService)
	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	return &Container{
		IdentityController:   identityController,
		RecordingController:  recordingController,
		ScreenshotController: screenshotController,
		TelemetryController:  telemetryController,
		VizService:           vizService,
		StreamHandler:        streamHandler,
		WebSocketHub:         wsHub,
		Logger:               sysLogger,
	}
}
