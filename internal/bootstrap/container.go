package bootstrap

import (
	"context"
	"log"
	"time"

	"voice-meditation-be/internal/config"
	"voice-meditation-be/internal/controller"
	"voice-meditation-be/internal/handler"
	"voice-meditation-be/internal/pkg/logger"
	"voice-meditation-be/internal/pkg/mailer"
	"voice-meditation-be/internal/repository/memory"
	"voice-meditation-be/internal/repository/unitofwork"
	"voice-meditation-be/internal/service"
	"voice-meditation-be/internal/websocket"
	pktNats "voice-meditation-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const callEventTopic = "VOICE_CALL_EVENTS"

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	SessionController controller.ISessionController
	UserController    controller.IUserController
	VapiController    controller.IVapiController

	// Background services (exposed for main.go to run)
	RelayService service.IRelayService

	// WebSockets
	CallEventHandler *handler.CallEventHandler
	WebSocketHub     *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	_ = logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	magicLinkRepo := memory.NewMagicLinkRepository(time.Duration(cfg.Auth.MagicLinkTTL) * time.Minute)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS (best effort; the app runs fine without a bus)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis for hub fanout (optional, single instance works without it)
	var rdb *redis.Client
	if opt, err := redis.ParseURL(cfg.App.RedisURL); err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Hub runs single-instance", err)
	} else {
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Hub runs single-instance", err)
			rdb = nil
		}
	}

	// 3. WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/call_events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	authService := service.NewAuthService(uowFactory, magicLinkRepo, emailService, cfg.Auth)
	sessionService := service.NewSessionService(uowFactory, natsPub)
	statsService := service.NewStatsService(uowFactory)
	voiceService := service.NewVoiceService(cfg.Vapi, cfg.Widget)
	webhookService := service.NewWebhookService(uowFactory, pubSub, callEventTopic, natsPub, wsLogger)
	relayService := service.NewRelayService(pubSub, callEventTopic, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		SessionController: controller.NewSessionController(sessionService),
		UserController:    controller.NewUserController(statsService),
		VapiController:    controller.NewVapiController(voiceService, webhookService),

		RelayService: relayService,

		CallEventHandler: handler.NewCallEventHandler(wsHub, wsLogger),
		WebSocketHub:     wsHub,
	}
}
