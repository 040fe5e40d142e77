package bootstrap

import (
	"context"

	"oxbow-be/internal/config"
	"oxbow-be/internal/controller"
	"oxbow-be/internal/handler"
	"oxbow-be/internal/pkg/logger"
	"oxbow-be/internal/pkg/mailer"
	"oxbow-be/internal/repository/implementation"
	"oxbow-be/internal/repository/memory"
	"oxbow-be/internal/repository/unitofwork"
	"oxbow-be/internal/service"
	"oxbow-be/internal/websocket"
	"oxbow-be/pkg/llm/factory"
	"oxbow-be/pkg/mirror"
	pktNats "oxbow-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	UserController    controller.IUserController
	JournalController controller.IJournalController
	MirrorController  controller.IMirrorController
	FriendController  controller.IFriendController

	// Background workers, started by main
	MirrorWorker        service.IMirrorWorker
	NotificationService *service.NotificationService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	statusCache := memory.NewStatusCache(cfg.Mirror.StatusCacheTTL)

	var emailService mailer.IEmailService
	if cfg.SMTP.Enabled() {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			cfg.App.ClientURL,
		)
	} else {
		sysLogger.Info("Bootstrap", "SMTP not configured, email notifications disabled", nil)
	}

	// 2. Job queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)

	// 3. LLM
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
		OpenAIKey:     cfg.Keys.OpenAI,
		HFKey:         cfg.Keys.HuggingFace,
	})
	if err != nil {
		return nil, err
	}
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})

	prompts := mirror.NewPromptBuilder(mirror.NewTokenCounter(cfg.Ai.LLMModel), cfg.Mirror.PromptTokenBudget)

	c := &Container{Logger: sysLogger}

	// 4. Event bus. Both sides are optional: without NATS the product still
	// works, only notifications go quiet.
	var eventPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(ctx, cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS publisher", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")

	var eventSubscriber service.EventSubscriber
	natsSub, err := pktNats.NewSubscriber(ctx, cfg.App.NatsURL, wsLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS subscriber", map[string]interface{}{"error": err.Error()})
	} else {
		eventSubscriber = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}

	// 5. Redis for the websocket cluster channel
	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb = redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		sysLogger.Warn("Bootstrap", "Redis unavailable, websocket delivery is local only", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		rdb = nil
	} else {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	wsHub := websocket.NewHub(rdb, wsLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.GenerateTopic, pubSub)

	mirrorService := service.NewMirrorService(
		uowFactory,
		publisherService,
		eventPublisher,
		statusCache,
		service.MirrorSettings{
			Threshold:  cfg.Mirror.Threshold,
			RateWindow: cfg.Mirror.RateWindow,
			SyncWait:   cfg.Mirror.SyncWait,
		},
		sysLogger,
	)

	mirrorWorker := service.NewMirrorWorker(
		pubSub,
		cfg.Keys.GenerateTopic,
		uowFactory,
		llmProvider,
		prompts,
		eventPublisher,
		statusCache,
		service.WorkerSettings{
			MaxEntries: cfg.Mirror.MaxEntries,
			LLMTimeout: cfg.Mirror.LLMTimeout,
		},
		sysLogger,
	)

	journalService := service.NewJournalService(uowFactory, statusCache)
	friendService := service.NewFriendService(uowFactory, eventPublisher, sysLogger)
	userService := service.NewUserService(uowFactory)

	// 7. Notifications
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, eventSubscriber, wsHub, emailService, wsLogger)
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	c.UserController = controller.NewUserController(userService)
	c.JournalController = controller.NewJournalController(journalService)
	c.MirrorController = controller.NewMirrorController(mirrorService)
	c.FriendController = controller.NewFriendController(friendService)
	c.MirrorWorker = mirrorWorker
	c.NotificationService = notifService
	c.NotificationHandler = notifHandler
	c.WebSocketHub = wsHub
	return c, nil
}

// Start launches the background loops. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.MirrorWorker.Consume(ctx); err != nil {
		return err
	}

	if err := c.NotificationService.Start(); err != nil {
		// Notifications are auxiliary; the API keeps serving.
		c.Logger.Warn("Bootstrap", "Notification service not started", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
