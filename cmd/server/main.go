package main

import (
	"context"
	"fmt"
	"log"

	"github.com/voke-app/voke_server/config"
	"github.com/voke-app/voke_server/internal/api"
	"github.com/voke-app/voke_server/internal/api/handler"
	"github.com/voke-app/voke_server/internal/database"
	"github.com/voke-app/voke_server/internal/pkg/email"
	"github.com/voke-app/voke_server/internal/pkg/oss"
	"github.com/voke-app/voke_server/internal/pkg/pubsub"
	"github.com/voke-app/voke_server/internal/pkg/queue"
	"github.com/voke-app/voke_server/internal/pkg/ws"
	"github.com/voke-app/voke_server/internal/repository"
	"github.com/voke-app/voke_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 Queue 和 Pub/Sub
	viewQueue := queue.NewQueue(rdb, cfg.Queue.ViewQueue)
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化邮件服务（可选）
	var emailSvc *email.Service
	if cfg.Email.SMTPHost != "" {
		emailSvc = email.NewService(&cfg.Email)
	}

	// 初始化 WebSocket Hub，订阅钱包事件推送给在线用户
	wsHub := ws.NewHub()
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.WalletEvent) {
			if !wsHub.IsOnline(event.UserID) {
				return
			}
			if err := wsHub.SendToUser(event.UserID, &ws.Event{
				Type: event.Type,
				Data: event,
			}); err != nil {
				log.Printf("Failed to push wallet event to user %d: %v", event.UserID, err)
			}
		})
		if err != nil {
			log.Printf("Wallet event subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	followRepo := repository.NewFollowRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	viewRepo := repository.NewViewRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	reportRepo := repository.NewReportRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// 初始化 Service
	walletService := service.NewWalletService(db, walletRepo, userRepo, requestRepo, settingRepo, publisher, cfg)
	authService := service.NewAuthService(userRepo, walletService, emailSvc, cfg)
	userService := service.NewUserService(userRepo, followRepo, ossClient)
	postService := service.NewPostService(postRepo, userRepo, interactionRepo, followRepo, viewRepo, reportRepo, viewQueue)
	commentService := service.NewCommentService(commentRepo, postRepo)
	promotionService := service.NewPromotionService(postRepo, requestRepo, walletService, cfg)
	adminService := service.NewAdminService(userRepo, requestRepo, reportRepo, settingRepo, walletService, cfg)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	postHandler := handler.NewPostHandler(postService, userService)
	commentHandler := handler.NewCommentHandler(commentService, userService)
	walletHandler := handler.NewWalletHandler(walletService)
	spotlightHandler := handler.NewSpotlightHandler(promotionService)
	adminHandler := handler.NewAdminHandler(adminService, walletService, promotionService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		postHandler,
		commentHandler,
		walletHandler,
		spotlightHandler,
		adminHandler,
		websocketHandler,
		userRepo,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
