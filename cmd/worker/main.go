package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voke-app/voke_server/config"
	"github.com/voke-app/voke_server/internal/database"
	"github.com/voke-app/voke_server/internal/pkg/pubsub"
	"github.com/voke-app/voke_server/internal/pkg/queue"
	"github.com/voke-app/voke_server/internal/repository"
	"github.com/voke-app/voke_server/internal/service"
	"github.com/voke-app/voke_server/internal/worker"
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

	// 初始化 Repository 与 Service
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	viewRepo := repository.NewViewRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	walletService := service.NewWalletService(db, walletRepo, userRepo, requestRepo, settingRepo, publisher, cfg)

	// 创建浏览事件处理器
	processor := worker.NewProcessor(db, viewRepo, postRepo, walletService)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, max workers: %d", cfg.Queue.MaxWorkers)

	// 启动 worker 循环
	for i := 0; i < cfg.Queue.MaxWorkers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					msg, err := viewQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop message: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue // 超时，继续等待
					}

					if err := processor.Process(ctx, msg); err != nil {
						log.Printf("Worker %d: view for post %d failed: %v", workerID, msg.PostID, err)
						// 失败回队重试，结算幂等不会重复入账；超限丢弃避免毒消息打转
						if msg.Retries < cfg.Queue.MaxRetries {
							msg.Retries++
							if pushErr := viewQueue.Push(ctx, msg); pushErr != nil {
								log.Printf("Worker %d: failed to requeue message: %v", workerID, pushErr)
							}
						} else {
							log.Printf("Worker %d: view for post %d dropped after %d retries", workerID, msg.PostID, msg.Retries)
						}
					}
				}
			}
		}(i)
	}

	// 等待 context 取消
	<-ctx.Done()
	log.Println("Worker shutdown complete")
}
