package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/voke-app/voke_server/config"
	"github.com/voke-app/voke_server/internal/database"
	"github.com/voke-app/voke_server/internal/repository"
	"github.com/voke-app/voke_server/internal/service"
)

var (
	once      = flag.Bool("once", false, "Run a single sweep and exit")
	interval  = flag.Duration("interval", 10*time.Minute, "Sweep interval")
	batchSize = flag.Int("batch-size", 200, "Max posts cleared per sweep")
)

func main() {
	flag.Parse()

	log.Println("Starting promotion cleanup task...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	postRepo := repository.NewPostRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	walletService := service.NewWalletService(db, walletRepo, userRepo, requestRepo, settingRepo, nil, cfg)
	promotionService := service.NewPromotionService(postRepo, requestRepo, walletService, cfg)

	sweep := func() {
		cleared, err := promotionService.SweepExpired(*batchSize)
		if err != nil {
			log.Printf("Sweep failed: %v", err)
			return
		}
		if cleared > 0 {
			log.Printf("Cleared %d expired promotions", cleared)
		}
	}

	sweep()
	if *once {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		sweep()
	}
}
