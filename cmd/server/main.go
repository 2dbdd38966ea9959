package main

import (
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/config"
	"rekod.my/famvault/internal/entity"
	"rekod.my/famvault/internal/server"
	"rekod.my/famvault/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set, live notifications disabled")
	}

	srv := server.NewServer(db, redisClient, cfg)
	defer srv.Stop()

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Person{},
		&entity.Document{},
		&entity.PersonShare{},
		&entity.Favorite{},
		&entity.Notification{},
		&entity.DeviceToken{},
		&entity.Suggestion{},
		&entity.Event{},
		&entity.Message{},
		&entity.ActivityLog{},
	)
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@famvault.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := entity.User{
		Name:         "Administrator",
		Email:        "admin@famvault.local",
		PasswordHash: string(hashed),
		IsAdmin:      true,
		ApprovedAt:   &now,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Seeded development admin user admin@famvault.local")
	return nil
}
