package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	chatapp "blog_chat_service/internal/chat/app"
	chatrepo "blog_chat_service/internal/chat/repository"
	chatrouter "blog_chat_service/internal/chat/router"
	memberapp "blog_chat_service/internal/member/app"
	memberrepo "blog_chat_service/internal/member/repository"
	memberrouter "blog_chat_service/internal/member/router"
	"blog_chat_service/pkg/config"
	"blog_chat_service/pkg/database"
	"blog_chat_service/pkg/logger"
	"blog_chat_service/pkg/token"
)

const avatarURLExpiry = 24 * time.Hour

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ServiceName, config.EnvConfig.LogPath)
	cfg := config.LoadConfig[config.ChatService](config.EnvConfig.ServiceName, config.EnvConfig.YAMLPath)

	if cfg.Token.Secret != "" {
		token.JWTSecret = []byte(cfg.Token.Secret)
	}

	ctx := context.Background()

	// PostgreSQL holds members, the room index and the message log.
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password,
		cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    connStr,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s:%d]", cfg.PostgreSQL.Host, cfg.PostgreSQL.Port)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	if err := memberrepo.EnsureSchema(ctx, pool); err != nil {
		logger.Log.Fatal("member schema setup failed", zap.Error(err))
	}
	if err := chatrepo.EnsureSchema(ctx, pool); err != nil {
		logger.Log.Fatal("chat schema setup failed", zap.Error(err))
	}

	// Redis is the broadcast fabric.
	redisClient, err := database.NewRedisClient(cfg.Redis.Addr, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	defer redisClient.Close()

	// MinIO stores member avatars.
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect minio err : %v", err))
	}

	memberRepo := memberrepo.NewMemberRepository(pool)
	avatarStore := memberrepo.NewMinIOAvatarStore(minioClient, avatarURLExpiry)
	roomRepo := chatrepo.NewRoomRepository(pool)
	messageRepo := chatrepo.NewMessageRepository(pool)
	pubsub := chatrepo.NewRedisPubSub(redisClient)

	directory := chatapp.NewRoomDirectory(roomRepo)
	wsHandler := chatapp.NewChatWebsocketHandler(directory, messageRepo, memberRepo, avatarStore, pubsub)
	chatHandler := chatapp.NewChatHTTPHandler(roomRepo, messageRepo)
	memberHandler := memberapp.NewMemberHandler(memberapp.NewMemberUseCase(memberRepo, avatarStore))

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.LogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	memberrouter.RegisterRoutes(r, memberHandler)
	chatrouter.RegisterRoutes(r, wsHandler, chatHandler)

	port := ":" + cfg.Port
	logger.Log.Info("Chat Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}
