package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"console-agent/internal/middleware"
	"console-agent/internal/stub"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	addr := getEnv("STUB_ADDR", ":8000")
	secret := getEnv("STUB_JWT_SECRET", "dev-only-secret")
	accessTTL, err := time.ParseDuration(getEnv("STUB_ACCESS_TTL", "15m"))
	if err != nil {
		accessTTL = 15 * time.Minute
	}

	server := stub.NewServer(secret, "admin-console", "console-agents", accessTTL, logger)

	engine := gin.New()
	engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)
	server.Routes(engine)

	log.Printf("stub backend listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("stub backend failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
