package main

import (
	"fmt"
	"os"

	"koperasiku/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

func main() {
	// Auto-load ./.env if present before reading vars; already-set env wins.
	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)

	// Support a lightweight migrate command: `./koperasiku migrate`
	// It runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()

	r := gin.Default()

	setupRoutes(r)

	addr := ":" + port()
	logger.Infof("koperasi backend listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}

func port() string {
	if v := os.Getenv("PORT"); v != "" {
		return v
	}
	return "8081"
}
