package main

import (
	"os"
	"strings"

	"koperasiku/models"
	"koperasiku/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		logger.Fatalf("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatalf("failed to connect postgres database: %v", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// gen_random_uuid defaults need pgcrypto on Postgres < 13.
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			logger.Warnf("migration warning (pgcrypto): %v", err)
		}
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			logger.Warnf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.Anggota{}); err != nil {
			logger.Warnf("migration warning (anggota): %v", err)
		}
		if err := db.AutoMigrate(&models.Loan{}); err != nil {
			logger.Warnf("migration warning (loans): %v", err)
		}
		if err := db.AutoMigrate(&models.Payment{}); err != nil {
			logger.Warnf("migration warning (payments): %v", err)
		}
		if err := db.AutoMigrate(&models.BalanceHistory{}); err != nil {
			logger.Warnf("migration warning (balance_histories): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			logger.Warnf("migration warning (refresh_tokens): %v", err)
		}
		if err := db.AutoMigrate(&models.Upload{}); err != nil {
			logger.Warnf("migration warning (uploads): %v", err)
		}
	}
	seedDB()
}

func seedDB() {
	// Seed a bootstrap pengurus account so the back office is reachable on a
	// fresh database. Credentials are overridable via env.
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "pengurus@koperasi.local"
	}
	var count int64
	db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count == 0 {
		password := os.Getenv("SEED_ADMIN_PASSWORD")
		if password == "" {
			password = "pengurus123"
		}
		hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		admin := models.User{
			FullName:     "Pengurus Koperasi",
			Phone:        "0800000000",
			Email:        &email,
			Role:         models.RolePengurus,
			IsActive:     true,
			PasswordHash: hashed,
		}
		if err := db.Create(&admin).Error; err != nil {
			logger.Warnf("failed to seed pengurus account: %v", err)
		} else {
			logger.Infof("seeded pengurus account: email=%s", email)
		}
	}
	// Ensure upload directory exists
	ensureUploadBase()
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		logger.Warnf("failed to create upload base dir %s: %v", base, err)
	}
}

// uploadBaseDir returns the base directory for local uploads (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
