package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"koperasiku/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// One-shot backfill: re-runs the payoff check over every active loan. Useful
// after a manual data fix, or for loans recorded before the transactional
// recording path existed.
func main() {
	dry := flag.Bool("dry-run", true, "dry-run: report only, don't update statuses")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var loans []models.Loan
	if err := db.Where("status = ?", models.LoanActive).Find(&loans).Error; err != nil {
		log.Fatalf("failed to list active loans: %v", err)
	}

	settled := 0
	for _, loan := range loans {
		var sum decimal.Decimal
		err := db.Model(&models.Payment{}).
			Where("loan_id = ? AND status = ?", loan.ID, models.PaymentCompleted).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&sum).Error
		if err != nil {
			log.Printf("loan %s: sum query failed: %v", loan.ID, err)
			continue
		}
		if !loan.Settles(sum) {
			continue
		}
		settled++
		if *dry {
			fmt.Printf("loan %s would be marked paid (sum=%s expected=%s)\n", loan.ID, sum, loan.ExpectedTotal())
			continue
		}
		err = db.Model(&models.Loan{}).
			Where("id = ? AND status = ?", loan.ID, models.LoanActive).
			Update("status", models.LoanPaid).Error
		if err != nil {
			log.Printf("loan %s: update failed: %v", loan.ID, err)
			continue
		}
		fmt.Printf("loan %s marked paid (sum=%s expected=%s)\n", loan.ID, sum, loan.ExpectedTotal())
	}
	fmt.Printf("checked %d active loan(s), %d settled\n", len(loans), settled)
}
