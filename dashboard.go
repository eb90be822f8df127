package main

import (
	"net/http"
	"strconv"
	"time"

	"koperasiku/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// monthBounds returns the inclusive start of a (year, month) period and the
// exclusive start of the following month. Date-valued columns compared with
// [start, end) therefore cover the first through last day inclusive.
func monthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

type dashboardStats struct {
	ActiveMembers    int64            `json:"active_members"`
	TotalActiveLoans decimal.Decimal  `json:"total_active_loans"`
	CurrentBalance   decimal.Decimal  `json:"current_balance"`
	TotalInfaq       decimal.Decimal  `json:"total_infaq"`
	TotalTabungan    decimal.Decimal  `json:"total_tabungan"`
	Year             int              `json:"year"`
	Month            int              `json:"month"`
	MonthlyBalance   []monthlyBalance `json:"monthly_balance"`
}

type monthlyBalance struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// dashboardHandler recomputes the summary figures from full scans on every
// request. No caching; the dataset is a small cooperative's books.
func dashboardHandler(c *gin.Context) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return
		}
		month = n
	}

	stats := dashboardStats{Year: year, Month: month}

	// active member count
	err := db.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleAnggota, true).
		Count(&stats.ActiveMembers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	// outstanding principal over active loans
	err = db.Model(&models.Loan{}).
		Where("status = ?", models.LoanActive).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalActiveLoans).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	// current balance: the sum over the append-only ledger. Each row holds a
	// per-transaction amount, so the total is derived here, never snapshotted.
	err = db.Model(&models.BalanceHistory{}).
		Select("COALESCE(SUM(balance_amount), 0)").
		Scan(&stats.CurrentBalance).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	// period-scoped category totals
	start, end := monthBounds(year, month)
	sumCategory := func(category string) (decimal.Decimal, error) {
		var total decimal.Decimal
		err := db.Model(&models.Payment{}).
			Where("payment_category = ? AND status = ? AND payment_date >= ? AND payment_date < ?",
				category, models.PaymentCompleted, start, end).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error
		return total, err
	}
	if stats.TotalInfaq, err = sumCategory(models.CategoryInfaq); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if stats.TotalTabungan, err = sumCategory(models.CategoryTabungan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	// per-month ledger totals for the selected year (feeds the balance chart)
	yearStart, _ := monthBounds(year, 1)
	yearEnd := yearStart.AddDate(1, 0, 0)
	rows, err := db.Model(&models.BalanceHistory{}).
		Where("transaction_date >= ? AND transaction_date < ?", yearStart, yearEnd).
		Select("to_char(transaction_date, 'YYYY-MM') as month, COALESCE(SUM(balance_amount), 0) as total").
		Group("month").
		Order("month").
		Rows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	defer rows.Close()
	for rows.Next() {
		var mb monthlyBalance
		if err := rows.Scan(&mb.Month, &mb.Total); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		stats.MonthlyBalance = append(stats.MonthlyBalance, mb)
	}

	c.JSON(http.StatusOK, stats)
}
