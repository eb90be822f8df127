package main

import (
	"net/http"

	"koperasiku/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// loanView is a loan plus the derived repayment figures the registry pages show.
type loanView struct {
	models.Loan
	ExpectedTotal decimal.Decimal `json:"expected_total"`
	SumPaid       decimal.Decimal `json:"sum_paid"`
	Remaining     decimal.Decimal `json:"remaining"`
}

func newLoanView(l models.Loan, sumPaid decimal.Decimal) loanView {
	return loanView{
		Loan:          l,
		ExpectedTotal: l.ExpectedTotal(),
		SumPaid:       sumPaid,
		Remaining:     l.Remaining(sumPaid),
	}
}

// sumPaidForLoan totals the completed payments recorded against a loan. It is
// always re-queried rather than carried in client state.
func sumPaidForLoan(tx *gorm.DB, loanID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&models.Payment{}).
		Where("loan_id = ? AND status = ?", loanID, models.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// sumPaidForLoans does the same for a batch of loans in one grouped query.
func sumPaidForLoans(tx *gorm.DB, loanIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(loanIDs))
	if len(loanIDs) == 0 {
		return out, nil
	}
	type row struct {
		LoanID uuid.UUID
		Total  decimal.Decimal
	}
	var rows []row
	err := tx.Model(&models.Payment{}).
		Where("loan_id IN ? AND status = ?", loanIDs, models.PaymentCompleted).
		Select("loan_id, COALESCE(SUM(amount), 0) as total").
		Group("loan_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.LoanID] = r.Total
	}
	return out, nil
}

// listLoansHandler lists loans with their derived balances, optionally scoped
// by user_id and status (the payment form asks for a member's active loans).
func listLoansHandler(c *gin.Context) {
	q := db.Model(&models.Loan{}).Order("created_at desc")
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		q = q.Where("user_id = ?", id)
	}
	if v := c.Query("status"); v != "" {
		if v != models.LoanActive && v != models.LoanPaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or paid"})
			return
		}
		q = q.Where("status = ?", v)
	}
	var loans []models.Loan
	if err := q.Find(&loans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	ids := make([]uuid.UUID, 0, len(loans))
	for _, l := range loans {
		ids = append(ids, l.ID)
	}
	sums, err := sumPaidForLoans(db, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	views := make([]loanView, 0, len(loans))
	for _, l := range loans {
		views = append(views, newLoanView(l, sums[l.ID]))
	}
	c.JSON(http.StatusOK, views)
}

func getLoanHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return
	}
	var loan models.Loan
	if err := db.First(&loan, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "loan not found"})
		return
	}
	sum, err := sumPaidForLoan(db, loan.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, newLoanView(loan, sum))
}

// createLoanHandler registers a new member loan. Zero or negative installments
// and durations are rejected up front; a loan whose expected total is zero
// could never be reconciled sensibly.
func createLoanHandler(c *gin.Context) {
	var req struct {
		UserID         string          `json:"user_id" binding:"required"`
		Amount         decimal.Decimal `json:"amount" binding:"required"`
		MonthlyPayment decimal.Decimal `json:"monthly_payment" binding:"required"`
		DurationMonths int             `json:"duration_months" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	if !req.Amount.IsPositive() || !req.MonthlyPayment.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and monthly_payment must be positive"})
		return
	}
	if req.DurationMonths <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_months must be positive"})
		return
	}
	var member models.User
	if err := db.First(&member, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	loan := models.Loan{
		UserID:         member.ID,
		Amount:         req.Amount,
		MonthlyPayment: req.MonthlyPayment,
		DurationMonths: req.DurationMonths,
		Status:         models.LoanActive,
	}
	if err := db.Create(&loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, newLoanView(loan, decimal.Zero))
}
