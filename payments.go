package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"koperasiku/models"
	"koperasiku/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Payment recording errors the handler maps onto HTTP statuses.
var (
	errMemberNotFound   = errors.New("member not found")
	errLoanNotFound     = errors.New("loan not found")
	errLoanNotActive    = errors.New("loan is not active")
	errLoanWrongMember  = errors.New("loan does not belong to this member")
	errNegativeAmount   = errors.New("amount must not be negative")
	errCategoryAndLoan  = errors.New("payment_category and loan_id are mutually exclusive")
	errNeedCategoryOrLn = errors.New("either payment_category or loan_id is required")
	errBadCategory      = errors.New("payment_category must be wajib, infaq or tabungan")
	errBadPaymentType   = errors.New("payment_type must be monthly, partial or full")
	errTypeNeedsLoan    = errors.New("payment_type is only valid for loan repayments")
)

// paymentInput is the normalized recording request: either a standalone
// contribution (Category set) or a loan repayment (LoanID + PaymentType set).
type paymentInput struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Category    string
	LoanID      *uuid.UUID
	PaymentType string
	Date        time.Time
	Notes       string
}

func (in paymentInput) isLoanRepayment() bool { return in.LoanID != nil }

// validatePaymentInput enforces the shape invariants before anything is
// written: exclusive-or of category vs loan, known enum values, non-negative
// amount. Referential checks (member/loan existence) happen in the
// transaction, where the rows are locked.
func validatePaymentInput(in paymentInput) error {
	if in.Amount.IsNegative() {
		return errNegativeAmount
	}
	if in.isLoanRepayment() {
		if in.Category != "" {
			return errCategoryAndLoan
		}
		switch in.PaymentType {
		case models.PaymentMonthly, models.PaymentPartial, models.PaymentFull:
		default:
			return errBadPaymentType
		}
		return nil
	}
	if in.PaymentType != "" {
		return errTypeNeedsLoan
	}
	switch in.Category {
	case models.CategoryWajib, models.CategoryInfaq, models.CategoryTabungan:
	case "":
		return errNeedCategoryOrLn
	default:
		return errBadCategory
	}
	return nil
}

// balanceDescription matches the wording the ledger has always used.
func balanceDescription(in paymentInput) string {
	if in.isLoanRepayment() {
		return fmt.Sprintf("Pembayaran Pinjaman (%s)", in.PaymentType)
	}
	return fmt.Sprintf("Payment: %s", in.Category)
}

// paymentResult reports what the recording transaction did.
type paymentResult struct {
	Payment  models.Payment
	SumPaid  decimal.Decimal
	LoanPaid bool // loan flipped to paid in this transaction
}

// recordPayment persists a payment, mirrors it into the balance ledger, and
// reconciles the loan payoff, all inside one transaction. The loan row is
// locked FOR UPDATE so two concurrent submissions cannot both read a
// pre-threshold sum; the sum itself is re-queried inside the transaction and
// therefore includes the payment just inserted.
func recordPayment(dbh *gorm.DB, in paymentInput) (paymentResult, error) {
	if err := validatePaymentInput(in); err != nil {
		return paymentResult{}, err
	}
	var res paymentResult
	err := dbh.Transaction(func(tx *gorm.DB) error {
		var member models.User
		if err := tx.First(&member, "id = ?", in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errMemberNotFound
			}
			return err
		}

		var loan models.Loan
		if in.isLoanRepayment() {
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&loan, "id = ?", *in.LoanID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errLoanNotFound
				}
				return err
			}
			if loan.UserID != member.ID {
				return errLoanWrongMember
			}
			if loan.Status != models.LoanActive {
				return errLoanNotActive
			}
			// monthly installments are locked to the agreed amount
			if in.PaymentType == models.PaymentMonthly {
				in.Amount = loan.MonthlyPayment
			}
		}

		payment := models.Payment{
			UserID:      member.ID,
			Amount:      in.Amount,
			PaymentDate: in.Date,
			Notes:       in.Notes,
			Status:      models.PaymentCompleted,
		}
		if in.isLoanRepayment() {
			pt := in.PaymentType
			payment.LoanID = in.LoanID
			payment.PaymentType = &pt
		} else {
			cat := in.Category
			payment.PaymentCategory = &cat
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		entry := models.BalanceHistory{
			UserID:          member.ID,
			BalanceAmount:   payment.Amount,
			TransactionType: models.TxLoanPayment,
			Description:     balanceDescription(in),
			TransactionDate: in.Date,
		}
		if !in.isLoanRepayment() {
			cat := in.Category
			entry.TransactionType = in.Category
			entry.PaymentCategory = &cat
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if in.isLoanRepayment() {
			sum, err := sumPaidForLoan(tx, loan.ID)
			if err != nil {
				return err
			}
			res.SumPaid = sum
			if loan.Settles(sum) {
				err := tx.Model(&models.Loan{}).
					Where("id = ? AND status = ?", loan.ID, models.LoanActive).
					Update("status", models.LoanPaid).Error
				if err != nil {
					return err
				}
				res.LoanPaid = true
			}
		}
		res.Payment = payment
		return nil
	})
	if err != nil {
		return paymentResult{}, err
	}
	return res, nil
}

func createPaymentHandler(c *gin.Context) {
	var req struct {
		UserID          string          `json:"user_id" binding:"required"`
		Amount          decimal.Decimal `json:"amount"`
		PaymentCategory string          `json:"payment_category"`
		LoanID          string          `json:"loan_id"`
		PaymentType     string          `json:"payment_type"`
		Date            string          `json:"payment_date" binding:"required"`
		Notes           string          `json:"notes"`
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
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_date must be YYYY-MM-DD"})
		return
	}
	in := paymentInput{
		UserID:      userID,
		Amount:      req.Amount,
		Category:    req.PaymentCategory,
		PaymentType: req.PaymentType,
		Date:        date,
		Notes:       req.Notes,
	}
	if req.LoanID != "" {
		loanID, err := uuid.Parse(req.LoanID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan_id"})
			return
		}
		in.LoanID = &loanID
	}
	res, err := recordPayment(db, in)
	if err != nil {
		switch {
		case errors.Is(err, errMemberNotFound), errors.Is(err, errLoanNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, errLoanNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, errLoanWrongMember),
			errors.Is(err, errNegativeAmount),
			errors.Is(err, errCategoryAndLoan),
			errors.Is(err, errNeedCategoryOrLn),
			errors.Is(err, errBadCategory),
			errors.Is(err, errBadPaymentType),
			errors.Is(err, errTypeNeedsLoan):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Errorf("record payment failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "record payment failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"payment":   res.Payment,
		"sum_paid":  res.SumPaid,
		"loan_paid": res.LoanPaid,
	})
}

// listPaymentsHandler lists payments newest-first, optionally scoped by member
// or loan.
func listPaymentsHandler(c *gin.Context) {
	q := db.Model(&models.Payment{}).Order("payment_date desc, created_at desc")
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		q = q.Where("user_id = ?", id)
	}
	if v := c.Query("loan_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan_id"})
			return
		}
		q = q.Where("loan_id = ?", id)
	}
	var payments []models.Payment
	if err := q.Limit(200).Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, payments)
}
