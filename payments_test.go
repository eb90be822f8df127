package main

import (
	"testing"
	"time"

	"koperasiku/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func basePaymentInput() paymentInput {
	return paymentInput{
		UserID: uuid.New(),
		Amount: decimal.NewFromInt(500_000),
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidatePaymentInputCategory(t *testing.T) {
	in := basePaymentInput()
	in.Category = models.CategoryInfaq
	assert.NoError(t, validatePaymentInput(in))

	in.Category = "zakat"
	assert.ErrorIs(t, validatePaymentInput(in), errBadCategory)
}

func TestValidatePaymentInputLoan(t *testing.T) {
	loanID := uuid.New()

	in := basePaymentInput()
	in.LoanID = &loanID
	in.PaymentType = models.PaymentMonthly
	assert.NoError(t, validatePaymentInput(in))

	in.PaymentType = "weekly"
	assert.ErrorIs(t, validatePaymentInput(in), errBadPaymentType)
}

func TestValidatePaymentInputMutualExclusivity(t *testing.T) {
	loanID := uuid.New()

	// both set
	in := basePaymentInput()
	in.LoanID = &loanID
	in.PaymentType = models.PaymentPartial
	in.Category = models.CategoryWajib
	assert.ErrorIs(t, validatePaymentInput(in), errCategoryAndLoan)

	// neither set
	in = basePaymentInput()
	assert.ErrorIs(t, validatePaymentInput(in), errNeedCategoryOrLn)

	// payment_type without a loan
	in = basePaymentInput()
	in.Category = models.CategoryTabungan
	in.PaymentType = models.PaymentFull
	assert.ErrorIs(t, validatePaymentInput(in), errTypeNeedsLoan)
}

func TestValidatePaymentInputAmount(t *testing.T) {
	in := basePaymentInput()
	in.Category = models.CategoryWajib
	in.Amount = decimal.NewFromInt(-1)
	assert.ErrorIs(t, validatePaymentInput(in), errNegativeAmount)

	// zero is allowed: amount-0 rows are administrative notes
	in.Amount = decimal.Zero
	assert.NoError(t, validatePaymentInput(in))
}

func TestBalanceDescription(t *testing.T) {
	loanID := uuid.New()

	in := basePaymentInput()
	in.LoanID = &loanID
	in.PaymentType = models.PaymentMonthly
	assert.Equal(t, "Pembayaran Pinjaman (monthly)", balanceDescription(in))

	in = basePaymentInput()
	in.Category = models.CategoryInfaq
	assert.Equal(t, "Payment: infaq", balanceDescription(in))
}
