package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func rp(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func sampleLoan() Loan {
	return Loan{
		Amount:         rp(6_000_000),
		MonthlyPayment: rp(500_000),
		DurationMonths: 12,
		Status:         LoanActive,
	}
}

func TestExpectedTotal(t *testing.T) {
	l := sampleLoan()
	assert.True(t, l.ExpectedTotal().Equal(rp(6_000_000)))
}

func TestRemainingNeverNegative(t *testing.T) {
	l := sampleLoan()

	assert.True(t, l.Remaining(rp(0)).Equal(rp(6_000_000)))
	assert.True(t, l.Remaining(rp(5_500_000)).Equal(rp(500_000)))
	assert.True(t, l.Remaining(rp(6_000_000)).Equal(rp(0)))
	// overpayment clamps to zero instead of going negative
	assert.True(t, l.Remaining(rp(7_000_000)).Equal(rp(0)))
}

func TestSettlesAtExactThreshold(t *testing.T) {
	l := sampleLoan()

	assert.False(t, l.Settles(rp(5_999_999)), "one rupiah short must stay active")
	assert.True(t, l.Settles(rp(6_000_000)), "exactly the expected total settles")
	assert.True(t, l.Settles(rp(6_100_000)))
}

func TestSettlesNeverReopensPaidLoan(t *testing.T) {
	l := sampleLoan()
	l.Status = LoanPaid
	assert.False(t, l.Settles(rp(10_000_000)))
}
