package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan statuses. A loan moves active -> paid exactly once, when the cumulative
// completed payments reach MonthlyPayment * DurationMonths. There is no path
// back from paid.
const (
	LoanActive = "active"
	LoanPaid   = "paid"
)

// Loan is a member loan with a fixed monthly installment schedule.
type Loan struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User           User            `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Amount         decimal.Decimal `gorm:"type:numeric(16,2);not null" json:"amount"`
	MonthlyPayment decimal.Decimal `gorm:"type:numeric(16,2);not null" json:"monthly_payment"`
	DurationMonths int             `gorm:"not null" json:"duration_months"`
	Status         string          `gorm:"size:16;not null;default:active;index" json:"status"`
}

// ExpectedTotal is the full repayment obligation: monthly installment times
// the number of months.
func (l Loan) ExpectedTotal() decimal.Decimal {
	return l.MonthlyPayment.Mul(decimal.NewFromInt(int64(l.DurationMonths)))
}

// Remaining returns the outstanding obligation given the sum of completed
// payments so far. Overpayment is clamped to zero so displayed balances are
// never negative.
func (l Loan) Remaining(sumPaid decimal.Decimal) decimal.Decimal {
	rem := l.ExpectedTotal().Sub(sumPaid)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// Settles reports whether a cumulative paid total is enough to close the loan.
func (l Loan) Settles(newSum decimal.Decimal) bool {
	return l.Status == LoanActive && newSum.GreaterThanOrEqual(l.ExpectedTotal())
}
