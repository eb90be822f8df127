package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxLoanPayment is the transaction type recorded for loan repayments; standalone
// contributions record their category name instead.
const TxLoanPayment = "loan_payment"

// BalanceHistory is the append-only ledger mirror of every payment.
// BalanceAmount holds the individual transaction amount; the cooperative's
// current balance is the sum over all rows, never a single snapshot row.
type BalanceHistory struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	BalanceAmount   decimal.Decimal `gorm:"type:numeric(16,2);not null" json:"balance_amount"`
	TransactionType string          `gorm:"size:32;not null" json:"transaction_type"`
	PaymentCategory *string         `gorm:"size:32" json:"payment_category,omitempty"`
	Description     string          `gorm:"size:512" json:"description"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`
}
