package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment categories for standalone member contributions (LoanID must be null).
const (
	CategoryWajib    = "wajib"
	CategoryInfaq    = "infaq"
	CategoryTabungan = "tabungan"
)

// Payment types for loan repayments (LoanID must be set).
const (
	PaymentMonthly = "monthly"
	PaymentPartial = "partial"
	PaymentFull    = "full"
)

// Payment statuses. Amount-0 pending rows double as pengurus notes.
const (
	PaymentCompleted = "completed"
	PaymentPending   = "pending"
)

// Payment records money received from a member. Exactly one of LoanID
// (a loan repayment, classified by PaymentType) or PaymentCategory (a
// standalone contribution) is set. Rows are immutable once created.
type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	LoanID          *uuid.UUID      `gorm:"type:uuid;index" json:"loan_id,omitempty"`
	Loan            *Loan           `gorm:"foreignKey:LoanID" json:"-"`
	Amount          decimal.Decimal `gorm:"type:numeric(16,2);not null" json:"amount"`
	PaymentCategory *string         `gorm:"size:32;index" json:"payment_category,omitempty"`
	PaymentType     *string         `gorm:"size:32" json:"payment_type,omitempty"`
	PaymentDate     time.Time       `gorm:"not null;index" json:"payment_date"`
	Notes           string          `gorm:"size:1024" json:"notes"`
	Status          string          `gorm:"size:16;not null;default:completed;index" json:"status"`
}
