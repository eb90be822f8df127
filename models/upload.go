package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Upload kinds.
const (
	UploadPhoto   = "photo"   // member profile photo
	UploadReceipt = "receipt" // payment proof image
)

// Upload is a stored file belonging to a user: either a profile photo or a
// payment receipt. Receipts may carry an OCR-suggested amount for the pengurus
// to confirm when recording the payment.
type Upload struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User            User             `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Kind            string           `gorm:"size:16;not null;index" json:"kind"`
	FileName        string           `gorm:"size:255;not null" json:"file_name"`
	StorePath       string           `gorm:"column:store_path;size:512" json:"store_path"`
	ThumbPath       string           `gorm:"column:thumb_path;size:512" json:"thumb_path"`
	ContentType     string           `gorm:"size:128" json:"content_type"`
	SuggestedAmount *decimal.Decimal `gorm:"type:numeric(16,2)" json:"suggested_amount,omitempty"`
	// OCR failures are recorded, not deleted, so the pengurus can review them.
	Failed       bool   `gorm:"default:false;index" json:"failed"`
	FailedReason string `gorm:"size:255" json:"failed_reason,omitempty"`
}
