package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Anggota are regular cooperative members, pengurus are the
// administrators who run the back office.
const (
	RoleAnggota  = "anggota"
	RolePengurus = "pengurus"
)

// User is a koperasi account: login credentials plus the member profile.
// Accounts are never hard-deleted; deactivation flips IsActive instead.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Phone        string    `gorm:"size:64;uniqueIndex;not null" json:"phone"`
	Email        *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Role         string    `gorm:"size:32;not null;default:anggota;index" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	PhotoURL     *string   `gorm:"size:512" json:"photo_url,omitempty"`
	PasswordHash []byte    `gorm:"not null" json:"-"`

	Loans    []Loan    `gorm:"foreignKey:UserID" json:"-"`
	Payments []Payment `gorm:"foreignKey:UserID" json:"-"`
}
