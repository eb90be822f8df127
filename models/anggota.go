package models

import (
	"time"

	"github.com/google/uuid"
)

// Anggota statuses.
const (
	AnggotaAktif    = "aktif"
	AnggotaNonaktif = "nonaktif"
)

// Anggota is the cooperative's member book: a standalone registry row kept by
// the pengurus, independent of whether the person has a login account.
type Anggota struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	Phone     string    `gorm:"size:64" json:"phone"`
	Address   string    `gorm:"size:512" json:"address"`
	Status    string    `gorm:"size:16;not null;default:aktif" json:"status"`
}
