package main

import (
	"fmt"
	"strings"

	"koperasiku/models"

	"golang.org/x/crypto/bcrypt"
)

// RegisterMember creates an anggota account from the self-service signup form.
// The phone/plaintext-password registration path of the old system is gone;
// every account authenticates with email + bcrypt hash.
func RegisterMember(email, password, fullName, phone string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)
	if email == "" {
		return models.User{}, fmt.Errorf("email required")
	}
	if fullName == "" {
		return models.User{}, fmt.Errorf("full_name required")
	}
	if len(password) < 6 { // basic password policy
		return models.User{}, fmt.Errorf("password too short (min 6)")
	}
	if phone == "" {
		// phone is the unique member handle; fall back to email local part
		// is not acceptable here, so require it.
		return models.User{}, fmt.Errorf("phone required")
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("email = ? OR phone = ?", email, phone).First(&existing).Error; err == nil {
		return models.User{}, fmt.Errorf("email or phone already registered")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		FullName:     fullName,
		Phone:        phone,
		Email:        &email,
		Role:         models.RoleAnggota,
		IsActive:     true,
		PasswordHash: hashed,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return models.User{}, fmt.Errorf("email or phone already registered")
		}
		return models.User{}, err
	}
	return user, nil
}

// Authenticate verifies credentials and the active flag. An inactive account
// never receives a session, mirroring the sign-back-out behavior of the old
// post-login active check.
func Authenticate(email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if !user.IsActive {
		return models.User{}, fmt.Errorf("akun nonaktif, hubungi pengurus")
	}
	return user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
