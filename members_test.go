package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAdminCreateUserPengurusNeedsEmail(t *testing.T) {
	req := adminCreateUserRequest{
		FullName: "Budi Santoso",
		Phone:    "081234567890",
		Role:     "pengurus",
	}
	err := validateAdminCreateUser(req)
	assert.ErrorIs(t, err, errEmailRequiredForPengurus)

	req.Email = "budi@example.com"
	assert.NoError(t, validateAdminCreateUser(req))
}

func TestValidateAdminCreateUserAnggotaEmailOptional(t *testing.T) {
	req := adminCreateUserRequest{
		FullName: "Siti Aminah",
		Phone:    "081298765432",
		Role:     "anggota",
	}
	assert.NoError(t, validateAdminCreateUser(req))
}

func TestValidateAdminCreateUserRejectsUnknownRole(t *testing.T) {
	req := adminCreateUserRequest{
		FullName: "X",
		Phone:    "0812",
		Role:     "superadmin",
	}
	assert.Error(t, validateAdminCreateUser(req))
}

func TestValidateAdminCreateUserRejectsBadEmail(t *testing.T) {
	req := adminCreateUserRequest{
		FullName: "X",
		Phone:    "0812",
		Role:     "anggota",
		Email:    "not-an-email",
	}
	assert.Error(t, validateAdminCreateUser(req))
}
