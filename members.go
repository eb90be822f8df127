package main

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"koperasiku/models"
	"koperasiku/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

// listAnggotaHandler returns the member book ordered by name. The optional q
// parameter does the case-insensitive substring filtering the front end used
// to do over name/phone/address/status.
func listAnggotaHandler(c *gin.Context) {
	var rows []models.Anggota
	q := db.Model(&models.Anggota{}).Order("full_name asc")
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + s + "%"
		q = q.Where("full_name ILIKE ? OR phone ILIKE ? OR address ILIKE ? OR status ILIKE ?", like, like, like, like)
	}
	if err := q.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func createAnggotaHandler(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
		Status   string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := req.Status
	if status == "" {
		status = models.AnggotaAktif
	}
	if status != models.AnggotaAktif && status != models.AnggotaNonaktif {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be aktif or nonaktif"})
		return
	}
	row := models.Anggota{
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
		Status:   status,
	}
	if err := db.Create(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, row)
}

// listUsersHandler lists accounts ordered by name with the same substring
// filter treatment as the anggota book (name/phone/role).
func listUsersHandler(c *gin.Context) {
	var users []models.User
	q := db.Model(&models.User{}).Order("full_name asc")
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + s + "%"
		q = q.Where("full_name ILIKE ? OR phone ILIKE ? OR role ILIKE ?", like, like, like)
	}
	if err := q.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, users)
}

type adminCreateUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=anggota pengurus"`
	IsActive *bool  `json:"is_active"`
}

// validateAdminCreateUser applies the input rules before anything touches the
// database. A pengurus account must have an email on file because password
// resets and announcements go through it.
func validateAdminCreateUser(req adminCreateUserRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.Role == models.RolePengurus && strings.TrimSpace(req.Email) == "" {
		return errEmailRequiredForPengurus
	}
	return nil
}

var errEmailRequiredForPengurus = validationError("email wajib untuk role pengurus")

type validationError string

func (e validationError) Error() string { return string(e) }

// adminCreateUserHandler is the privileged insert that used to be the
// admin_insert_user RPC. Pengurus only; generates an initial password the
// admin hands to the new member.
func adminCreateUserHandler(c *gin.Context) {
	var req adminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateAdminCreateUser(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// random initial password, reported once in the response
	pw := make([]byte, 8)
	if _, err := rand.Read(pw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate password"})
		return
	}
	initialPassword := hex.EncodeToString(pw)
	hashed, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user := models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         req.Role,
		IsActive:     active,
		PasswordHash: hashed,
	}
	if e := strings.ToLower(strings.TrimSpace(req.Email)); e != "" {
		user.Email = &e
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "email or phone already registered"})
			return
		}
		logger.Errorf("admin create user failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "initial_password": initialPassword})
}

// createUserNoteHandler stores a pengurus note about a member's loan plans.
// Notes ride the payments table as amount-0 pending rows with no loan and no
// category, which keeps them out of every monetary aggregate.
func createUserNoteHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var target models.User
	if err := db.First(&target, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Notes string `json:"notes" binding:"required"`
		Date  string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	note := models.Payment{
		UserID:      target.ID,
		Amount:      decimal.Zero,
		PaymentDate: date,
		Notes:       req.Notes,
		Status:      models.PaymentPending,
	}
	if err := db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, note)
}

func listUserNotesHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var notes []models.Payment
	err = db.Where("user_id = ? AND loan_id IS NULL AND payment_type IS NULL AND notes <> ''", userID).
		Order("created_at desc").
		Find(&notes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, notes)
}
