package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"koperasiku/models"
	"koperasiku/pkg/logger"
	"koperasiku/pkg/receipt"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// uploadFileHandler stores a member photo or a payment receipt. Photos update
// the owner's photo_url; receipts get a thumbnail and an OCR pass that
// suggests the transfer amount for the pengurus to confirm.
func uploadFileHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	// a pengurus may upload on behalf of a member
	owner := user
	if v := c.PostForm("user_id"); v != "" {
		if user.Role != models.RolePengurus {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		var target models.User
		if err := db.First(&target, "id = ?", id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		owner = &target
	}

	kind := c.PostForm("kind")
	if kind == "" {
		kind = models.UploadPhoto
	}
	if kind != models.UploadPhoto && kind != models.UploadReceipt {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be photo or receipt"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	ct := file.Header.Get("Content-Type")

	baseDir := uploadBaseDir()
	relPath := filepath.Join(kind, owner.ID.String()+"_"+filepath.Base(file.Filename))
	fullPath := filepath.Join(baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	up := models.Upload{
		UserID:      owner.ID,
		Kind:        kind,
		FileName:    file.Filename,
		StorePath:   relPath,
		ContentType: ct,
	}

	// thumbnail alongside the original; failures are non-fatal
	if thumbRel, err := writeThumbnail(baseDir, relPath); err != nil {
		logger.Warnf("thumbnail failed for %s: %v", relPath, err)
	} else {
		up.ThumbPath = thumbRel
	}

	if kind == models.UploadReceipt {
		if amt, raw, err := receipt.ExtractAmount(fullPath); err != nil {
			up.Failed = true
			up.FailedReason = trimReason(err.Error())
		} else if amt > 0 {
			d := decimal.NewFromInt(amt)
			up.SuggestedAmount = &d
			logger.WithFields(map[string]interface{}{
				"file":   relPath,
				"amount": amt,
				"match":  raw,
			}).Info("receipt amount suggested")
		}
	}

	if err := db.Create(&up).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}

	if kind == models.UploadPhoto {
		if err := db.Model(&models.User{}).Where("id = ?", owner.ID).Update("photo_url", relPath).Error; err != nil {
			logger.Warnf("failed to set photo_url for %s: %v", owner.ID, err)
		}
	}

	c.JSON(http.StatusOK, up)
}

// writeThumbnail renders a 256px bounded thumbnail next to the original and
// returns its relative path.
func writeThumbnail(baseDir, relPath string) (string, error) {
	src, err := imaging.Open(filepath.Join(baseDir, relPath))
	if err != nil {
		return "", err
	}
	thumb := imaging.Fit(src, 256, 256, imaging.Lanczos)
	ext := filepath.Ext(relPath)
	thumbRel := strings.TrimSuffix(relPath, ext) + ".thumb.jpg"
	if err := imaging.Save(thumb, filepath.Join(baseDir, thumbRel)); err != nil {
		return "", err
	}
	return thumbRel, nil
}

func trimReason(s string) string {
	if len(s) > 255 {
		return s[:255]
	}
	return s
}

// listUploadsHandler returns uploads; pengurus sees all, a member only their own.
func listUploadsHandler(c *gin.Context) {
	role, _ := c.Get("role")
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var uploads []models.Upload
	q := db.Model(&models.Upload{})
	if role != models.RolePengurus {
		q = q.Where("user_id = ?", user.ID)
	}
	if err := q.Order("created_at desc").Limit(100).Find(&uploads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, uploads)
}

// getUploadHandler returns a single upload if pengurus or owner.
func getUploadHandler(c *gin.Context) {
	role, _ := c.Get("role")
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var up models.Upload
	if err := db.First(&up, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if role != models.RolePengurus && up.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, up)
}
