package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

type AgeController struct {
	DB *gorm.DB
}

func NewAgeController(db *gorm.DB) *AgeController {
	return &AgeController{DB: db}
}

// Verify marks the session as of-age and records an audit row.
func (ac *AgeController) Verify(c *gin.Context) {
	var input struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !input.Confirmed {
		utils.RespondError(c, http.StatusForbidden, errors.New("age confirmation declined"))
		return
	}

	if err := utils.SetAgeVerified(c); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	record := models.AgeVerification{
		SessionID:  utils.SessionID(c),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		VerifiedAt: time.Now(),
	}
	if err := ac.DB.Create(&record).Error; err != nil {
		utils.ErrorLogger.Printf("age verification audit write failed: %v", err)
	}

	utils.RespondJSON(c, http.StatusOK, "Age verified", nil)
}

// Status lets the frontend decide whether to show the gate.
func (ac *AgeController) Status(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Age verification status", gin.H{
		"verified": utils.IsAgeVerified(c),
	})
}
