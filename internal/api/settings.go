package api

import (
	"net/http"

	"whatsbot-gateway/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SettingsHandler struct {
	DB *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{DB: db}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	var settings models.Settings
	if err := h.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type SettingsRequest struct {
	BusinessName     string `json:"business_name"`
	WebsiteURL       string `json:"website_url"`
	AutoRun          bool   `json:"auto_run"`
	HeadlessMode     bool   `json:"headless_mode"`
	MessageInterval  int    `json:"message_interval"`
	FollowUpInterval int    `json:"follow_up_interval"`
	MaxFollowUps     int    `json:"max_follow_ups"`
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.MessageInterval < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message_interval must be at least 1 minute"})
		return
	}
	if req.MaxFollowUps < 1 || req.MaxFollowUps > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_follow_ups must be between 1 and 5"})
		return
	}

	var settings models.Settings
	if err := h.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	settings.BusinessName = req.BusinessName
	settings.WebsiteURL = req.WebsiteURL
	settings.AutoRun = req.AutoRun
	settings.HeadlessMode = req.HeadlessMode
	settings.MessageInterval = req.MessageInterval
	settings.FollowUpInterval = req.FollowUpInterval
	settings.MaxFollowUps = req.MaxFollowUps

	if err := h.DB.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	resp := gin.H{"settings": settings}
	// A follow-up window under 30 minutes is accepted but flagged.
	if req.FollowUpInterval < 30 {
		resp["warning"] = "follow_up_interval below 30 minutes may trigger rapid repeat messages"
	}
	c.JSON(http.StatusOK, resp)
}
