package api

import (
	"net/http"
	"strings"

	"whatsbot-gateway/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FAQHandler struct {
	DB *gorm.DB
}

func NewFAQHandler(db *gorm.DB) *FAQHandler {
	return &FAQHandler{DB: db}
}

func (h *FAQHandler) GetFAQs(c *gin.Context) {
	var faqs []models.FAQ
	if err := h.DB.Order("created_at").Find(&faqs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if faqs == nil {
		faqs = []models.FAQ{}
	}
	c.JSON(http.StatusOK, faqs)
}

type FAQRequest struct {
	Question string   `json:"question" binding:"required"`
	Answer   string   `json:"answer" binding:"required"`
	Keywords []string `json:"keywords" binding:"required"`
}

func (r FAQRequest) keywordsColumn() (string, bool) {
	var cleaned []string
	for _, k := range r.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, strings.ToLower(k))
		}
	}
	if len(cleaned) == 0 {
		return "", false
	}
	return strings.Join(cleaned, ","), true
}

func (h *FAQHandler) CreateFAQ(c *gin.Context) {
	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	keywords, ok := req.keywordsColumn()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one keyword is required"})
		return
	}

	faq := models.FAQ{
		ID:       uuid.NewString(),
		Question: req.Question,
		Answer:   req.Answer,
		Keywords: keywords,
	}
	if err := h.DB.Create(&faq).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create FAQ"})
		return
	}
	c.JSON(http.StatusCreated, faq)
}

func (h *FAQHandler) UpdateFAQ(c *gin.Context) {
	id := c.Param("id")
	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	keywords, ok := req.keywordsColumn()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one keyword is required"})
		return
	}

	res := h.DB.Model(&models.FAQ{}).Where("id = ?", id).Updates(map[string]interface{}{
		"question": req.Question,
		"answer":   req.Answer,
		"keywords": keywords,
	})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update FAQ"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "FAQ not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "FAQ updated"})
}

func (h *FAQHandler) DeleteFAQ(c *gin.Context) {
	res := h.DB.Delete(&models.FAQ{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete FAQ"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "FAQ not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "FAQ deleted"})
}
