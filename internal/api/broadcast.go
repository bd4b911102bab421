package api

import (
	"errors"
	"fmt"
	"net/http"

	"whatsbot-gateway/internal/broadcast"
	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BroadcastHandler struct {
	Orchestrator *broadcast.Orchestrator
	Selection    *store.Selection
	DB           *gorm.DB
}

func NewBroadcastHandler(orch *broadcast.Orchestrator, sel *store.Selection, db *gorm.DB) *BroadcastHandler {
	return &BroadcastHandler{Orchestrator: orch, Selection: sel, DB: db}
}

// SendBroadcast runs one bulk send over the current selection. Preconditions
// fail with 400 before anything is mutated; a run already in flight is 409.
func (h *BroadcastHandler) SendBroadcast(c *gin.Context) {
	var req broadcast.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.Orchestrator.Run(c.Request.Context(), req)
	switch {
	case errors.Is(err, broadcast.ErrSendInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, broadcast.ErrChannelNotReady),
		errors.Is(err, broadcast.ErrEmptySelection),
		errors.Is(err, broadcast.ErrNoTemplate),
		errors.Is(err, broadcast.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": fmt.Sprintf("Messages sent to %d customers", report.Attempted),
		"report": report,
	})
}

// GetProcessingStatus returns the per-order outcome map of the last run.
func (h *BroadcastHandler) GetProcessingStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"in_progress": h.Orchestrator.InProgress(),
		"processing":  h.Selection.ProcessingSnapshot(),
	})
}

// GetMessages lists the message delivery log, newest first.
func (h *BroadcastHandler) GetMessages(c *gin.Context) {
	var logs []models.MessageLog
	if err := h.DB.Order("created_at DESC").Limit(500).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []models.MessageLog{}
	}
	c.JSON(http.StatusOK, logs)
}
