package webhook

import (
	"context"
	"net/http"
	"time"

	"whatsbot-gateway/internal/config"
	"whatsbot-gateway/internal/engine"
	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/internal/store"
	"whatsbot-gateway/internal/whatsapp"
	"whatsbot-gateway/pkg/logger"
	pkgmodels "whatsbot-gateway/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler receives inbound customer messages and applies the confirmation
// transition or an FAQ auto-reply.
type Handler struct {
	Config *config.Config
	DB     *gorm.DB
	Store  *store.Store
	Sender whatsapp.Sender
}

func NewHandler(cfg *config.Config, db *gorm.DB, st *store.Store, sender whatsapp.Sender) *Handler {
	return &Handler{Config: cfg, DB: db, Store: st, Sender: sender}
}

// VerifyWebhook answers the Meta subscription handshake.
func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "" && token != "" {
		if mode == "subscribe" && token == h.Config.VerifyToken {
			logger.Info("Webhook verified successfully")
			c.String(http.StatusOK, challenge)
		} else {
			c.Status(http.StatusForbidden)
		}
	} else {
		c.Status(http.StatusBadRequest)
	}
}

// HandleMessage accepts a webhook delivery and processes any text messages.
func (h *Handler) HandleMessage(c *gin.Context) {
	var payload pkgmodels.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Warn("Error binding webhook JSON", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	if len(payload.Entry) > 0 && len(payload.Entry[0].Changes) > 0 {
		value := payload.Entry[0].Changes[0].Value
		if len(value.Messages) > 0 {
			message := value.Messages[0]
			if message.Type == "text" && message.Text != nil {
				h.Process(c.Request.Context(), message.From, message.Text.Body)
			}
		}
	}

	c.Status(http.StatusOK)
}

// Process applies the inbound-message rules for (phone, text): log the
// message; if an order on that phone is waiting in To Process and the text is
// a confirmation, transition it to Confirmed; otherwise try an FAQ
// auto-reply. No match means no state change.
func (h *Handler) Process(ctx context.Context, phone, text string) {
	now := time.Now().UTC()
	logger.Info("Inbound message", zap.String("phone", phone))

	h.logInbound(phone, text)

	if engine.IsConfirmation(text) {
		if _, err := h.Store.ConfirmByPhone(phone, now); err == nil {
			return
		}
		// No order waiting on this phone; fall through to the FAQ channel.
	}

	var faqs []models.FAQ
	if err := h.DB.Order("created_at").Find(&faqs).Error; err != nil {
		logger.Error("Failed to load FAQs", zap.Error(err))
		return
	}
	faq := engine.MatchFAQ(text, faqs)
	if faq == nil {
		return
	}

	var settings models.Settings
	if err := h.DB.First(&settings).Error; err != nil {
		logger.Error("Failed to load settings", zap.Error(err))
		return
	}
	reply := engine.Render(faq.Answer, models.Order{}, settings)
	if err := h.Sender.Send(ctx, phone, reply); err != nil {
		logger.Warn("FAQ auto-reply failed", zap.String("phone", phone), zap.Error(err))
	}
}

func (h *Handler) logInbound(phone, text string) {
	entry := models.MessageLog{
		ID:        uuid.NewString(),
		Phone:     phone,
		Direction: "inbound",
		Content:   text,
		Status:    "received",
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		logger.Error("Failed to persist inbound message log", zap.Error(err))
	}
}
