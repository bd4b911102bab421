package webhook

import (
	"context"
	"testing"

	"whatsbot-gateway/internal/config"
	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeSender struct {
	sent []sentMessage
}

type sentMessage struct {
	Phone string
	Text  string
}

func (f *fakeSender) Ready() bool { return true }

func (f *fakeSender) Send(_ context.Context, phone, text string) error {
	f.sent = append(f.sent, sentMessage{Phone: phone, Text: text})
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeSender, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Order{}, &models.FAQ{}, &models.Settings{}, &models.MessageLog{}))

	require.NoError(t, db.Create(&models.Settings{
		BusinessName: "Acme", WebsiteURL: "acme.test",
		MessageInterval: 5, FollowUpInterval: 120, MaxFollowUps: 3,
	}).Error)

	st := store.NewStore(db, store.NewSelection())
	sender := &fakeSender{}
	h := NewHandler(&config.Config{VerifyToken: "secret"}, db, st, sender)
	return h, sender, db
}

func TestProcessConfirmsWaitingOrder(t *testing.T) {
	h, sender, _ := newTestHandler(t)

	order, err := h.Store.Add(models.Order{
		Name: "Ali", Phone: "3001111111", Product: "Blender",
		Status: models.StatusToProcess,
	})
	require.NoError(t, err)

	h.Process(context.Background(), "3001111111", "Han ji kr do")

	got, err := h.Store.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.NotNil(t, got.LastResponseReceived)
	assert.Equal(t, 1, got.ResponseCount)
	assert.Empty(t, sender.sent)
}

func TestProcessConfirmationWithoutOrderFallsThroughToFAQ(t *testing.T) {
	h, sender, db := newTestHandler(t)

	require.NoError(t, db.Create(&models.FAQ{
		ID: "faq-1", Question: "Delivery time?",
		Answer:   "Delivery takes 3 to 5 days.",
		Keywords: "delivery,ok",
	}).Error)

	// "ok" is a confirmation keyword, but no To Process order exists for
	// this phone, so the FAQ channel answers instead.
	h.Process(context.Background(), "3009999999", "ok")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "3009999999", sender.sent[0].Phone)
	assert.Equal(t, "Delivery takes 3 to 5 days.", sender.sent[0].Text)
}

func TestProcessFAQAutoReply(t *testing.T) {
	h, sender, db := newTestHandler(t)

	require.NoError(t, db.Create(&models.FAQ{
		ID: "faq-1", Question: "Website?",
		Answer:   "Visit {websiteUrl} for the full catalogue.",
		Keywords: "website,site",
	}).Error)

	h.Process(context.Background(), "3001111111", "Where is your website?")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Visit acme.test for the full catalogue.", sender.sent[0].Text)
}

func TestProcessNoMatchIsNoOp(t *testing.T) {
	h, sender, db := newTestHandler(t)

	order, err := h.Store.Add(models.Order{
		Name: "Ali", Phone: "3001111111", Product: "Blender",
		Status: models.StatusToProcess,
	})
	require.NoError(t, err)

	h.Process(context.Background(), "3001111111", "random chatter")

	got, err := h.Store.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusToProcess, got.Status)
	assert.Empty(t, sender.sent)

	// The inbound message is still logged.
	var logs []models.MessageLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "inbound", logs[0].Direction)
	assert.Equal(t, "received", logs[0].Status)
	assert.Equal(t, "random chatter", logs[0].Content)
}

func TestProcessConfirmationDoesNotTouchOtherPhones(t *testing.T) {
	h, _, _ := newTestHandler(t)

	other, err := h.Store.Add(models.Order{
		Name: "Sana", Phone: "3002222222", Product: "Kettle",
		Status: models.StatusToProcess,
	})
	require.NoError(t, err)

	h.Process(context.Background(), "3001111111", "confirmed")

	got, err := h.Store.Get(other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusToProcess, got.Status)
}
