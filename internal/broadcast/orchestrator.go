package broadcast

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"whatsbot-gateway/internal/engine"
	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/internal/store"
	"whatsbot-gateway/internal/whatsapp"
	"whatsbot-gateway/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Precondition failures. All of them abort before any state is touched.
var (
	ErrChannelNotReady = errors.New("messaging channel is not connected")
	ErrEmptySelection  = errors.New("no orders selected")
	ErrNoTemplate      = errors.New("selected template not found")
	ErrEmptyMessage    = errors.New("custom message is empty")
	ErrSendInProgress  = errors.New("a bulk send is already running")
)

// Mode selects where the message body comes from.
const (
	ModeTemplate = "template"
	ModeCustom   = "custom"
)

// Request describes one bulk send invocation.
type Request struct {
	Mode          string `json:"mode"`
	TemplateID    string `json:"template_id"`
	CustomMessage string `json:"custom_message"`
}

// Report is the aggregate outcome. The user-facing notification reports the
// attempted count; succeeded/failed ride along for clients that want the
// split.
type Report struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Notifier receives per-item and aggregate progress events. May be nil.
type Notifier interface {
	NotifySendProgress(orderID, state string)
	NotifySendComplete(attempted, succeeded, failed int)
}

// Orchestrator runs bulk sends over the current selection: resolve the body,
// render it per order, dispatch through the transport, and track each order's
// outcome independently. One failure never blocks or rolls back the rest.
type Orchestrator struct {
	db        *gorm.DB
	store     *store.Store
	selection *store.Selection
	sender    whatsapp.Sender
	notifier  Notifier
	inFlight  atomic.Bool
}

func NewOrchestrator(db *gorm.DB, st *store.Store, sel *store.Selection, sender whatsapp.Sender, notifier Notifier) *Orchestrator {
	return &Orchestrator{db: db, store: st, selection: sel, sender: sender, notifier: notifier}
}

// InProgress reports whether a run is active.
func (o *Orchestrator) InProgress() bool {
	return o.inFlight.Load()
}

// Run executes one bulk send. Re-entrant invocation while a run is in flight
// returns ErrSendInProgress. Cancelling ctx aborts between items; items
// already dispatched keep their outcome.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Report, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return Report{}, ErrSendInProgress
	}
	defer o.inFlight.Store(false)

	if !o.sender.Ready() {
		return Report{}, ErrChannelNotReady
	}

	selected := o.selection.Selected()
	if len(selected) == 0 {
		return Report{}, ErrEmptySelection
	}

	body, err := o.resolveBody(req)
	if err != nil {
		return Report{}, err
	}

	var settings models.Settings
	if err := o.db.First(&settings).Error; err != nil {
		return Report{}, err
	}

	// Resolve orders up front, in selection order. Ids whose order has
	// vanished are skipped rather than failing the run.
	var orders []models.Order
	for _, id := range selected {
		order, err := o.store.Get(id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return Report{}, err
		}
		orders = append(orders, order)
	}

	ids := make([]string, len(orders))
	for i, ord := range orders {
		ids[i] = ord.ID
	}
	o.selection.SetProcessing(ids)

	var report Report
	for _, order := range orders {
		select {
		case <-ctx.Done():
			o.notifyComplete(report)
			return report, ctx.Err()
		default:
		}

		report.Attempted++
		message := engine.Render(body, order, settings)

		if err := o.sender.Send(ctx, order.Phone, message); err != nil {
			report.Failed++
			o.selection.MarkError(order.ID)
			o.notifyProgress(order.ID, string(store.ProcessingError))
			o.logDelivery(order, message, "failed", err.Error())
			logger.Warn("Bulk send item failed",
				zap.String("order_id", order.ID), zap.String("phone", order.Phone), zap.Error(err))
			continue
		}

		report.Succeeded++
		o.selection.MarkSuccess(order.ID)
		o.notifyProgress(order.ID, string(store.ProcessingSuccess))
		o.logDelivery(order, message, "delivered", "")
		if err := o.store.MarkMessageSent(order.ID, time.Now().UTC()); err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Error("Failed to stamp last message time", zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	o.notifyComplete(report)
	logger.Info("Bulk send finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (o *Orchestrator) resolveBody(req Request) (string, error) {
	switch req.Mode {
	case ModeCustom:
		if strings.TrimSpace(req.CustomMessage) == "" {
			return "", ErrEmptyMessage
		}
		return req.CustomMessage, nil
	default:
		var tmpl models.Template
		err := o.db.First(&tmpl, "id = ?", req.TemplateID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoTemplate
		}
		if err != nil {
			return "", err
		}
		return tmpl.Content, nil
	}
}

func (o *Orchestrator) logDelivery(order models.Order, content, status, errMsg string) {
	entry := models.MessageLog{
		ID:           uuid.NewString(),
		OrderID:      order.ID,
		Phone:        order.Phone,
		OrderNumber:  order.OrderNumber,
		CustomerName: order.Name,
		Direction:    "outbound",
		Content:      content,
		Status:       status,
		ErrorMessage: errMsg,
	}
	if err := o.db.Create(&entry).Error; err != nil {
		// In-memory outcome remains the source of truth for this run.
		logger.Error("Failed to persist message log", zap.Error(err))
	}
}

func (o *Orchestrator) notifyProgress(orderID, state string) {
	if o.notifier != nil {
		o.notifier.NotifySendProgress(orderID, state)
	}
}

func (o *Orchestrator) notifyComplete(r Report) {
	if o.notifier != nil {
		o.notifier.NotifySendComplete(r.Attempted, r.Succeeded, r.Failed)
	}
}
