package sweeper

import (
	"errors"
	"time"

	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/internal/store"
	"whatsbot-gateway/pkg/logger"

	"github.com/jasonlvhit/gocron"
	"go.uber.org/zap"
)

// StaleThreshold is how long a To Process order may sit without a response
// after its last outbound message before it is re-labelled Not Responding.
const StaleThreshold = 48 * time.Hour

// Notifier receives a callback per flagged order. May be nil.
type Notifier interface {
	NotifySweeperFlagged(order models.Order)
}

// Sweeper periodically re-labels stale unanswered orders.
type Sweeper struct {
	store     *store.Store
	notifier  Notifier
	scheduler *gocron.Scheduler
}

func New(st *store.Store, notifier Notifier) *Sweeper {
	return &Sweeper{store: st, notifier: notifier, scheduler: gocron.NewScheduler()}
}

// Start schedules Sweep every intervalMinutes and runs the scheduler in a
// background goroutine.
func (s *Sweeper) Start(intervalMinutes int) {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	s.scheduler.Every(uint64(intervalMinutes)).Minutes().Do(s.run)
	go func() {
		<-s.scheduler.Start()
	}()
	logger.Info("Non-responsive sweeper started", zap.Int("interval_minutes", intervalMinutes))
}

// Stop clears the schedule.
func (s *Sweeper) Stop() {
	s.scheduler.Clear()
}

func (s *Sweeper) run() {
	if _, err := s.Sweep(time.Now().UTC()); err != nil {
		logger.Error("Sweeper pass failed", zap.Error(err))
	}
}

// Sweep performs one pass: every To Process order whose last message went out
// more than StaleThreshold before now is transitioned to Not Responding.
// Idempotent - already flagged orders are excluded by the status filter.
func (s *Sweeper) Sweep(now time.Time) (int, error) {
	stale, err := s.store.Stale(now.Add(-StaleThreshold))
	if err != nil {
		return 0, err
	}

	flagged := 0
	for _, order := range stale {
		err := s.store.SetStatus(order.ID, models.StatusNotResponding)
		if errors.Is(err, store.ErrNotFound) {
			continue // deleted since the query, nothing to do
		}
		if err != nil {
			logger.Error("Failed to flag stale order", zap.String("order_id", order.ID), zap.Error(err))
			continue
		}
		flagged++
		order.Status = models.StatusNotResponding
		if s.notifier != nil {
			s.notifier.NotifySweeperFlagged(order)
		}
		logger.Info("Order marked Not Responding",
			zap.String("order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.Timep("last_message_sent", order.LastMessageSent))
	}
	return flagged, nil
}
