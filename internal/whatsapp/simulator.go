package whatsapp

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"whatsbot-gateway/pkg/logger"

	"go.uber.org/zap"
)

// ErrSimulatedFailure is returned by the simulator when a send is rolled as
// failed.
var ErrSimulatedFailure = errors.New("simulated delivery failure")

// Simulator stands in for the real transport: each send sleeps for a
// randomized 1-2s latency and fails with the configured probability. Used in
// development and by default until Cloud API credentials are wired up.
type Simulator struct {
	mu          sync.Mutex
	ready       bool
	failureRate float64
	minDelay    time.Duration
	jitter      time.Duration
	rng         *rand.Rand
}

func NewSimulator(failureRate float64) *Simulator {
	return &Simulator{
		ready:       true,
		failureRate: failureRate,
		minDelay:    time.Second,
		jitter:      time.Second,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetReady toggles the channel-ready flag.
func (s *Simulator) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Simulator) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// SetDelay overrides the simulated latency window. Tests use zero delays.
func (s *Simulator) SetDelay(min, jitter time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minDelay = min
	s.jitter = jitter
}

func (s *Simulator) Send(ctx context.Context, phone, text string) error {
	s.mu.Lock()
	delay := s.minDelay
	if s.jitter > 0 {
		delay += time.Duration(s.rng.Int63n(int64(s.jitter)))
	}
	fail := s.rng.Float64() < s.failureRate
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
	}

	if fail {
		return ErrSimulatedFailure
	}
	logger.Debug("Simulated message delivered", zap.String("phone", phone), zap.Int("length", len(text)))
	return nil
}
