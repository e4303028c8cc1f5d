package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweepResult counts what one housekeeping pass removed.
type SweepResult struct {
	Tokens int `json:"tokens"`
	Codes  int `json:"codes"`
}

// HousekeepingService periodically drops expired token pairs and
// authorization codes so the in-memory registries don't grow without bound.
type HousekeepingService struct {
	Tokens   *TokenService
	Codes    *AuthorizeService
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(
	tokens *TokenService,
	codes *AuthorizeService,
	logger *slog.Logger,
	interval time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Tokens:   tokens,
		Codes:    codes,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker. Starting twice, or after
// Stop, does nothing.
func (s *HousekeepingService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return
	}
	s.running = true

	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup. Only the
// first call after Start has any effect.
func (s *HousekeepingService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stopCh:
			return
		}
	}
}

// Sweep removes expired entries from both registries once. Running it
// again straight away removes nothing.
func (s *HousekeepingService) Sweep() SweepResult {
	res := SweepResult{
		Tokens: s.Tokens.ClearExpiredTokens(),
		Codes:  s.Codes.ClearExpiredCodes(),
	}

	level := slog.LevelDebug
	if res.Tokens > 0 || res.Codes > 0 {
		level = slog.LevelInfo
	}
	s.Logger.Log(context.Background(), level, "housekeeping sweep completed",
		"expired_tokens", res.Tokens,
		"expired_codes", res.Codes,
		"live_tokens", s.Tokens.Len(),
		"live_codes", s.Codes.Len(),
	)
	return res
}
