package reservation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ExpiryService handles background expiration of reservation holds. The
// remaining TTL is always derived from each hold's creation time, so a
// restart never extends a hold's life.
type ExpiryService struct {
	manager  *Manager
	logger   *logrus.Logger
	stopCh   chan struct{}
	interval time.Duration
}

// NewExpiryService creates a new hold expiration service
func NewExpiryService(manager *Manager, logger *logrus.Logger) *ExpiryService {
	return &ExpiryService{
		manager:  manager,
		logger:   logger,
		stopCh:   make(chan struct{}),
		interval: 1 * time.Minute, // Check every minute
	}
}

// Start begins the background expiration job
func (s *ExpiryService) Start() {
	s.logger.Info("Starting reservation expiry service (checking every minute)")
	go s.run()
}

// Stop stops the background expiration job
func (s *ExpiryService) Stop() {
	s.logger.Info("Stopping reservation expiry service")
	close(s.stopCh)
}

func (s *ExpiryService) run() {
	// Run immediately on start
	s.processExpiredHolds()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processExpiredHolds()
		case <-s.stopCh:
			s.logger.Info("Reservation expiry service stopped")
			return
		}
	}
}

// processExpiredHolds deletes every hold past its TTL
func (s *ExpiryService) processExpiredHolds() {
	now := s.manager.now()

	s.manager.mu.RLock()
	var expired []string
	for id, hold := range s.manager.holds {
		if hold.IsExpired(now) {
			expired = append(expired, id)
		}
	}
	s.manager.mu.RUnlock()

	if len(expired) == 0 {
		return // Nothing to expire
	}

	s.logger.WithField("count", len(expired)).Info("Processing expired reservation holds")

	for _, id := range expired {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := s.manager.Delete(ctx, id, DeleteExpired)
		cancel()
		if err != nil {
			s.logger.WithError(err).WithField("reservation_id", id).Error("Failed to expire hold")
		}
	}
}

// RunOnce runs a single expiration cycle (useful for testing or manual trigger)
func (s *ExpiryService) RunOnce() {
	s.processExpiredHolds()
}
