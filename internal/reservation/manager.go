// Package reservation manages temporary room holds. A hold lives at most
// one hour from its creation time; the server prevents conflicts, the
// client only enforces the TTL.
package reservation

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/models"
	"github.com/visitamhara/tourapp/internal/session"
)

// DeleteReason distinguishes why a hold was removed, for notification text
// only. The server call is identical either way.
type DeleteReason string

const (
	DeleteExpired   DeleteReason = "expired"
	DeleteCancelled DeleteReason = "cancelled"
	DeleteConverted DeleteReason = "converted" // hold became a paid booking
)

// Manager creates, lists, and deletes reservation holds.
type Manager struct {
	client   *api.Client
	sessions *session.Service
	logger   *logrus.Logger

	mu    sync.RWMutex
	holds map[string]*models.Reservation

	// now is swappable for tests
	now func() time.Time
}

// NewManager creates a reservation manager.
func NewManager(client *api.Client, sessions *session.Service, logger *logrus.Logger) *Manager {
	return &Manager{
		client:   client,
		sessions: sessions,
		logger:   logger,
		holds:    make(map[string]*models.Reservation),
		now:      time.Now,
	}
}

// Create places a hold on a room for the authenticated user.
func (m *Manager) Create(ctx context.Context, req *models.CreateReservationRequest) (*models.Reservation, error) {
	sess, err := m.sessions.Require()
	if err != nil {
		return nil, err
	}

	if !req.CheckOut.After(req.CheckIn) {
		return nil, &api.ValidationError{Field: "checkOut", Message: "check-out date must be after check-in date"}
	}

	var hold models.Reservation
	if err := m.client.Post(ctx, "/api/reservations", req, &hold); err != nil {
		m.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	m.mu.Lock()
	m.holds[hold.ID] = &hold
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"reservation_id": hold.ID,
		"user_id":        sess.User.ID,
		"room":           hold.RoomNumber,
		"expires_in":     hold.RemainingTTL(m.now()).String(),
	}).Info("Reservation hold created")

	return &hold, nil
}

// Refresh fetches the user's holds from the server and replaces the local
// set. Holds already past their TTL are deleted immediately instead of
// being scheduled.
func (m *Manager) Refresh(ctx context.Context) ([]*models.Reservation, error) {
	sess, err := m.sessions.Require()
	if err != nil {
		return nil, err
	}

	var holds []*models.Reservation
	path := fmt.Sprintf("/api/reservations/user/%s", url.PathEscape(sess.User.ID))
	if err := m.client.Get(ctx, path, &holds); err != nil {
		m.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}

	now := m.now()
	active := make([]*models.Reservation, 0, len(holds))

	m.mu.Lock()
	m.holds = make(map[string]*models.Reservation, len(holds))
	for _, hold := range holds {
		if hold.IsExpired(now) {
			continue // deleted below, outside the lock
		}
		m.holds[hold.ID] = hold
		active = append(active, hold)
	}
	m.mu.Unlock()

	for _, hold := range holds {
		if hold.IsExpired(now) {
			if err := m.Delete(ctx, hold.ID, DeleteExpired); err != nil {
				m.logger.WithError(err).WithField("reservation_id", hold.ID).Warn("Failed to delete stale hold at load time")
			}
		}
	}

	return active, nil
}

// Active returns the holds currently known to be alive.
func (m *Manager) Active() []*models.Reservation {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	active := make([]*models.Reservation, 0, len(m.holds))
	for _, hold := range m.holds {
		if !hold.IsExpired(now) {
			active = append(active, hold)
		}
	}
	return active
}

// Delete removes a hold. A NotFound response means someone (a timer or the
// user) already deleted it and counts as success. Auth failures clear the
// session. Any other failure keeps the hold listed so the user can retry.
func (m *Manager) Delete(ctx context.Context, id string, reason DeleteReason) error {
	err := m.client.Delete(ctx, "/api/reservations/"+url.PathEscape(id))
	switch {
	case err == nil, api.IsNotFound(err):
		m.mu.Lock()
		delete(m.holds, id)
		m.mu.Unlock()

		m.logger.WithFields(logrus.Fields{
			"reservation_id": id,
			"reason":         reason,
		}).Info("Reservation hold removed")
		return nil

	case api.IsAuth(err):
		m.sessions.HandleAuthError(err)
		return fmt.Errorf("failed to delete reservation: %w", err)

	default:
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
}
