// Package refund submits and lists refund requests against booking
// records. Resolution happens server-side; the client only reads it back.
package refund

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/booking"
	"github.com/visitamhara/tourapp/internal/models"
	"github.com/visitamhara/tourapp/internal/session"
)

// Manager submits and lists refund requests.
type Manager struct {
	client   *api.Client
	sessions *session.Service
	bookings *booking.Recorder
	logger   *logrus.Logger
}

// NewManager creates a refund manager.
func NewManager(client *api.Client, sessions *session.Service, bookings *booking.Recorder, logger *logrus.Logger) *Manager {
	return &Manager{
		client:   client,
		sessions: sessions,
		bookings: bookings,
		logger:   logger,
	}
}

// submitRequest is the refund creation payload.
type submitRequest struct {
	BookingCode string `json:"bookingCode"`
}

// Submit creates a refund request for a booking. A booking the guest has
// already checked into cannot be refunded.
func (m *Manager) Submit(ctx context.Context, bookingCode string) (*models.RefundRequest, error) {
	if _, err := m.sessions.Require(); err != nil {
		return nil, err
	}
	if bookingCode == "" {
		return nil, &api.ValidationError{Field: "bookingCode", Message: "booking code is required"}
	}

	record, err := m.bookings.Get(ctx, bookingCode)
	if err != nil {
		return nil, err
	}

	if record.Status == models.BookingCheckedIn {
		return nil, &api.BusinessError{Message: "You have already used the booking"}
	}

	var request models.RefundRequest
	if err := m.client.Post(ctx, "/api/askrefunds", &submitRequest{BookingCode: bookingCode}, &request); err != nil {
		m.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to submit refund request: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"booking_code": bookingCode,
		"refund_id":    request.ID,
	}).Info("Refund request submitted")

	return &request, nil
}

// RefundList is the user's refund requests split by status. Pending rows
// surface longest-waiting first; refunded rows show the most recent
// resolution first.
type RefundList struct {
	Pending  []models.RefundRequest
	Refunded []models.RefundRequest
}

// List fetches and partitions the user's refund requests.
func (m *Manager) List(ctx context.Context) (*RefundList, error) {
	sess, err := m.sessions.Require()
	if err != nil {
		return nil, err
	}

	var requests []models.RefundRequest
	path := fmt.Sprintf("/api/askrefunds/user/%s", url.PathEscape(sess.User.ID))
	if err := m.client.Get(ctx, path, &requests); err != nil {
		m.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to fetch refund requests: %w", err)
	}

	return Partition(requests), nil
}

// Partition splits requests into pending (oldest first, by creation time)
// and refunded (newest first, by resolution time).
func Partition(requests []models.RefundRequest) *RefundList {
	list := &RefundList{}
	for _, request := range requests {
		if request.Status == models.RefundRefunded {
			list.Refunded = append(list.Refunded, request)
		} else {
			list.Pending = append(list.Pending, request)
		}
	}

	sort.SliceStable(list.Pending, func(i, j int) bool {
		return list.Pending[i].CreatedAt.Before(list.Pending[j].CreatedAt)
	})
	sort.SliceStable(list.Refunded, func(i, j int) bool {
		return list.Refunded[i].ResolvedAt().After(list.Refunded[j].ResolvedAt())
	})

	return list
}
