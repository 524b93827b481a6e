// Package booking converts verified payments into durable booking records
// and manages the records afterwards.
package booking

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/models"
	"github.com/visitamhara/tourapp/internal/reservation"
	"github.com/visitamhara/tourapp/internal/session"
)

// Recorder creates booking records from successful transactions and the
// reservation snapshot that produced them.
type Recorder struct {
	client       *api.Client
	sessions     *session.Service
	reservations *reservation.Manager
	logger       *logrus.Logger
}

// NewRecorder creates a booking recorder.
func NewRecorder(client *api.Client, sessions *session.Service, reservations *reservation.Manager, logger *logrus.Logger) *Recorder {
	return &Recorder{
		client:       client,
		sessions:     sessions,
		reservations: reservations,
		logger:       logger,
	}
}

// Record persists a booking for a successful transaction, then deletes the
// source hold. The two calls are not atomic: when the create succeeds the
// hold must go, but a failed delete only logs (the 1-hour TTL cleans up any
// orphan). When the create fails the hold is kept so the user can retry the
// recording; the payment is never re-charged.
func (r *Recorder) Record(ctx context.Context, tx *models.Transaction, hold *models.Reservation) (*models.BookingRecord, error) {
	if _, err := r.sessions.Require(); err != nil {
		return nil, err
	}
	if tx == nil || tx.Status != models.TransactionSuccess {
		return nil, fmt.Errorf("cannot record booking: transaction has not succeeded")
	}

	req := &models.CreateBookingRequest{
		HotelID:    hold.HotelID,
		RoomType:   hold.RoomType,
		RoomNumber: hold.RoomNumber,
		CheckIn:    hold.CheckIn,
		CheckOut:   hold.CheckOut,
		TotalPrice: hold.TotalPrice,
		TxRef:      tx.TxRef,
	}

	var record models.BookingRecord
	if err := r.client.Post(ctx, "/api/bookingHistory", req, &record); err != nil {
		r.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to record booking: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"booking_code": record.BookingCode,
		"tx_ref":       tx.TxRef,
	}).Info("Booking recorded")

	if err := r.reservations.Delete(ctx, hold.ID, reservation.DeleteConverted); err != nil {
		r.logger.WithError(err).WithField("reservation_id", hold.ID).Warn("Booking recorded but hold deletion failed, TTL will clean up")
	}

	return &record, nil
}

// List returns the user's booking records.
func (r *Recorder) List(ctx context.Context) ([]models.BookingRecord, error) {
	sess, err := r.sessions.Require()
	if err != nil {
		return nil, err
	}

	var records []models.BookingRecord
	path := fmt.Sprintf("/api/bookingHistory/user/%s", url.PathEscape(sess.User.ID))
	if err := r.client.Get(ctx, path, &records); err != nil {
		r.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to fetch booking history: %w", err)
	}
	return records, nil
}

// Get fetches a single booking record by code.
func (r *Recorder) Get(ctx context.Context, bookingCode string) (*models.BookingRecord, error) {
	if _, err := r.sessions.Require(); err != nil {
		return nil, err
	}
	if bookingCode == "" {
		return nil, &api.ValidationError{Field: "bookingCode", Message: "booking code is required"}
	}

	var record models.BookingRecord
	path := fmt.Sprintf("/api/bookingHistory/%s", url.PathEscape(bookingCode))
	if err := r.client.Get(ctx, path, &record); err != nil {
		r.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &record, nil
}

// Cancel marks a booking cancelled. The record is kept; only its status
// changes, and from then on the derived display status is always cancelled.
func (r *Recorder) Cancel(ctx context.Context, bookingCode string) (*models.BookingRecord, error) {
	if _, err := r.sessions.Require(); err != nil {
		return nil, err
	}
	if bookingCode == "" {
		return nil, &api.ValidationError{Field: "bookingCode", Message: "booking code is required"}
	}

	var record models.BookingRecord
	path := fmt.Sprintf("/api/bookingHistory/%s/cancel", url.PathEscape(bookingCode))
	if err := r.client.Patch(ctx, path, nil, &record); err != nil {
		r.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	r.logger.WithField("booking_code", bookingCode).Info("Booking cancelled")
	return &record, nil
}

// GroupByDisplayStatus buckets records by their derived display status.
func GroupByDisplayStatus(records []models.BookingRecord, now time.Time) map[models.DisplayStatus][]models.BookingRecord {
	groups := make(map[models.DisplayStatus][]models.BookingRecord)
	for _, record := range records {
		status := record.DeriveDisplayStatus(now)
		groups[status] = append(groups[status], record)
	}
	return groups
}
