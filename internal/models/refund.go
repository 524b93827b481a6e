package models

import "time"

// RefundStatus is the server-side status of a refund request.
// The pending to refunded transition happens only on the server; this
// client only reads it back.
type RefundStatus string

const (
	RefundPending  RefundStatus = "pending"
	RefundRefunded RefundStatus = "refunded"
)

// RefundRequest is a user-initiated claim against a booking record.
type RefundRequest struct {
	ID          string       `json:"_id"`
	BookingCode string       `json:"bookingCode"`
	Status      RefundStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt,omitempty"`
}

// ResolvedAt returns the best-known resolution time for sorting refunded
// requests, falling back to CreatedAt when UpdatedAt was never set.
func (r *RefundRequest) ResolvedAt() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}
