package models

import "time"

// HoldTTL is how long a reservation hold may live from its creation time.
// The remaining TTL is always recomputed from CreatedAt so the limit holds
// across app restarts.
const HoldTTL = time.Hour

// Reservation is a temporary hold on a room pending payment.
type Reservation struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"userId"`
	HotelID    string    `json:"hotelId"`
	HotelName  string    `json:"hotelName,omitempty"`
	RoomType   string    `json:"roomType"`
	RoomNumber string    `json:"roomNumber"`
	CheckIn    time.Time `json:"checkIn"`
	CheckOut   time.Time `json:"checkOut"`
	Adults     int       `json:"adults"`
	Children   int       `json:"children"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IsExpired reports whether the hold has outlived its TTL at the given instant.
func (r *Reservation) IsExpired(now time.Time) bool {
	return now.Sub(r.CreatedAt) >= HoldTTL
}

// RemainingTTL returns the time left before expiry, clamped at zero.
func (r *Reservation) RemainingTTL(now time.Time) time.Duration {
	remaining := HoldTTL - now.Sub(r.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CreateReservationRequest is the payload for creating a hold.
type CreateReservationRequest struct {
	HotelID    string    `json:"hotelId"`
	RoomType   string    `json:"roomType"`
	RoomNumber string    `json:"roomNumber"`
	CheckIn    time.Time `json:"checkIn"`
	CheckOut   time.Time `json:"checkOut"`
	Adults     int       `json:"adults"`
	Children   int       `json:"children"`
	TotalPrice float64   `json:"totalPrice"`
}
