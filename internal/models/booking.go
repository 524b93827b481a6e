package models

import "time"

// BookingStatus is the server-stored status of a booking record.
type BookingStatus string

const (
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckIn    BookingStatus = "check-in"
	BookingCheckedIn  BookingStatus = "checked-in"
	BookingCheckedOut BookingStatus = "checked-out"
	BookingCancelled  BookingStatus = "cancelled"
)

// DisplayStatus is the derived status shown to the user. It is computed from
// the stored status plus the stay dates and never persisted.
type DisplayStatus string

const (
	DisplayCancelled DisplayStatus = "cancelled"
	DisplayUpcoming  DisplayStatus = "upcoming"
	DisplayCompleted DisplayStatus = "completed"
	DisplayOngoing   DisplayStatus = "ongoing"
	DisplayUnknown   DisplayStatus = "unknown"
)

// BookingRecord is the durable record of a paid stay.
type BookingRecord struct {
	BookingCode string        `json:"bookingCode"`
	UserID      string        `json:"userId"`
	HotelID     string        `json:"hotelId"`
	HotelName   string        `json:"hotelName,omitempty"`
	RoomType    string        `json:"roomType"`
	RoomNumber  string        `json:"roomNumber"`
	CheckIn     time.Time     `json:"checkIn"`
	CheckOut    time.Time     `json:"checkOut"`
	TotalPrice  float64       `json:"totalPrice"`
	TxRef       string        `json:"tx_ref"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt,omitempty"`
}

// DeriveDisplayStatus computes the user-facing status at the given instant.
// A cancelled booking is cancelled regardless of its dates.
func (b *BookingRecord) DeriveDisplayStatus(now time.Time) DisplayStatus {
	if b.Status == BookingCancelled {
		return DisplayCancelled
	}
	switch {
	case b.CheckOut.After(now) && (b.Status == BookingConfirmed || b.Status == BookingCheckIn):
		return DisplayUpcoming
	case !b.CheckOut.After(now) && (b.Status == BookingCheckedOut || b.Status == BookingCheckedIn):
		return DisplayCompleted
	case !b.CheckIn.After(now) && b.CheckOut.After(now):
		return DisplayOngoing
	}
	return DisplayUnknown
}

// CreateBookingRequest is the payload for recording a paid booking.
// TxRef ties the record back to the payment that funded it.
type CreateBookingRequest struct {
	HotelID    string    `json:"hotelId"`
	RoomType   string    `json:"roomType"`
	RoomNumber string    `json:"roomNumber"`
	CheckIn    time.Time `json:"checkIn"`
	CheckOut   time.Time `json:"checkOut"`
	TotalPrice float64   `json:"totalPrice"`
	TxRef      string    `json:"tx_ref"`
}
