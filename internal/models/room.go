package models

// Room is one open room returned by an availability search.
type Room struct {
	ID            string  `json:"_id"`
	HotelID       string  `json:"hotelId"`
	RoomNumber    string  `json:"roomNumber"`
	RoomType      string  `json:"roomType"`
	PricePerNight float64 `json:"pricePerNight"`
	MaxAdults     int     `json:"maxAdults"`
	MaxChildren   int     `json:"maxChildren"`
}
