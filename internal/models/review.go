package models

// Review is a guest review of a hotel. The date travels as a plain
// YYYY-MM-DD string.
type Review struct {
	ID           string `json:"_id"`
	HotelID      string `json:"hotelId"`
	HotelAdminID string `json:"hotelAdminId,omitempty"`
	User         string `json:"user"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	Date         string `json:"date,omitempty"`
}

// SubmitReviewRequest is the payload for creating or updating a review.
type SubmitReviewRequest struct {
	HotelID      string `json:"hotelId,omitempty"`
	HotelAdminID string `json:"hotelAdminId,omitempty"`
	User         string `json:"user"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	Date         string `json:"date,omitempty"`
}
