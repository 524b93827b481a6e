// Package availability implements the room availability search. Searches
// are read-only and never cached; every query re-fetches from the server.
package availability

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/models"
)

// SearchParams describes one availability query.
type SearchParams struct {
	HotelID  string
	CheckIn  time.Time
	CheckOut time.Time
	Adults   int
	Children int
	Rooms    int
}

// Validate rejects impossible queries before any network call.
func (p *SearchParams) Validate() error {
	if p.HotelID == "" {
		return &api.ValidationError{Field: "hotelId", Message: "hotel is required"}
	}
	if p.CheckIn.IsZero() || p.CheckOut.IsZero() {
		return &api.ValidationError{Field: "dates", Message: "check-in and check-out dates are required"}
	}
	if !p.CheckOut.After(p.CheckIn) {
		return &api.ValidationError{Field: "checkOut", Message: "check-out date must be after check-in date"}
	}
	if p.Adults < 1 {
		return &api.ValidationError{Field: "adults", Message: "at least one adult is required"}
	}
	if p.Rooms < 1 {
		return &api.ValidationError{Field: "rooms", Message: "at least one room is required"}
	}
	return nil
}

// Service performs availability searches against the backend.
type Service struct {
	client *api.Client
	logger *logrus.Logger
}

// NewService creates an availability service.
func NewService(client *api.Client, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// Search returns the open rooms for the hotel and date range. The result
// set is unordered; callers sort for display if they need to.
func (s *Service) Search(ctx context.Context, params SearchParams) ([]models.Room, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("checkIn", params.CheckIn.Format(time.RFC3339))
	query.Set("checkOut", params.CheckOut.Format(time.RFC3339))
	query.Set("adults", fmt.Sprintf("%d", params.Adults))
	query.Set("children", fmt.Sprintf("%d", params.Children))
	query.Set("rooms", fmt.Sprintf("%d", params.Rooms))

	path := fmt.Sprintf("/api/rooms/availability/%s?%s", url.PathEscape(params.HotelID), query.Encode())

	var rooms []models.Room
	if err := s.client.Get(ctx, path, &rooms); err != nil {
		return nil, fmt.Errorf("availability search failed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"hotel_id": params.HotelID,
		"rooms":    len(rooms),
	}).Debug("Availability search completed")

	return rooms, nil
}
