// Package review manages hotel guest reviews. Anyone can browse a hotel's
// reviews; writing one needs a session, and each guest keeps at most one
// review per hotel (create once, update after). The average rating is
// derived client-side from the fetched list.
package review

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/models"
	"github.com/visitamhara/tourapp/internal/session"
)

// Service submits and lists hotel reviews.
type Service struct {
	client   *api.Client
	sessions *session.Service
	logger   *logrus.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewService creates a review service.
func NewService(client *api.Client, sessions *session.Service, logger *logrus.Logger) *Service {
	return &Service{
		client:   client,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns every review for a hotel. Browsing needs no session.
func (s *Service) List(ctx context.Context, hotelID string) ([]models.Review, error) {
	if hotelID == "" {
		return nil, &api.ValidationError{Field: "hotelId", Message: "hotel is required"}
	}

	var reviews []models.Review
	path := "/api/reviews/" + url.PathEscape(hotelID)
	if err := s.client.Get(ctx, path, &reviews); err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return reviews, nil
}

// Own fetches the caller's review of a hotel, nil when none exists yet.
func (s *Service) Own(ctx context.Context, hotelID string) (*models.Review, error) {
	if _, err := s.sessions.Require(); err != nil {
		return nil, err
	}
	if hotelID == "" {
		return nil, &api.ValidationError{Field: "hotelId", Message: "hotel is required"}
	}

	var review *models.Review
	path := "/api/reviews/user/" + url.PathEscape(hotelID)
	if err := s.client.Get(ctx, path, &review); err != nil {
		if api.IsNotFound(err) {
			return nil, nil
		}
		s.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to fetch own review: %w", err)
	}
	return review, nil
}

// Create submits a new review. The reviewer name defaults to the session
// user and the date to today when the caller leaves them empty.
func (s *Service) Create(ctx context.Context, req *models.SubmitReviewRequest) (*models.Review, error) {
	sess, err := s.sessions.Require()
	if err != nil {
		return nil, err
	}
	if err := validateReview(req); err != nil {
		return nil, err
	}

	if req.User == "" {
		req.User = sess.User.FirstName
	}
	if req.Date == "" {
		req.Date = s.now().Format("2006-01-02")
	}

	var review models.Review
	if err := s.client.Post(ctx, "/api/reviews", req, &review); err != nil {
		s.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"review_id": review.ID,
		"hotel_id":  review.HotelID,
		"rating":    review.Rating,
	}).Info("Review submitted")

	return &review, nil
}

// Update replaces the caller's existing review.
func (s *Service) Update(ctx context.Context, reviewID string, req *models.SubmitReviewRequest) (*models.Review, error) {
	sess, err := s.sessions.Require()
	if err != nil {
		return nil, err
	}
	if reviewID == "" {
		return nil, &api.ValidationError{Field: "reviewId", Message: "review id is required"}
	}
	if err := validateReview(req); err != nil {
		return nil, err
	}

	if req.User == "" {
		req.User = sess.User.FirstName
	}

	var review models.Review
	path := "/api/reviews/" + url.PathEscape(reviewID)
	if err := s.client.Put(ctx, path, req, &review); err != nil {
		s.sessions.HandleAuthError(err)
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"review_id": reviewID,
		"rating":    review.Rating,
	}).Info("Review updated")

	return &review, nil
}

// validateReview rejects empty submissions before any network call.
func validateReview(req *models.SubmitReviewRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return &api.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}
	if strings.TrimSpace(req.Comment) == "" {
		return &api.ValidationError{Field: "comment", Message: "comment is required"}
	}
	return nil
}

// AverageRating returns the mean rating, zero when there are no reviews.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews))
}
