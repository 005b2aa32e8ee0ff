package catalog

import "github.com/riderschoice/riderschoice-backend/pkg/db/models"

// AverageRating is the arithmetic mean of the review ratings, or 0 without reviews.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews))
}
