package analytics

import (
	"sort"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// DisplayDestinations orders the filtered rows for the listing and the CSV export:
// highest rating first, unrated last, ties in row order. The set itself is untouched.
func DisplayDestinations(filtered models.FilteredDestinationSet) []models.JoinedDestination {
	rows := append([]models.JoinedDestination(nil), filtered.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		return floatDesc(rows[i].Rating, rows[j].Rating)
	})
	return rows
}

// DisplayReviews orders enriched reviews by score, highest first.
func DisplayReviews(reviews []models.EnrichedReview) []models.EnrichedReview {
	out := append([]models.EnrichedReview(nil), reviews...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out
}

// DisplayUsers orders users oldest first, unknown ages last.
func DisplayUsers(users []models.User) []models.User {
	out := append([]models.User(nil), users...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Age, out[j].Age
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return out
}

// MapPoints returns the filtered destinations that have both coordinates.
func MapPoints(filtered models.FilteredDestinationSet) []models.MapPoint {
	points := make([]models.MapPoint, 0, len(filtered.Rows))
	for _, row := range filtered.Rows {
		if row.Latitude == nil || row.Longitude == nil {
			continue
		}
		points = append(points, models.MapPoint{
			Name:      row.Name,
			Latitude:  *row.Latitude,
			Longitude: *row.Longitude,
			Rating:    row.Rating,
		})
	}
	return points
}

// floatDesc sorts present values descending and nil values last.
func floatDesc(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}
