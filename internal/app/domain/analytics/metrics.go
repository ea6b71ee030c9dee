package analytics

import (
	"sort"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// ComputeMetrics builds the scalar metrics bundle. Destination figures come from the
// filtered set; user and review figures always cover the full tables.
func ComputeMetrics(filtered models.FilteredDestinationSet, users []models.User, reviews []models.Review) models.SummaryMetrics {
	ratings := make([]*float64, 0, len(filtered.Rows))
	prices := make([]*float64, 0, len(filtered.Rows))
	for _, row := range filtered.Rows {
		ratings = append(ratings, row.Rating)
		prices = append(prices, row.TicketPrice)
	}

	reviewed := make(map[int64]struct{})
	active := make(map[int64]struct{})
	for _, r := range reviews {
		reviewed[r.DestinationID] = struct{}{}
		active[r.UserID] = struct{}{}
	}

	return models.SummaryMetrics{
		DestinationCount:     filtered.Len(),
		UserCount:            len(users),
		ReviewCount:          len(reviews),
		ReviewedDestinations: len(reviewed),
		ActiveUsers:          len(active),
		AverageRating:        MeanOf(ratings),
		AveragePrice:         MeanOf(prices),
		Ages:                 AgeSummary(users),
	}
}

// MeanOf averages the non-nil values. Nil entries are left out of the denominator.
func MeanOf(values []*float64) models.Mean {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return models.Mean{}
	}
	return models.Mean{Value: sum / float64(n), N: n}
}

// AgeSummary computes mean, median, min and max over the users with a known age.
func AgeSummary(users []models.User) models.AgeStats {
	ages := knownAges(users)
	if len(ages) == 0 {
		return models.AgeStats{}
	}
	sort.Ints(ages)

	var sum int
	for _, a := range ages {
		sum += a
	}
	n := len(ages)
	median := float64(ages[n/2])
	if n%2 == 0 {
		median = float64(ages[n/2-1]+ages[n/2]) / 2
	}

	return models.AgeStats{
		Mean:   float64(sum) / float64(n),
		Median: median,
		Min:    ages[0],
		Max:    ages[n-1],
		N:      n,
	}
}

func knownAges(users []models.User) []int {
	ages := make([]int, 0, len(users))
	for _, u := range users {
		if u.Age != nil {
			ages = append(ages, *u.Age)
		}
	}
	return ages
}
