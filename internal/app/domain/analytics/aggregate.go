package analytics

import (
	"sort"
	"strings"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

const (
	// TopN bounds every ranked aggregate.
	TopN = 10
	// AgeHistogramBins is the fixed number of age bins.
	AgeHistogramBins = 25
)

// group accumulates a count and the non-nil values of one key.
type group struct {
	key   string
	count int
	sum   float64
	n     int
}

// groupBy buckets rows by key. Groups come out in first-appearance order, which is
// the tie-break every sort below relies on.
func groupBy[T any](rows []T, key func(T) string, value func(T) *float64) []*group {
	index := make(map[string]*group)
	groups := make([]*group, 0)
	for _, row := range rows {
		k := key(row)
		g, ok := index[k]
		if !ok {
			g = &group{key: k}
			index[k] = g
			groups = append(groups, g)
		}
		g.count++
		if value == nil {
			continue
		}
		if v := value(row); v != nil {
			g.sum += *v
			g.n++
		}
	}
	return groups
}

func counts(groups []*group) []models.KeyValue {
	out := make([]models.KeyValue, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.KeyValue{Key: g.key, Value: float64(g.count)})
	}
	return out
}

func means(groups []*group) []models.KeyValue {
	out := make([]models.KeyValue, 0, len(groups))
	for _, g := range groups {
		if g.n == 0 {
			continue
		}
		out = append(out, models.KeyValue{Key: g.key, Value: g.sum / float64(g.n)})
	}
	return out
}

func sortAscending(kv []models.KeyValue) []models.KeyValue {
	sort.SliceStable(kv, func(i, j int) bool { return kv[i].Value < kv[j].Value })
	return kv
}

func sortDescending(kv []models.KeyValue) []models.KeyValue {
	sort.SliceStable(kv, func(i, j int) bool { return kv[i].Value > kv[j].Value })
	return kv
}

// topThenAscending keeps the n largest entries and returns them smallest first,
// the order horizontal bar charts draw bottom-up.
func topThenAscending(kv []models.KeyValue, n int) []models.KeyValue {
	if n <= 0 {
		return []models.KeyValue{}
	}
	kv = sortDescending(kv)
	if len(kv) > n {
		kv = kv[:n]
	}
	return sortAscending(kv)
}

func cityOf(r models.JoinedDestination) string     { return r.CityName }
func categoryOf(r models.JoinedDestination) string { return r.CategoryName }
func ratingOf(r models.JoinedDestination) *float64 { return r.Rating }
func priceOf(r models.JoinedDestination) *float64  { return r.TicketPrice }

// DestinationsPerCity counts filtered destinations per city, smallest first.
func DestinationsPerCity(rows []models.JoinedDestination) []models.KeyValue {
	return sortAscending(counts(groupBy(rows, cityOf, nil)))
}

// DestinationsPerCategory counts filtered destinations per category, largest first.
func DestinationsPerCategory(rows []models.JoinedDestination) []models.KeyValue {
	return sortDescending(counts(groupBy(rows, categoryOf, nil)))
}

// MeanRatingPerCategory averages ratings per category, lowest first. Categories
// without any rated destination are omitted.
func MeanRatingPerCategory(rows []models.JoinedDestination) []models.KeyValue {
	return sortAscending(means(groupBy(rows, categoryOf, ratingOf)))
}

// MeanPricePerCategory averages ticket prices per category, cheapest first.
func MeanPricePerCategory(rows []models.JoinedDestination) []models.KeyValue {
	return sortAscending(means(groupBy(rows, categoryOf, priceOf)))
}

// TopDestinationsByRating returns up to n (name, rating) pairs, best first.
// Equal ratings keep their row order; unrated destinations are skipped.
func TopDestinationsByRating(rows []models.JoinedDestination, n int) []models.KeyValue {
	if n <= 0 {
		return []models.KeyValue{}
	}
	ranked := make([]models.KeyValue, 0, len(rows))
	for _, row := range rows {
		if row.Rating == nil {
			continue
		}
		ranked = append(ranked, models.KeyValue{Key: row.Name, Value: *row.Rating})
	}
	ranked = sortDescending(ranked)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// UsersPerHomeCity returns the n home cities with most users, smallest first.
// Users without a home city are counted under UnknownLabel.
func UsersPerHomeCity(users []models.User, n int) []models.KeyValue {
	homeCity := func(u models.User) string {
		if city := strings.TrimSpace(u.HomeCity); city != "" {
			return city
		}
		return models.UnknownLabel
	}
	return topThenAscending(counts(groupBy(users, homeCity, nil)), n)
}

// ReviewsPerDestination counts enriched reviews per destination name and returns
// the n most reviewed, smallest first. Reviews outside the filtered set carry no
// name and are not counted.
func ReviewsPerDestination(reviews []models.EnrichedReview, n int) []models.KeyValue {
	inScope := make([]models.EnrichedReview, 0, len(reviews))
	for _, r := range reviews {
		if r.DestinationName != nil {
			inScope = append(inScope, r)
		}
	}
	name := func(r models.EnrichedReview) string { return *r.DestinationName }
	return topThenAscending(counts(groupBy(inScope, name, nil)), n)
}

// AgeHistogram splits the observed age range into equal-width bins. Each bin is
// [Lower, Upper) except the last, which also holds the maximum age.
func AgeHistogram(users []models.User, bins int) []models.HistogramBin {
	ages := knownAges(users)
	if len(ages) == 0 || bins <= 0 {
		return []models.HistogramBin{}
	}
	lo, hi := ages[0], ages[0]
	for _, a := range ages[1:] {
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}

	edge := func(i int) float64 {
		if hi == lo {
			return float64(lo + i)
		}
		return float64(lo) + float64(i*(hi-lo))/float64(bins)
	}
	out := make([]models.HistogramBin, bins)
	for i := range out {
		out[i].Lower = edge(i)
		out[i].Upper = edge(i + 1)
	}
	for _, a := range ages {
		i := 0
		if hi > lo {
			// Integer arithmetic keeps ages on a bin edge in the upper bin.
			i = (a - lo) * bins / (hi - lo)
		}
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// RatingHistogram has one bin per score of the scale. Scores outside the scale are
// not counted.
func RatingHistogram(reviews []models.Review, scale models.RatingScale) []models.HistogramBin {
	if scale.Max < scale.Min {
		return []models.HistogramBin{}
	}
	out := make([]models.HistogramBin, scale.Max-scale.Min+1)
	for i := range out {
		score := scale.Min + i
		out[i].Lower = float64(score)
		out[i].Upper = float64(score + 1)
	}
	for _, r := range reviews {
		if scale.Contains(r.Rating) {
			out[r.Rating-scale.Min].Count++
		}
	}
	return out
}

// Aggregate computes every chart series of the dashboard.
func Aggregate(filtered models.FilteredDestinationSet, users []models.User, reviews []models.Review, enriched []models.EnrichedReview) models.Aggregates {
	return models.Aggregates{
		DestinationsPerCity:     DestinationsPerCity(filtered.Rows),
		DestinationsPerCategory: DestinationsPerCategory(filtered.Rows),
		MeanRatingPerCategory:   MeanRatingPerCategory(filtered.Rows),
		MeanPricePerCategory:    MeanPricePerCategory(filtered.Rows),
		TopDestinations:         TopDestinationsByRating(filtered.Rows, TopN),
		UsersPerHomeCity:        UsersPerHomeCity(users, TopN),
		AgeHistogram:            AgeHistogram(users, AgeHistogramBins),
		ReviewsPerDestination:   ReviewsPerDestination(enriched, TopN),
		RatingHistogram:         RatingHistogram(reviews, models.DefaultRatingScale),
	}
}
