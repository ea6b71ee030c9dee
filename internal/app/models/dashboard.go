package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// UnknownLabel names the group of destinations whose city or category did not resolve
// under JoinPolicyUnknown, and users without a home city.
const UnknownLabel = "Unknown"

// JoinPolicy decides what happens to destinations whose city or category id
// has no matching row.
type JoinPolicy string

const (
	// JoinPolicyDrop removes unresolved destinations before filtering.
	JoinPolicyDrop JoinPolicy = "drop"
	// JoinPolicyUnknown keeps them under the UnknownLabel group.
	JoinPolicyUnknown JoinPolicy = "unknown"
)

// ParseJoinPolicy accepts "drop" or "unknown" (case-insensitive). Empty means drop.
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch JoinPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", JoinPolicyDrop:
		return JoinPolicyDrop, nil
	case JoinPolicyUnknown:
		return JoinPolicyUnknown, nil
	default:
		return "", fmt.Errorf("%w: unknown join policy %q", ErrInvalidConfig, s)
	}
}

// FilterCriteria is built fresh from user input on every interaction.
// An empty Cities or Categories selection matches nothing.
type FilterCriteria struct {
	Cities     []string `json:"cities"`
	Categories []string `json:"categories"`
	MinRating  float64  `json:"min_rating"`
}

// Validate checks the rating threshold bounds.
func (c FilterCriteria) Validate() error {
	if math.IsNaN(c.MinRating) || c.MinRating < 0 || c.MinRating > MaxDestinationRating {
		return fmt.Errorf("%w: min rating %v outside 0..%v", ErrInvalidCriteria, c.MinRating, MaxDestinationRating)
	}
	return nil
}

// JoinedDestination is a destination with its city and category names attached.
type JoinedDestination struct {
	Destination
	CityName     string `json:"city_name"`
	CategoryName string `json:"category_name"`
}

// FilteredDestinationSet holds the rows that passed the join policy and the criteria,
// in source order. Unresolved counts destinations whose city or category was missing.
type FilteredDestinationSet struct {
	Rows       []JoinedDestination `json:"rows"`
	Unresolved int                 `json:"unresolved"`
}

// Len returns the number of rows in the set.
func (s FilteredDestinationSet) Len() int { return len(s.Rows) }

// Mean is an average with its sample size. N == 0 means there was no data.
type Mean struct {
	Value float64
	N     int
}

// Valid reports whether the mean was computed over at least one value.
func (m Mean) Valid() bool { return m.N > 0 }

func (m Mean) MarshalJSON() ([]byte, error) {
	out := struct {
		Value *float64 `json:"value"`
		N     int      `json:"n"`
	}{N: m.N}
	if m.Valid() {
		v := m.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// AgeStats summarises user ages. Min and Max are whole years.
type AgeStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	N      int     `json:"n"`
}

func (a AgeStats) Valid() bool { return a.N > 0 }

// SummaryMetrics is the scalar metrics bundle. Only DestinationCount and the two
// averages depend on the filter; the user and review figures are global.
type SummaryMetrics struct {
	DestinationCount     int      `json:"destination_count"`
	UserCount            int      `json:"user_count"`
	ReviewCount          int      `json:"review_count"`
	ReviewedDestinations int      `json:"reviewed_destinations"`
	ActiveUsers          int      `json:"active_users"`
	AverageRating        Mean     `json:"average_rating"`
	AveragePrice         Mean     `json:"average_price"`
	Ages                 AgeStats `json:"ages"`
}

// KeyValue is one entry of a grouped aggregate.
type KeyValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// HistogramBin counts values in [Lower, Upper). The last bin of a histogram is closed.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// EnrichedReview carries display names of the reviewed destination. The names are nil
// when the destination is outside the filtered set.
type EnrichedReview struct {
	Review
	DestinationName *string `json:"destination_name"`
	CityName        *string `json:"city_name"`
}

// MapPoint is a filtered destination with known coordinates.
type MapPoint struct {
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Rating    *float64 `json:"rating"`
}

// FilterOptions lists the selectable cities and categories, sorted.
type FilterOptions struct {
	Cities     []string `json:"cities"`
	Categories []string `json:"categories"`
}

// Aggregates holds every chart series of the dashboard.
type Aggregates struct {
	DestinationsPerCity     []KeyValue     `json:"destinations_per_city"`
	DestinationsPerCategory []KeyValue     `json:"destinations_per_category"`
	MeanRatingPerCategory   []KeyValue     `json:"mean_rating_per_category"`
	MeanPricePerCategory    []KeyValue     `json:"mean_price_per_category"`
	TopDestinations         []KeyValue     `json:"top_destinations"`
	UsersPerHomeCity        []KeyValue     `json:"users_per_home_city"`
	AgeHistogram            []HistogramBin `json:"age_histogram"`
	ReviewsPerDestination   []KeyValue     `json:"reviews_per_destination"`
	RatingHistogram         []HistogramBin `json:"rating_histogram"`
}

// Dashboard is everything the rendering layer receives for one filter interaction.
type Dashboard struct {
	Criteria     FilterCriteria      `json:"criteria"`
	Options      FilterOptions       `json:"options"`
	Destinations []JoinedDestination `json:"destinations"`
	Metrics      SummaryMetrics      `json:"metrics"`
	Aggregates   Aggregates          `json:"aggregates"`
	Reviews      []EnrichedReview    `json:"reviews"`
	Users        []User              `json:"users"`
	MapPoints    []MapPoint          `json:"map_points"`
	Unresolved   int                 `json:"unresolved"`
	DataVersion  string              `json:"data_version"`
}
