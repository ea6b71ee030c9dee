package analytics

import "github.com/FACorreiaa/tourism-dashboard/internal/app/models"

// Enrich left-joins reviews onto the filtered destinations. Every review is kept, in
// input order; the ones whose destination is not in the set keep nil names.
func Enrich(reviews []models.Review, filtered models.FilteredDestinationSet) []models.EnrichedReview {
	byID := make(map[int64]int, len(filtered.Rows))
	for i, row := range filtered.Rows {
		if _, ok := byID[row.ID]; !ok {
			byID[row.ID] = i
		}
	}

	out := make([]models.EnrichedReview, 0, len(reviews))
	for _, r := range reviews {
		er := models.EnrichedReview{Review: r}
		if i, ok := byID[r.DestinationID]; ok {
			name := filtered.Rows[i].Name
			city := filtered.Rows[i].CityName
			er.DestinationName = &name
			er.CityName = &city
		}
		out = append(out, er)
	}
	return out
}
