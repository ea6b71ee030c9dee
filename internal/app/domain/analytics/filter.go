package analytics

import (
	"sort"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// Join attaches city and category names to every destination, in input order.
// Destinations with an unresolved city or category are dropped or relabelled
// according to policy; unresolved counts them either way.
func Join(destinations []models.Destination, cities []models.City, categories []models.Category, policy models.JoinPolicy) (rows []models.JoinedDestination, unresolved int) {
	cityNames := make(map[int64]string, len(cities))
	for _, c := range cities {
		if _, ok := cityNames[c.ID]; !ok {
			cityNames[c.ID] = c.Name
		}
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		if _, ok := categoryNames[c.ID]; !ok {
			categoryNames[c.ID] = c.Name
		}
	}

	rows = make([]models.JoinedDestination, 0, len(destinations))
	for _, d := range destinations {
		cityName, cityOK := cityNames[d.CityID]
		categoryName, categoryOK := categoryNames[d.CategoryID]
		if !cityOK || !categoryOK {
			unresolved++
			if policy != models.JoinPolicyUnknown {
				continue
			}
			if !cityOK {
				cityName = models.UnknownLabel
			}
			if !categoryOK {
				categoryName = models.UnknownLabel
			}
		}
		rows = append(rows, models.JoinedDestination{
			Destination:  d,
			CityName:     cityName,
			CategoryName: categoryName,
		})
	}
	return rows, unresolved
}

// Filter joins the destination tables and keeps the rows whose city and category are
// selected and whose rating reaches criteria.MinRating. An empty selection matches
// nothing, and a destination without a rating never passes the threshold.
func Filter(destinations []models.Destination, cities []models.City, categories []models.Category, criteria models.FilterCriteria, policy models.JoinPolicy) models.FilteredDestinationSet {
	joined, unresolved := Join(destinations, cities, categories, policy)
	set := models.FilteredDestinationSet{
		Rows:       make([]models.JoinedDestination, 0, len(joined)),
		Unresolved: unresolved,
	}
	if len(criteria.Cities) == 0 || len(criteria.Categories) == 0 {
		return set
	}

	selectedCities := toSet(criteria.Cities)
	selectedCategories := toSet(criteria.Categories)
	for _, row := range joined {
		if _, ok := selectedCities[row.CityName]; !ok {
			continue
		}
		if _, ok := selectedCategories[row.CategoryName]; !ok {
			continue
		}
		if row.Rating == nil || *row.Rating < criteria.MinRating {
			continue
		}
		set.Rows = append(set.Rows, row)
	}
	return set
}

// Options lists the selectable city and category names. Under JoinPolicyUnknown the
// UnknownLabel is offered when at least one destination needs it.
func Options(tables *models.Tables, policy models.JoinPolicy) models.FilterOptions {
	cities := make([]string, 0, len(tables.Cities)+1)
	for _, c := range tables.Cities {
		cities = append(cities, c.Name)
	}
	categories := make([]string, 0, len(tables.Categories)+1)
	for _, c := range tables.Categories {
		categories = append(categories, c.Name)
	}

	if policy == models.JoinPolicyUnknown {
		cityIDs := make(map[int64]struct{}, len(tables.Cities))
		for _, c := range tables.Cities {
			cityIDs[c.ID] = struct{}{}
		}
		categoryIDs := make(map[int64]struct{}, len(tables.Categories))
		for _, c := range tables.Categories {
			categoryIDs[c.ID] = struct{}{}
		}
		for _, d := range tables.Destinations {
			if _, ok := cityIDs[d.CityID]; !ok {
				cities = append(cities, models.UnknownLabel)
				break
			}
		}
		for _, d := range tables.Destinations {
			if _, ok := categoryIDs[d.CategoryID]; !ok {
				categories = append(categories, models.UnknownLabel)
				break
			}
		}
	}

	return models.FilterOptions{
		Cities:     sortedUnique(cities),
		Categories: sortedUnique(categories),
	}
}

// AllSelected is the initial criteria of a session: every option selected, no threshold.
func AllSelected(options models.FilterOptions) models.FilterCriteria {
	return models.FilterCriteria{
		Cities:     append([]string(nil), options.Cities...),
		Categories: append([]string(nil), options.Categories...),
		MinRating:  0,
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedUnique(values []string) []string {
	seen := toSet(values)
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
