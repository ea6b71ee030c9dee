package analytics

import "github.com/FACorreiaa/tourism-dashboard/internal/app/models"

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

// sampleTables is a small dataset covering nulls, duplicates and an unresolved city.
func sampleTables() *models.Tables {
	return &models.Tables{
		Cities: []models.City{
			{ID: 1, Name: "Jakarta"},
			{ID: 2, Name: "Yogyakarta"},
			{ID: 3, Name: "Bandung"},
		},
		Categories: []models.Category{
			{ID: 10, Name: "Taman Hiburan"},
			{ID: 20, Name: "Budaya"},
			{ID: 30, Name: "Bahari"},
		},
		Destinations: []models.Destination{
			{ID: 1, Name: "Monas", CityID: 1, CategoryID: 20, Rating: fptr(4.6), TicketPrice: fptr(20000), Latitude: fptr(-6.1754), Longitude: fptr(106.8272)},
			{ID: 2, Name: "Dufan", CityID: 1, CategoryID: 10, Rating: fptr(4.6), TicketPrice: fptr(270000), Latitude: fptr(-6.1251), Longitude: fptr(106.8335)},
			{ID: 3, Name: "Keraton", CityID: 2, CategoryID: 20, Rating: fptr(4.4), TicketPrice: fptr(15000)},
			{ID: 4, Name: "Pantai Parangtritis", CityID: 2, CategoryID: 30, Rating: fptr(3.9), TicketPrice: nil, Latitude: fptr(-8.0257), Longitude: fptr(110.3289)},
			{ID: 5, Name: "Kawah Putih", CityID: 3, CategoryID: 10, Rating: nil, TicketPrice: fptr(75000)},
			{ID: 6, Name: "Lost Place", CityID: 99, CategoryID: 10, Rating: fptr(5.0), TicketPrice: fptr(0)},
		},
		Users: []models.User{
			{ID: 1, Age: iptr(20), HomeCity: "Jakarta"},
			{ID: 2, Age: iptr(30), HomeCity: "Bandung"},
			{ID: 3, Age: nil, HomeCity: "Jakarta"},
			{ID: 4, Age: iptr(40), HomeCity: ""},
		},
		Reviews: []models.Review{
			{ID: 1, DestinationID: 1, UserID: 1, Rating: 5},
			{ID: 2, DestinationID: 1, UserID: 2, Rating: 4},
			{ID: 3, DestinationID: 3, UserID: 1, Rating: 3},
			{ID: 4, DestinationID: 99, UserID: 4, Rating: 1},
		},
		Version: "test-version",
	}
}

func allCriteria(t *models.Tables, policy models.JoinPolicy) models.FilterCriteria {
	return AllSelected(Options(t, policy))
}

func rowNames(rows []models.JoinedDestination) []string {
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names
}

func keys(kv []models.KeyValue) []string {
	out := make([]string, 0, len(kv))
	for _, e := range kv {
		out = append(out, e.Key)
	}
	return out
}
