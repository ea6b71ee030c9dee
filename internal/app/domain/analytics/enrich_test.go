package analytics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

func TestEnrich_ReviewOutsideFilteredSet(t *testing.T) {
	set := models.FilteredDestinationSet{Rows: []models.JoinedDestination{
		{Destination: models.Destination{ID: 1, Name: "one"}, CityName: "A"},
		{Destination: models.Destination{ID: 2, Name: "two"}, CityName: "B"},
	}}
	reviews := []models.Review{
		{ID: 1, DestinationID: 1, Rating: 4},
		{ID: 2, DestinationID: 2, Rating: 5},
		{ID: 3, DestinationID: 99, Rating: 3},
	}

	enriched := Enrich(reviews, set)

	require.Len(t, enriched, 3)
	assert.Equal(t, "one", *enriched[0].DestinationName)
	assert.Equal(t, "A", *enriched[0].CityName)
	assert.Equal(t, "two", *enriched[1].DestinationName)
	assert.Nil(t, enriched[2].DestinationName)
	assert.Nil(t, enriched[2].CityName)
	assert.Equal(t, int64(99), enriched[2].DestinationID)

	m := ComputeMetrics(set, nil, reviews)
	assert.Equal(t, 3, m.ReviewCount)
}

func TestDisplayOrdering(t *testing.T) {
	tables := sampleTables()
	set := Filter(tables.Destinations, tables.Cities, tables.Categories, allCriteria(tables, models.JoinPolicyUnknown), models.JoinPolicyUnknown)

	t.Run("destinations by rating, ties in row order", func(t *testing.T) {
		rows := DisplayDestinations(set)
		assert.Equal(t, []string{"Lost Place", "Monas", "Dufan", "Keraton", "Pantai Parangtritis"}, rowNames(rows))
		assert.Equal(t, "Monas", set.Rows[0].Name, "display order must not reorder the filtered set")
	})

	t.Run("users oldest first, unknown last", func(t *testing.T) {
		users := DisplayUsers(tables.Users)
		ids := make([]int64, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		assert.Equal(t, []int64{4, 2, 1, 3}, ids)
	})

	t.Run("reviews by score", func(t *testing.T) {
		reviews := DisplayReviews(Enrich(tables.Reviews, set))
		scores := make([]int, 0, len(reviews))
		for _, r := range reviews {
			scores = append(scores, r.Rating)
		}
		assert.Equal(t, []int{5, 4, 3, 1}, scores)
	})

	t.Run("map points need both coordinates", func(t *testing.T) {
		points := MapPoints(set)
		names := make([]string, 0, len(points))
		for _, p := range points {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"Monas", "Dufan", "Pantai Parangtritis"}, names)
	})
}

func TestDestinationsCSV(t *testing.T) {
	tables := sampleTables()
	set := Filter(tables.Destinations, tables.Cities, tables.Categories, allCriteria(tables, models.JoinPolicyDrop), models.JoinPolicyDrop)
	rows := ExportRows(DisplayDestinations(set))

	var buf bytes.Buffer
	require.NoError(t, WriteDestinationsCSV(&buf, rows))

	expected := "nama_tempat,nama_kota,nama_kategori,rating_rata2,harga_tiket\n" +
		"Monas,Jakarta,Budaya,4.6,20000\n" +
		"Dufan,Jakarta,Taman Hiburan,4.6,270000\n" +
		"Keraton,Yogyakarta,Budaya,4.4,15000\n" +
		"Pantai Parangtritis,Yogyakarta,Bahari,3.9,\n"
	assert.Equal(t, expected, buf.String())

	parsed, err := ReadDestinationsCSV(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, rows, parsed)
}

func TestReadDestinationsCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "wrong header", input: "name,city,category,rating,price\n"},
		{name: "bad number", input: "nama_tempat,nama_kota,nama_kategori,rating_rata2,harga_tiket\nA,B,C,high,1\n"},
		{name: "short record", input: "nama_tempat,nama_kota,nama_kategori,rating_rata2,harga_tiket\nA,B\n"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDestinationsCSV(bytes.NewBufferString(tt.input))
			assert.Error(t, err)
		})
	}
}
