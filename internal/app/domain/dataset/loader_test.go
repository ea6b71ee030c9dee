package dataset

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// fakeRepository serves fixed tables and counts how often destinations are read.
type fakeRepository struct {
	destinations []models.Destination
	users        []models.User
	reviews      []models.Review
	cities       []models.City
	categories   []models.Category

	failTable string
	err       error
	calls     atomic.Int32
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		destinations: []models.Destination{
			{ID: 1, Name: "Monas", CityID: 1, CategoryID: 20, Rating: fptr(4.6), TicketPrice: fptr(20000), Latitude: fptr(-6.17), Longitude: fptr(106.82)},
			{ID: 2, Name: "Broken", CityID: 1, CategoryID: 20, Rating: fptr(9.5), TicketPrice: fptr(-1), Latitude: fptr(123), Longitude: fptr(500)},
		},
		users: []models.User{
			{ID: 1, Age: iptr(20), HomeCity: "Jakarta"},
			{ID: 2, Age: iptr(-4)},
		},
		reviews: []models.Review{
			{ID: 1, DestinationID: 1, UserID: 1, Rating: 5},
			{ID: 2, DestinationID: 1, UserID: 2, Rating: 9},
		},
		cities:     []models.City{{ID: 1, Name: "Jakarta"}},
		categories: []models.Category{{ID: 20, Name: "Budaya"}},
	}
}

func (r *fakeRepository) fail(table string) error {
	if r.failTable == table {
		return r.err
	}
	return nil
}

func (r *fakeRepository) ListDestinations(ctx context.Context) ([]models.Destination, error) {
	r.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.fail("destinations"); err != nil {
		return nil, err
	}
	return append([]models.Destination(nil), r.destinations...), nil
}

func (r *fakeRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := r.fail("users"); err != nil {
		return nil, err
	}
	return append([]models.User(nil), r.users...), nil
}

func (r *fakeRepository) ListReviews(ctx context.Context) ([]models.Review, error) {
	if err := r.fail("reviews"); err != nil {
		return nil, err
	}
	return append([]models.Review(nil), r.reviews...), nil
}

func (r *fakeRepository) ListCities(ctx context.Context) ([]models.City, error) {
	if err := r.fail("cities"); err != nil {
		return nil, err
	}
	return append([]models.City(nil), r.cities...), nil
}

func (r *fakeRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := r.fail("categories"); err != nil {
		return nil, err
	}
	return append([]models.Category(nil), r.categories...), nil
}

func TestLoader_Load(t *testing.T) {
	repo := newFakeRepository()
	loader := NewLoader(repo, LoaderOptions{}, zap.NewNop(), nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("WIB", 7*3600))
	loader.now = func() time.Time { return fixed }

	tables, err := loader.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, tables.Destinations, 2)
	assert.NotEmpty(t, tables.Version)
	assert.Equal(t, fixed.UTC(), tables.LoadedAt)

	broken := tables.Destinations[1]
	assert.Nil(t, broken.Rating)
	assert.Nil(t, broken.TicketPrice)
	assert.Nil(t, broken.Latitude)
	assert.Nil(t, broken.Longitude)
	assert.Equal(t, 4.6, *tables.Destinations[0].Rating)

	assert.Nil(t, tables.Users[1].Age)
	assert.Equal(t, 20, *tables.Users[0].Age)
	assert.Equal(t, 9, tables.Reviews[1].Rating, "off-scale review scores are kept")
}

func TestLoader_EachLoadHasNewVersion(t *testing.T) {
	loader := NewLoader(newFakeRepository(), LoaderOptions{}, nil, nil)

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.Version, second.Version)
}

func TestLoader_Errors(t *testing.T) {
	dbErr := errors.New("dial tcp: connection refused")

	tests := []struct {
		name      string
		setup     func(*fakeRepository)
		contains  string
		wrapsRepo bool
	}{
		{
			name:      "adapter failure",
			setup:     func(r *fakeRepository) { r.failTable, r.err = "reviews", dbErr },
			contains:  "reviews",
			wrapsRepo: true,
		},
		{
			name:     "empty destinations",
			setup:    func(r *fakeRepository) { r.destinations = nil },
			contains: "destinations table is empty",
		},
		{
			name:     "empty cities",
			setup:    func(r *fakeRepository) { r.cities = nil },
			contains: "cities table is empty",
		},
		{
			name:     "empty categories",
			setup:    func(r *fakeRepository) { r.categories = nil },
			contains: "categories table is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			tt.setup(repo)
			loader := NewLoader(repo, LoaderOptions{}, zap.NewNop(), nil)

			tables, err := loader.Load(context.Background())

			assert.Nil(t, tables)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrDataUnavailable)
			assert.Contains(t, err.Error(), tt.contains)
			if tt.wrapsRepo {
				assert.ErrorIs(t, err, dbErr)
			}
		})
	}
}

func TestLoader_EmptyUsersAndReviewsAreAllowed(t *testing.T) {
	repo := newFakeRepository()
	repo.users = nil
	repo.reviews = nil
	loader := NewLoader(repo, LoaderOptions{}, zap.NewNop(), nil)

	tables, err := loader.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, tables.Users)
	assert.NotNil(t, tables.Reviews)
	assert.Empty(t, tables.Users)
}

func TestLoader_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	repo := newFakeRepository()
	repo.failTable, repo.err = "destinations", errors.New("timeout")
	loader := NewLoader(repo, LoaderOptions{ConsecutiveFailures: 2, OpenTimeout: time.Hour}, zap.NewNop(), nil)

	for i := 0; i < 2; i++ {
		_, err := loader.Load(context.Background())
		require.Error(t, err)
	}
	require.Equal(t, int32(2), repo.calls.Load())

	_, err := loader.Load(context.Background())

	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), repo.calls.Load(), "an open breaker must not reach the repository")
}

func TestLoader_CancelledCallersDoNotOpenBreaker(t *testing.T) {
	loader := NewLoader(newFakeRepository(), LoaderOptions{ConsecutiveFailures: 2, OpenTimeout: time.Hour}, zap.NewNop(), nil)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		_, err := loader.Load(cancelled)
		require.ErrorIs(t, err, context.Canceled)
	}

	tables, err := loader.Load(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, tables.Destinations)
}

func TestLoader_TimeoutsStillOpenBreaker(t *testing.T) {
	repo := newFakeRepository()
	loader := NewLoader(repo, LoaderOptions{ConsecutiveFailures: 2, OpenTimeout: time.Hour}, zap.NewNop(), nil)

	for i := 0; i < 2; i++ {
		expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		_, err := loader.Load(expired)
		cancel()
		require.ErrorIs(t, err, context.DeadlineExceeded)
	}

	_, err := loader.Load(context.Background())

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestSanitizeDestinations_KeepsBoundaryValues(t *testing.T) {
	rows := []models.Destination{{Rating: fptr(0), TicketPrice: fptr(0), Latitude: fptr(-90), Longitude: fptr(180)}}

	assert.Zero(t, sanitizeDestinations(rows))
	assert.NotNil(t, rows[0].Rating)
	assert.NotNil(t, rows[0].Longitude)
}
