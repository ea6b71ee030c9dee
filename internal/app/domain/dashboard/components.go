package dashboard

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// htmlWriter stops writing after the first error so components can write linearly.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err == nil {
		_, h.err = fmt.Fprintf(h.w, format, args...)
	}
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func render(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// LayoutPage wraps content in the document shell and the section navigation.
func LayoutPage(l models.LayoutTempl) templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(l.Title)
		h.raw(`</title><link rel="stylesheet" href="/assets/css/dashboard.css"></head><body class="bg-gray-50 text-gray-900">`)
		h.raw(`<nav class="flex gap-4 px-6 py-3 bg-white shadow"><span class="font-bold">`)
		h.text(l.Title)
		h.raw(`</span>`)
		for _, item := range l.Nav.Items {
			class := "text-gray-600"
			if item.Name == l.ActiveNav {
				class = "active text-blue-600 font-semibold"
			}
			h.printf(`<a class="%s" href="%s">`, class, templ.EscapeString(item.URL))
			h.text(item.Name)
			h.raw(`</a>`)
		}
		h.raw(`</nav><main class="max-w-7xl mx-auto p-6">`)
		h.component(l.Content)
		h.raw(`</main></body></html>`)
	})
}

// ErrorBanner is shown instead of the dashboard when no snapshot can be produced.
func ErrorBanner(message string) templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<div id="error" class="text-red-500 text-center py-8">`)
		h.text(message)
		h.raw(`</div>`)
	})
}

// DashboardPage renders every section of one dashboard pass. exportURL points at the
// CSV download for the same criteria.
func DashboardPage(d *models.Dashboard, exportURL string) templ.Component {
	return render(func(h *htmlWriter) {
		h.component(FilterForm(d.Options, d.Criteria))
		if d.Unresolved > 0 {
			h.printf(`<p id="unresolved" class="text-amber-600 text-sm">%s destinations reference a missing city or category.</p>`, FormatCount(d.Unresolved))
		}
		h.component(MetricCards(d.Metrics))
		h.component(DestinationTable(d.Destinations, exportURL))
		h.component(AnalysisSection(d.Aggregates))
		h.component(MapSection(d.MapPoints))
		h.component(UserTable(d.Users))
		h.component(ReviewTable(d.Reviews))
	})
}

// FilterForm submits the criteria back to "/" with GET. The applied marker tells the
// handler that unchecked boxes mean deselected.
func FilterForm(options models.FilterOptions, criteria models.FilterCriteria) templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<form id="filters" method="get" action="/" class="grid gap-4 md:grid-cols-3 mb-6">`)
		h.raw(`<input type="hidden" name="applied" value="1">`)
		checkboxGroup(h, "city", "Cities", options.Cities, criteria.Cities)
		checkboxGroup(h, "category", "Categories", options.Categories, criteria.Categories)
		h.raw(`<fieldset><legend class="font-semibold">Minimum rating</legend>`)
		h.printf(`<input type="number" name="min_rating" min="0" max="%s" step="0.1" value="%s">`,
			strconv.FormatFloat(models.MaxDestinationRating, 'f', -1, 64),
			strconv.FormatFloat(criteria.MinRating, 'f', -1, 64))
		h.raw(`</fieldset><button type="submit" class="btn">Apply</button></form>`)
	})
}

func checkboxGroup(h *htmlWriter, name, legend string, options, selected []string) {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	h.printf(`<fieldset id="%s-options"><legend class="font-semibold">%s</legend>`, name, legend)
	for _, opt := range options {
		checked := ""
		if chosen[opt] {
			checked = " checked"
		}
		h.printf(`<label class="block"><input type="checkbox" name="%s" value="%s"%s> `, name, templ.EscapeString(opt), checked)
		h.text(opt)
		h.raw(`</label>`)
	}
	h.raw(`</fieldset>`)
}

func MetricCards(m models.SummaryMetrics) templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<section id="metrics" class="grid gap-4 md:grid-cols-4 mb-6">`)
		card(h, "metric-destinations", "Destinations", FormatCount(m.DestinationCount))
		card(h, "metric-average-rating", "Average rating", FormatMeanRating(m.AverageRating))
		card(h, "metric-average-price", "Average ticket price", FormatMeanPrice(m.AveragePrice))
		card(h, "metric-users", "Users", FormatCount(m.UserCount))
		card(h, "metric-reviews", "Reviews", FormatCount(m.ReviewCount))
		card(h, "metric-reviewed-destinations", "Reviewed destinations", FormatCount(m.ReviewedDestinations))
		card(h, "metric-active-users", "Active reviewers", FormatCount(m.ActiveUsers))
		card(h, "metric-average-age", "Average age", FormatMeanAge(m.Ages))
		h.raw(`</section>`)
	})
}

func card(h *htmlWriter, id, label, value string) {
	h.printf(`<div id="%s" class="card"><div class="text-sm text-gray-500">`, id)
	h.text(label)
	h.raw(`</div><div class="value text-2xl font-bold">`)
	h.text(value)
	h.raw(`</div></div>`)
}

func DestinationTable(rows []models.JoinedDestination, exportURL string) templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<section id="destinations" class="mb-8"><h2>Destinations</h2>`)
		h.printf(`<a id="export" href="%s" download>Download CSV</a>`, templ.EscapeString(exportURL))
		if len(rows) == 0 {
			h.raw(`<p class="empty">No destinations match the current filters.</p></section>`)
			return
		}
		h.raw(`<table><thead><tr><th>Name</th><th>City</th><th>Category</th><th>Rating</th><th>Ticket price</th></tr></thead><tbody>`)
		for _, r := range rows {
			h.raw(`<tr><td>`)
			h.text(r.Name)
			h.raw(`</td><td>`)
			h.text(r.CityName)
			h.raw(`</td><td>`)
			h.text(r.CategoryName)
			h.raw(`</td><td>`)
			h.text(FormatRating(r.Rating))
			h.raw(`</td><td>`)
			h.text(FormatPrice(r.TicketPrice))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
	})
}

func AnalysisSection(a models.Aggregates) templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<section id="analysis" class="grid gap-6 md:grid-cols-2 mb-8">`)
		barChart(h, "chart-city", "Destinations per city", a.DestinationsPerCity)
		barChart(h, "chart-category", "Destinations per category", a.DestinationsPerCategory)
		barChart(h, "chart-category-rating", "Average rating per category", a.MeanRatingPerCategory)
		barChart(h, "chart-category-price", "Average ticket price per category", a.MeanPricePerCategory)
		barChart(h, "chart-top-destinations", "Top destinations by rating", a.TopDestinations)
		barChart(h, "chart-home-city", "Users per home city", a.UsersPerHomeCity)
		histogram(h, "chart-age", "User age distribution", a.AgeHistogram)
		barChart(h, "chart-reviews-destination", "Reviews per destination", a.ReviewsPerDestination)
		histogram(h, "chart-rating", "Review score distribution", a.RatingHistogram)
		h.raw(`</section>`)
	})
}

func barChart(h *htmlWriter, id, title string, series []models.KeyValue) {
	h.printf(`<div id="%s" class="chart"><h3>`, id)
	h.text(title)
	h.raw(`</h3>`)
	if len(series) == 0 {
		h.raw(`<p class="empty">` + NoData + `</p></div>`)
		return
	}
	peak := 0.0
	for _, kv := range series {
		if kv.Value > peak {
			peak = kv.Value
		}
	}
	h.raw(`<ul>`)
	for _, kv := range series {
		h.printf(`<li class="bar-row"><span class="label">%s</span>`, templ.EscapeString(kv.Key))
		h.printf(`<span class="bar" style="width: %.1f%%"></span>`, percent(kv.Value, peak))
		h.printf(`<span class="value">%s</span></li>`, formatValue(kv.Value))
	}
	h.raw(`</ul></div>`)
}

func histogram(h *htmlWriter, id, title string, bins []models.HistogramBin) {
	h.printf(`<div id="%s" class="chart"><h3>`, id)
	h.text(title)
	h.raw(`</h3>`)
	if len(bins) == 0 {
		h.raw(`<p class="empty">` + NoData + `</p></div>`)
		return
	}
	peak := 0
	for _, b := range bins {
		if b.Count > peak {
			peak = b.Count
		}
	}
	h.raw(`<ul>`)
	for _, b := range bins {
		h.printf(`<li class="bar-row"><span class="label">%s-%s</span>`, formatValue(b.Lower), formatValue(b.Upper))
		h.printf(`<span class="bar" style="width: %.1f%%"></span>`, percent(float64(b.Count), float64(peak)))
		h.printf(`<span class="value">%d</span></li>`, b.Count)
	}
	h.raw(`</ul></div>`)
}

func percent(v, peak float64) float64 {
	if peak <= 0 {
		return 0
	}
	return v / peak * 100
}

func MapSection(points []models.MapPoint) templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<section id="map" class="mb-8"><h2>Map</h2>`)
		if len(points) == 0 {
			h.raw(`<p class="empty">No destinations with coordinates.</p></section>`)
			return
		}
		h.raw(`<ul class="map-points">`)
		for _, p := range points {
			h.printf(`<li data-lat="%s" data-lon="%s">`,
				strconv.FormatFloat(p.Latitude, 'f', -1, 64),
				strconv.FormatFloat(p.Longitude, 'f', -1, 64))
			h.text(p.Name)
			h.raw(` <span class="rating">`)
			h.text(FormatRating(p.Rating))
			h.raw(`</span></li>`)
		}
		h.raw(`</ul></section>`)
	})
}

func UserTable(users []models.User) templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<section id="users" class="mb-8"><h2>Users</h2>`)
		if len(users) == 0 {
			h.raw(`<p class="empty">` + NoData + `</p></section>`)
			return
		}
		h.raw(`<table><thead><tr><th>ID</th><th>Age</th><th>Home city</th></tr></thead><tbody>`)
		for _, u := range users {
			h.printf(`<tr><td>%d</td><td>`, u.ID)
			h.text(FormatAge(u.Age))
			h.raw(`</td><td>`)
			if u.HomeCity == "" {
				h.text(models.UnknownLabel)
			} else {
				h.text(u.HomeCity)
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
	})
}

func ReviewTable(reviews []models.EnrichedReview) templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<section id="reviews" class="mb-8"><h2>Reviews</h2>`)
		if len(reviews) == 0 {
			h.raw(`<p class="empty">` + NoData + `</p></section>`)
			return
		}
		h.raw(`<table><thead><tr><th>Review</th><th>User</th><th>Destination</th><th>City</th><th>Score</th></tr></thead><tbody>`)
		for _, r := range reviews {
			h.printf(`<tr><td>%d</td><td>%d</td><td>`, r.ID, r.UserID)
			h.text(optional(r.DestinationName))
			h.raw(`</td><td>`)
			h.text(optional(r.CityName))
			h.printf(`</td><td>%d</td></tr>`, r.Rating)
		}
		h.raw(`</tbody></table></section>`)
	})
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
