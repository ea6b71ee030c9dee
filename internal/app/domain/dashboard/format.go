package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// NoData is shown wherever a value could not be computed.
const NoData = "no data"

var printer = message.NewPrinter(language.English)

// FormatRating renders a destination rating as "4.5★".
func FormatRating(v *float64) string {
	if v == nil {
		return NoData
	}
	return printer.Sprintf("%.1f★", *v)
}

func FormatMeanRating(m models.Mean) string {
	if !m.Valid() {
		return NoData
	}
	return FormatRating(&m.Value)
}

// FormatPrice renders a ticket price in rupiah with thousands separators, e.g. "Rp 15,000".
func FormatPrice(v *float64) string {
	if v == nil {
		return NoData
	}
	return printer.Sprintf("Rp %.0f", *v)
}

func FormatMeanPrice(m models.Mean) string {
	if !m.Valid() {
		return NoData
	}
	return FormatPrice(&m.Value)
}

func FormatAge(age *int) string {
	if age == nil {
		return NoData
	}
	return printer.Sprintf("%d years", *age)
}

func FormatMeanAge(a models.AgeStats) string {
	if !a.Valid() {
		return NoData
	}
	return printer.Sprintf("%.1f years", a.Mean)
}

func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// formatValue renders a chart value: whole numbers without decimals, means with one.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.1f", v)
}
