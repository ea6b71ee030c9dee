package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// ExportColumns are the displayed destination columns, in export order. The names
// match the source schema so the file lines up with the database tables.
var ExportColumns = []string{"nama_tempat", "nama_kota", "nama_kategori", "rating_rata2", "harga_tiket"}

// ExportRow is one destination as shown in the listing.
type ExportRow struct {
	Name        string
	City        string
	Category    string
	Rating      *float64
	TicketPrice *float64
}

// ExportRows projects display-ordered destinations onto the exported columns.
func ExportRows(rows []models.JoinedDestination) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRow{
			Name:        r.Name,
			City:        r.CityName,
			Category:    r.CategoryName,
			Rating:      r.Rating,
			TicketPrice: r.TicketPrice,
		})
	}
	return out
}

// WriteDestinationsCSV writes a header and one record per row. Missing numbers are
// written as empty cells.
func WriteDestinationsCSV(w io.Writer, rows []ExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportColumns); err != nil {
		return fmt.Errorf("failed writing csv header: %w", err)
	}
	for i, r := range rows {
		record := []string{r.Name, r.City, r.Category, formatCell(r.Rating), formatCell(r.TicketPrice)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed writing csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadDestinationsCSV parses a file produced by WriteDestinationsCSV.
func ReadDestinationsCSV(r io.Reader) ([]ExportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(ExportColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed reading csv header: %w", err)
	}
	for i, col := range ExportColumns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected csv column %d: got %q, want %q", i, header[i], col)
		}
	}

	rows := make([]ExportRow, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed reading csv line %d: %w", line, err)
		}
		rating, err := parseCell(record[3])
		if err != nil {
			return nil, fmt.Errorf("line %d rating: %w", line, err)
		}
		price, err := parseCell(record[4])
		if err != nil {
			return nil, fmt.Errorf("line %d ticket price: %w", line, err)
		}
		rows = append(rows, ExportRow{
			Name:        record[0],
			City:        record[1],
			Category:    record[2],
			Rating:      rating,
			TicketPrice: price,
		})
	}
	return rows, nil
}

func formatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseCell(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
