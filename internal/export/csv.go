// Package export writes search records to CSV and XLSX files.
package export

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/brandlens/brandlens-cli/internal/model"
)

// recordColumns defines the ordered output columns for record exports.
var recordColumns = []string{
	"Date",
	"Brand",
	"Query",
	"Engine",
	"Mentioned",
	"Evidence",
	"Source URLs",
}

// WriteCSV writes records as a CSV file with a header row.
func WriteCSV(records []model.SearchRecord, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create csv file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(recordColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, rec := range records {
		if err := w.Write(buildRow(rec)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	return nil
}

// buildRow maps a SearchRecord to one export row.
func buildRow(rec model.SearchRecord) []string {
	return []string{
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.Brand,
		rec.Query,
		string(rec.Engine),
		formatMentioned(rec.Mentioned),
		rec.Evidence,
		strings.Join(rec.SourceURLs, " "),
	}
}

func formatMentioned(m *bool) string {
	if m == nil {
		return ""
	}
	return strconv.FormatBool(*m)
}

// sourceColumns defines the ordered output columns for domain stat exports.
var sourceColumns = []string{
	"Domain",
	"Mentions",
	"Queries",
	"Representative URL",
}

// WriteSourcesCSV writes aggregated domain stats as a CSV file.
func WriteSourcesCSV(stats []model.DomainStat, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create csv file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(sourceColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, st := range stats {
		if err := w.Write(buildSourceRow(st)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	return nil
}

func buildSourceRow(st model.DomainStat) []string {
	return []string{
		st.Domain,
		strconv.Itoa(st.MentionCount),
		strings.Join(st.Queries, ", "),
		st.RepresentativeURL,
	}
}
