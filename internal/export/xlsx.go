package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/brandlens/brandlens-cli/internal/model"
)

// WriteXLSX writes records as an XLSX workbook with a single sheet.
func WriteXLSX(records []model.SearchRecord, outputPath string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Records")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range recordColumns {
		header.AddCell().SetString(col)
	}

	for _, rec := range records {
		row := sheet.AddRow()
		for _, val := range buildRow(rec) {
			row.AddCell().SetString(val)
		}
	}

	if err := f.Save(outputPath); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}

// WriteSourcesXLSX writes aggregated domain stats as an XLSX workbook.
func WriteSourcesXLSX(stats []model.DomainStat, outputPath string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sources")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range sourceColumns {
		header.AddCell().SetString(col)
	}

	for _, st := range stats {
		row := sheet.AddRow()
		for _, val := range buildSourceRow(st) {
			row.AddCell().SetString(val)
		}
	}

	if err := f.Save(outputPath); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}
