package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/brandlens/brandlens-cli/internal/analytics"
	"github.com/brandlens/brandlens-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export search records to CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.ListRecords(ctx, recordFilter(cmd))
		if err != nil {
			return eris.Wrap(err, "export: list records")
		}

		format, _ := cmd.Flags().GetString("format")
		kind, _ := cmd.Flags().GetString("kind")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = kind + "." + format
		}

		var count int
		switch {
		case kind == "records" && format == "csv":
			count, err = len(records), export.WriteCSV(records, out)
		case kind == "records" && format == "xlsx":
			count, err = len(records), export.WriteXLSX(records, out)
		case kind == "sources" && format == "csv":
			stats := analytics.TopSources(records, 0)
			count, err = len(stats), export.WriteSourcesCSV(stats, out)
		case kind == "sources" && format == "xlsx":
			stats := analytics.TopSources(records, 0)
			count, err = len(stats), export.WriteSourcesXLSX(stats, out)
		default:
			return eris.Errorf("unsupported export: kind %s, format %s", kind, format)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %d %s to %s\n", count, kind, out)
		return nil
	},
}

func init() {
	addRecordFilterFlags(exportCmd)
	exportCmd.Flags().String("format", "csv", "output format (csv or xlsx)")
	exportCmd.Flags().String("kind", "records", "what to export (records or sources)")
	exportCmd.Flags().String("out", "", "output path (default <kind>.<format>)")
	rootCmd.AddCommand(exportCmd)
}
