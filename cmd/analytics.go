package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/brandlens/brandlens-cli/internal/analytics"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Aggregate visibility analytics over stored records",
}

var analyticsSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Top domains cited when the brand was mentioned",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.ListRecords(ctx, recordFilter(cmd))
		if err != nil {
			return eris.Wrap(err, "analytics sources")
		}

		limit, _ := cmd.Flags().GetInt("top")
		stats := analytics.TopSources(records, limit)
		if len(stats) == 0 {
			fmt.Fprintln(os.Stderr, "No cited sources found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DOMAIN\tMENTIONS\tQUERIES\tURL")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
				s.Domain, s.MentionCount, strings.Join(s.Queries, ", "), s.RepresentativeURL)
		}
		return w.Flush()
	},
}

var analyticsTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Daily checks and mentions over the last 7 days",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.ListRecords(ctx, recordFilter(cmd))
		if err != nil {
			return eris.Wrap(err, "analytics trend")
		}

		points := analytics.WeeklyTrend(records, time.Now())
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tDAY\tCHECKS\tMENTIONS")
		for _, p := range points {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", p.Date, p.Day, p.Checks, p.Mentions)
		}
		return w.Flush()
	},
}

var analyticsVisibilityCmd = &cobra.Command{
	Use:   "visibility",
	Short: "Competitor share-of-voice across stored records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		userID, _ := cmd.Flags().GetString("user")
		competitors, err := st.ListCompetitors(ctx, userID)
		if err != nil {
			return eris.Wrap(err, "analytics visibility: competitors")
		}
		if len(competitors) == 0 {
			fmt.Fprintln(os.Stderr, "No competitors configured.")
			return nil
		}

		records, err := st.ListRecords(ctx, recordFilter(cmd))
		if err != nil {
			return eris.Wrap(err, "analytics visibility: records")
		}

		metrics := analytics.CompetitorVisibility(records, competitors)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COMPETITOR\tDOMAIN\tMENTIONS\tSEARCHES\tVISIBILITY\tLAST SEEN")
		for _, m := range metrics {
			lastSeen := "-"
			if m.LastSeenAt != nil {
				lastSeen = m.LastSeenAt.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2f%%\t%s\n",
				m.Name, m.Domain, m.MentionCount, m.ApplicableSearches, m.VisibilityPercent, lastSeen)
		}
		return w.Flush()
	},
}

var analyticsPositionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Where in the answer text the brand first appears",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.ListRecords(ctx, recordFilter(cmd))
		if err != nil {
			return eris.Wrap(err, "analytics positions")
		}

		stats := analytics.MentionPositions(records)
		if stats.Samples == 0 {
			fmt.Fprintln(os.Stderr, "No positional mentions found.")
			return nil
		}
		fmt.Printf("Samples: %d\nAverage position: %.2f%%\nMedian position: %.2f%%\n",
			stats.Samples, stats.AveragePct, stats.MedianPct)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{analyticsSourcesCmd, analyticsTrendCmd, analyticsVisibilityCmd, analyticsPositionsCmd} {
		addRecordFilterFlags(cmd)
	}
	analyticsSourcesCmd.Flags().Int("top", 10, "number of domains to show")

	analyticsCmd.AddCommand(analyticsSourcesCmd, analyticsTrendCmd, analyticsVisibilityCmd, analyticsPositionsCmd)
	rootCmd.AddCommand(analyticsCmd)
}
