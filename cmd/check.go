package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandlens/brandlens-cli/internal/model"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run tracker queries against their answer engines",
	Long:  "Queries each tracker's answer engine, detects brand mentions in the response and stores one search record per tracker.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		userID, _ := cmd.Flags().GetString("user")
		trackerID, _ := cmd.Flags().GetString("tracker")

		var trackers []model.Tracker
		if trackerID != "" {
			tr, err := st.GetTracker(ctx, trackerID)
			if err != nil {
				return eris.Wrap(err, "check: load tracker")
			}
			trackers = []model.Tracker{*tr}
		} else {
			trackers, err = st.ListTrackers(ctx, userID)
			if err != nil {
				return eris.Wrap(err, "check: list trackers")
			}
		}
		if len(trackers) == 0 {
			fmt.Println("No trackers to check.")
			return nil
		}

		c, err := initChecker(st)
		if err != nil {
			return err
		}

		zap.L().Info("starting check run", zap.Int("trackers", len(trackers)))
		summary, err := c.Run(ctx, trackers)
		if err != nil {
			return err
		}

		fmt.Printf("Checked %d trackers: %d mentioned, %d failed\n",
			summary.Checked, summary.Mentioned, summary.Failed)
		return nil
	},
}

func init() {
	checkCmd.Flags().String("user", "local", "user ID whose trackers to check")
	checkCmd.Flags().String("tracker", "", "check a single tracker by ID")
	rootCmd.AddCommand(checkCmd)
}
