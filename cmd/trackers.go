package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/brandlens/brandlens-cli/internal/model"
)

var trackersCmd = &cobra.Command{
	Use:   "trackers",
	Short: "Manage brand trackers",
	Long:  "Commands for adding, listing and deleting tracked brand + query pairs.",
}

var trackersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a tracker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		brand, _ := cmd.Flags().GetString("brand")
		query, _ := cmd.Flags().GetString("query")
		domain, _ := cmd.Flags().GetString("domain")
		engine, _ := cmd.Flags().GetString("engine")
		userID, _ := cmd.Flags().GetString("user")

		if brand == "" || query == "" {
			return eris.New("--brand and --query are required")
		}
		switch model.Engine(engine) {
		case model.EngineOpenAI, model.EngineClaude:
		default:
			return eris.Errorf("unsupported engine: %s", engine)
		}

		created, err := st.CreateTracker(ctx, model.Tracker{
			UserID: userID,
			Brand:  brand,
			Query:  query,
			Domain: domain,
			Engine: model.Engine(engine),
		})
		if err != nil {
			return eris.Wrap(err, "trackers add")
		}

		fmt.Printf("Created tracker %s (%s / %q)\n", created.ID, created.Brand, created.Query)
		return nil
	},
}

var trackersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trackers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		userID, _ := cmd.Flags().GetString("user")
		trackers, err := st.ListTrackers(ctx, userID)
		if err != nil {
			return eris.Wrap(err, "trackers list")
		}

		if len(trackers) == 0 {
			fmt.Fprintln(os.Stderr, "No trackers found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tBRAND\tQUERY\tDOMAIN\tENGINE\tCREATED")
		for _, t := range trackers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.Brand, t.Query, t.Domain, t.Engine, t.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var trackersDeleteCmd = &cobra.Command{
	Use:     "delete <tracker-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a tracker",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteTracker(ctx, args[0]); err != nil {
			return eris.Wrap(err, "trackers delete")
		}
		fmt.Printf("Deleted tracker %s\n", args[0])
		return nil
	},
}

func init() {
	trackersAddCmd.Flags().String("brand", "", "brand name to detect (required)")
	trackersAddCmd.Flags().String("query", "", "search query to run (required)")
	trackersAddCmd.Flags().String("domain", "", "brand domain for citation matching")
	trackersAddCmd.Flags().String("engine", string(model.EngineOpenAI), "answer engine (openai or claude)")

	trackersCmd.PersistentFlags().String("user", "local", "user ID owning the trackers")
	trackersCmd.AddCommand(trackersAddCmd, trackersListCmd, trackersDeleteCmd)
	rootCmd.AddCommand(trackersCmd)
}
