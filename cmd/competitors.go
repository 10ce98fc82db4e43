package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/brandlens/brandlens-cli/internal/model"
)

var competitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "Manage tracked competitors",
	Long:  "Commands for adding, listing and deleting competitor brands used in share-of-voice analytics.",
}

var competitorsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a competitor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		name, _ := cmd.Flags().GetString("name")
		domain, _ := cmd.Flags().GetString("domain")
		userID, _ := cmd.Flags().GetString("user")

		if name == "" || domain == "" {
			return eris.New("--name and --domain are required")
		}

		created, err := st.CreateCompetitor(ctx, model.Competitor{
			UserID: userID,
			Name:   name,
			Domain: domain,
		})
		if err != nil {
			return eris.Wrap(err, "competitors add")
		}

		fmt.Printf("Created competitor %s (%s / %s)\n", created.ID, created.Name, created.Domain)
		return nil
	},
}

var competitorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List competitors",
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
			return eris.Wrap(err, "competitors list")
		}

		if len(competitors) == 0 {
			fmt.Fprintln(os.Stderr, "No competitors found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDOMAIN\tCREATED")
		for _, c := range competitors {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Domain, c.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var competitorsDeleteCmd = &cobra.Command{
	Use:     "delete <competitor-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a competitor",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteCompetitor(ctx, args[0]); err != nil {
			return eris.Wrap(err, "competitors delete")
		}
		fmt.Printf("Deleted competitor %s\n", args[0])
		return nil
	},
}

func init() {
	competitorsAddCmd.Flags().String("name", "", "competitor brand name (required)")
	competitorsAddCmd.Flags().String("domain", "", "competitor domain (required)")

	competitorsCmd.PersistentFlags().String("user", "local", "user ID owning the competitors")
	competitorsCmd.AddCommand(competitorsAddCmd, competitorsListCmd, competitorsDeleteCmd)
	rootCmd.AddCommand(competitorsCmd)
}
