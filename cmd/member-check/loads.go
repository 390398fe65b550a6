package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"chapter-map/internal/migrate"
	"chapter-map/internal/store"
	"chapter-map/internal/utils"
)

func newLoadsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "loads",
		Short: "List recent load cycles recorded by the server (PG_* env)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := utils.OpenPostgresFromEnv()
			if err != nil {
				return fmt.Errorf("db: %w", err)
			}
			st := store.AttachDB(db)
			defer st.Close()
			if err := migrate.EnsureSchema(ctx, db); err != nil {
				return fmt.Errorf("schema: %w", err)
			}
			loads, err := st.RecentLoads(ctx, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLOADED\tSTATUS\tMEMBERS\tREJECTED\tCACHE\tERROR")
			for _, l := range loads {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%t\t%s\n",
					l.ID, l.LoadedAt.Format(time.RFC3339), l.Status, l.Members, l.Rejected, l.FromCache, l.Error)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records")
	return cmd
}
