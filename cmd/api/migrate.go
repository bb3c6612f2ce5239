package main

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/inspecta/internal/infra/db/sqlstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create base tables and add missing findings columns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		db, dialect, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		schema := sqlstore.NewSchema(db, dialect)
		if err := schema.CreateTables(ctx); err != nil {
			return err
		}

		out := schema.Migrate(ctx)
		cols := make([]string, 0, len(out))
		for col := range out {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		failed := 0
		for _, col := range cols {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", col, out[col])
			if out[col] != "OK" {
				failed++
			}
		}
		if failed > 0 {
			return eris.Errorf("%d column migration(s) failed", failed)
		}
		return nil
	},
}
