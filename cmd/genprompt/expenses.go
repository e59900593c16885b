package main

import (
	"github.com/germanamz/genprompt/cmd/genprompt/internal/format"
	"github.com/germanamz/genprompt/pkg/expenses"
	"github.com/spf13/cobra"
)

func newExpensesCmd(g *globalOptions) *cobra.Command {
	var (
		dbPath     string
		formatFlag string
	)

	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "List stored expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			applyServerFlags(&cfg.Server, "", dbPath, "")

			db, err := expenses.OpenDB(cfg.Server.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			items, err := expenses.NewStore(db).List(cmd.Context())
			if err != nil {
				return err
			}

			return format.WriteExpenses(cmd.OutOrStdout(), items, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dbPath, "db", "", "SQLite database path (env: GENPROMPT_DB_PATH, default: genprompt.db)")
	flags.StringVar(&formatFlag, "format", "table", "output format: table or json")

	return cmd
}
