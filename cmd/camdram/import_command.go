package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/corpus"
	"github.com/cheeseechops/CamdramAPI/internal/corpusaccess"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import [corpus.json]",
		Short: "Load a JSON corpus file into the SQLite database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			src := cfg.Paths.CorpusFile
			if len(args) == 1 {
				if src, err = config.ExpandPath(args[0]); err != nil {
					return err
				}
			}

			c, err := corpus.NewJSONFile(src).Load(cmd.Context())
			if err != nil {
				return err
			}
			db, store, err := corpusaccess.OpenSQLite(cfg.Paths.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := store.Save(cmd.Context(), c); err != nil {
				return fmt.Errorf("import %s: %w", src, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d shows from %s into %s\n", len(c.Shows), src, cfg.Paths.Database)
			return nil
		},
	}
}
