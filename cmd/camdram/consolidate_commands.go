package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/corpusaccess"
	"github.com/cheeseechops/CamdramAPI/internal/roles"
)

func newConsolidateCommand(ctx *commandContext) *cobra.Command {
	consolidateCmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Edit the role consolidation mapping",
	}
	consolidateCmd.AddCommand(newConsolidateListCommand(ctx))
	consolidateCmd.AddCommand(newConsolidateAddCommand(ctx))
	consolidateCmd.AddCommand(newConsolidateRemoveCommand(ctx))
	return consolidateCmd
}

func newConsolidateListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every source role and the role it folds into",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(a *corpusaccess.Access) error {
				m, err := a.Consolidations.Load()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, m)
				}
				if len(m) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No consolidations.")
					return nil
				}
				resolver := consolidation.NewResolver(m)
				sources := m.Sources()
				rows := make([][]string, len(sources))
				for i, src := range sources {
					rows[i] = []string{src, m[src], resolver.Resolve(src)}
				}
				printTable(cmd, []string{"Source", "Target", "Resolves to"}, rows, nil)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newConsolidateAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <target> <source>...",
		Short: "Fold one or more source roles into a target role",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, sources := args[0], args[1:]
			return ctx.withAccess(func(a *corpusaccess.Access) error {
				changed, err := a.Consolidations.Update(cmd.Context(), func(m consolidation.Mapping) (int, error) {
					return m.Merge(target, sources)
				})
				if err != nil {
					return err
				}
				name, _ := roles.Canonicalize(target)
				fmt.Fprintf(cmd.OutOrStdout(), "Mapped %d role(s) to %s\n", changed, name)
				return nil
			})
		},
	}
}

func newConsolidateRemoveCommand(ctx *commandContext) *cobra.Command {
	var source, target string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Drop one source mapping, or every mapping into a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (source == "") == (target == "") {
				return errors.New("exactly one of --source or --target is required")
			}
			return ctx.withAccess(func(a *corpusaccess.Access) error {
				changed, err := a.Consolidations.Update(cmd.Context(), func(m consolidation.Mapping) (int, error) {
					if source != "" {
						return m.RemoveSource(source)
					}
					return m.RemoveTarget(target)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d mapping(s)\n", changed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Source role to unmap")
	cmd.Flags().StringVar(&target, "target", "", "Target role whose sources are unmapped")
	return cmd
}
