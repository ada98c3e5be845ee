package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cheeseechops/CamdramAPI/internal/corpusaccess"
	"github.com/cheeseechops/CamdramAPI/internal/leaderboard"
	"github.com/cheeseechops/CamdramAPI/internal/rankcache"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the rankings",
	}
	exportCmd.AddCommand(newExportCSVCommand(ctx))
	exportCmd.AddCommand(newExportJSONCommand(ctx))
	return exportCmd
}

func newExportCSVCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write the person rankings as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(_ *corpusaccess.Access, cache *rankcache.Service) error {
				rows := cache.PersonRankings(cmd.Context())
				return withOutput(cmd, outPath, func(w io.Writer) error {
					return writeRankingsCSV(w, rows)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "Output path, - for stdout")
	return cmd
}

func newExportJSONCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "json",
		Short: "Write the person and role rankings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(a *corpusaccess.Access, cache *rankcache.Service) error {
				index, byRole := cache.RoleRankings(cmd.Context())
				listing, filtered := leaderboard.ListRoles(index, byRole, leaderboard.RoleOptions{
					MinPeople: a.Config.Leaderboards.RoleMinPeople,
				})
				doc := map[string]any{
					"people":  cache.PersonRankings(cmd.Context()),
					"roles":   listing,
					"by_role": filtered,
					"skipped": cache.Skipped(cmd.Context()),
				}
				return withOutput(cmd, outPath, func(w io.Writer) error {
					return encodeJSON(w, doc)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "Output path, - for stdout")
	return cmd
}

// withOutput runs fn against stdout for "-" and against a created file
// otherwise.
func withOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(cmd.OutOrStdout())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", path)
	return nil
}

func writeRankingsCSV(w io.Writer, rows []models.RankingRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"pid", "name", "slug", "count", "num_shows", "num_titles", "top_role", "top_role_count",
		"top_category", "first_credit_date", "last_credit_date",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			strconv.FormatInt(r.PID, 10),
			r.Name,
			r.Slug,
			strconv.Itoa(r.Count),
			strconv.Itoa(r.NumShows),
			strconv.Itoa(r.NumTitles),
			r.TopRole,
			strconv.Itoa(r.TopRoleCount),
			r.TopCategory,
			r.FirstCreditDate,
			r.LastCreditDate,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
