package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/corpusaccess"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/rankcache"
	"github.com/cheeseechops/CamdramAPI/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Generate reports",
	}
	reportCmd.AddCommand(newReportPDFCommand(ctx))
	return reportCmd
}

func newReportPDFCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var recentYears int
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Write the plain-text summary PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(a *corpusaccess.Access, cache *rankcache.Service) error {
				target := a.Config.Paths.SummaryPDF
				if strings.TrimSpace(outPath) != "" {
					expanded, err := config.ExpandPath(outPath)
					if err != nil {
						return err
					}
					target = expanded
				}

				m, err := cache.LoadConsolidationMapping()
				if err != nil {
					ctx.logger(cmd).Warn("load consolidations failed", logging.Error(err))
				}
				lb := a.Config.Leaderboards
				summary := report.Build(cache.Corpus(cmd.Context()), report.Options{
					Now:         time.Now(),
					RecentYears: recentYears,
					Resolver:    consolidation.NewResolver(m),
					Societies:   cache.SocietyLeaderboards(cmd.Context(), lb.SocietyLimit),
					Venues:      cache.VenueLeaderboards(cmd.Context(), lb.VenueLimit),
				})
				if err := report.WriteFile(target, summary); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote summary to %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (defaults to paths.summary_pdf)")
	cmd.Flags().IntVar(&recentYears, "recent-years", 0, "Only include people credited within this many years")
	return cmd
}
