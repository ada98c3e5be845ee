package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cheeseechops/CamdramAPI/internal/corpus"
	"github.com/cheeseechops/CamdramAPI/internal/corpusaccess"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/scraper"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

func newHarvestCommand(ctx *commandContext) *cobra.Command {
	var (
		from, to    string
		incremental bool
		noHydrate   bool
		maxPages    int
	)
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Fetch shows and credits from Camdram into the configured corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(a *corpusaccess.Access) error {
				cfg := a.Config
				logger := ctx.logger(cmd)

				existing, err := a.Source.Load(cmd.Context())
				if err != nil && !errors.Is(err, corpus.ErrNoCorpus) {
					return fmt.Errorf("load existing corpus: %w", err)
				}

				client := scraper.NewClient(cmd.Context(), scraper.ClientOptions{
					BaseURL:      cfg.Camdram.BaseURL,
					TokenURL:     cfg.Camdram.TokenURL,
					ClientID:     cfg.Camdram.ClientID,
					ClientSecret: cfg.Camdram.ClientSecret,
					Timeout:      cfg.Timeout(),
				})
				if from == "" {
					from = cfg.Harvest.FromDate
				}
				c, run, runErr := scraper.NewHarvester(client, logger).Run(cmd.Context(), existing, scraper.Options{
					From:           from,
					To:             to,
					Incremental:    incremental,
					LookbackDays:   cfg.Harvest.LookbackDays,
					LookaheadDays:  cfg.Harvest.LookaheadDays,
					Hydrate:        !noHydrate,
					HydrateMinYear: cfg.Harvest.HydrateMinYear,
					MaxWorkers:     cfg.Camdram.MaxWorkers,
					PerPage:        cfg.Camdram.PerPage,
					MaxPages:       maxPages,
				})

				// A failed or interrupted run still keeps what it gathered.
				saveCtx := context.WithoutCancel(cmd.Context())
				if err := a.Saver.Save(saveCtx, c); err != nil {
					return fmt.Errorf("save corpus: %w", err)
				}
				if a.SQLite != nil {
					if err := a.SQLite.RecordRun(saveCtx, run); err != nil {
						logger.Warn("record harvest run failed", logging.Error(err))
					}
				}
				printRun(cmd, run, len(c.Shows), a.Source.Name())
				return runErr
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Earliest date to discover (defaults to harvest.from_date)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date to discover (defaults to today)")
	cmd.Flags().BoolVar(&incremental, "incremental", false, "Only discover the lookback/lookahead window")
	cmd.Flags().BoolVar(&noHydrate, "no-hydrate", false, "Skip fetching show details")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Cap on pages of the global show listing")
	return cmd
}

func printRun(cmd *cobra.Command, run models.HarvestRun, shows int, dest string) {
	printHeading(cmd, "Harvest "+run.Status)
	printTable(cmd, []string{"Field", "Value"}, [][]string{
		{"Run", run.ID},
		{"Window", run.FromDate + " to " + run.ToDate},
		{"Shows added", fmt.Sprint(run.ShowsAdded)},
		{"Roles loaded", fmt.Sprint(run.RolesLoaded)},
		{"Hydrated", fmt.Sprint(run.Hydrated)},
		{"Total shows", fmt.Sprint(shows)},
		{"Saved to", dest},
	}, nil)
}
