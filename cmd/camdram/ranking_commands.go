package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/status"

	"github.com/cheeseechops/CamdramAPI/internal/corpusaccess"
	"github.com/cheeseechops/CamdramAPI/internal/grpcserver"
	"github.com/cheeseechops/CamdramAPI/internal/leaderboard"
	"github.com/cheeseechops/CamdramAPI/internal/rankcache"
	"github.com/cheeseechops/CamdramAPI/internal/ranking"
)

func newRankingCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newTopCommand(ctx),
		newRolesCommand(ctx),
		newRoleCommand(ctx),
		newSocietiesCommand(ctx),
		newVenuesCommand(ctx),
		newPersonCommand(ctx),
		newSkippedCommand(ctx),
	}
}

func newTopCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		page    int
		search  string
		sortCol string
		sortDir string
		active  bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the people with the most credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(a *corpusaccess.Access, cache *rankcache.Service) error {
				lb := a.Config.Leaderboards
				q := leaderboard.PeopleQuery{
					Search:  search,
					SortCol: sortCol,
					SortDir: sortDir,
					Page:    page,
					PerPage: limit,
					MaxPer:  lb.MaxPageSize,
				}
				if active {
					q.Active = cache.ActivePersonIDs(cmd.Context(), lb.ActiveWindowMonths)
				}
				result := leaderboard.QueryPeople(cache.PersonRankings(cmd.Context()), cache.Popularity(cmd.Context()), q)
				if asJSON {
					return writeJSON(cmd, result)
				}
				printPeoplePage(cmd, result)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Rows per page")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only people whose name contains this text")
	cmd.Flags().StringVar(&sortCol, "sort", leaderboard.SortCount, "Sort column")
	cmd.Flags().StringVar(&sortDir, "dir", "desc", "Sort direction (asc or desc)")
	cmd.Flags().BoolVar(&active, "active", false, "Only people credited within the active window")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func printPeoplePage(cmd *cobra.Command, p leaderboard.PeoplePage) {
	if len(p.People) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No people found.")
		return
	}
	offset := (p.Page - 1) * p.PerPage
	rows := make([][]string, len(p.People))
	for i, pv := range p.People {
		rows[i] = []string{
			strconv.Itoa(offset + i + 1),
			pv.Name,
			strconv.Itoa(pv.Count),
			strconv.Itoa(pv.NumShows),
			pv.TopRole,
			pv.TopCategory,
			pv.CreditDateRange,
		}
	}
	printTable(cmd,
		[]string{"#", "Name", "Credits", "Shows", "Top role", "Category", "Active"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight})
	fmt.Fprintf(cmd.OutOrStdout(), "Page %d, %d of %d people\n", p.Page, len(p.People), p.Total)
}

func newRolesCommand(ctx *commandContext) *cobra.Command {
	var includeCount1, active, asJSON bool
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List roles with enough people to rank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(a *corpusaccess.Access, cache *rankcache.Service) error {
				lb := a.Config.Leaderboards
				opts := leaderboard.RoleOptions{MinPeople: lb.RoleMinPeople, IncludeCount1: includeCount1}
				if active {
					opts.Active = cache.ActivePersonIDs(cmd.Context(), lb.ActiveWindowMonths)
				}
				index, byRole := cache.RoleRankings(cmd.Context())
				listing, filtered := leaderboard.ListRoles(index, byRole, opts)
				if asJSON {
					return writeJSON(cmd, map[string]any{"roles": listing, "by_role": filtered})
				}
				if len(listing) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No roles found.")
					return nil
				}
				rows := make([][]string, len(listing))
				for i, r := range listing {
					rows[i] = []string{r.Name, strconv.Itoa(r.NumPeople), r.Category, r.MainGroup}
				}
				printTable(cmd, []string{"Role", "People", "Category", "Group"}, rows,
					[]columnAlignment{alignLeft, alignRight})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&includeCount1, "include-count1", false, "Keep roles nobody has done more than once")
	cmd.Flags().BoolVar(&active, "active", false, "Only count people credited within the active window")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newRoleCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var active, asJSON bool
	cmd := &cobra.Command{
		Use:   "role <name>",
		Short: "Show the leaderboard for one role",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(a *corpusaccess.Access, cache *rankcache.Service) error {
				srv := grpcserver.NewServer(cache, a.Config.Leaderboards, ctx.logger(cmd))
				resp, err := srv.GetRole(cmd.Context(), &grpcserver.GetRoleRequest{
					Role:       strings.Join(args, " "),
					ActiveOnly: active,
					Limit:      limit,
				})
				if err != nil {
					return fmt.Errorf("role %q: %s", strings.Join(args, " "), status.Convert(err).Message())
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				printHeading(cmd, fmt.Sprintf("%s (%s, %d people)", resp.Role, resp.Category, resp.NumPeople))
				printCounts(cmd, resp.People, "Credits")
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum people to show (0 for all)")
	cmd.Flags().BoolVar(&active, "active", false, "Only people credited within the active window")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newSocietiesCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "societies",
		Short: "Show the top people per society",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(a *corpusaccess.Access, cache *rankcache.Service) error {
				boards := cache.SocietyLeaderboards(cmd.Context(), limit)
				if asJSON {
					return writeJSON(cmd, boards)
				}
				for _, b := range boards {
					printHeading(cmd, b.Label)
					printCounts(cmd, b.Top, "Shows")
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "People per society (0 uses the configured limit)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newVenuesCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Show the top people per venue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(a *corpusaccess.Access, cache *rankcache.Service) error {
				boards := cache.VenueLeaderboards(cmd.Context(), limit)
				if asJSON {
					return writeJSON(cmd, boards)
				}
				for _, b := range boards {
					printHeading(cmd, fmt.Sprintf("%s (%d shows)", b.Label, b.ShowCount))
					printCounts(cmd, b.Top, "Shows")
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "People per venue (0 uses the configured limit)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newPersonCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "person <pid>",
		Short: "Show one person's credit profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid person id %q", args[0])
			}
			return ctx.withCache(cmd, func(_ *corpusaccess.Access, cache *rankcache.Service) error {
				stats, ok := cache.PersonStats(cmd.Context(), pid)
				if !ok {
					return fmt.Errorf("person %d not found", pid)
				}
				if asJSON {
					return writeJSON(cmd, stats)
				}
				printHeading(cmd, stats.Name)
				printTable(cmd, []string{"Field", "Value"}, [][]string{
					{"Credits", strconv.Itoa(stats.TotalCredits)},
					{"Shows", strconv.Itoa(stats.UniqueShows)},
					{"Roles", strconv.Itoa(stats.UniqueRoles)},
					{"First credit", stats.FirstCreditDate},
					{"Last credit", stats.LastCreditDate},
					{"Credits per year", strconv.FormatFloat(stats.CreditsPerYear, 'f', 2, 64)},
					{"Camdram", stats.CamdramURL},
				}, nil)
				if len(stats.TopRoles) > 0 {
					rows := make([][]string, len(stats.TopRoles))
					for i, r := range stats.TopRoles {
						rows[i] = []string{r.Name, strconv.Itoa(r.Count)}
					}
					printTable(cmd, []string{"Role", "Credits"}, rows, []columnAlignment{alignLeft, alignRight})
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newSkippedCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "skipped",
		Short: "Report corpus records left out of the rankings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(_ *corpusaccess.Access, cache *rankcache.Service) error {
				sk := cache.Skipped(cmd.Context())
				if asJSON {
					return writeJSON(cmd, struct {
						ranking.SkipReport
						Dropped int `json:"dropped"`
					}{sk, sk.Dropped()})
				}
				printTable(cmd, []string{"Reason", "Count"}, [][]string{
					{"Shows without slug", strconv.Itoa(sk.ShowsWithoutSlug)},
					{"Duplicate shows", strconv.Itoa(sk.DuplicateShows)},
					{"Missing person", strconv.Itoa(sk.MissingPerson)},
					{"Non-role entries", strconv.Itoa(sk.NonRoleEntries)},
					{"Blank roles", strconv.Itoa(sk.BlankRoles)},
					{"Undated shows", strconv.Itoa(sk.UndatedShows)},
				}, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintf(cmd.OutOrStdout(), "Dropped: %d\n", sk.Dropped())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
