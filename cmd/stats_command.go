package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show mining statistics",
		Args:  cobra.NoArgs,
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			c := cmd.Context()
			out := cmd.OutOrStdout()

			overall, err := store.OverallStats(c)
			if err != nil {
				return err
			}
			known, err := store.KnownWordCount(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"Sessions", itoa(overall.TotalSessions)},
				{"Series", itoa(overall.SeriesCount)},
				{"Words seen", itoa(overall.TotalWords)},
				{"Unknown words", itoa(overall.TotalUnknown)},
				{"Cards", itoa(overall.CardsCreated)},
				{"Cards per session", fmt.Sprintf("%.1f", overall.AvgCardsPerSession())},
				{"Known words", itoa(known)},
				{"Time spent", overall.TotalTimeSpent.Round(time.Second).String()},
			}))

			series, err := store.SeriesStats(c)
			if err != nil {
				return err
			}
			if len(series) > 0 {
				rows := make([][]string, 0, len(series))
				for _, s := range series {
					rows = append(rows, []string{
						s.SeriesName,
						itoa(s.EpisodesMined),
						itoa(s.TotalWords),
						itoa(s.TotalUnknown),
						itoa(s.CardsCreated),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Series", "Episodes", "Words", "Unknown", "Cards"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
			}

			ranking, err := store.DifficultyRanking(c)
			if err != nil {
				return err
			}
			if len(ranking) > 0 {
				rows := make([][]string, 0, len(ranking))
				for _, d := range ranking {
					rows = append(rows, []string{d.SeriesName, itoa(d.Episodes), fmt.Sprintf("%.1f%%", d.AvgScore*100)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Series", "Episodes", "Unknown ratio"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight},
				))
			}

			if recent <= 0 {
				return nil
			}
			sessions, err := store.RecentSessions(c, recent)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, []string{
					s.MinedAt.Local().Format("2006-01-02 15:04"),
					s.SeriesName,
					s.EpisodeName,
					itoa(s.UnknownWords),
					itoa(s.CardsCreated),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Mined", "Series", "Episode", "Unknown", "Cards"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		}),
	}
	cmd.Flags().IntVar(&recent, "recent", 10, "Number of recent sessions to show, 0 hides them")
	return cmd
}
