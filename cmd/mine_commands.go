package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/library"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/service"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/subtitle"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/file"
)

type mineFlags struct {
	offset    float64
	preview   bool
	jsonOut   bool
	offsetSet bool
}

func (f *mineFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.offset, "offset", 0, "Seconds added to every subtitle timestamp (default MINER_SUBTITLE_OFFSET)")
	cmd.Flags().BoolVar(&f.preview, "preview", false, "Show the words without creating cards or statistics")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print results as JSON")
}

func (f *mineFlags) resolveOffset(cmd *cobra.Command, fallback time.Duration) time.Duration {
	if cmd.Flags().Changed("offset") {
		return subtitle.Seconds(f.offset)
	}
	return fallback
}

func newMineCommand(ctx *commandContext) *cobra.Command {
	var flags mineFlags
	cmd := &cobra.Command{
		Use:   "mine <video> <subtitle>",
		Short: "Mine one episode",
		Args:  cobra.ExactArgs(2),
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			miner, err := ctx.newMiner(flags.preview)
			if err != nil {
				return err
			}

			pair := library.FilePair{Video: args[0], Subtitle: args[1]}
			out, err := miner.MineEpisode(cmd.Context(), pair, flags.resolveOffset(cmd, cfg.Mining.Offset()))
			if err != nil {
				return err
			}
			if flags.jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printOutcome(cmd.OutOrStdout(), out)
			return nil
		}),
	}
	flags.register(cmd)
	return cmd
}

func newMineFolderCommand(ctx *commandContext) *cobra.Command {
	var flags mineFlags
	var minEpisodes int
	var since time.Duration
	cmd := &cobra.Command{
		Use:   "mine-folder <folder>",
		Short: "Mine every episode of a folder holding videos and subtitles",
		Args:  cobra.ExactArgs(1),
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			miner, err := ctx.newMiner(flags.preview)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-episodes") {
				minEpisodes = cfg.Mining.MinEpisodeAppearances
			}

			folder := filepath.Clean(args[0])
			offset := flags.resolveOffset(cmd, cfg.Mining.Offset())
			var out service.FolderOutcome
			if since > 0 {
				out, err = mineRecent(cmd, miner, folder, offset, since)
			} else {
				out, err = miner.MineFolder(cmd.Context(), folder, offset, minEpisodes)
			}
			if err != nil {
				return err
			}
			if flags.jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printFolderOutcome(cmd.OutOrStdout(), out)
			if failed := out.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d episodes failed", failed, len(out.Episodes))
			}
			return nil
		}),
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&minEpisodes, "min-episodes", 0, "Keep only words heard in at least this many episodes (default MINER_MIN_EPISODE_APPEARANCES)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only mine episodes whose subtitle changed within this window, e.g. 24h")
	return cmd
}

// mineRecent mines the pairs whose subtitle was modified within since, one
// by one.
func mineRecent(cmd *cobra.Command, miner *service.Miner, folder string, offset, since time.Duration) (service.FolderOutcome, error) {
	pairs, unpaired, err := library.FindPairs(folder, folder, library.StrategyEpisode)
	if err != nil {
		return service.FolderOutcome{}, err
	}
	recent, err := file.FindRecentAfter(folder, time.Now().Add(-since))
	if err != nil {
		return service.FolderOutcome{}, err
	}

	ret := service.FolderOutcome{Unpaired: unpaired}
	for _, pair := range pairs {
		if _, ok := recent[filepath.Clean(pair.Subtitle)]; !ok {
			continue
		}
		out, err := miner.MineEpisode(cmd.Context(), pair, offset)
		if cmd.Context().Err() != nil {
			return ret, cmd.Context().Err()
		}
		ret.TotalCards += out.Result.CardsCreated
		ret.Episodes = append(ret.Episodes, service.EpisodeOutcome{Outcome: out, Err: err})
	}
	return ret, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func entryRows(entries []vocab.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rank := ""
		if e.FrequencyRank > 0 {
			rank = itoa(e.FrequencyRank)
		}
		rows = append(rows, []string{
			e.Lemma,
			e.Reading,
			e.Surface,
			rank,
			formatTimestamp(e.StartTime),
			truncate(e.Sentence, 40),
		})
	}
	return rows
}

func printOutcome(w io.Writer, out service.Outcome) {
	if len(out.Entries) > 0 {
		fmt.Fprintln(w, renderTable(
			[]string{"Lemma", "Reading", "Surface", "Rank", "Time", "Sentence"},
			entryRows(out.Entries),
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		))
	}
	summary := [][2]string{
		{"Episode", service.EpisodeName(out.Pair)},
		{"Words", itoa(out.Result.TotalWords)},
		{"New words", itoa(out.Result.NewWords)},
	}
	if out.Preview {
		summary = append(summary, [2]string{"Cards", "preview"})
	} else {
		summary = append(summary, [2]string{"Cards", itoa(out.Result.CardsCreated)})
	}
	summary = append(summary, [2]string{"Elapsed", out.Result.Elapsed.Round(time.Millisecond).String()})
	fmt.Fprintln(w, renderKeyValues(summary))
}

func printFolderOutcome(w io.Writer, out service.FolderOutcome) {
	rows := make([][]string, 0, len(out.Episodes))
	for _, ep := range out.Episodes {
		status := "ok"
		if ep.Err != nil {
			status = truncate(ep.Err.Error(), 50)
		}
		rows = append(rows, []string{
			ep.Pair.VideoName(),
			itoa(ep.Result.TotalWords),
			itoa(ep.Result.NewWords),
			itoa(ep.Result.CardsCreated),
			status,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Episode", "Words", "New", "Cards", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(w, "%d cards created\n", out.TotalCards)
	printUnpaired(w, out.Unpaired)
}

func printUnpaired(w io.Writer, unpaired library.Unpaired) {
	for _, v := range unpaired.Videos {
		fmt.Fprintf(w, "unpaired video: %s\n", filepath.Base(v))
	}
	for _, s := range unpaired.Subtitles {
		fmt.Fprintf(w, "unpaired subtitle: %s\n", filepath.Base(s))
	}
}
