package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/library"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/subtitle"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/textutil"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/file"
)

func newPairsCommand() *cobra.Command {
	var strategy string
	cmd := &cobra.Command{
		Use:   "pairs <video-dir> [subtitle-dir]",
		Short: "Show how videos and subtitles would be paired",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoDir := args[0]
			subtitleDir := videoDir
			if len(args) == 2 {
				subtitleDir = args[1]
			}
			st, err := parseStrategy(strategy)
			if err != nil {
				return err
			}

			pairs, unpaired, err := library.FindPairs(videoDir, subtitleDir, st)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(pairs))
			for _, p := range pairs {
				rows = append(rows, []string{p.VideoName(), p.SubtitleName()})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Video", "Subtitle"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d pairs\n", len(pairs))
			printUnpaired(out, unpaired)
			return nil
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", string(library.StrategyEpisode), "Pairing strategy: name or episode")
	return cmd
}

func parseStrategy(name string) (library.Strategy, error) {
	switch st := library.Strategy(name); st {
	case library.StrategyName, library.StrategyEpisode:
		return st, nil
	}
	return "", apperror.New(apperror.ErrValidation, fmt.Sprintf("unknown strategy %q", name))
}

func newSubtitleCommand() *cobra.Command {
	var offset float64
	var write bool
	cmd := &cobra.Command{
		Use:   "subtitle <file>",
		Short: "Print the normalized cues of a subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Clean(args[0])
			sub, err := subtitle.NewReader().ReadFile(path)
			if err != nil {
				return err
			}

			shift := subtitle.Seconds(offset)
			cues := make([]subtitle.Cue, 0, len(sub.Cues))
			rows := make([][]string, 0, len(sub.Cues))
			for _, c := range sub.Cues {
				c = c.Shift(shift)
				c.Text = textutil.Normalize(c.Text)
				cues = append(cues, c)
				rows = append(rows, []string{
					itoa(c.Index),
					formatTimestamp(c.Start.Seconds()),
					formatTimestamp(c.End.Seconds()),
					c.Text,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Start", "End", "Text"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d cues, format %s, language %s\n", len(cues), sub.Format, sub.Language)

			if !write {
				return nil
			}
			target := file.ReplaceExt(path, ".shifted.srt")
			if err := subtitle.NewWriter().Write(target, cues); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", target)
			return nil
		},
	}
	cmd.Flags().Float64Var(&offset, "offset", 0, "Seconds added to every cue")
	cmd.Flags().BoolVar(&write, "write", false, "Write the shifted cues next to the input as .shifted.srt")
	return cmd
}
