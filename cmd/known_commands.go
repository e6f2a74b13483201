package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
)

const (
	sourceManual = "manual"
	sourceImport = "import"
)

func newKnownCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "known",
		Short: "Manage words you already know",
	}
	cmd.AddCommand(newKnownAddCommand(ctx))
	cmd.AddCommand(newKnownImportCommand(ctx))
	cmd.AddCommand(newKnownCountCommand(ctx))
	return cmd
}

func newKnownAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <word>...",
		Short: "Mark words as known",
		Args:  cobra.MinimumNArgs(1),
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			added, err := store.AddKnownWords(cmd.Context(), sortedWords(vocab.NewWordSet(args...)), sourceManual)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d known words\n", added)
			return nil
		}),
	}
}

func newKnownImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Mark every word of a list file as known",
		Long:  "Reads one word per line. Blank lines and lines starting with # are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return apperror.Wrap(err, apperror.ErrValidation, "read word list").WithContext("path", args[0])
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			words := sortedWords(vocab.ParseWordList(data))
			added, err := store.AddKnownWords(cmd.Context(), words, sourceImport)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d words\n", added, len(words))
			return nil
		}),
	}
}

func newKnownCountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print how many words are known",
		Args:  cobra.NoArgs,
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			n, err := store.KnownWordCount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		}),
	}
}

func sortedWords(set vocab.WordSet) []string {
	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
