package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/service"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/subtitle"
)

func (c *commandContext) ensureQueue() (*jobs.Queue, error) {
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	return jobs.NewQueue(store), nil
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage the folder queue",
	}
	cmd.AddCommand(newQueueAddCommand(ctx))
	cmd.AddCommand(newQueueListCommand(ctx))
	cmd.AddCommand(newQueueRemoveCommand(ctx))
	cmd.AddCommand(newQueueClearCommand(ctx))
	cmd.AddCommand(newQueueRequeueCommand(ctx))
	cmd.AddCommand(newQueueRunCommand(ctx))
	return cmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var name string
	var offset float64
	cmd := &cobra.Command{
		Use:   "add <anime-folder> [subtitle-folder]",
		Short: "Queue a folder pair for mining",
		Args:  cobra.RangeArgs(1, 2),
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			queue, err := ctx.ensureQueue()
			if err != nil {
				return err
			}

			req := jobs.AddRequest{
				AnimeFolder:    args[0],
				SubtitleFolder: args[0],
				DisplayName:    name,
				SubtitleOffset: cfg.Mining.Offset(),
			}
			if len(args) == 2 {
				req.SubtitleFolder = args[1]
			}
			if cmd.Flags().Changed("offset") {
				req.SubtitleOffset = subtitle.Seconds(offset)
			}
			item, err := queue.Add(req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s (%s)\n", item.DisplayName, shortID(item.ID))
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (default: anime folder name)")
	cmd.Flags().Float64Var(&offset, "offset", 0, "Subtitle offset in seconds for this item")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List queued folders",
		Args:    cobra.NoArgs,
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			queue, err := ctx.ensureQueue()
			if err != nil {
				return err
			}
			items := queue.Items()
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderQueue(items))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print items as JSON")
	return cmd
}

func renderQueue(items []*jobs.QueueItem) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			shortID(item.ID),
			item.DisplayName,
			string(item.Status),
			itoa(item.CardsCreated),
			fmt.Sprintf("%+.1fs", item.SubtitleOffset),
			truncate(item.ErrorMessage, 40),
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Status", "Cards", "Offset", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a queued folder",
		Args:    cobra.ExactArgs(1),
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			queue, err := ctx.ensureQueue()
			if err != nil {
				return err
			}
			id, err := resolveItemID(queue, args[0])
			if err != nil {
				return err
			}
			if err := queue.Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", shortID(id))
			return nil
		}),
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every item that is not being processed",
		Args:  cobra.NoArgs,
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			queue, err := ctx.ensureQueue()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d items\n", queue.Clear())
			return nil
		}),
	}
}

func newQueueRequeueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <id>",
		Short: "Queue a finished item again",
		Args:  cobra.ExactArgs(1),
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			queue, err := ctx.ensureQueue()
			if err != nil {
				return err
			}
			id, err := resolveItemID(queue, args[0])
			if err != nil {
				return err
			}
			item, err := queue.Requeue(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s (%s)\n", item.DisplayName, shortID(item.ID))
			return nil
		}),
	}
}

func newQueueRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Mine every pending folder",
		Args:  cobra.NoArgs,
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			queue, err := ctx.ensureQueue()
			if err != nil {
				return err
			}
			miner, err := ctx.newMiner(false)
			if err != nil {
				return err
			}

			svc := service.NewQueueService(queue, miner,
				service.WithLockPath(cfg.LockPath()),
				service.WithQueueReporter(newProgressReporter(os.Stdout)),
			)
			summary, err := svc.Run(cmd.Context())
			if err != nil && !errors.Is(err, jobs.ErrCancelled) {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"Completed", itoa(summary.Completed)},
				{"Failed", itoa(summary.Failed)},
				{"Cards", itoa(summary.TotalCards)},
			}))
			if summary.Cancelled {
				fmt.Fprintln(out, "run cancelled; interrupted items stay processing")
			}
			return err
		}),
	}
}

// resolveItemID accepts a full item id or an unambiguous prefix of one.
func resolveItemID(queue *jobs.Queue, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if _, ok := queue.Get(prefix); ok {
		return prefix, nil
	}
	var match string
	for _, item := range queue.Items() {
		if prefix == "" || !strings.HasPrefix(item.ID, prefix) {
			continue
		}
		if match != "" {
			return "", apperror.New(apperror.ErrValidation, fmt.Sprintf("id prefix %q is ambiguous", prefix))
		}
		match = item.ID
	}
	if match == "" {
		return "", jobs.ErrItemNotFound
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
