package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/config"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/httpapi"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/library"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/service"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

const shutdownTimeout = 10 * time.Second

type scheduler interface {
	Schedule(ctx context.Context) error
}

type cronEngine interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

// queueScheduler binds a queue service to a cron engine and expression.
type queueScheduler struct {
	svc  *service.QueueService
	cron *cron.Cron
	expr string
}

func (s queueScheduler) Schedule(ctx context.Context) error {
	return s.svc.Schedule(ctx, s.cron, s.expr)
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run scheduled queue runs",
		Args:  cobra.NoArgs,
		RunE: ctx.run(func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.HTTP.Addr = addr
			}
			store, err := ctx.ensureStore()
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
			settings, err := config.NewRuntimeSettingsStore(cfg.SettingsPath(), cfg.RuntimeSettings())
			if err != nil {
				return err
			}

			svc := service.NewQueueService(queue, miner,
				service.WithLockPath(cfg.LockPath()),
				service.WithQueueReporter(service.NewLogReporter()),
			)
			apply := func(rs config.RuntimeSettings) error {
				miner.ApplySettings(miner.Settings().WithRuntime(rs))
				return svc.Reschedule(rs.CronExpr)
			}
			server := httpapi.NewServer(queue, svc,
				httpapi.WithUI(cfg.HTTP.UIStaticDir, cfg.HTTP.UIEnabled),
				httpapi.WithMediaDir(cfg.MediaDir()),
				httpapi.WithRuntimeSettingsStore(settings),
				httpapi.WithRuntimeSettingsApplier(apply),
				httpapi.WithStats(store),
				httpapi.WithScanner(library.NewScanner()),
			)

			runCtx := cmd.Context()
			go func() {
				<-runCtx.Done()
				if svc.Cancel() {
					log.Info("Cancelling active queue run")
				}
			}()

			c := cron.New()
			err = runWithComponents(runCtx, cfg, queueScheduler{svc: svc, cron: c, expr: cfg.Schedule.CronExpr}, c, server)
			waitIdle(svc, shutdownTimeout)
			return err
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default MINER_HTTP_ADDR)")
	return cmd
}

// runWithComponents schedules queue runs, serves HTTP until ctx is done and
// then stops both.
func runWithComponents(ctx context.Context, cfg *config.Config, sched scheduler, engine cronEngine, srv httpServer) error {
	if err := sched.Schedule(ctx); err != nil {
		return err
	}
	engine.Start()
	defer func() {
		select {
		case <-engine.Stop().Done():
		case <-time.After(shutdownTimeout):
			log.Warn("Scheduled run did not finish within %s", shutdownTimeout)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening on %s", cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func waitIdle(svc *service.QueueService, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for svc.Running() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
}
