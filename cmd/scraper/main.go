package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"content_scraper/internal/control"
	"content_scraper/internal/domain"
	"content_scraper/internal/scheduler"
	"content_scraper/internal/source/mirror"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "content-scraper",
	Short:        "Mirror feed scraper for publisher contents",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Scrape on a schedule and serve the control API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		sched := scheduler.NewScheduler(a.service, a.cfg.Schedule.Interval, a.cfg.Schedule.RunTimeout, a.logger)
		srv := control.NewServer(control.Config{
			Addr:       a.cfg.Control.Addr,
			SourceID:   mirror.SourceID,
			RunTimeout: a.cfg.Schedule.RunTimeout,
		}, a.service, a.contents, a.states, a.db, a.logger)

		a.logger.Info("starting content scraper",
			"feed_url", a.cfg.Feed.URL,
			"interval", a.cfg.Schedule.Interval,
			"control_addr", a.cfg.Control.Addr,
		)

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := sched.Start(gCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("run scheduler: %w", err)
			}
			return nil
		})
		g.Go(srv.Start)
		g.Go(func() error {
			<-gCtx.Done()
			a.logger.Info("shutting down")

			downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(downCtx); err != nil {
				a.logger.Error("error shutting down control server", "error", err)
			}
			return nil
		})

		return g.Wait()
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one scrape cycle now and print its stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(ctx, a.cfg.Schedule.RunTimeout)
		defer cancel()

		stats := a.service.Run(ctx, domain.ModeOnDemand)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scrapeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
