package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/exp/slog"
)

func main() {
	cmd := &cli.Command{
		Name:  "tubecast",
		Usage: "serve YouTube channels as podcast feeds",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a yaml config file", Sources: cli.EnvVars("TUBECAST_CONFIG")},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the http server and the background workers",
				Action: serve,
			},
			{
				Name:      "generate",
				Usage:     "Create or refresh the feed of a channel and print its id",
				ArgsUsage: "<channel url, handle or id>",
				Action:    generate,
			},
			{
				Name:   "cleanup",
				Usage:  "Remove cached audio that was not accessed within the retention period",
				Action: cleanup,
			},
			{
				Name:   "migrate",
				Usage:  "Bring the database schema up to date",
				Action: migrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.refresher.Run(ctx, cfg.Feeds.RefreshWorkers)
	}()
	go func() {
		defer wg.Done()
		a.sweeper.Run(ctx, cfg.Audio.SweepEvery)
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.server(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Info("http server started", slog.Int("port", cfg.Port), slog.String("baseurl", cfg.BaseURL))

	select {
	case <-ctx.Done():
	case err = <-errc:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("unable to shut down http server", slog.String("error", shutdownErr.Error()))
	}
	wg.Wait()
	logger.Info("service stopped")

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func generate(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.Args().First()
	if ref == "" {
		return errors.New("a channel reference is required")
	}
	cfg, logger, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	feedID, err := a.service.GenerateFeed(ctx, ref)
	if err != nil {
		return err
	}
	fmt.Println(feedID)
	fmt.Println(a.service.FeedURL(feedID))

	return nil
}

func cleanup(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Cleanup completed. %d files removed.\n", count)

	return nil
}

func migrate(_ context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	repos, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	logger.Info("database is up to date", slog.String("driver", cfg.Database.Driver))

	return repos.closer.Close()
}
