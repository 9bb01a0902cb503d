package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/neox5/statbox/internal/app"
	"github.com/neox5/statbox/internal/config"
	"github.com/neox5/statbox/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "statbox",
		Usage:   "Declarative metric services over a StatsD-style client",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run exporter, traffic simulation and monitor until interrupted",
				Action: serve,
			},
			{
				Name:   "names",
				Usage:  "list declared methods and their metric names",
				Action: names,
			},
			{
				Name:   "touch",
				Usage:  "increment and decrement every declared metric once",
				Flags:  []cli.Flag{dryRunFlag()},
				Action: touch,
			},
			{
				Name:      "emit",
				Usage:     "invoke one declared method",
				ArgsUsage: "<service> <method> [args...]",
				Flags:     []cli.Flag{dryRunFlag()},
				Action:    emit,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "log metric calls instead of exporting them",
	}
}

// setup installs the default logger and loads the configuration.
func setup(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	logLevel := slog.LevelInfo
	if cmd.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	configPath := cmd.String("config")
	slog.Debug("loading configuration", "config", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	slog.Info("starting statbox", "version", version.String(), "config", cmd.String("config"))

	application, err := app.New(ctx, cfg, app.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer closeApp(application)

	// Setup graceful shutdown
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(shutdownCtx); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}

func names(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	application, err := app.New(ctx, cfg, app.Options{DryRun: true, Logger: logger})
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tMETHOD\tKIND\tMETRIC\tDESCRIPTION")
	for _, name := range cfg.ServiceNames() {
		for _, e := range application.Services[name].Table().Entries() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, e.ID, e.Kind, e.Name, e.Description)
		}
	}
	return w.Flush()
}

func touch(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	application, err := app.New(ctx, cfg, app.Options{DryRun: cmd.Bool("dry-run"), OneShot: true, Logger: logger})
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	application.TouchAll()
	return application.Close()
}

func emit(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("usage: statbox emit %s", cmd.ArgsUsage)
	}

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	application, err := app.New(ctx, cfg, app.Options{DryRun: cmd.Bool("dry-run"), OneShot: true, Logger: logger})
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer closeApp(application)

	svc, err := application.Service(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	method := cmd.Args().Get(1)
	args, err := parseArgs(cmd.Args().Slice()[2:])
	if err != nil {
		return err
	}

	if err := svc.Invoke(method, args...); err != nil {
		return err
	}

	slog.Info("emitted", "service", cmd.Args().Get(0), "method", method, "args", args)
	return nil
}

func closeApp(application *app.App) {
	if err := application.Close(); err != nil {
		slog.Error("failed to close application", "error", err)
	}
}
