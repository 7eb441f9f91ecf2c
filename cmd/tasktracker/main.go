package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/autoclose"
	"github.com/Joseda-hg/tasktracker/internal/tui"
	"github.com/Joseda-hg/tasktracker/internal/web"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
)

var Version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	cmd := rootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		slog.New(slog.NewTextHandler(stderr, nil)).Error("command failed", "error", err)
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Track projects and their tasks",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd.Context(), *opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path")
	flags.StringVar(&opts.dbPath, "db", "", "sqlite db path")
	flags.StringVar(&opts.driver, "driver", "", "storage driver (sqlite or postgres)")
	flags.StringVar(&opts.databaseURL, "database-url", "", "postgres connection url")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(menuCmd(opts))
	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(autocloseCmd(opts))
	cmd.AddCommand(schedulerCmd(opts))
	return cmd
}

func menuCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd.Context(), *opts)
		},
	}
}

func runMenu(ctx context.Context, opts options) error {
	a, err := newApp(ctx, opts, fileLog)
	if err != nil {
		return err
	}
	defer a.close()

	return tui.Run(a.projects, a.tasks, a.logger)
}

func serveCmd(opts *options) *cobra.Command {
	var (
		port          int
		withScheduler bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web API",
		Long: `Start the JSON API and the overview page.

Examples:
  tasktracker serve --port 8080
  tasktracker serve --with-scheduler`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *opts, port, withScheduler)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "web server port (defaults to config web_port)")
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also run the daily auto-close scheduler")
	return cmd
}

func runServe(ctx context.Context, opts options, port int, withScheduler bool) error {
	a, err := newApp(ctx, opts, stderrLog)
	if err != nil {
		return err
	}
	if port == 0 {
		port = a.cfg.WebPort
	}

	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		_ = a.close()
		return err
	}

	server := &http.Server{
		Handler:           web.NewServer(a.projects, a.tasks, a.job, a.store, a.logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		a.logger.Info("web server running", "url", "http://localhost"+addr)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("web server error", "error", err)
		}
	}()

	var scheduler *autoclose.Scheduler
	if withScheduler {
		scheduler, err = autoclose.NewScheduler(a.job, a.cfg.AutoCloseSchedule, a.logger)
		if err != nil {
			_ = server.Close()
			_ = a.close()
			return err
		}
		scheduler.Start()
	}

	return waitForShutdown(a, func(ctx context.Context) error {
		err := server.Shutdown(ctx)
		if scheduler != nil {
			err = errors.Join(err, scheduler.Stop(ctx))
		}
		return err
	})
}

func autocloseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "autoclose",
		Short: "Close overdue tasks once and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *opts, stderrLog)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.job.Run(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func schedulerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run the daily auto-close scheduler in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *opts, stderrLog)
			if err != nil {
				return err
			}

			scheduler, err := autoclose.NewScheduler(a.job, a.cfg.AutoCloseSchedule, a.logger)
			if err != nil {
				_ = a.close()
				return err
			}
			scheduler.Start()

			return waitForShutdown(a, scheduler.Stop)
		},
	}
}

// waitForShutdown blocks until SIGINT or SIGTERM, then stops the workers and closes
// the store and the log output in that order.
func waitForShutdown(a *app, stop func(ctx context.Context) error) error {
	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, map[string]gfshutdown.Operation{
		"application": func(ctx context.Context) error {
			return errors.Join(stop(ctx), a.close())
		},
	})

	if code := <-wait; code != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", code)
	}
	a.logger.Info("shutdown completed")
	return nil
}
