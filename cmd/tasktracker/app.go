package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Joseda-hg/tasktracker/internal/autoclose"
	"github.com/Joseda-hg/tasktracker/internal/config"
	"github.com/Joseda-hg/tasktracker/internal/db"
	"github.com/Joseda-hg/tasktracker/internal/pgstore"
	"github.com/Joseda-hg/tasktracker/internal/service"
)

type options struct {
	configPath  string
	dbPath      string
	driver      string
	databaseURL string
	logLevel    string
}

// store is satisfied by both the SQLite and the PostgreSQL backends.
type store interface {
	service.ProjectStore
	Ping(ctx context.Context) error
	Close() error
}

type app struct {
	cfg      config.Config
	cfgPath  string
	store    store
	projects *service.ProjectService
	tasks    *service.TaskService
	job      *autoclose.Job
	logger   *slog.Logger
	closeLog func() error
}

// close releases the store and the log output.
func (a *app) close() error {
	return errors.Join(a.store.Close(), a.closeLog())
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file, applies command-line overrides and writes a
// default file on first start.
func loadConfig(opts options) (config.Config, string, error) {
	cfgPath, err := resolveConfigPath(opts.configPath)
	if err != nil {
		return config.Config{}, "", err
	}

	_, statErr := os.Stat(cfgPath)
	firstRun := os.IsNotExist(statErr)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, "", err
	}
	applyOverrides(&cfg, opts, cfgPath)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}

	if firstRun {
		if err := config.Save(cfgPath, cfg); err != nil {
			return config.Config{}, "", err
		}
	}
	return cfg, cfgPath, nil
}

func applyOverrides(cfg *config.Config, opts options, cfgPath string) {
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.driver != "" {
		cfg.DBDriver = strings.ToLower(strings.TrimSpace(opts.driver))
	}
	if opts.databaseURL != "" {
		cfg.DatabaseURL = opts.databaseURL
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "tasktracker.db")
	}
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	if cfg.DBDriver == config.DriverPostgres {
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}

	if err := config.EnsureDir(cfg.DBPath); err != nil {
		return nil, err
	}
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return db.NewStore(sqlDB), nil
}

// logOutput returns where the logs go and how to release it.
type logOutput func(cfgPath string) (io.Writer, func() error, error)

// newApp wires config, storage and services.
func newApp(ctx context.Context, opts options, output logOutput) (*app, error) {
	cfg, cfgPath, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	w, closeLog, err := output(cfgPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(w, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, errors.Join(err, closeLog())
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, errors.Join(err, closeLog())
	}
	logger.Info("store opened", "driver", cfg.DBDriver, "config", cfgPath)

	projects := service.NewProjectService(st, cfg.Rules, logger)
	tasks := service.NewTaskService(st, projects, cfg.Rules, logger)

	return &app{
		cfg:      cfg,
		cfgPath:  cfgPath,
		store:    st,
		projects: projects,
		tasks:    tasks,
		job:      autoclose.NewJob(st.Tasks(), logger),
		logger:   logger,
		closeLog: closeLog,
	}, nil
}

func stderrLog(string) (io.Writer, func() error, error) {
	return os.Stderr, func() error { return nil }, nil
}

// fileLog keeps the terminal free for the menu.
func fileLog(cfgPath string) (io.Writer, func() error, error) {
	path := filepath.Join(filepath.Dir(cfgPath), "tasktracker.log")
	if err := config.EnsureDir(path); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
