// Package bootstrap assembles the epub module for the CLI entry points:
// flags and an optional YAML config file select the storage backend, logging
// provider, and ingest source tree.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"gopkg.in/yaml.v3"

	epub "github.com/goliatone/go-epub"
	"github.com/goliatone/go-epub/internal/di"
	"github.com/goliatone/go-epub/internal/library"
	"github.com/goliatone/go-epub/internal/logging"
	"github.com/goliatone/go-epub/pkg/interfaces"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Options captures configuration for the epub CLI bootstraps.
type Options struct {
	// ConfigPath points at an optional YAML configuration file. Flag values
	// take precedence over file values.
	ConfigPath string
	// Driver selects the database driver, "sqlite3" or "postgres". Empty
	// runs on memory repositories.
	Driver string
	// DSN is the database connection string.
	DSN string
	// SourceDir roots markdown ingestion, empty disables it.
	SourceDir string
	// LogLevel overrides the configured log level when set.
	LogLevel string
	// Quiet disables the logging feature entirely.
	Quiet bool
	// LoggerProvider overrides the provider built from configuration.
	LoggerProvider interfaces.LoggerProvider
}

// FileConfig mirrors the YAML configuration accepted by the CLIs.
type FileConfig struct {
	Storage struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`
	Cache struct {
		Enabled *bool         `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Logging struct {
		Provider  string `yaml:"provider"`
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		AddSource bool   `yaml:"add_source"`
	} `yaml:"logging"`
	Ingest struct {
		ContentDir string `yaml:"content_dir"`
		Pattern    string `yaml:"pattern"`
		IndexFile  string `yaml:"index_file"`
		Recursive  *bool  `yaml:"recursive"`
	} `yaml:"ingest"`
	Collation struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"collation"`
}

// Module wraps the epub module and the bindings the CLIs work with.
type Module struct {
	Module  *epub.Module
	Library epub.LibraryService
	Ingest  epub.IngestService
	Baker   epub.Baker
	Logger  interfaces.Logger

	db *bun.DB
}

// Close releases the database handle when one was opened.
func (m *Module) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// BuildModule constructs an epub module configured for CLI operations.
func BuildModule(opts Options) (*Module, error) {
	fileCfg, err := loadFileConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg := epub.DefaultConfig()
	cfg.Features.Collation = true
	if fileCfg.Collation.Enabled != nil {
		cfg.Features.Collation = *fileCfg.Collation.Enabled
	}
	if fileCfg.Cache.Enabled != nil {
		cfg.Cache.Enabled = *fileCfg.Cache.Enabled
	}
	if fileCfg.Cache.TTL > 0 {
		cfg.Cache.DefaultTTL = fileCfg.Cache.TTL
	}

	if !opts.Quiet {
		cfg.Features.Logger = true
		if provider := strings.TrimSpace(fileCfg.Logging.Provider); provider != "" {
			cfg.Logging.Provider = provider
		}
		if level := strings.TrimSpace(fileCfg.Logging.Level); level != "" {
			cfg.Logging.Level = level
		}
		if level := strings.TrimSpace(opts.LogLevel); level != "" {
			cfg.Logging.Level = level
		}
		cfg.Logging.Format = fileCfg.Logging.Format
		cfg.Logging.AddSource = fileCfg.Logging.AddSource
	}

	sourceDir := strings.TrimSpace(opts.SourceDir)
	if sourceDir == "" {
		sourceDir = strings.TrimSpace(fileCfg.Ingest.ContentDir)
	}
	if sourceDir != "" {
		cfg.Features.Ingest = true
		cfg.Ingest.Enabled = true
		if pattern := strings.TrimSpace(fileCfg.Ingest.Pattern); pattern != "" {
			cfg.Ingest.Pattern = pattern
		}
		if index := strings.TrimSpace(fileCfg.Ingest.IndexFile); index != "" {
			cfg.Ingest.IndexFile = index
		}
		if fileCfg.Ingest.Recursive != nil {
			cfg.Ingest.Recursive = *fileCfg.Ingest.Recursive
		}
	}

	driver := strings.TrimSpace(opts.Driver)
	dsn := strings.TrimSpace(opts.DSN)
	if driver == "" {
		driver = strings.TrimSpace(fileCfg.Storage.Driver)
	}
	if dsn == "" {
		dsn = strings.TrimSpace(fileCfg.Storage.DSN)
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}
	if sourceDir != "" {
		diOpts = append(diOpts, di.WithSourceFS(os.DirFS(sourceDir)))
	}

	var db *bun.DB
	if dsn != "" {
		db, err = openDatabase(driver, dsn)
		if err != nil {
			return nil, err
		}
		cfg.Storage.Provider = "bun"
		diOpts = append(diOpts, di.WithBunDB(db))
	}

	module, err := epub.New(cfg, diOpts...)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("initialise epub module: %w", err)
	}

	logger := logging.ModuleLogger(module.Container().LoggerProvider(), "epub.cli")

	return &Module{
		Module:  module,
		Library: module.Library(),
		Ingest:  module.Ingest(),
		Baker:   module.Baker(),
		Logger:  logger,
		db:      db,
	}, nil
}

func loadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", trimmed, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", trimmed, err)
	}
	return cfg, nil
}

func openDatabase(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case "", "sqlite3", "sqlite":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		sqldb.SetMaxIdleConns(1)
		db := bun.NewDB(sqldb, sqlitedialect.New())
		if err := library.CreateTables(context.Background(), db); err != nil {
			db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
		return db, nil
	case "postgres":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		db := bun.NewDB(sqldb, pgdialect.New())
		if err := library.CreateTables(context.Background(), db); err != nil {
			db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
