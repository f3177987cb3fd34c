package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrStorageProviderUnknown indicates an unsupported storage provider identifier.
var ErrStorageProviderUnknown = errors.New("epub config: storage provider is invalid")

// ErrAdvancedCacheRequiresEnabledCache ensures advanced cache builds only when cache is enabled.
var ErrAdvancedCacheRequiresEnabledCache = errors.New("epub config: advanced cache feature requires cache to be enabled")

// ErrIngestFeatureRequired indicates inconsistent ingest configuration.
var ErrIngestFeatureRequired = errors.New("epub config: ingest feature must be enabled to configure ingest")
var ErrIngestContentDirRequired = errors.New("epub config: ingest content directory is required when ingest is enabled")
var ErrCollationRulesetRequired = errors.New("epub config: collation ruleset name is required when collation is enabled")
var ErrRoutesIncomplete = errors.New("epub config: route group, route, and parameter names are required")
var ErrLoggingProviderRequired = errors.New("epub config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("epub config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("epub config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("epub config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the epub module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled   bool
	Strict    bool
	Storage   StorageConfig
	Cache     CacheConfig
	Routes    RoutesConfig
	Features  Features
	Commands  CommandsConfig
	Ingest    IngestConfig
	Collation CollationConfig
	Logging   LoggingConfig
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Provider string
}

// CacheConfig captures cache behaviour toggles for the library repositories.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// RoutesConfig captures routing configuration for content and resource URI
// resolution. Rendered books link between documents via the contents route
// and to binary payloads via the resources route.
type RoutesConfig struct {
	RouteConfig    *urlkit.Config
	ContentsGroup  string
	ResourcesGroup string
	ContentsRoute  string
	ResourcesRoute string
	IdentParam     string
	NameParam      string
}

// Features toggles module functionality.
type Features struct {
	Storage       bool
	Collation     bool
	Ingest        bool
	AdvancedCache bool
	Logger        bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled                bool
	AutoRegisterDispatcher bool
}

// IngestConfig captures filesystem and parser behaviour for markdown book sources.
type IngestConfig struct {
	Enabled    bool
	ContentDir string
	Pattern    string
	Recursive  bool
	IndexFile  string
	Parser     IngestParserConfig
}

// IngestParserConfig mirrors the markdown parse options exposed at runtime.
type IngestParserConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// CollationConfig captures behaviour for the collation pipeline.
type CollationConfig struct {
	RulesetName string
}

// DefaultRouteConfig returns the route groups rendered books rely on. Hosts
// that serve content under different prefixes can swap this wholesale.
func DefaultRouteConfig() *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name: "contents",
				Paths: map[string]string{
					"page": "/contents/:ident",
				},
			},
			{
				Name: "resources",
				Paths: map[string]string{
					"resource": "/resources/:name",
				},
			},
		},
	}
}

// DefaultConfig returns opinionated defaults for library consumers.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Strict:  true,
		Storage: StorageConfig{
			Provider: "memory",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Routes: RoutesConfig{
			RouteConfig:    DefaultRouteConfig(),
			ContentsGroup:  "contents",
			ResourcesGroup: "resources",
			ContentsRoute:  "page",
			ResourcesRoute: "resource",
			IdentParam:     "ident",
			NameParam:      "name",
		},
		Features: Features{},
		Commands: CommandsConfig{},
		Ingest: IngestConfig{
			ContentDir: "content",
			Pattern:    "*.md",
			Recursive:  true,
			IndexFile:  "index.md",
		},
		Collation: CollationConfig{
			RulesetName: "ruleset.css",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if provider := normalizeProvider(cfg.Storage.Provider); provider != "" && !isSupportedStorage(provider) {
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Features.AdvancedCache && !cfg.Cache.Enabled {
		return ErrAdvancedCacheRequiresEnabledCache
	}
	if cfg.Ingest.Enabled {
		if !cfg.Features.Ingest {
			return ErrIngestFeatureRequired
		}
		if strings.TrimSpace(cfg.Ingest.ContentDir) == "" {
			return ErrIngestContentDirRequired
		}
	}
	if cfg.Features.Collation {
		if strings.TrimSpace(cfg.Collation.RulesetName) == "" {
			return ErrCollationRulesetRequired
		}
	}
	if cfg.Routes.RouteConfig != nil {
		for _, field := range []string{
			cfg.Routes.ContentsGroup,
			cfg.Routes.ResourcesGroup,
			cfg.Routes.ContentsRoute,
			cfg.Routes.ResourcesRoute,
			cfg.Routes.IdentParam,
			cfg.Routes.NameParam,
		} {
			if strings.TrimSpace(field) == "" {
				return ErrRoutesIncomplete
			}
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedLogProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedStorage(provider string) bool {
	switch provider {
	case "memory", "bun":
		return true
	default:
		return false
	}
}

func isSupportedLogProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
