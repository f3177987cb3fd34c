package epub

import "github.com/goliatone/go-epub/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown            = runtimeconfig.ErrStorageProviderUnknown
	ErrAdvancedCacheRequiresEnabledCache = runtimeconfig.ErrAdvancedCacheRequiresEnabledCache
	ErrIngestFeatureRequired             = runtimeconfig.ErrIngestFeatureRequired
	ErrIngestContentDirRequired          = runtimeconfig.ErrIngestContentDirRequired
	ErrCollationRulesetRequired          = runtimeconfig.ErrCollationRulesetRequired
	ErrRoutesIncomplete                  = runtimeconfig.ErrRoutesIncomplete
	ErrLoggingProviderRequired           = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown            = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid               = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid              = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config             = runtimeconfig.Config
	StorageConfig      = runtimeconfig.StorageConfig
	CacheConfig        = runtimeconfig.CacheConfig
	RoutesConfig       = runtimeconfig.RoutesConfig
	Features           = runtimeconfig.Features
	CommandsConfig     = runtimeconfig.CommandsConfig
	IngestConfig       = runtimeconfig.IngestConfig
	IngestParserConfig = runtimeconfig.IngestParserConfig
	CollationConfig    = runtimeconfig.CollationConfig
	LoggingConfig      = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
