package mapsync

import "github.com/goliatone/go-mapsync/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown           = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown             = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired               = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid                  = runtimeconfig.ErrCacheTTLInvalid
	ErrCacheFeatureRequiresEnabledCache = runtimeconfig.ErrCacheFeatureRequiresEnabledCache
	ErrLoggingProviderRequired          = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown           = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid              = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid             = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config        = runtimeconfig.Config
	StorageConfig = runtimeconfig.StorageConfig
	CacheConfig   = runtimeconfig.CacheConfig
	LoggingConfig = runtimeconfig.LoggingConfig
	Features      = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
