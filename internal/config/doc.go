// Package config provides configuration management for the consolidator.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file (config.yaml or configs/config.yaml)
//  3. Default values from Default() (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CONSOLIDATOR_<SECTION>_<KEY>:
//
//	CONSOLIDATOR_SERVER_PORT=8080
//	CONSOLIDATOR_LOGGING_LEVEL=debug
//	CONSOLIDATOR_CONSOLIDATION_KEEP_DUPLICATE=last
//	CONSOLIDATOR_CONSOLIDATION_SKIP_INVALID_FILES=true
//	CONSOLIDATOR_LIMITS_MAX_UPLOAD_BYTES=67108864
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, Default() returns a configuration that needs no environment.
package config
