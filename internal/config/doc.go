// Package config provides configuration management for the dashboard.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (CBP_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CBP_<SECTION>_<FIELD>:
//
//	CBP_SERVER_PORT=5000
//	CBP_DATA_SOURCE_PATH=/srv/data/cbp_2021.csv
//	CBP_DATA_CACHE_ENABLED=true
//	CBP_LOGGING_LEVEL=debug
//	CBP_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// Relative paths are resolved by Paths, first against the working directory
// and then against the executable directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
