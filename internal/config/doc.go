// Package config provides configuration management for bondpulse.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//  1. Default values
//  2. A YAML file (BONDPULSE_CONFIG_FILE, config.yaml or configs/config.yaml)
//  3. Environment variables, including those from a .env file
//
// # Environment Variables
//
// All environment variables use the BONDPULSE_ prefix followed by the section:
//
//	BONDPULSE_SERVER_PORT=8080
//	BONDPULSE_DATA_DIR=/srv/ticks
//	BONDPULSE_DATA_TICKERS=ZN:zn_oct.csv,ZB:zb_oct.xlsx
//	BONDPULSE_DATA_GAPFILL_ENABLED=true
//	BONDPULSE_DATA_GAPFILL_INTERVAL=5m
//	BONDPULSE_DATA_GAPFILL_MODE=reindex
//	BONDPULSE_LOGGING_LEVEL=debug
//
// # Example YAML
//
//	server:
//	  port: 8080
//	data:
//	  dir: data
//	  tickers:
//	    ZN: zn_oct.csv
//	  gapfill:
//	    enabled: false
//	    interval: 5m
//	    session_open: 18h
//	    session_close: 41h
package config
