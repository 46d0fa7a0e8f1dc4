// Package config loads runtime configuration for the exoscope client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables (EXOSCOPE_*, STABILITY_API_KEY).
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "15s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "https://exo.example.org/api/v1",
//	  "database_path": "/home/me/.local/share/exoscope.db",
//	  "request_timeout": "15s",
//	  "online_check_interval": "10s",
//	  "log_level": "info",
//	  "s3_bucket": "textures"
//	}
//
// Secrets (the Stability API key and S3 credentials) are read from the
// environment only.
package config
