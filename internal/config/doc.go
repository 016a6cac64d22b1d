// Package config handles configuration loading for pinoyflex.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file, with environment
// variable expansion and PINOYFLEX_* overrides. Every field has a default,
// so a missing file is not an error for LoadOrDefault.
//
// # Configuration File
//
// Location (first match wins):
//
//  1. Path from PINOYFLEX_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/pinoyflex/config.yaml
//  3. ~/.config/pinoyflex/config.yaml
//
// A path ending in .toml is parsed as TOML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	storage:
//	  path: "${HOME}/pinoyflex.db"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Storage:
//
//	storage:
//	  driver: sqlite      # sqlite (pure Go), sqlite3 (cgo), or memory
//	  path: /var/lib/pinoyflex/pinoyflex.db
//
// Passwords:
//
//	auth:
//	  hash_passwords: true   # bcrypt new passwords; plaintext records still verify
//	  bcrypt_cost: 10
//
// Sample data:
//
//	seed:
//	  enabled: true
//
// Logging:
//
//	logging:
//	  level: info    # debug, info, warn, error
//	  format: text   # text or json
//
// # Environment Overrides
//
// Applied after the file, when set:
//
//	PINOYFLEX_STORAGE_DRIVER   storage.driver
//	PINOYFLEX_STORAGE_PATH     storage.path
//	PINOYFLEX_HASH_PASSWORDS   auth.hash_passwords
//	PINOYFLEX_BCRYPT_COST      auth.bcrypt_cost
//	PINOYFLEX_SEED             seed.enabled
//	PINOYFLEX_LOG_LEVEL        logging.level
//	PINOYFLEX_LOG_FORMAT       logging.format
//
// LoadDotEnv reads a .env file into the environment first; variables that
// are already set win.
package config
