// Package config provides configuration management for the catalog sync
// service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file, with defaults declared as struct tags next to each
// partial configuration.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details (sqlite for tests)
//   - Storage: S3/MinIO credentials for the raw payload archive
//   - Log: Logging level and format
//   - Queue: Worker pool sizing and per-task timeout
//   - Supplier: Catalog supplier source settings
//   - Tasks: Downstream fan-out endpoints
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
