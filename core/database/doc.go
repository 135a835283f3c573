// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly
// configure MySQL connections based on the application's configuration, with a
// sqlite branch used by tests and local development.
//
// # Connect
//
// The generic Connect function establishes a connection to the database. It is
// agnostic to the catalog schema itself; schema creation is handled by the
// migrate command.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema, used by the
// migrate command to verify that the catalog tables ended up with the expected
// columns after a migration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "products")
package database
