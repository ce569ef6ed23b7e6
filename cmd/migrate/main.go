package main

import (
	"flowcast/internal/config" // Custom import path (Config)
	"flowcast/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DBPath)     // Create tables on the local database file
}
