/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/smarttech/storefront"
	"github.com/smarttech/storefront/config"
	"github.com/smarttech/storefront/database"
)

const (
	migrateUp   = migrate.Up
	migrateDown = migrate.Down

	migrationsTable = "storefront_migrations"
)

func migrationSource() migrate.MigrationSource {
	return migrate.EmbedFileSystemMigrationSource{
		FileSystem: storefront.SQLFiles,
		Root:       "sql",
	}
}

// runMigrations applies (or rolls back) the embedded migrations and returns
// how many ran.
func runMigrations(cnf *config.Configuration, direction migrate.MigrationDirection) (int, error) {
	db, err := database.ConnectDB(cnf.DataSource.Dns)
	if err != nil {
		return 0, fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	migrate.SetTable(migrationsTable)
	return migrate.Exec(db, "postgres", migrationSource(), direction)
}

func migrateCommands(app *storefrontInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "manage the storefront database schema",
	}

	cmd.AddCommand(migrateUpCommands(app))
	cmd.AddCommand(migrateDownCommands(app))

	return cmd
}

func migrateUpCommands(app *storefrontInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			n, err := runMigrations(app.cnf, migrateUp)
			if err != nil {
				log.Fatalf("Error migrating up: %v", err)
			}
			fmt.Printf("Applied %d migrations!\n", n)
		},
	}
}

func migrateDownCommands(app *storefrontInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "roll back all migrations",
		Run: func(cmd *cobra.Command, args []string) {
			n, err := runMigrations(app.cnf, migrateDown)
			if err != nil {
				log.Fatalf("Error migrating down: %v", err)
			}
			fmt.Printf("Rolled back %d migrations!\n", n)
		},
	}
}
