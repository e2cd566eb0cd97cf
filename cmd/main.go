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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/smarttech/storefront"
	"github.com/smarttech/storefront/config"
	"github.com/smarttech/storefront/database"
	"github.com/smarttech/storefront/internal/notification"
)

// CLI wraps the root cobra command.
type CLI struct {
	cmd *cobra.Command
}

// storefrontInstance holds what the subcommands share once preRun has loaded
// the configuration.
type storefrontInstance struct {
	storefront *storefront.Storefront
	cnf        *config.Configuration
	configFile string
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and builds the service before any command
// runs. The config command only needs the configuration.
func preRun(app *storefrontInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(app.configFile); err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		app.cnf = cnf

		if !needsService(cmd) {
			return nil
		}

		sf, err := setupStorefront(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}
		app.storefront = sf
		return nil
	}
}

// needsService reports whether cmd talks to the service rather than only to
// the configuration or the schema.
func needsService(cmd *cobra.Command) bool {
	if cmd.Name() == "config" {
		return false
	}
	if parent := cmd.Parent(); parent != nil && parent.Name() == "migrate" {
		return false
	}
	return true
}

func setupStorefront(cfg *config.Configuration) (*storefront.Storefront, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	sf, err := storefront.NewStorefront(db)
	if err != nil {
		return nil, fmt.Errorf("error creating storefront: %v", err)
	}
	return sf, nil
}

// NewCLI builds the root command and its subcommands.
func NewCLI() *CLI {
	app := &storefrontInstance{}

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "SmartTech storefront backend",
		Run:   func(cmd *cobra.Command, args []string) { _ = cmd.Help() },
	}

	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "./storefront.json", "Configuration file for the storefront")
	rootCmd.PersistentPreRunE = preRun(app)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(workerCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(configCommands(app))
	rootCmd.AddCommand(seedCommands(app))

	return &CLI{cmd: rootCmd}
}

func (c CLI) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
