/*
 * Copyright (c) 2024, Gideon Williams <gideon@gideonw.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package quarry

import (
	"fmt"
	"os"

	"github.com/dburkart/quarry/cmd/quarry/seed"
	"github.com/dburkart/quarry/cmd/quarry/serve"
	"github.com/dburkart/quarry/cmd/quarry/shell"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version        = "develop"
	CommitHash     = "n/a"
	BuildTimestamp = "n/a"

	rootCmd = &cobra.Command{
		Use:   "quarry",
		Short: "Quarry is a small content query engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging()
			initLogLevel()
			initConfig(cmd.Root().PersistentFlags().Lookup("config").Value.String())
			initLogLevel()
			traceConfig()
		},
		Version: Version,
	}
)

func init() {
	// Configure the root binary options
	rootCmd.PersistentFlags().CountP("verbose", "v", "-v for debug logs (-vv for trace)")
	rootCmd.PersistentFlags().Bool("local", true, "Configures the logger to print readable logs")
	rootCmd.PersistentFlags().StringP("database", "d", "./content.db", "Path to the content database")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the quarry config file (default ./config.toml)")
	rootCmd.PersistentFlags().String("edition", "pro", "Licensed edition [solo, pro]")

	// Bind viper config to the root flags
	viper.BindPFlag("quarry.local", rootCmd.PersistentFlags().Lookup("local"))
	viper.BindPFlag("quarry.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quarry.database", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("quarry.edition", rootCmd.PersistentFlags().Lookup("edition"))
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.SetVersionTemplate(fmt.Sprintf("quarry version: %s git_commit: %s build_time: %s\n", Version, CommitHash, BuildTimestamp))

	viper.AutomaticEnv()

	// Register commands on the root binary command
	shell.Command.Version = rootCmd.Version
	serve.Command.Version = rootCmd.Version
	seed.Command.Version = rootCmd.Version
	rootCmd.AddCommand(shell.Command)
	rootCmd.AddCommand(serve.Command)
	rootCmd.AddCommand(seed.Command)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("root command failed")
		os.Exit(1)
	}
}
