/*
 * Copyright (c) 2024, Gideon Williams <gideon@gideonw.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package serve

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dburkart/quarry/pkg/model"
	"github.com/dburkart/quarry/pkg/server"
	"github.com/dburkart/quarry/pkg/store"
)

var (
	Command = &cobra.Command{
		Use:   "serve",
		Short: "Serve the content database over a read-only JSON API",

		Run: func(cmd *cobra.Command, args []string) {
			log := viper.Get("logger").(zerolog.Logger)

			st, err := store.Open(viper.GetString("quarry.database"), log)
			if err != nil {
				log.Fatal().Err(err).Msg("unable to open content database")
			}
			defer st.Close()

			edition := model.EditionSolo
			if viper.GetString("quarry.edition") == "pro" {
				edition = model.EditionPro
			}

			srv := server.New(
				log,
				st,
				edition,
				viper.GetInt("quarry.api-port"),
				viper.GetInt("quarry.metrics-port"),
			)

			go func() {
				if err := srv.ServeMetrics(); err != nil {
					log.Error().Err(err).Msg("metrics server stopped")
				}
			}()
			if err := srv.ServeAPI(); err != nil {
				log.Fatal().Err(err).Msg("API server stopped")
			}
		},
	}
)

func init() {
	// Flags for this command
	Command.Flags().Int("port", 8450, "Port to serve the JSON API on")
	Command.Flags().Int("metrics-port", 2112, "Port to serve Prometheus metrics on")

	// Bind flags to viper
	viper.BindPFlag("quarry.api-port", Command.Flags().Lookup("port"))
	viper.BindPFlag("quarry.metrics-port", Command.Flags().Lookup("metrics-port"))
}
