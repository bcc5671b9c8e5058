/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cmd implements warcgo's cobra command tree. Grounded on the
// teacher's cmd/warccmd/cmd/root.go: a persistent --config flag resolved via
// go-homedir and read with viper, a --log-level flag wired to logrus, and
// one subcommand package per verb.
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nlevold/warcio/cmd/warcgo/cmd/cat"
	"github.com/nlevold/warcio/cmd/warcgo/cmd/ls"
	"github.com/nlevold/warcio/cmd/warcgo/cmd/verify"
)

type conf struct {
	cfgFile  string
	logLevel string
}

// NewCommand returns the root cobra.Command for warcgo.
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "warcgo",
		Short: "A tool for inspecting and verifying WARC files",
		Long:  `warcgo reads WARC/1.0 and WARC/1.1 files, listing, dumping, and verifying their records.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(c.logLevel)
			if err != nil {
				return fmt.Errorf("'%s' is not part of the valid levels: 'panic', 'fatal', 'error', 'warn', 'warning', 'info', 'debug', 'trace'", c.logLevel)
			}
			log.SetLevel(level)
			return nil
		},
	}

	cobra.OnInitialize(func() { initConfig(c) })

	cmd.PersistentFlags().StringVarP(&c.logLevel, "log-level", "l", "info", "fatal, error, warn, info, debug or trace")
	cmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.warcgo.yaml)")
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		log.Fatalf("failed to bind persistent flags: %v", err)
	}

	cmd.AddCommand(cat.NewCommand())
	cmd.AddCommand(ls.NewCommand())
	cmd.AddCommand(verify.NewCommand())

	return cmd
}

func initConfig(c *conf) {
	if c.cfgFile != "" {
		viper.SetConfigFile(c.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".warcgo")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
