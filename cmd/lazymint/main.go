// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/lazymint/internal/config"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configFile   string
	network      string
	networkMagic uint32
	ledger       string
	keyFile      string
	debug        bool
}

var (
	flags globalFlags
	cfg   *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lazymint",
	Short: "Issue and inspect lazy minting vouchers",
	Long: "lazymint signs vouchers that let anyone redeem a not yet minted asset\n" +
		"from a redemption ledger, and inspects vouchers signed by others.",
	SilenceUsage:      true,
	PersistentPreRunE: initialize,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&flags.configFile,
		"config",
		"c",
		"",
		"path to YAML config file",
	)
	rootCmd.PersistentFlags().StringVar(
		&flags.network,
		"network",
		"",
		"specifies network that the ledger is deployed on",
	)
	rootCmd.PersistentFlags().Uint32Var(
		&flags.networkMagic,
		"network-magic",
		0,
		"specifies network magic value. this overrides the --network option",
	)
	rootCmd.PersistentFlags().StringVar(
		&flags.ledger,
		"ledger",
		"",
		"address of the redemption ledger (bech32 or hex)",
	)
	rootCmd.PersistentFlags().StringVar(
		&flags.keyFile,
		"key-file",
		"",
		"path to the hex encoded issuer private key",
	)
	rootCmd.PersistentFlags().BoolVar(
		&flags.debug,
		"debug",
		false,
		"enable debug logging",
	)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(inspectCmd)
}

func initialize(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flags.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(
		slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		),
	)
	var err error
	cfg, err = config.Load(flags.configFile)
	if err != nil {
		return err
	}
	// Command line flags take precedence over the config file
	pflags := cmd.Flags()
	if pflags.Changed("network") {
		cfg.Network = flags.network
		cfg.NetworkMagic = 0
	}
	if pflags.Changed("network-magic") {
		cfg.NetworkMagic = flags.networkMagic
	}
	if pflags.Changed("ledger") {
		cfg.Ledger = flags.ledger
	}
	if pflags.Changed("key-file") {
		cfg.KeyFile = flags.keyFile
	}
	slog.Debug(
		"loaded config",
		"network", cfg.Network,
		"network_magic", cfg.NetworkMagic,
		"ledger", cfg.Ledger,
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}
