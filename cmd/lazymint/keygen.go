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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blinklabs-io/lazymint/signature"
	"github.com/blinklabs-io/lazymint/voucher"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/spf13/cobra"
)

var keygenOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an issuer private key",
	Args:  cobra.NoArgs,
	RunE:  runKeygen,
}

func init() {
	keygenCmd.Flags().StringVarP(
		&keygenOut,
		"out",
		"o",
		"",
		"file to write the key to (defaults to the configured key file)",
	)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	path := keygenOut
	if path == "" {
		path = cfg.KeyFile
	}
	if path == "" {
		return errors.New("no output file specified")
	}
	privKey, err := signature.GenerateKey()
	if err != nil {
		return err
	}
	// Refuse to clobber an existing key
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.WriteString(signature.PrivateKeyToHex(privKey) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	addr := signature.AddressFromPrivateKey(privKey)
	fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", addr.String())
	fmt.Fprintf(cmd.OutOrStdout(), "address (hex): %s\n", addr.Hex())
	return nil
}

func loadPrivateKey(path string) (*btcec.PrivateKey, error) {
	if path == "" {
		return nil, errors.New("no key file specified")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return signature.PrivateKeyFromHex(strings.TrimSpace(string(data)))
}

func loadIssuer() (*voucher.Issuer, error) {
	domain, err := cfg.Domain()
	if err != nil {
		return nil, err
	}
	privKey, err := loadPrivateKey(cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	return voucher.NewIssuer(domain, privKey)
}
