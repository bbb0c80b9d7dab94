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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/voucher"
	"github.com/spf13/cobra"
)

const (
	formatJson = "json"
	formatCbor = "cbor"
)

var signFlags struct {
	assetId     uint64
	metadataURI string
	minPrice    uint64
	format      string
	out         string
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a voucher for the configured ledger",
	Args:  cobra.NoArgs,
	RunE:  runSign,
}

func init() {
	signCmd.Flags().Uint64Var(&signFlags.assetId, "asset-id", 0, "asset ID")
	signCmd.Flags().StringVar(&signFlags.metadataURI, "uri", "", "metadata URI")
	signCmd.Flags().Uint64Var(
		&signFlags.minPrice,
		"min-price",
		0,
		"minimum price, in the smallest payment unit",
	)
	signCmd.Flags().StringVar(
		&signFlags.format,
		"format",
		formatJson,
		"output format (json or cbor)",
	)
	signCmd.Flags().StringVarP(
		&signFlags.out,
		"out",
		"o",
		"",
		"file to write the voucher to (defaults to stdout)",
	)
	_ = signCmd.MarkFlagRequired("asset-id")
	_ = signCmd.MarkFlagRequired("uri")
}

func runSign(cmd *cobra.Command, args []string) error {
	issuer, err := loadIssuer()
	if err != nil {
		return err
	}
	sv, err := issuer.CreateVoucher(
		common.AssetId(signFlags.assetId),
		signFlags.metadataURI,
		signFlags.minPrice,
	)
	if err != nil {
		return err
	}
	var output string
	switch signFlags.format {
	case formatJson:
		data, err := json.MarshalIndent(sv, "", "  ")
		if err != nil {
			return err
		}
		output = string(data)
	case formatCbor:
		data, err := sv.MarshalCBOR()
		if err != nil {
			return err
		}
		output = hex.EncodeToString(data)
	default:
		return fmt.Errorf("unknown output format: %s", signFlags.format)
	}
	slog.Debug(
		"signed voucher",
		"asset_id", sv.AssetId,
		"issuer", issuer.Address().String(),
	)
	if signFlags.out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	}
	return os.WriteFile(signFlags.out, []byte(output+"\n"), 0o644)
}

// readVoucherFile reads a signed voucher in either JSON or hex encoded CBOR form
func readVoucherFile(path string) (*voucher.SignedVoucher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read voucher file: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var sv voucher.SignedVoucher
		if err := json.Unmarshal([]byte(trimmed), &sv); err != nil {
			return nil, fmt.Errorf("failed to parse voucher JSON: %w", err)
		}
		return &sv, nil
	}
	cborData, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode voucher hex: %w", err)
	}
	return voucher.NewSignedVoucherFromCbor(cborData)
}
