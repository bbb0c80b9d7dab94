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

	"github.com/blinklabs-io/lazymint/signature"
	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:   "recover <voucher file>",
	Short: "Print the address that signed a voucher",
	Long: "Recover the signer of a voucher for the configured ledger. A voucher signed\n" +
		"for another ledger or network recovers to an unrelated address.",
	Args: cobra.ExactArgs(1),
	RunE: runRecover,
}

func runRecover(cmd *cobra.Command, args []string) error {
	sv, err := readVoucherFile(args[0])
	if err != nil {
		return err
	}
	domain, err := cfg.Domain()
	if err != nil {
		return err
	}
	digest, err := domain.Digest(sv.Voucher())
	if err != nil {
		return err
	}
	signer, err := signature.RecoverSigner(digest, sv.Signature)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "signer: %s\n", signer.String())
	fmt.Fprintf(cmd.OutOrStdout(), "signer (hex): %s\n", signer.Hex())
	return nil
}
