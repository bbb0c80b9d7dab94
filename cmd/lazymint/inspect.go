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

	"github.com/blinklabs-io/lazymint/cbor"
	"github.com/blinklabs-io/lazymint/utils"
	"github.com/blinklabs-io/lazymint/voucher"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <voucher file>",
	Short: "Print the hashes and CBOR structure of a voucher",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	sv, err := readVoucherFile(args[0])
	if err != nil {
		return err
	}
	network, err := cfg.ResolveNetwork()
	if err != nil {
		return err
	}
	domain, err := cfg.Domain()
	if err != nil {
		return err
	}
	separator, err := domain.Separator()
	if err != nil {
		return err
	}
	structHash, err := voucher.StructHash(sv.Voucher())
	if err != nil {
		return err
	}
	digest, err := domain.Digest(sv.Voucher())
	if err != nil {
		return err
	}
	cborData, err := sv.MarshalCBOR()
	if err != nil {
		return err
	}
	var generic any
	if _, err := cbor.Decode(cborData, &generic); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "domain: %s v%s, network %s (magic %d), ledger %s\n",
		domain.Name,
		domain.Version,
		network.String(),
		domain.NetworkMagic,
		domain.Ledger.String(),
	)
	fmt.Fprintf(out, "domain separator: %s\n", separator.String())
	fmt.Fprintf(out, "struct hash: %s\n", structHash.String())
	fmt.Fprintf(out, "digest: %s\n", digest.String())
	fmt.Fprintf(out, "cbor (%d bytes):\n", len(cborData))
	fmt.Fprint(out, utils.DumpCborStructure(generic, "  "))
	return nil
}
