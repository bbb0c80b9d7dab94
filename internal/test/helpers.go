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

package test

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/signature"
	"github.com/btcsuite/btcd/btcec/v2"
)

// WeiPerEther is one whole unit of payment, in the smallest payment unit
const WeiPerEther uint64 = 1_000_000_000_000_000_000

// TestMetadataURI is the metadata pointer used by voucher fixtures
const TestMetadataURI = "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// NewPrivateKey returns a deterministic private key for the given seed byte. It doesn't
// return an error value, which makes it usable inline.
func NewPrivateKey(seed byte) *btcec.PrivateKey {
	keyBytes := make([]byte, signature.PrivateKeySize)
	for i := range keyBytes {
		keyBytes[i] = seed
	}
	privKey, err := signature.PrivateKeyFromBytes(keyBytes)
	if err != nil {
		panic(fmt.Sprintf("error creating private key: %s", err))
	}
	return privKey
}

// NewAddress returns the address of the deterministic private key for the given seed byte
func NewAddress(seed byte) common.Address {
	return signature.AddressFromPrivateKey(NewPrivateKey(seed))
}
