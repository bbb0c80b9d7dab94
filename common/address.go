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

package common

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/lazymint/cbor"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	AddressSize = Blake2b224Size

	// AddressPrefix is the human readable part used for bech32 addresses
	AddressPrefix = "lzm"
)

// Address identifies an account on the ledger. It is the Blake2b-224 hash of the
// account's compressed secp256k1 public key. The zero Address is the null party
// and never belongs to a key
type Address [AddressSize]byte

// ZeroAddress is the null party, used as the sender of creation events
var ZeroAddress = Address{}

// NewAddressFromPublicKey derives an Address from a serialized public key
func NewAddressFromPublicKey(pubKey []byte) Address {
	return Address(Blake2b224Hash(pubKey))
}

// NewAddress parses an address from either its bech32 or hex form
func NewAddress(addr string) (Address, error) {
	if strings.HasPrefix(addr, AddressPrefix+"1") {
		return NewAddressFromBech32(addr)
	}
	return NewAddressFromHex(addr)
}

// NewAddressFromHex parses a hex encoded address
func NewAddressFromHex(addr string) (Address, error) {
	var ret Address
	data, err := hex.DecodeString(strings.TrimPrefix(addr, "0x"))
	if err != nil {
		return ret, fmt.Errorf("invalid address hex: %w", err)
	}
	if len(data) != AddressSize {
		return ret, fmt.Errorf(
			"invalid address length: expected %d bytes, got %d",
			AddressSize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// NewAddressFromBech32 parses a bech32 encoded address
func NewAddressFromBech32(addr string) (Address, error) {
	var ret Address
	hrp, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return ret, fmt.Errorf("invalid bech32 address: %w", err)
	}
	if hrp != AddressPrefix {
		return ret, fmt.Errorf("unexpected address prefix: %s", hrp)
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return ret, fmt.Errorf("invalid bech32 address: %w", err)
	}
	if len(decoded) != AddressSize {
		return ret, fmt.Errorf(
			"invalid address length: expected %d bytes, got %d",
			AddressSize,
			len(decoded),
		)
	}
	copy(ret[:], decoded)
	return ret, nil
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Hex returns the hex form of the address
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// String returns the bech32 form of the address
func (a Address) String() string {
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error converting data to base32: %s", err),
		)
	}
	encoded, err := bech32.Encode(AddressPrefix, convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var tmp string
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	addr, err := NewAddress(tmp)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func (a Address) MarshalCBOR() ([]byte, error) {
	// Always encode the full-sized bytestring, even for the zero address
	addrBytes := make([]byte, AddressSize)
	copy(addrBytes, a[:])
	return cbor.Encode(addrBytes)
}

func (a *Address) UnmarshalCBOR(data []byte) error {
	var tmp []byte
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	if len(tmp) != AddressSize {
		return errors.New("invalid address length")
	}
	copy(a[:], tmp)
	return nil
}
