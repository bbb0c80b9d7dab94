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

package voucher

import (
	"fmt"

	"github.com/blinklabs-io/lazymint/cbor"
	"github.com/blinklabs-io/lazymint/common"
)

const (
	DefaultDomainName    = "LazyMint-Voucher"
	DefaultDomainVersion = "1"

	// TypeTag names the voucher schema. It is part of every voucher digest, so
	// changing the voucher fields requires a new tag
	TypeTag = "LazyVoucher(uint64 assetId,uint64 minPrice,string metadataURI)"
)

// digestPrefix marks the final digest input as a domain-bound structured message
var digestPrefix = []byte{0x19, 0x01}

// Domain binds voucher digests to one ledger instance and schema version, so a
// signature made for one deployment is never valid on another
type Domain struct {
	cbor.StructAsArray
	Name         string
	Version      string
	NetworkMagic uint32
	Ledger       common.Address
}

// NewDomain returns a domain with the default name and version for the given ledger instance
func NewDomain(networkMagic uint32, ledger common.Address) Domain {
	return Domain{
		Name:         DefaultDomainName,
		Version:      DefaultDomainVersion,
		NetworkMagic: networkMagic,
		Ledger:       ledger,
	}
}

// Separator returns the hash identifying the domain
func (d Domain) Separator() (common.Blake2b256, error) {
	cborData, err := cbor.Encode(d)
	if err != nil {
		return common.Blake2b256{}, fmt.Errorf("encode domain: %w", err)
	}
	return common.Blake2b256Hash(cborData), nil
}

type voucherStruct struct {
	cbor.StructAsArray
	TypeTag     string
	AssetId     common.AssetId
	MinPrice    uint64
	MetadataURI string
}

// StructHash returns the domain independent hash of the voucher fields
func StructHash(v Voucher) (common.Blake2b256, error) {
	if err := v.Validate(); err != nil {
		return common.Blake2b256{}, err
	}
	cborData, err := cbor.Encode(voucherStruct{
		TypeTag:     TypeTag,
		AssetId:     v.AssetId,
		MinPrice:    v.MinPrice,
		MetadataURI: v.MetadataURI,
	})
	if err != nil {
		return common.Blake2b256{}, fmt.Errorf("encode voucher: %w", err)
	}
	return common.Blake2b256Hash(cborData), nil
}

type digestInput struct {
	cbor.StructAsArray
	Prefix     []byte
	Separator  common.Blake2b256
	StructHash common.Blake2b256
}

// Digest returns the value an issuer signs for the voucher within this domain
func (d Domain) Digest(v Voucher) (common.Blake2b256, error) {
	separator, err := d.Separator()
	if err != nil {
		return common.Blake2b256{}, err
	}
	structHash, err := StructHash(v)
	if err != nil {
		return common.Blake2b256{}, err
	}
	cborData, err := cbor.Encode(digestInput{
		Prefix:     digestPrefix,
		Separator:  separator,
		StructHash: structHash,
	})
	if err != nil {
		return common.Blake2b256{}, fmt.Errorf("encode digest input: %w", err)
	}
	return common.Blake2b256Hash(cborData), nil
}
