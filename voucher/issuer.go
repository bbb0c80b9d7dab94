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
	"errors"

	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/signature"
	"github.com/btcsuite/btcd/btcec/v2"
)

// Issuer creates signed vouchers off-ledger on behalf of the holder of a minting key
type Issuer struct {
	domain  Domain
	privKey *btcec.PrivateKey
	address common.Address
}

// NewIssuer returns an issuer signing vouchers for the given domain
func NewIssuer(domain Domain, privKey *btcec.PrivateKey) (*Issuer, error) {
	if privKey == nil {
		return nil, errors.New("private key is nil")
	}
	return &Issuer{
		domain:  domain,
		privKey: privKey,
		address: signature.AddressFromPrivateKey(privKey),
	}, nil
}

// Address returns the issuer's ledger address
func (i *Issuer) Address() common.Address {
	return i.address
}

// Domain returns the domain vouchers are signed for
func (i *Issuer) Domain() Domain {
	return i.domain
}

// CreateVoucher signs a voucher for the given asset
func (i *Issuer) CreateVoucher(
	assetId common.AssetId,
	metadataURI string,
	minPrice uint64,
) (*SignedVoucher, error) {
	v := Voucher{
		AssetId:     assetId,
		MinPrice:    minPrice,
		MetadataURI: metadataURI,
	}
	digest, err := i.domain.Digest(v)
	if err != nil {
		return nil, err
	}
	sig, err := signature.Sign(digest, i.privKey)
	if err != nil {
		return nil, err
	}
	return NewSignedVoucher(v, sig), nil
}
