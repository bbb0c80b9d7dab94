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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/blinklabs-io/lazymint/cbor"
	"github.com/blinklabs-io/lazymint/common"
)

// MaxMetadataURILength is the largest metadata URI a voucher may carry
const MaxMetadataURILength = 2048

// ErrInvalidVoucher is returned for vouchers that cannot be encoded for signing
var ErrInvalidVoucher = errors.New("invalid voucher")

// InvalidVoucherError details why a voucher was rejected
type InvalidVoucherError struct {
	Reason string
}

func (e InvalidVoucherError) Error() string {
	return "invalid voucher: " + e.Reason
}

func (InvalidVoucherError) Is(target error) bool {
	return target == ErrInvalidVoucher
}

// Voucher is an issuer's commitment to mint an asset at a minimum price.
// It is immutable once signed
type Voucher struct {
	cbor.StructAsArray
	AssetId     common.AssetId `json:"assetId"`
	MinPrice    uint64         `json:"minPrice"`
	MetadataURI string         `json:"metadataURI"`
}

// Validate checks that the voucher can be encoded for signing
func (v Voucher) Validate() error {
	if !utf8.ValidString(v.MetadataURI) {
		return InvalidVoucherError{Reason: "metadata URI is not valid UTF-8"}
	}
	if len(v.MetadataURI) > MaxMetadataURILength {
		return InvalidVoucherError{
			Reason: fmt.Sprintf(
				"metadata URI is %d bytes, maximum is %d",
				len(v.MetadataURI),
				MaxMetadataURILength,
			),
		}
	}
	return nil
}

// SignedVoucher is the wire form of a voucher and its issuer signature, as handed to a
// redeemer out-of-band and submitted verbatim for redemption
type SignedVoucher struct {
	cbor.DecodeStoreCbor
	cbor.StructAsArray
	AssetId     common.AssetId
	MinPrice    uint64
	MetadataURI string
	Signature   []byte
}

// NewSignedVoucher pairs a voucher with its signature
func NewSignedVoucher(v Voucher, sig []byte) *SignedVoucher {
	return &SignedVoucher{
		AssetId:     v.AssetId,
		MinPrice:    v.MinPrice,
		MetadataURI: v.MetadataURI,
		Signature:   append([]byte(nil), sig...),
	}
}

// NewSignedVoucherFromCbor decodes a signed voucher from its CBOR wire form
func NewSignedVoucherFromCbor(cborData []byte) (*SignedVoucher, error) {
	var ret SignedVoucher
	if err := cbor.DecodeExact(cborData, &ret); err != nil {
		return nil, fmt.Errorf("decode signed voucher: %w", err)
	}
	return &ret, nil
}

// Voucher returns the signed voucher fields
func (s *SignedVoucher) Voucher() Voucher {
	return Voucher{
		AssetId:     s.AssetId,
		MinPrice:    s.MinPrice,
		MetadataURI: s.MetadataURI,
	}
}

func (s *SignedVoucher) UnmarshalCBOR(cborData []byte) error {
	return s.UnmarshalCborGeneric(cborData, s)
}

func (s *SignedVoucher) MarshalCBOR() ([]byte, error) {
	// Return stored CBOR if we have any
	cborData := s.Cbor()
	if cborData != nil {
		return cborData, nil
	}
	return cbor.EncodeGeneric(s)
}

type signedVoucherJson struct {
	AssetId     common.AssetId `json:"assetId"`
	MinPrice    uint64         `json:"minPrice"`
	MetadataURI string         `json:"metadataURI"`
	Signature   string         `json:"signature"`
}

func (s SignedVoucher) MarshalJSON() ([]byte, error) {
	return json.Marshal(signedVoucherJson{
		AssetId:     s.AssetId,
		MinPrice:    s.MinPrice,
		MetadataURI: s.MetadataURI,
		Signature:   "0x" + hex.EncodeToString(s.Signature),
	})
}

func (s *SignedVoucher) UnmarshalJSON(data []byte) error {
	var tmp signedVoucherJson
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	sigHex := tmp.Signature
	if len(sigHex) >= 2 && sigHex[0:2] == "0x" {
		sigHex = sigHex[2:]
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	*s = SignedVoucher{
		AssetId:     tmp.AssetId,
		MinPrice:    tmp.MinPrice,
		MetadataURI: tmp.MetadataURI,
		Signature:   sig,
	}
	return nil
}
