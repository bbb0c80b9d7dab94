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

// Package signature implements the voucher signing scheme: compact recoverable
// ECDSA signatures over secp256k1.
//
// Signing happens off-ledger with the issuer's private key. On the ledger, the
// signer's address is recovered from the digest and signature alone, without any
// public key being supplied. Recovery answers "who signed this", never "may they
// mint": authorization is a separate check.
package signature

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/lazymint/common"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const (
	// SignatureSize is the size of a compact recoverable signature: header byte, R and S
	SignatureSize = 65

	// PrivateKeySize is the size of a serialized private key
	PrivateKeySize = 32

	// Header byte range for compact signatures. The header is 27 plus the recovery ID,
	// plus 4 if the signing key is compressed
	compactHeaderMin = 27
	compactHeaderMax = 34
)

// ErrMalformedSignature is returned when a signature is not structurally valid
var ErrMalformedSignature = errors.New("malformed signature")

// MalformedSignatureError details why a signature could not be used for recovery
type MalformedSignatureError struct {
	Reason string
	Err    error
}

func (e MalformedSignatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed signature: %s: %v", e.Reason, e.Err)
	}
	return "malformed signature: " + e.Reason
}

func (e MalformedSignatureError) Unwrap() error { return e.Err }

func (MalformedSignatureError) Is(target error) bool {
	return target == ErrMalformedSignature
}

// GenerateKey creates a new random private key
func GenerateKey() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey()
}

// PrivateKeyFromBytes loads a private key from its 32-byte serialized form
func PrivateKeyFromBytes(data []byte) (*btcec.PrivateKey, error) {
	if len(data) != PrivateKeySize {
		return nil, fmt.Errorf(
			"invalid private key size: expected %d bytes, got %d",
			PrivateKeySize,
			len(data),
		)
	}
	privKey, _ := btcec.PrivKeyFromBytes(data)
	if privKey.Key.IsZero() {
		return nil, errors.New("invalid private key: zero scalar")
	}
	return privKey, nil
}

// PrivateKeyFromHex loads a private key from its hex form. Surrounding whitespace is ignored
func PrivateKeyFromHex(keyHex string) (*btcec.PrivateKey, error) {
	data, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	return PrivateKeyFromBytes(data)
}

// PrivateKeyToHex returns the hex form of a private key
func PrivateKeyToHex(privKey *btcec.PrivateKey) string {
	return hex.EncodeToString(privKey.Serialize())
}

// AddressFromPublicKey derives the ledger address of a public key
func AddressFromPublicKey(pubKey *btcec.PublicKey) common.Address {
	return common.NewAddressFromPublicKey(pubKey.SerializeCompressed())
}

// AddressFromPrivateKey derives the ledger address of the public key matching a private key
func AddressFromPrivateKey(privKey *btcec.PrivateKey) common.Address {
	return AddressFromPublicKey(privKey.PubKey())
}

// Sign produces a compact recoverable signature over the digest
func Sign(
	digest common.Blake2b256,
	privKey *btcec.PrivateKey,
) ([]byte, error) {
	if privKey == nil {
		return nil, errors.New("private key is nil")
	}
	return ecdsa.SignCompact(privKey, digest.Bytes(), true), nil
}

// RecoverSigner returns the address of the key that produced the signature over the digest.
// It fails with ErrMalformedSignature only when the signature is structurally invalid.
// A well-formed signature always recovers to some address, which is not necessarily the
// address of anyone authorized to sign
func RecoverSigner(
	digest common.Blake2b256,
	sig []byte,
) (common.Address, error) {
	if len(sig) != SignatureSize {
		return common.Address{}, MalformedSignatureError{
			Reason: fmt.Sprintf(
				"expected %d bytes, got %d",
				SignatureSize,
				len(sig),
			),
		}
	}
	if sig[0] < compactHeaderMin || sig[0] > compactHeaderMax {
		return common.Address{}, MalformedSignatureError{
			Reason: fmt.Sprintf("invalid header byte %d", sig[0]),
		}
	}
	pubKey, _, err := ecdsa.RecoverCompact(sig, digest.Bytes())
	if err != nil {
		return common.Address{}, MalformedSignatureError{
			Reason: "public key recovery failed",
			Err:    err,
		}
	}
	return AddressFromPublicKey(pubKey), nil
}
