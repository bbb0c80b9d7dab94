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

package ledger

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/voucher"
)

// Stable reason codes reported to callers for rejected calls
const (
	ReasonAlreadyRedeemed     = "AlreadyRedeemed"
	ReasonInsufficientPayment = "InsufficientPayment"
	ReasonUnauthorizedSigner  = "UnauthorizedSigner"
	ReasonInvalidSignature    = "InvalidSignature"
	ReasonNothingToWithdraw   = "NothingToWithdraw"
	ReasonInvalidVoucher      = "InvalidVoucher"
	ReasonInvalidRedeemer     = "InvalidRedeemer"
	ReasonEscrowOverflow      = "EscrowOverflow"
)

// Sentinel errors so callers can use errors.Is
var (
	ErrAlreadyRedeemed     = errors.New("voucher already redeemed")
	ErrInsufficientPayment = errors.New("insufficient funds to redeem")
	ErrUnauthorizedSigner  = errors.New("voucher signer is not an authorized minter")
	ErrInvalidSignature    = errors.New("invalid voucher signature")
	ErrNothingToWithdraw   = errors.New("nothing to withdraw")
	ErrInvalidRedeemer     = errors.New("redeemer cannot be the zero address")
	ErrEscrowOverflow      = errors.New("escrow balance overflow")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrAlreadyRedeemed, ReasonAlreadyRedeemed},
	{ErrInsufficientPayment, ReasonInsufficientPayment},
	{ErrUnauthorizedSigner, ReasonUnauthorizedSigner},
	{ErrInvalidSignature, ReasonInvalidSignature},
	{ErrNothingToWithdraw, ReasonNothingToWithdraw},
	{voucher.ErrInvalidVoucher, ReasonInvalidVoucher},
	{ErrInvalidRedeemer, ReasonInvalidRedeemer},
	{ErrEscrowOverflow, ReasonEscrowOverflow},
}

// Reason returns the stable reason code for a rejected call, or an empty string for
// errors raised by a collaborator
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ""
}

// AlreadyRedeemedError indicates the voucher's asset has already been minted
type AlreadyRedeemedError struct {
	AssetId common.AssetId
	Err     error
}

func (e AlreadyRedeemedError) Error() string {
	return fmt.Sprintf("asset %d: %s", e.AssetId, ErrAlreadyRedeemed)
}

func (e AlreadyRedeemedError) Unwrap() error { return e.Err }

func (AlreadyRedeemedError) Is(target error) bool {
	return target == ErrAlreadyRedeemed
}

// InsufficientPaymentError indicates the payment is below the voucher's minimum price
type InsufficientPaymentError struct {
	MinPrice uint64
	Payment  uint64
}

func (e InsufficientPaymentError) Error() string {
	return fmt.Sprintf(
		"%s: paid %d, minimum price %d",
		ErrInsufficientPayment,
		e.Payment,
		e.MinPrice,
	)
}

func (InsufficientPaymentError) Is(target error) bool {
	return target == ErrInsufficientPayment
}

// UnauthorizedSignerError indicates the voucher was signed by an address without minting authority
type UnauthorizedSignerError struct {
	Signer common.Address
}

func (e UnauthorizedSignerError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnauthorizedSigner, e.Signer.String())
}

func (UnauthorizedSignerError) Is(target error) bool {
	return target == ErrUnauthorizedSigner
}

// InvalidSignatureError indicates the voucher signature is malformed
type InvalidSignatureError struct {
	Err error
}

func (e InvalidSignatureError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidSignature, e.Err)
}

func (e InvalidSignatureError) Unwrap() error { return e.Err }

func (InvalidSignatureError) Is(target error) bool {
	return target == ErrInvalidSignature
}
