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

// Package ledger implements the voucher redemption ledger.
//
// A redemption is one atomic unit of work: the voucher digest is recomputed for
// the ledger's domain, the signer is recovered from the signature, the signer's
// minting authority and the payment are checked, and then the asset is created
// for the signer, transferred to the redeemer and the payment escrowed for the
// signer. Either every effect happens or none does.
//
// All calls into a Ledger are serialized, so no two redemptions ever observe each
// other half way through.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/signature"
	"github.com/blinklabs-io/lazymint/voucher"
)

// AuthorizationOracle answers whether an address currently holds minting authority
type AuthorizationOracle interface {
	IsAuthorizedMinter(common.Address) (bool, error)
}

// AuthorizationFunc adapts an ordinary function to an AuthorizationOracle
type AuthorizationFunc func(common.Address) (bool, error)

func (f AuthorizationFunc) IsAuthorizedMinter(addr common.Address) (bool, error) {
	return f(addr)
}

// Ledger redeems signed vouchers and escrows the proceeds for their issuers
type Ledger struct {
	mu       sync.Mutex
	logger   *slog.Logger
	domain   voucher.Domain
	registry common.AssetRegistry
	oracle   AuthorizationOracle
	funds    common.Funds
	escrow   *Escrow
}

// NewLedger returns a new Ledger. An asset registry, authorization oracle and funds
// collaborator must be provided
func NewLedger(options ...LedgerOptionFunc) (*Ledger, error) {
	l := &Ledger{
		escrow: NewEscrow(),
	}
	for _, option := range options {
		option(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.registry == nil {
		return nil, errors.New("no asset registry provided")
	}
	if l.oracle == nil {
		return nil, errors.New("no authorization oracle provided")
	}
	if l.funds == nil {
		return nil, errors.New("no funds collaborator provided")
	}
	if l.domain.Name == "" || l.domain.Version == "" {
		return nil, errors.New("domain name and version must be set")
	}
	if l.domain.Ledger.IsZero() {
		return nil, errors.New("domain ledger address must be set")
	}
	return l, nil
}

// Domain returns the domain vouchers must be signed for
func (l *Ledger) Domain() voucher.Domain {
	return l.domain
}

// Escrow returns the escrow holding issuer proceeds
func (l *Ledger) Escrow() *Escrow {
	return l.escrow
}

// Redeem redeems a signed voucher on behalf of redeemer, who pays payment. It returns the
// ID of the minted asset, now owned by redeemer. Ownership change events are published
// after the redemption completes, so subscribers may call back into the ledger
func (l *Ledger) Redeem(
	redeemer common.Address,
	signedVoucher *voucher.SignedVoucher,
	payment uint64,
) (common.AssetId, error) {
	txn, err := l.redeemSigned(redeemer, signedVoucher, payment)
	if err != nil {
		return 0, err
	}
	txn.Publish()
	return signedVoucher.AssetId, nil
}

// RedeemVoucher is like Redeem, with the voucher and its signature passed separately
func (l *Ledger) RedeemVoucher(
	redeemer common.Address,
	v voucher.Voucher,
	sig []byte,
	payment uint64,
) (common.AssetId, error) {
	txn, err := l.redeemVoucher(redeemer, v, sig, payment)
	if err != nil {
		return 0, err
	}
	txn.Publish()
	return v.AssetId, nil
}

func (l *Ledger) redeemSigned(
	redeemer common.Address,
	signedVoucher *voucher.SignedVoucher,
	payment uint64,
) (common.AssetTxn, error) {
	if signedVoucher == nil {
		return nil, voucher.InvalidVoucherError{Reason: "voucher is nil"}
	}
	return l.redeemVoucher(
		redeemer,
		signedVoucher.Voucher(),
		signedVoucher.Signature,
		payment,
	)
}

// redeemVoucher performs a redemption inside the critical section and returns the
// committed registry transaction, whose events the caller publishes after
func (l *Ledger) redeemVoucher(
	redeemer common.Address,
	v voucher.Voucher,
	sig []byte,
	payment uint64,
) (common.AssetTxn, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	signer, txn, err := l.redeem(redeemer, v, sig, payment)
	if err != nil {
		l.logger.Warn(
			"voucher redemption rejected",
			"asset_id", v.AssetId,
			"redeemer", redeemer.String(),
			"payment", payment,
			"reason", Reason(err),
			"error", err,
		)
		return nil, err
	}
	l.logger.Info(
		"voucher redeemed",
		"asset_id", v.AssetId,
		"issuer", signer.String(),
		"redeemer", redeemer.String(),
		"payment", payment,
	)
	return txn, nil
}

// redeem performs a redemption and returns the voucher signer. The caller must hold the lock
func (l *Ledger) redeem(
	redeemer common.Address,
	v voucher.Voucher,
	sig []byte,
	payment uint64,
) (common.Address, common.AssetTxn, error) {
	if redeemer.IsZero() {
		return common.Address{}, nil, ErrInvalidRedeemer
	}
	digest, err := l.domain.Digest(v)
	if err != nil {
		return common.Address{}, nil, err
	}
	signer, err := signature.RecoverSigner(digest, sig)
	if err != nil {
		return common.Address{}, nil, InvalidSignatureError{Err: err}
	}
	l.logger.Debug(
		"recovered voucher signer",
		"asset_id", v.AssetId,
		"digest", digest.String(),
		"signer", signer.String(),
	)
	authorized, err := l.oracle.IsAuthorizedMinter(signer)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf(
			"query minting authority of %s: %w",
			signer.String(),
			err,
		)
	}
	if !authorized {
		return common.Address{}, nil, UnauthorizedSignerError{Signer: signer}
	}
	if payment < v.MinPrice {
		return common.Address{}, nil, InsufficientPaymentError{
			MinPrice: v.MinPrice,
			Payment:  payment,
		}
	}
	if err := l.escrow.checkCredit(payment); err != nil {
		return common.Address{}, nil, err
	}
	txn, err := l.mint(signer, redeemer, v, payment)
	if err != nil {
		return common.Address{}, nil, err
	}
	// Cannot fail: checked above, and only calls holding the lock change the escrow
	if err := l.escrow.credit(signer, payment); err != nil {
		return common.Address{}, nil, err
	}
	return signer, txn, nil
}

// mint creates the asset for the signer, hands it to the redeemer and collects the payment,
// as one registry transaction. On failure the transaction is rolled back and any collected
// payment refunded
func (l *Ledger) mint(
	signer common.Address,
	redeemer common.Address,
	v voucher.Voucher,
	payment uint64,
) (_ common.AssetTxn, err error) {
	txn, err := l.registry.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin asset registry transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rollbackErr := txn.Rollback(); rollbackErr != nil {
			l.logger.Error(
				"failed to roll back asset registry transaction",
				"asset_id", v.AssetId,
				"error", rollbackErr,
			)
			err = errors.Join(
				err,
				fmt.Errorf("roll back asset registry transaction: %w", rollbackErr),
			)
		}
	}()
	// The registry's uniqueness check is the replay guard
	if err := txn.Create(v.AssetId, signer, v.MetadataURI); err != nil {
		if errors.Is(err, common.ErrAssetExists) {
			return nil, AlreadyRedeemedError{AssetId: v.AssetId, Err: err}
		}
		return nil, fmt.Errorf("create asset %d: %w", v.AssetId, err)
	}
	if err := txn.Transfer(v.AssetId, signer, redeemer); err != nil {
		return nil, fmt.Errorf("transfer asset %d: %w", v.AssetId, err)
	}
	if payment > 0 {
		if err := l.funds.Collect(redeemer, payment); err != nil {
			return nil, fmt.Errorf("collect payment: %w", err)
		}
	}
	if err := txn.Commit(); err != nil {
		if errors.Is(err, common.ErrAssetExists) {
			err = AlreadyRedeemedError{AssetId: v.AssetId, Err: err}
		} else {
			err = fmt.Errorf("commit asset registry transaction: %w", err)
		}
		if payment > 0 {
			if refundErr := l.funds.Disburse(redeemer, payment); refundErr != nil {
				l.logger.Error(
					"failed to refund payment",
					"asset_id", v.AssetId,
					"redeemer", redeemer.String(),
					"payment", payment,
					"error", refundErr,
				)
				err = errors.Join(err, fmt.Errorf("refund payment: %w", refundErr))
			}
		}
		return nil, err
	}
	committed = true
	return txn, nil
}

// AvailableToWithdraw returns the escrowed amount the address can withdraw
func (l *Ledger) AvailableToWithdraw(addr common.Address) uint64 {
	return l.escrow.Balance(addr)
}

// Withdraw pays the caller their entire escrow balance and returns the amount paid
func (l *Ledger) Withdraw(caller common.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	amount, err := l.escrow.take(caller)
	if err != nil {
		l.logger.Warn(
			"withdrawal rejected",
			"address", caller.String(),
			"reason", Reason(err),
		)
		return 0, err
	}
	if err := l.funds.Disburse(caller, amount); err != nil {
		// Cannot overflow, the amount was part of the total a moment ago
		if restoreErr := l.escrow.credit(caller, amount); restoreErr != nil {
			return 0, errors.Join(err, restoreErr)
		}
		return 0, fmt.Errorf("pay out escrow balance: %w", err)
	}
	l.logger.Info(
		"escrow withdrawn",
		"address", caller.String(),
		"amount", amount,
	)
	return amount, nil
}
