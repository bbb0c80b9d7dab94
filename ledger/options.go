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
	"log/slog"

	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/voucher"
)

// LedgerOptionFunc is a type that represents functions that modify the Ledger config
type LedgerOptionFunc func(*Ledger)

// WithDomain specifies the domain vouchers must be signed for
func WithDomain(domain voucher.Domain) LedgerOptionFunc {
	return func(l *Ledger) {
		l.domain = domain
	}
}

// WithAssetRegistry specifies the asset registry used to mint and transfer assets
func WithAssetRegistry(registry common.AssetRegistry) LedgerOptionFunc {
	return func(l *Ledger) {
		l.registry = registry
	}
}

// WithAuthorizationOracle specifies the oracle consulted for minting authority
func WithAuthorizationOracle(oracle AuthorizationOracle) LedgerOptionFunc {
	return func(l *Ledger) {
		l.oracle = oracle
	}
}

// WithFunds specifies how payments are collected and withdrawals paid out
func WithFunds(funds common.Funds) LedgerOptionFunc {
	return func(l *Ledger) {
		l.funds = funds
	}
}

// WithLogger specifies the logger to use. If none is provided, slog.Default() is used
func WithLogger(logger *slog.Logger) LedgerOptionFunc {
	return func(l *Ledger) {
		l.logger = logger
	}
}
