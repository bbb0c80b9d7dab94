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

package registry

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"

	"github.com/blinklabs-io/lazymint/common"
)

// ErrBalanceOverflow is returned when a credit would overflow a balance
var ErrBalanceOverflow = errors.New("balance overflow")

// Compile-time check that Balances implements common.Funds
var _ common.Funds = (*Balances)(nil)

// Balances is an in-memory table of external account balances. Value collected by
// the ledger is held in the custody account until disbursed
type Balances struct {
	mu       sync.Mutex
	custody  common.Address
	balances map[common.Address]uint64
}

// NewBalances returns an empty balance table using the given custody account
func NewBalances(custody common.Address) *Balances {
	return &Balances{
		custody:  custody,
		balances: make(map[common.Address]uint64),
	}
}

// Custody returns the address of the custody account
func (b *Balances) Custody() common.Address {
	return b.custody
}

// Deposit adds externally sourced value to an account
func (b *Balances) Deposit(addr common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	newBalance, carry := bits.Add64(b.balances[addr], amount, 0)
	if carry != 0 {
		return fmt.Errorf("deposit to %s: %w", addr.String(), ErrBalanceOverflow)
	}
	b.balances[addr] = newBalance
	return nil
}

// BalanceOf returns the balance of an account
func (b *Balances) BalanceOf(addr common.Address) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[addr]
}

func (b *Balances) Collect(from common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(from, b.custody, amount)
}

func (b *Balances) Disburse(to common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(b.custody, to, amount)
}

// move transfers value between two accounts. The caller must hold the lock
func (b *Balances) move(from common.Address, to common.Address, amount uint64) error {
	if from == to {
		return nil
	}
	fromBalance := b.balances[from]
	if fromBalance < amount {
		return fmt.Errorf(
			"%s has %d, needs %d: %w",
			from.String(),
			fromBalance,
			amount,
			common.ErrInsufficientBalance,
		)
	}
	toBalance, carry := bits.Add64(b.balances[to], amount, 0)
	if carry != 0 {
		return fmt.Errorf("credit to %s: %w", to.String(), ErrBalanceOverflow)
	}
	b.balances[from] = fromBalance - amount
	b.balances[to] = toBalance
	return nil
}
