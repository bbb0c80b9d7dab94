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
	"fmt"
	"math/bits"
	"sync"

	"github.com/blinklabs-io/lazymint/common"
)

// Escrow holds the proceeds of redemptions for each issuer until withdrawn. Balances
// start at zero, grow only through redemption and drop to zero only on withdrawal
type Escrow struct {
	mu       sync.RWMutex
	balances map[common.Address]uint64
	// sum of all balances
	total uint64
}

func NewEscrow() *Escrow {
	return &Escrow{
		balances: make(map[common.Address]uint64),
	}
}

// Balance returns the amount the address can withdraw
func (e *Escrow) Balance(addr common.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.balances[addr]
}

// Total returns the sum of all balances
func (e *Escrow) Total() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.total
}

// checkCredit returns an error if crediting amount would overflow. The total bounds every
// balance, so checking it is sufficient
func (e *Escrow) checkCredit(amount uint64) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, carry := bits.Add64(e.total, amount, 0); carry != 0 {
		return fmt.Errorf("%w: total %d, credit %d", ErrEscrowOverflow, e.total, amount)
	}
	return nil
}

func (e *Escrow) credit(addr common.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	newTotal, carry := bits.Add64(e.total, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: total %d, credit %d", ErrEscrowOverflow, e.total, amount)
	}
	e.total = newTotal
	e.balances[addr] += amount
	return nil
}

// take zeroes the balance of the address and returns what it held
func (e *Escrow) take(addr common.Address) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	amount := e.balances[addr]
	if amount == 0 {
		return 0, ErrNothingToWithdraw
	}
	delete(e.balances, addr)
	e.total -= amount
	return amount, nil
}
