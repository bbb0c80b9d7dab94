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
	"bytes"
	"log/slog"
	"slices"
	"sync"

	"github.com/blinklabs-io/lazymint/common"
)

// RoleRegistry tracks which addresses hold minting authority. Grants and revocations
// take effect for the next authorization query
type RoleRegistry struct {
	logger  *slog.Logger
	mu      sync.RWMutex
	minters map[common.Address]bool
}

// NewRoleRegistry returns a role registry granting minting authority to the given addresses
func NewRoleRegistry(
	logger *slog.Logger,
	minters ...common.Address,
) *RoleRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &RoleRegistry{
		logger:  logger,
		minters: make(map[common.Address]bool),
	}
	for _, minter := range minters {
		r.minters[minter] = true
	}
	return r
}

// GrantMinter gives the address minting authority
func (r *RoleRegistry) GrantMinter(addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minters[addr] = true
	r.logger.Info("granted minter role", "address", addr.String())
}

// RevokeMinter removes minting authority from the address
func (r *RoleRegistry) RevokeMinter(addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.minters, addr)
	r.logger.Info("revoked minter role", "address", addr.String())
}

func (r *RoleRegistry) IsAuthorizedMinter(addr common.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.minters[addr], nil
}

// Minters returns the addresses currently holding minting authority, sorted by address bytes
func (r *RoleRegistry) Minters() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]common.Address, 0, len(r.minters))
	for addr := range r.minters {
		ret = append(ret, addr)
	}
	slices.SortFunc(ret, func(a, b common.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return ret
}
