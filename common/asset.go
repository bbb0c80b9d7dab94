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

package common

import (
	"errors"
	"fmt"
	"strconv"
)

// AssetId uniquely identifies an asset in the asset registry
type AssetId uint64

func (a AssetId) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// TransferEvent is an ownership change notification. A creation is reported as a
// transfer from the zero address
type TransferEvent struct {
	// Sequence is the position of the event in the registry's event log, starting at 1
	Sequence uint64  `json:"sequence"`
	From     Address `json:"from"`
	To       Address `json:"to"`
	AssetId  AssetId `json:"assetId"`
}

// IsCreation returns whether the event reports the creation of the asset
func (e TransferEvent) IsCreation() bool {
	return e.From.IsZero()
}

func (e TransferEvent) String() string {
	return fmt.Sprintf(
		"transfer(asset=%d, from=%s, to=%s)",
		e.AssetId,
		e.From.String(),
		e.To.String(),
	)
}

var (
	// ErrAssetExists is returned by an asset registry when creating an asset that already has an owner
	ErrAssetExists = errors.New("asset already exists")
	// ErrAssetNotFound is returned by an asset registry for an asset that has not been created
	ErrAssetNotFound = errors.New("asset not found")
	// ErrNotOwner is returned by an asset registry when a transfer names the wrong current owner
	ErrNotOwner = errors.New("transfer from address that does not own the asset")
	// ErrInsufficientBalance is returned when an external balance cannot cover a debit
	ErrInsufficientBalance = errors.New("insufficient balance")
)
