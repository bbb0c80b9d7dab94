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

// Related files:
//   - ledger/ledger.go: RedemptionLedger driving these collaborators
//   - registry/: in-memory implementations

// AssetState defines the interface for querying the asset registry
type AssetState interface {
	// Exists returns whether the asset has been created
	Exists(AssetId) (bool, error)
	// OwnerOf returns the current owner of the asset, or ErrAssetNotFound
	OwnerOf(AssetId) (Address, error)
	// MetadataURI returns the metadata pointer of the asset, or ErrAssetNotFound
	MetadataURI(AssetId) (string, error)
}

// AssetTxn is a unit of work against the asset registry. Nothing it stages is
// visible to other callers until Commit succeeds. Ownership change events of a
// committed transaction are delivered to subscribers by Publish, in commit order
type AssetTxn interface {
	// Create stages the creation of an asset owned by owner. It fails with
	// ErrAssetExists if the asset already has an owner
	Create(assetId AssetId, owner Address, metadataURI string) error
	// Transfer stages an ownership change. It fails with ErrNotOwner if from is not
	// the current owner
	Transfer(assetId AssetId, from Address, to Address) error
	// Commit applies all staged changes atomically
	Commit() error
	// Rollback discards all staged changes. It is safe to call after Commit
	Rollback() error
	// Publish delivers the events of committed changes to subscribers. Callers
	// invoke it once they hold no locks of their own, since subscribers may call
	// back into them. It does nothing for a transaction that did not commit
	Publish()
}

// AssetRegistry defines the asset registry collaborator of the redemption ledger
type AssetRegistry interface {
	AssetState
	Begin() (AssetTxn, error)
}

// Funds defines the interface for moving value between external balances and
// the ledger's custody
type Funds interface {
	// Collect moves amount from the external balance of from into ledger custody
	Collect(from Address, amount uint64) error
	// Disburse moves amount from ledger custody to the external balance of to
	Disburse(to Address, amount uint64) error
}
