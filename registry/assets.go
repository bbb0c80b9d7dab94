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

// Package registry provides in-memory implementations of the collaborators the
// redemption ledger depends on: an asset registry with ownership change
// notifications, a minter role registry and a table of external balances.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/lazymint/common"
)

var (
	// ErrTxnDone is returned when staging into or committing a finished transaction
	ErrTxnDone = errors.New("asset transaction already finished")
	// ErrInvalidOwner is returned when an asset would be owned by the zero address
	ErrInvalidOwner = errors.New("asset owner cannot be the zero address")
)

// Compile-time check that AssetRegistry implements common.AssetRegistry
var _ common.AssetRegistry = (*AssetRegistry)(nil)

// TransferFunc is called for every committed ownership change, in order
type TransferFunc func(common.TransferEvent)

// AssetRegistryOptionFunc is a type that represents functions that modify the AssetRegistry config
type AssetRegistryOptionFunc func(*AssetRegistry)

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) AssetRegistryOptionFunc {
	return func(r *AssetRegistry) {
		r.logger = logger
	}
}

// WithTransferFunc registers a callback for committed ownership changes
func WithTransferFunc(transferFunc TransferFunc) AssetRegistryOptionFunc {
	return func(r *AssetRegistry) {
		r.subscribers = append(r.subscribers, transferFunc)
	}
}

// AssetRegistry is an in-memory asset registry. Each asset has exactly one owner once
// created, and creation fails for an asset that already exists
type AssetRegistry struct {
	logger      *slog.Logger
	mu          sync.RWMutex
	owners      map[common.AssetId]common.Address
	metadata    map[common.AssetId]string
	events      []common.TransferEvent
	subscribers []TransferFunc
	// committed events not yet delivered to subscribers, in log order
	pending []common.TransferEvent
	// set while a publish call is delivering pending events
	publishing bool
}

// NewAssetRegistry returns an empty asset registry
func NewAssetRegistry(options ...AssetRegistryOptionFunc) *AssetRegistry {
	r := &AssetRegistry{
		owners:   make(map[common.AssetId]common.Address),
		metadata: make(map[common.AssetId]string),
	}
	for _, option := range options {
		option(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Subscribe registers a callback for committed ownership changes
func (r *AssetRegistry) Subscribe(transferFunc TransferFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, transferFunc)
}

func (r *AssetRegistry) Exists(assetId common.AssetId) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.owners[assetId]
	return ok, nil
}

func (r *AssetRegistry) OwnerOf(assetId common.AssetId) (common.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[assetId]
	if !ok {
		return common.Address{}, fmt.Errorf(
			"asset %d: %w",
			assetId,
			common.ErrAssetNotFound,
		)
	}
	return owner, nil
}

func (r *AssetRegistry) MetadataURI(assetId common.AssetId) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.owners[assetId]; !ok {
		return "", fmt.Errorf(
			"asset %d: %w",
			assetId,
			common.ErrAssetNotFound,
		)
	}
	return r.metadata[assetId], nil
}

// Events returns a copy of the ownership change log
func (r *AssetRegistry) Events() []common.TransferEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]common.TransferEvent, len(r.events))
	copy(ret, r.events)
	return ret
}

// Count returns the number of created assets
func (r *AssetRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

// Begin starts a new unit of work
func (r *AssetRegistry) Begin() (common.AssetTxn, error) {
	return &AssetTxn{registry: r}, nil
}

type assetOp struct {
	create      bool
	assetId     common.AssetId
	from        common.Address
	to          common.Address
	metadataURI string
}

// check validates the operations in order against the current state. The caller must hold
// the registry lock
func (r *AssetRegistry) check(ops []assetOp) error {
	pending := make(map[common.AssetId]common.Address)
	ownerOf := func(assetId common.AssetId) (common.Address, bool) {
		if owner, ok := pending[assetId]; ok {
			return owner, true
		}
		owner, ok := r.owners[assetId]
		return owner, ok
	}
	for _, op := range ops {
		if op.to.IsZero() {
			return fmt.Errorf("asset %d: %w", op.assetId, ErrInvalidOwner)
		}
		owner, exists := ownerOf(op.assetId)
		if op.create {
			if exists {
				return fmt.Errorf(
					"asset %d: %w",
					op.assetId,
					common.ErrAssetExists,
				)
			}
		} else {
			if !exists {
				return fmt.Errorf(
					"asset %d: %w",
					op.assetId,
					common.ErrAssetNotFound,
				)
			}
			if owner != op.from {
				return fmt.Errorf(
					"asset %d owned by %s: %w",
					op.assetId,
					owner.String(),
					common.ErrNotOwner,
				)
			}
		}
		pending[op.assetId] = op.to
	}
	return nil
}

// commit validates and applies the operations. The resulting events are queued for publish
func (r *AssetRegistry) commit(ops []assetOp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ops); err != nil {
		return err
	}
	for _, op := range ops {
		evt := common.TransferEvent{
			Sequence: uint64(len(r.events)) + 1,
			From:     op.from,
			To:       op.to,
			AssetId:  op.assetId,
		}
		if op.create {
			evt.From = common.ZeroAddress
			r.metadata[op.assetId] = op.metadataURI
		}
		r.owners[op.assetId] = op.to
		r.events = append(r.events, evt)
		r.pending = append(r.pending, evt)
	}
	return nil
}

// publish delivers pending events to subscribers until none remain. Only one call
// delivers at a time; a call made while another is delivering, including one made
// from a subscriber, returns immediately and its events are delivered by the active call
func (r *AssetRegistry) publish() {
	r.mu.Lock()
	if r.publishing {
		r.mu.Unlock()
		return
	}
	r.publishing = true
	for len(r.pending) > 0 {
		events := r.pending
		r.pending = nil
		subscribers := make([]TransferFunc, len(r.subscribers))
		copy(subscribers, r.subscribers)
		r.mu.Unlock()
		for _, evt := range events {
			r.logger.Debug(
				"asset ownership changed",
				"asset_id", evt.AssetId,
				"from", evt.From.String(),
				"to", evt.To.String(),
				"sequence", evt.Sequence,
			)
			for _, subscriber := range subscribers {
				r.notify(subscriber, evt)
			}
		}
		r.mu.Lock()
	}
	r.publishing = false
	r.mu.Unlock()
}

// notify calls a subscriber, containing any panic so the remaining subscribers and
// events are still delivered
func (r *AssetRegistry) notify(subscriber TransferFunc, evt common.TransferEvent) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error(
				"transfer subscriber panicked",
				"asset_id", evt.AssetId,
				"sequence", evt.Sequence,
				"panic", err,
			)
		}
	}()
	subscriber(evt)
}

// AssetTxn stages asset creations and transfers until Commit
type AssetTxn struct {
	registry *AssetRegistry
	mu       sync.Mutex
	ops       []assetOp
	done      bool
	committed bool
}

func (t *AssetTxn) stage(op assetOp) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxnDone
	}
	ops := append(t.ops[:len(t.ops):len(t.ops)], op)
	t.registry.mu.RLock()
	err := t.registry.check(ops)
	t.registry.mu.RUnlock()
	if err != nil {
		return err
	}
	t.ops = ops
	return nil
}

func (t *AssetTxn) Create(
	assetId common.AssetId,
	owner common.Address,
	metadataURI string,
) error {
	return t.stage(assetOp{
		create:      true,
		assetId:     assetId,
		to:          owner,
		metadataURI: metadataURI,
	})
}

func (t *AssetTxn) Transfer(
	assetId common.AssetId,
	from common.Address,
	to common.Address,
) error {
	return t.stage(assetOp{
		assetId: assetId,
		from:    from,
		to:      to,
	})
}

// Commit applies the staged changes. The ownership of every staged asset is checked
// again, so a concurrent transaction that committed first causes this one to fail
// without applying anything. Subscribers are not called until Publish
func (t *AssetTxn) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxnDone
	}
	t.done = true
	if err := t.registry.commit(t.ops); err != nil {
		return err
	}
	t.committed = true
	return nil
}

func (t *AssetTxn) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	t.ops = nil
	return nil
}

// Publish delivers committed events to subscribers
func (t *AssetTxn) Publish() {
	t.mu.Lock()
	committed := t.committed
	t.mu.Unlock()
	if !committed {
		return
	}
	t.registry.publish()
}
