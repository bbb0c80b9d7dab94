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
	"sync"

	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/utils"
	"github.com/blinklabs-io/lazymint/voucher"
)

const DefaultSequencerQueueSize = 100

var (
	ErrSequencerStopped    = errors.New("sequencer stopped")
	ErrSequencerNotStarted = errors.New("sequencer not started")
)

type sequencerRequest struct {
	redeemer      common.Address
	signedVoucher *voucher.SignedVoucher
	payment       uint64
	// set for withdrawals
	withdrawer *common.Address
	resultChan chan sequencerResult
}

type sequencerResult struct {
	assetId common.AssetId
	amount  uint64
	// committed redemption, published by the submitter
	txn common.AssetTxn
	err error
}

// Sequencer feeds requests to a Ledger from a single goroutine, strictly in the order they
// were accepted
type Sequencer struct {
	ledger      *Ledger
	requestChan chan *sequencerRequest
	doneSignal  *utils.DoneSignal
	waitGroup   sync.WaitGroup
	// protects started/stopped and sends on requestChan
	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewSequencer returns a sequencer for the ledger with room for queueSize pending requests.
// A queueSize of 0 uses DefaultSequencerQueueSize
func NewSequencer(ledger *Ledger, queueSize int) *Sequencer {
	if queueSize <= 0 {
		queueSize = DefaultSequencerQueueSize
	}
	return &Sequencer{
		ledger:      ledger,
		requestChan: make(chan *sequencerRequest, queueSize),
		doneSignal:  utils.NewDoneSignal(),
	}
}

// Start starts processing requests
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.doneSignal.IsClosed() {
		return
	}
	s.started = true
	s.waitGroup.Add(1)
	go s.processLoop()
}

// Stop stops processing requests. Requests still queued fail with ErrSequencerStopped.
// Stop returns once the processing goroutine has exited
func (s *Sequencer) Stop() {
	// Unblock any submitters waiting for queue space before taking the lock
	s.doneSignal.Close()
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.waitGroup.Wait()
	for {
		select {
		case req := <-s.requestChan:
			req.resultChan <- sequencerResult{err: ErrSequencerStopped}
		default:
			return
		}
	}
}

// Redeem queues a redemption and waits for its result. Ownership change events are
// published from the calling goroutine, so subscribers may submit further requests
func (s *Sequencer) Redeem(
	redeemer common.Address,
	signedVoucher *voucher.SignedVoucher,
	payment uint64,
) (common.AssetId, error) {
	result := s.submit(&sequencerRequest{
		redeemer:      redeemer,
		signedVoucher: signedVoucher,
		payment:       payment,
	})
	if result.err != nil {
		return 0, result.err
	}
	result.txn.Publish()
	return result.assetId, nil
}

// Withdraw queues a withdrawal and waits for its result
func (s *Sequencer) Withdraw(caller common.Address) (uint64, error) {
	result := s.submit(&sequencerRequest{
		withdrawer: &caller,
	})
	return result.amount, result.err
}

func (s *Sequencer) submit(req *sequencerRequest) sequencerResult {
	req.resultChan = make(chan sequencerResult, 1)
	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		return sequencerResult{err: ErrSequencerStopped}
	}
	if !s.started {
		s.mu.RUnlock()
		return sequencerResult{err: ErrSequencerNotStarted}
	}
	select {
	case s.requestChan <- req:
	case <-s.doneSignal.GetCh():
		s.mu.RUnlock()
		return sequencerResult{err: ErrSequencerStopped}
	}
	s.mu.RUnlock()
	// Every accepted request gets exactly one result, from processLoop or Stop
	return <-req.resultChan
}

func (s *Sequencer) processLoop() {
	defer s.waitGroup.Done()
	for {
		select {
		case <-s.doneSignal.GetCh():
			return
		case req := <-s.requestChan:
			req.resultChan <- s.process(req)
		}
	}
}

func (s *Sequencer) process(req *sequencerRequest) sequencerResult {
	if req.withdrawer != nil {
		amount, err := s.ledger.Withdraw(*req.withdrawer)
		return sequencerResult{amount: amount, err: err}
	}
	txn, err := s.ledger.redeemSigned(req.redeemer, req.signedVoucher, req.payment)
	if err != nil {
		return sequencerResult{err: err}
	}
	return sequencerResult{assetId: req.signedVoucher.AssetId, txn: txn}
}
