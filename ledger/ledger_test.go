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

package ledger_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/internal/test"
	"github.com/blinklabs-io/lazymint/ledger"
	"github.com/blinklabs-io/lazymint/registry"
	"github.com/blinklabs-io/lazymint/voucher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNetworkMagic = 42

var testLedgerAddress = test.NewAddress(0xee)

type testEnv struct {
	ledger   *ledger.Ledger
	assets   *registry.AssetRegistry
	roles    *registry.RoleRegistry
	balances *registry.Balances
	issuer   *voucher.Issuer
	redeemer common.Address
}

type testEnvOptions struct {
	registry common.AssetRegistry
	oracle   ledger.AuthorizationOracle
	funds    common.Funds
}

func newTestEnv(t *testing.T, opts testEnvOptions) *testEnv {
	t.Helper()
	domain := voucher.NewDomain(testNetworkMagic, testLedgerAddress)
	issuer, err := voucher.NewIssuer(domain, test.NewPrivateKey(0x01))
	require.NoError(t, err)
	env := &testEnv{
		assets:   registry.NewAssetRegistry(),
		roles:    registry.NewRoleRegistry(nil, issuer.Address()),
		balances: registry.NewBalances(testLedgerAddress),
		issuer:   issuer,
		redeemer: test.NewAddress(0x02),
	}
	require.NoError(t, env.balances.Deposit(env.redeemer, 10*test.WeiPerEther))
	var assets common.AssetRegistry = env.assets
	if opts.registry != nil {
		assets = opts.registry
		if r, ok := opts.registry.(*registry.AssetRegistry); ok {
			env.assets = r
		}
	}
	var oracle ledger.AuthorizationOracle = env.roles
	if opts.oracle != nil {
		oracle = opts.oracle
	}
	var funds common.Funds = env.balances
	if opts.funds != nil {
		funds = opts.funds
	}
	env.ledger, err = ledger.NewLedger(
		ledger.WithDomain(domain),
		ledger.WithAssetRegistry(assets),
		ledger.WithAuthorizationOracle(oracle),
		ledger.WithFunds(funds),
	)
	require.NoError(t, err)
	return env
}

func (e *testEnv) createVoucher(
	t *testing.T,
	assetId common.AssetId,
	minPrice uint64,
) *voucher.SignedVoucher {
	t.Helper()
	sv, err := e.issuer.CreateVoucher(assetId, test.TestMetadataURI, minPrice)
	require.NoError(t, err)
	return sv
}

// assertUnchanged checks that no asset, event, escrow or balance change happened
func (e *testEnv) assertUnchanged(t *testing.T, redeemerBalance uint64) {
	t.Helper()
	assert.Empty(t, e.assets.Events())
	assert.Equal(t, 0, e.assets.Count())
	assert.Equal(t, uint64(0), e.ledger.Escrow().Total())
	assert.Equal(t, redeemerBalance, e.balances.BalanceOf(e.redeemer))
	assert.Equal(t, uint64(0), e.balances.BalanceOf(testLedgerAddress))
}

func TestRedeemVoucher(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	sv := env.createVoucher(t, 1, 0)

	assetId, err := env.ledger.Redeem(env.redeemer, sv, 0)
	require.NoError(t, err)
	assert.Equal(t, common.AssetId(1), assetId)

	// Creation for the issuer, then transfer to the redeemer
	events := env.assets.Events()
	require.Len(t, events, 2)
	assert.Equal(t, common.ZeroAddress, events[0].From)
	assert.Equal(t, env.issuer.Address(), events[0].To)
	assert.Equal(t, common.AssetId(1), events[0].AssetId)
	assert.True(t, events[0].IsCreation())
	assert.Equal(t, env.issuer.Address(), events[1].From)
	assert.Equal(t, env.redeemer, events[1].To)
	assert.Equal(t, common.AssetId(1), events[1].AssetId)
	assert.Less(t, events[0].Sequence, events[1].Sequence)

	owner, err := env.assets.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, env.redeemer, owner)
	metadataURI, err := env.assets.MetadataURI(1)
	require.NoError(t, err)
	assert.Equal(t, test.TestMetadataURI, metadataURI)
}

func TestRedeemAlreadyRedeemed(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	sv := env.createVoucher(t, 1, 0)

	_, err := env.ledger.Redeem(env.redeemer, sv, 0)
	require.NoError(t, err)

	// Same call again, then a different caller paying more
	_, err = env.ledger.Redeem(env.redeemer, sv, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrAlreadyRedeemed))
	assert.Equal(t, ledger.ReasonAlreadyRedeemed, ledger.Reason(err))

	other := test.NewAddress(0x03)
	require.NoError(t, env.balances.Deposit(other, test.WeiPerEther))
	_, err = env.ledger.Redeem(other, sv, test.WeiPerEther)
	require.Error(t, err)
	var alreadyErr ledger.AlreadyRedeemedError
	require.True(t, errors.As(err, &alreadyErr))
	assert.Equal(t, common.AssetId(1), alreadyErr.AssetId)

	// Nothing changed by the failed attempts
	assert.Len(t, env.assets.Events(), 2)
	assert.Equal(t, test.WeiPerEther, env.balances.BalanceOf(other))
	assert.Equal(t, uint64(0), env.ledger.AvailableToWithdraw(env.issuer.Address()))
}

func TestRedeemDifferentVoucherSameAsset(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	first := env.createVoucher(t, 1, 0)
	second, err := env.issuer.CreateVoucher(1, "ipfs://other", 5)
	require.NoError(t, err)

	_, err = env.ledger.Redeem(env.redeemer, second, 5)
	require.NoError(t, err)
	_, err = env.ledger.Redeem(env.redeemer, first, 0)
	assert.True(t, errors.Is(err, ledger.ErrAlreadyRedeemed))

	metadataURI, err := env.assets.MetadataURI(1)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://other", metadataURI)
}

func TestRedeemPaymentFloor(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	minPrice := test.WeiPerEther
	sv := env.createVoucher(t, 1, minPrice)
	startBalance := env.balances.BalanceOf(env.redeemer)

	_, err := env.ledger.Redeem(env.redeemer, sv, minPrice-10000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrInsufficientPayment))
	assert.Equal(t, ledger.ReasonInsufficientPayment, ledger.Reason(err))
	var paymentErr ledger.InsufficientPaymentError
	require.True(t, errors.As(err, &paymentErr))
	assert.Equal(t, minPrice, paymentErr.MinPrice)
	assert.Equal(t, minPrice-10000, paymentErr.Payment)
	env.assertUnchanged(t, startBalance)

	// Retrying with the exact price succeeds
	_, err = env.ledger.Redeem(env.redeemer, sv, minPrice)
	require.NoError(t, err)
	assert.Equal(t, startBalance-minPrice, env.balances.BalanceOf(env.redeemer))
	assert.Equal(t, minPrice, env.balances.BalanceOf(testLedgerAddress))
	assert.Equal(t, minPrice, env.ledger.AvailableToWithdraw(env.issuer.Address()))
}

func TestRedeemOverpaymentEscrowed(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	sv := env.createVoucher(t, 1, test.WeiPerEther)

	_, err := env.ledger.Redeem(env.redeemer, sv, 3*test.WeiPerEther)
	require.NoError(t, err)
	assert.Equal(t, 3*test.WeiPerEther, env.ledger.AvailableToWithdraw(env.issuer.Address()))
	assert.Equal(t, 7*test.WeiPerEther, env.balances.BalanceOf(env.redeemer))
}

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	issuerAddr := env.issuer.Address()
	sv := env.createVoucher(t, 1, test.WeiPerEther)
	_, err := env.ledger.Redeem(env.redeemer, sv, test.WeiPerEther)
	require.NoError(t, err)
	require.Equal(t, test.WeiPerEther, env.ledger.AvailableToWithdraw(issuerAddr))

	// Only the owner of a balance can withdraw it
	_, err = env.ledger.Withdraw(env.redeemer)
	assert.True(t, errors.Is(err, ledger.ErrNothingToWithdraw))
	assert.Equal(t, test.WeiPerEther, env.ledger.AvailableToWithdraw(issuerAddr))

	amount, err := env.ledger.Withdraw(issuerAddr)
	require.NoError(t, err)
	assert.Equal(t, test.WeiPerEther, amount)
	assert.Equal(t, test.WeiPerEther, env.balances.BalanceOf(issuerAddr))
	assert.Equal(t, uint64(0), env.ledger.AvailableToWithdraw(issuerAddr))
	assert.Equal(t, uint64(0), env.balances.BalanceOf(testLedgerAddress))

	_, err = env.ledger.Withdraw(issuerAddr)
	require.Error(t, err)
	assert.Equal(t, ledger.ReasonNothingToWithdraw, ledger.Reason(err))
	assert.Equal(t, test.WeiPerEther, env.balances.BalanceOf(issuerAddr))
}

func TestEscrowConservation(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	payments := []uint64{0, 1, 250, test.WeiPerEther, 17}
	var total uint64
	for i, payment := range payments {
		sv := env.createVoucher(t, common.AssetId(100+i), 0)
		_, err := env.ledger.Redeem(env.redeemer, sv, payment)
		require.NoError(t, err)
		total += payment
		assert.Equal(t, total, env.ledger.AvailableToWithdraw(env.issuer.Address()))
	}
	assert.Equal(t, total, env.ledger.Escrow().Total())
	assert.Equal(t, total, env.balances.BalanceOf(testLedgerAddress))
	assert.Len(t, env.assets.Events(), 2*len(payments))

	amount, err := env.ledger.Withdraw(env.issuer.Address())
	require.NoError(t, err)
	assert.Equal(t, total, amount)
	assert.Equal(t, uint64(0), env.ledger.Escrow().Total())
	assert.Equal(t, uint64(0), env.balances.BalanceOf(testLedgerAddress))
}

func TestRedeemUnauthorizedSigner(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	rogue, err := voucher.NewIssuer(env.ledger.Domain(), test.NewPrivateKey(0x09))
	require.NoError(t, err)
	sv, err := rogue.CreateVoucher(1, test.TestMetadataURI, 0)
	require.NoError(t, err)
	startBalance := env.balances.BalanceOf(env.redeemer)

	_, err = env.ledger.Redeem(env.redeemer, sv, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrUnauthorizedSigner))
	assert.Equal(t, ledger.ReasonUnauthorizedSigner, ledger.Reason(err))
	var signerErr ledger.UnauthorizedSignerError
	require.True(t, errors.As(err, &signerErr))
	assert.Equal(t, rogue.Address(), signerErr.Signer)
	env.assertUnchanged(t, startBalance)
}

func TestRedeemTamperedVoucher(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	sv := env.createVoucher(t, 1, test.WeiPerEther)
	// Lowering the price changes the digest, so the signature recovers to someone else
	sv.MinPrice = 0
	_, err := env.ledger.Redeem(env.redeemer, sv, 0)
	require.Error(t, err)
	assert.True(
		t,
		errors.Is(err, ledger.ErrUnauthorizedSigner) ||
			errors.Is(err, ledger.ErrInvalidSignature),
	)
	assert.Equal(t, 0, env.assets.Count())
}

func TestRedeemOtherDomain(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	otherDomain := voucher.NewDomain(testNetworkMagic, test.NewAddress(0xef))
	otherIssuer, err := voucher.NewIssuer(otherDomain, test.NewPrivateKey(0x01))
	require.NoError(t, err)
	sv, err := otherIssuer.CreateVoucher(1, test.TestMetadataURI, 0)
	require.NoError(t, err)

	_, err = env.ledger.Redeem(env.redeemer, sv, 0)
	require.Error(t, err)
	assert.NotEqual(t, "", ledger.Reason(err))
	assert.False(t, errors.Is(err, ledger.ErrAlreadyRedeemed))
	assert.Equal(t, 0, env.assets.Count())
}

func TestRedeemMalformedSignature(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	sv := env.createVoucher(t, 1, 0)
	startBalance := env.balances.BalanceOf(env.redeemer)
	for _, sig := range [][]byte{nil, sv.Signature[:10], make([]byte, 65)} {
		_, err := env.ledger.RedeemVoucher(env.redeemer, sv.Voucher(), sig, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ledger.ErrInvalidSignature))
		assert.Equal(t, ledger.ReasonInvalidSignature, ledger.Reason(err))
	}
	env.assertUnchanged(t, startBalance)
}

func TestRedeemRevokedMinter(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	first := env.createVoucher(t, 1, 0)
	second := env.createVoucher(t, 2, 0)
	_, err := env.ledger.Redeem(env.redeemer, first, 0)
	require.NoError(t, err)

	// Revocation applies to vouchers issued before it
	env.roles.RevokeMinter(env.issuer.Address())
	_, err = env.ledger.Redeem(env.redeemer, second, 0)
	assert.True(t, errors.Is(err, ledger.ErrUnauthorizedSigner))

	env.roles.GrantMinter(env.issuer.Address())
	_, err = env.ledger.Redeem(env.redeemer, second, 0)
	assert.NoError(t, err)
}

func TestRedeemInvalidInputs(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	sv := env.createVoucher(t, 1, 0)

	_, err := env.ledger.Redeem(common.ZeroAddress, sv, 0)
	assert.True(t, errors.Is(err, ledger.ErrInvalidRedeemer))
	assert.Equal(t, ledger.ReasonInvalidRedeemer, ledger.Reason(err))

	_, err = env.ledger.Redeem(env.redeemer, nil, 0)
	assert.True(t, errors.Is(err, voucher.ErrInvalidVoucher))

	bad := voucher.Voucher{AssetId: 1, MetadataURI: string([]byte{0xff})}
	_, err = env.ledger.RedeemVoucher(env.redeemer, bad, sv.Signature, 0)
	assert.Equal(t, ledger.ReasonInvalidVoucher, ledger.Reason(err))
	assert.Equal(t, 0, env.assets.Count())
}

func TestRedeemOracleError(t *testing.T) {
	oracleErr := errors.New("role registry unreachable")
	env := newTestEnv(t, testEnvOptions{
		oracle: ledger.AuthorizationFunc(func(common.Address) (bool, error) {
			return false, oracleErr
		}),
	})
	sv := env.createVoucher(t, 1, 0)
	_, err := env.ledger.Redeem(env.redeemer, sv, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oracleErr))
	assert.Equal(t, "", ledger.Reason(err))
	assert.Equal(t, 0, env.assets.Count())
}

func TestRedeemRedeemerCannotPay(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	broke := test.NewAddress(0x04)
	sv := env.createVoucher(t, 1, test.WeiPerEther)
	_, err := env.ledger.Redeem(broke, sv, test.WeiPerEther)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInsufficientBalance))
	assert.Equal(t, 0, env.assets.Count())
	assert.Empty(t, env.assets.Events())
	assert.Equal(t, uint64(0), env.ledger.Escrow().Total())

	// The voucher is still redeemable
	_, err = env.ledger.Redeem(env.redeemer, sv, test.WeiPerEther)
	assert.NoError(t, err)
}

// failingCommitRegistry wraps an asset registry, failing every commit
type failingCommitRegistry struct {
	*registry.AssetRegistry
}

type failingCommitTxn struct {
	common.AssetTxn
}

func (f failingCommitRegistry) Begin() (common.AssetTxn, error) {
	txn, err := f.AssetRegistry.Begin()
	if err != nil {
		return nil, err
	}
	return failingCommitTxn{AssetTxn: txn}, nil
}

func (failingCommitTxn) Commit() error {
	return errors.New("registry storage unavailable")
}

func TestRedeemCommitFailureRefunds(t *testing.T) {
	assets := registry.NewAssetRegistry()
	env := newTestEnv(t, testEnvOptions{
		registry: failingCommitRegistry{AssetRegistry: assets},
	})
	sv := env.createVoucher(t, 1, test.WeiPerEther)
	startBalance := env.balances.BalanceOf(env.redeemer)
	_, err := env.ledger.Redeem(env.redeemer, sv, test.WeiPerEther)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry storage unavailable")
	assert.Equal(t, startBalance, env.balances.BalanceOf(env.redeemer))
	assert.Equal(t, uint64(0), env.balances.BalanceOf(testLedgerAddress))
	assert.Equal(t, uint64(0), env.ledger.Escrow().Total())
	assert.Equal(t, 0, assets.Count())
	assert.Empty(t, assets.Events())
}

// flakyFunds fails payouts while failPayouts is set
type flakyFunds struct {
	*registry.Balances
	failPayouts atomic.Bool
}

func (f *flakyFunds) Disburse(to common.Address, amount uint64) error {
	if f.failPayouts.Load() {
		return errors.New("payout rail unavailable")
	}
	return f.Balances.Disburse(to, amount)
}

func TestWithdrawPayoutFailureKeepsBalance(t *testing.T) {
	funds := &flakyFunds{Balances: registry.NewBalances(testLedgerAddress)}
	env := newTestEnv(t, testEnvOptions{funds: funds})
	require.NoError(t, funds.Deposit(env.redeemer, test.WeiPerEther))
	sv := env.createVoucher(t, 1, test.WeiPerEther)
	_, err := env.ledger.Redeem(env.redeemer, sv, test.WeiPerEther)
	require.NoError(t, err)

	funds.failPayouts.Store(true)
	_, err = env.ledger.Withdraw(env.issuer.Address())
	require.Error(t, err)
	assert.Equal(t, test.WeiPerEther, env.ledger.AvailableToWithdraw(env.issuer.Address()))

	funds.failPayouts.Store(false)
	amount, err := env.ledger.Withdraw(env.issuer.Address())
	require.NoError(t, err)
	assert.Equal(t, test.WeiPerEther, amount)
	assert.Equal(t, test.WeiPerEther, funds.BalanceOf(env.issuer.Address()))
}

func TestRedeemConcurrentSameAsset(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	sv := env.createVoucher(t, 1, 1)
	const callers = 16
	var succeeded atomic.Int32
	var wg sync.WaitGroup
	for i := range callers {
		caller := test.NewAddress(byte(0x20 + i))
		require.NoError(t, env.balances.Deposit(caller, 1))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.ledger.Redeem(caller, sv, 1)
			if err == nil {
				succeeded.Add(1)
				return
			}
			assert.True(t, errors.Is(err, ledger.ErrAlreadyRedeemed), fmt.Sprint(err))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), succeeded.Load())
	assert.Len(t, env.assets.Events(), 2)
	assert.Equal(t, uint64(1), env.ledger.AvailableToWithdraw(env.issuer.Address()))
	assert.Equal(t, uint64(1), env.balances.BalanceOf(testLedgerAddress))
}

func TestNewLedgerRequiresCollaborators(t *testing.T) {
	domain := voucher.NewDomain(testNetworkMagic, testLedgerAddress)
	assets := registry.NewAssetRegistry()
	roles := registry.NewRoleRegistry(nil)
	balances := registry.NewBalances(testLedgerAddress)
	testDefs := map[string][]ledger.LedgerOptionFunc{
		"no registry": {
			ledger.WithDomain(domain),
			ledger.WithAuthorizationOracle(roles),
			ledger.WithFunds(balances),
		},
		"no oracle": {
			ledger.WithDomain(domain),
			ledger.WithAssetRegistry(assets),
			ledger.WithFunds(balances),
		},
		"no funds": {
			ledger.WithDomain(domain),
			ledger.WithAssetRegistry(assets),
			ledger.WithAuthorizationOracle(roles),
		},
		"no domain": {
			ledger.WithAssetRegistry(assets),
			ledger.WithAuthorizationOracle(roles),
			ledger.WithFunds(balances),
		},
		"no ledger address": {
			ledger.WithDomain(voucher.NewDomain(testNetworkMagic, common.ZeroAddress)),
			ledger.WithAssetRegistry(assets),
			ledger.WithAuthorizationOracle(roles),
			ledger.WithFunds(balances),
		},
	}
	for name, options := range testDefs {
		_, err := ledger.NewLedger(options...)
		assert.Error(t, err, name)
	}
}

// redeemWithTimeout fails the test if the redemption does not return in time
func redeemWithTimeout(
	t *testing.T,
	redeem func() (common.AssetId, error),
) (common.AssetId, error) {
	t.Helper()
	type result struct {
		assetId common.AssetId
		err     error
	}
	resultChan := make(chan result, 1)
	go func() {
		assetId, err := redeem()
		resultChan <- result{assetId, err}
	}()
	select {
	case res := <-resultChan:
		return res.assetId, res.err
	case <-time.After(5 * time.Second):
		t.Fatal("redemption did not return")
		return 0, nil
	}
}

func TestRedeemSubscriberPanic(t *testing.T) {
	assets := registry.NewAssetRegistry(
		registry.WithTransferFunc(func(evt common.TransferEvent) {
			if !evt.IsCreation() {
				panic("marketplace hook failed")
			}
		}),
	)
	env := newTestEnv(t, testEnvOptions{registry: assets})
	sv := env.createVoucher(t, 1, test.WeiPerEther)

	assetId, err := env.ledger.Redeem(env.redeemer, sv, test.WeiPerEther)
	require.NoError(t, err)
	assert.Equal(t, common.AssetId(1), assetId)

	// The payment held in custody is fully escrowed for the issuer
	assert.Equal(t, test.WeiPerEther, env.balances.BalanceOf(testLedgerAddress))
	assert.Equal(t, test.WeiPerEther, env.ledger.AvailableToWithdraw(env.issuer.Address()))
	assert.Equal(t, test.WeiPerEther, env.ledger.Escrow().Total())
	assert.Len(t, assets.Events(), 2)

	amount, err := env.ledger.Withdraw(env.issuer.Address())
	require.NoError(t, err)
	assert.Equal(t, test.WeiPerEther, amount)
}

func TestRedeemSubscriberReentersLedger(t *testing.T) {
	var (
		env         *testEnv
		second      *voucher.SignedVoucher
		withdrawn   uint64
		withdrawErr error
		nestedErr   error
	)
	assets := registry.NewAssetRegistry(
		registry.WithTransferFunc(func(evt common.TransferEvent) {
			if evt.IsCreation() || evt.AssetId != 1 {
				return
			}
			withdrawn, withdrawErr = env.ledger.Withdraw(env.issuer.Address())
			_, nestedErr = env.ledger.Redeem(env.redeemer, second, 0)
		}),
	)
	env = newTestEnv(t, testEnvOptions{registry: assets})
	first := env.createVoucher(t, 1, test.WeiPerEther)
	second = env.createVoucher(t, 2, 0)

	_, err := redeemWithTimeout(t, func() (common.AssetId, error) {
		return env.ledger.Redeem(env.redeemer, first, test.WeiPerEther)
	})
	require.NoError(t, err)

	// Escrow is credited before subscribers observe the transfer
	require.NoError(t, withdrawErr)
	assert.Equal(t, test.WeiPerEther, withdrawn)
	assert.Equal(t, test.WeiPerEther, env.balances.BalanceOf(env.issuer.Address()))
	require.NoError(t, nestedErr)

	events := assets.Events()
	require.Len(t, events, 4)
	for i, evt := range events {
		assert.Equal(t, uint64(i+1), evt.Sequence)
	}
	owner, err := assets.OwnerOf(2)
	require.NoError(t, err)
	assert.Equal(t, env.redeemer, owner)
}
