package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mintcheck/internal/ledger"
	"github.com/roach88/mintcheck/internal/simledger"
	"github.com/roach88/mintcheck/internal/testutil"
)

var testArgs = ledger.DeployArgs{
	Name:      "TestNFT",
	Symbol:    "TNFT",
	MaxSupply: 10,
	BaseURI:   "ipfs://CID/",
}

func newRuntime(t *testing.T, flaws simledger.Flaws) *simledger.Runtime {
	t.Helper()
	rt, err := simledger.New(simledger.Config{Flaws: flaws})
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func deploy(t *testing.T, rt ledger.Runtime) *Handle {
	t.Helper()
	h, err := Deploy(context.Background(), rt, testArgs)
	require.NoError(t, err)
	return h
}

func TestDeploy(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	h := deploy(t, rt)

	signers, err := rt.Signers(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, common.Address{}, h.Address())
	assert.Equal(t, testArgs, h.Args())
	assert.Equal(t, signers[0], h.Owner())
	assert.NotZero(t, h.DeployGas())
}

func TestDeploy_FreshInstances(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	a := deploy(t, rt)
	b := deploy(t, rt)
	assert.NotEqual(t, a.Address(), b.Address())
}

func TestDeploy_ZeroSupplyIsDeploymentError(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	args := testArgs
	args.MaxSupply = 0

	_, err := Deploy(context.Background(), rt, args)

	var depErr *DeploymentError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, simledger.ReasonZeroSupply, depErr.Reason)
	assert.Equal(t, args, depErr.Args)
	assert.Contains(t, err.Error(), `"TestNFT"`)

	_, isRevert := ledger.AsRevert(err)
	assert.True(t, isRevert, "DeploymentError should unwrap to the revert")
}

func TestDeploy_RuntimeFailureIsNotDeploymentError(t *testing.T) {
	rt := &testutil.MockRuntime{}
	rt.On("Signers", mock.Anything).Return(testutil.Signers(), nil)
	rt.On("DeployContract", mock.Anything, testArgs, testutil.Signers()[0]).
		Return(common.Address{}, nil, errors.New("connection refused"))

	_, err := Deploy(context.Background(), rt, testArgs)
	require.Error(t, err)

	var depErr *DeploymentError
	assert.False(t, errors.As(err, &depErr))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDeploy_NoSigners(t *testing.T) {
	rt := &testutil.MockRuntime{}
	rt.On("Signers", mock.Anything).Return([]ledger.Signer{}, nil)

	_, err := Deploy(context.Background(), rt, testArgs)
	assert.ErrorIs(t, err, ledger.ErrNoSigners)
	rt.AssertNotCalled(t, "DeployContract", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeploy_SignersError(t *testing.T) {
	rt := &testutil.MockRuntime{}
	rt.On("Signers", mock.Anything).Return(nil, ledger.ErrNoSigners)

	_, err := Deploy(context.Background(), rt, testArgs)
	assert.ErrorIs(t, err, ledger.ErrNoSigners)
}

func TestActors(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	h := deploy(t, rt)

	actors, err := h.Actors(context.Background())
	require.NoError(t, err)
	require.Len(t, actors, simledger.DefaultAccounts)

	assert.Equal(t, RoleOwner, actors[0].Role)
	for _, a := range actors[1:] {
		assert.Equal(t, RoleUnprivileged, a.Role)
	}

	other, err := h.Unprivileged(context.Background())
	require.NoError(t, err)
	assert.Equal(t, actors[1].Signer, other)
}

func TestUnprivileged_OnlyOwner(t *testing.T) {
	only := testutil.Signers()[:1]
	rt := &testutil.MockRuntime{}
	rt.On("Signers", mock.Anything).Return(only, nil)
	rt.On("DeployContract", mock.Anything, mock.Anything, mock.Anything).
		Return(common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), &ledger.Receipt{}, nil)

	h := deploy(t, rt)
	_, err := h.Unprivileged(context.Background())
	assert.ErrorContains(t, err, "no unprivileged signer")
}

func TestInvoke_Success(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	h := deploy(t, rt)
	recipient := testutil.Signers()[1].Address

	res, err := h.Invoke(context.Background(), ledger.MethodSafeMint, []any{recipient}, h.Owner())
	require.NoError(t, err)

	assert.False(t, res.Reverted)
	assert.Empty(t, res.Reason)
	assert.NotZero(t, res.GasUsed)
	require.NotNil(t, res.Receipt)
	assert.Contains(t, res.String(), "success")
}

func TestInvoke_RevertIsResult(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	h := deploy(t, rt)

	res, err := h.Invoke(context.Background(), ledger.MethodSafeMint, []any{common.Address{}}, h.Owner())
	require.NoError(t, err)

	assert.True(t, res.Reverted)
	assert.Equal(t, simledger.ReasonZeroAddressMint, res.Reason)
	assert.Nil(t, res.Receipt)
	assert.Equal(t, "reverted: "+simledger.ReasonZeroAddressMint, res.String())
}

func TestInvoke_RuntimeErrorIsError(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	h := deploy(t, rt)

	_, err := h.Invoke(context.Background(), "burn", []any{}, h.Owner())
	assert.ErrorIs(t, err, ledger.ErrUnknownMethod)
	_, isRevert := ledger.AsRevert(err)
	assert.False(t, isRevert)
}

func TestInvoke_NilReceipt(t *testing.T) {
	rt := &testutil.MockRuntime{}
	rt.On("Signers", mock.Anything).Return(testutil.Signers(), nil)
	rt.On("DeployContract", mock.Anything, mock.Anything, mock.Anything).
		Return(common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), &ledger.Receipt{GasUsed: 1}, nil)
	rt.On("SendTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)

	h := deploy(t, rt)
	_, err := h.Invoke(context.Background(), ledger.MethodSetPaused, []any{true}, h.Owner())
	assert.ErrorContains(t, err, "no receipt")
}

func TestInvoke_CumulativeState(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	h := deploy(t, rt)
	ctx := context.Background()
	recipient := testutil.Signers()[1].Address

	for i := 0; i < 3; i++ {
		res, err := h.Invoke(ctx, ledger.MethodSafeMint, []any{recipient}, h.Owner())
		require.NoError(t, err)
		require.False(t, res.Reverted)
	}

	supply, err := h.Issuance().TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), supply)
}

func TestRead(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	h := deploy(t, rt)

	vals, err := h.Read(context.Background(), ledger.MethodPaused, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{false}, vals)

	name, err := h.ReadOne(context.Background(), ledger.MethodName, nil)
	require.NoError(t, err)
	assert.Equal(t, "TestNFT", name)
}

func TestRead_RevertIsRevertError(t *testing.T) {
	rt := newRuntime(t, simledger.Flaws{})
	h := deploy(t, rt)

	_, err := h.Issuance().OwnerOf(context.Background(), 7)
	rev, ok := ledger.AsRevert(err)
	require.True(t, ok, "expected revert, got %v", err)
	assert.Equal(t, simledger.ReasonInvalidTokenID, rev.Reason)
}

func TestReadOne_WrongArity(t *testing.T) {
	rt := &testutil.MockRuntime{}
	rt.On("Signers", mock.Anything).Return(testutil.Signers(), nil)
	rt.On("DeployContract", mock.Anything, mock.Anything, mock.Anything).
		Return(common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), &ledger.Receipt{}, nil)
	rt.On("CallView", mock.Anything, mock.Anything, ledger.MethodPaused, mock.Anything).
		Return([]any{true, false}, nil)

	h := deploy(t, rt)
	_, err := h.ReadOne(context.Background(), ledger.MethodPaused, nil)
	assert.ErrorContains(t, err, "expected 1 return value, got 2")
}
