package testutil

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/roach88/mintcheck/internal/ledger"
)

// MockRuntime is a testify mock of ledger.Runtime.
//
// Typical use is to provoke runtime failures that the reference runtime
// never produces:
//
//	rt := &testutil.MockRuntime{}
//	rt.On("Signers", mock.Anything).Return(testutil.Signers(), nil)
//	rt.On("DeployContract", mock.Anything, mock.Anything, mock.Anything).
//		Return(common.Address{}, nil, errors.New("connection refused"))
type MockRuntime struct {
	mock.Mock
}

var _ ledger.Runtime = (*MockRuntime)(nil)

func (m *MockRuntime) DeployContract(ctx context.Context, args ledger.DeployArgs, deployer ledger.Signer) (common.Address, *ledger.Receipt, error) {
	ret := m.Called(ctx, args, deployer)
	receipt, _ := ret.Get(1).(*ledger.Receipt)
	return ret.Get(0).(common.Address), receipt, ret.Error(2)
}

func (m *MockRuntime) SendTransaction(ctx context.Context, contract common.Address, method string, args []any, signer ledger.Signer) (*ledger.Receipt, error) {
	ret := m.Called(ctx, contract, method, args, signer)
	receipt, _ := ret.Get(0).(*ledger.Receipt)
	return receipt, ret.Error(1)
}

func (m *MockRuntime) CallView(ctx context.Context, contract common.Address, method string, args []any) ([]any, error) {
	ret := m.Called(ctx, contract, method, args)
	vals, _ := ret.Get(0).([]any)
	return vals, ret.Error(1)
}

func (m *MockRuntime) Signers(ctx context.Context) ([]ledger.Signer, error) {
	ret := m.Called(ctx)
	signers, _ := ret.Get(0).([]ledger.Signer)
	return signers, ret.Error(1)
}

// Signers returns an owner and one unprivileged signer with the usual
// development-node addresses.
func Signers() []ledger.Signer {
	return []ledger.Signer{
		{Address: common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), Label: "owner"},
		{Address: common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), Label: "signer1"},
	}
}
