package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Method names of the issuance contract family. They match the Solidity ABI
// of an OpenZeppelin-style ERC-721 collection with Ownable and a pause flag.
const (
	MethodSafeMint    = "safeMint"
	MethodSetPaused   = "setPaused"
	MethodPaused      = "paused"
	MethodOwnerOf     = "ownerOf"
	MethodBalanceOf   = "balanceOf"
	MethodTotalSupply = "totalSupply"
	MethodMaxSupply   = "maxSupply"
	MethodTokenURI    = "tokenURI"
	MethodOwner       = "owner"
	MethodName        = "name"
	MethodSymbol      = "symbol"
)

// EventTransfer is emitted by every successful mint (from the zero address).
const EventTransfer = "Transfer"

// Sentinel errors returned by runtimes for requests they cannot route.
var (
	ErrUnknownMethod   = errors.New("unknown method")
	ErrUnknownContract = errors.New("no contract at address")
	ErrNoSigners       = errors.New("runtime has no signers")
)

// Runtime deploys and executes issuance contracts.
//
// All methods block until the runtime has an answer. Timeouts and
// cancellation belong to the runtime's own configuration and to ctx.
type Runtime interface {
	// DeployContract runs the constructor with args as deployer.
	// A constructor revert is returned as *RevertError.
	DeployContract(ctx context.Context, args DeployArgs, deployer Signer) (common.Address, *Receipt, error)

	// SendTransaction submits a state-changing call and waits for its receipt.
	// A revert is returned as *RevertError.
	SendTransaction(ctx context.Context, contract common.Address, method string, args []any, signer Signer) (*Receipt, error)

	// CallView executes a read-only call against current state.
	CallView(ctx context.Context, contract common.Address, method string, args []any) ([]any, error)

	// Signers returns the available actor identities in a stable order.
	Signers(ctx context.Context) ([]Signer, error)
}

// DeployArgs are the constructor arguments of an issuance contract.
type DeployArgs struct {
	Name      string `json:"name" yaml:"name"`
	Symbol    string `json:"symbol" yaml:"symbol"`
	MaxSupply uint64 `json:"max_supply" yaml:"max_supply"`
	BaseURI   string `json:"base_uri" yaml:"base_uri"`
}

// Signer is an actor identity known to the runtime.
type Signer struct {
	Address common.Address
	Label   string // "owner", "signer1", ...
}

func (s Signer) String() string {
	if s.Label == "" {
		return s.Address.Hex()
	}
	return fmt.Sprintf("%s(%s)", s.Label, s.Address.Hex())
}

// Receipt is the result of a mined transaction.
type Receipt struct {
	TxHash          common.Hash
	ContractAddress common.Address // set for deployments only
	GasUsed         uint64
	Return          []any
	Events          []Event
}

// Event is a decoded log entry.
type Event struct {
	Name   string
	Fields map[string]any
}

// FindEvent returns the first event named name, if any.
func (r *Receipt) FindEvent(name string) (Event, bool) {
	if r == nil {
		return Event{}, false
	}
	for _, ev := range r.Events {
		if ev.Name == name {
			return ev, true
		}
	}
	return Event{}, false
}

// RevertError reports that the contract aborted execution.
type RevertError struct {
	Reason  string
	GasUsed uint64 // zero when the runtime rejected the call before mining
	Data    []byte // raw revert payload, if available
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

// AsRevert reports whether err is (or wraps) a *RevertError.
func AsRevert(err error) (*RevertError, bool) {
	var rev *RevertError
	if errors.As(err, &rev) {
		return rev, true
	}
	return nil, false
}
