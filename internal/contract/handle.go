package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/roach88/mintcheck/internal/ledger"
)

// DeploymentError reports that the constructor rejected its arguments.
type DeploymentError struct {
	Args   ledger.DeployArgs
	Reason string
	Err    error
}

func (e *DeploymentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("deployment of %q rejected by constructor", e.Args.Name)
	}
	return fmt.Sprintf("deployment of %q rejected by constructor: %s", e.Args.Name, e.Reason)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// Role is an actor's privilege level on one contract.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleUnprivileged Role = "unprivileged"
)

// Actor is a signer together with its role on a given contract.
type Actor struct {
	ledger.Signer
	Role Role
}

// OperationResult is the outcome of one state-changing call.
type OperationResult struct {
	Reverted bool
	Reason   string // revert reason, empty on success
	GasUsed  uint64
	Value    []any           // return values, if the runtime reports them
	Receipt  *ledger.Receipt // nil when reverted
}

func (r OperationResult) String() string {
	if r.Reverted {
		if r.Reason == "" {
			return "reverted"
		}
		return fmt.Sprintf("reverted: %s", r.Reason)
	}
	return fmt.Sprintf("success (gas %d)", r.GasUsed)
}

// Handle is one deployed contract instance.
type Handle struct {
	runtime   ledger.Runtime
	address   common.Address
	args      ledger.DeployArgs
	owner     ledger.Signer
	deployGas uint64
}

// Deploy deploys a new instance as the runtime's first signer, which becomes
// its owner. A constructor revert is returned as *DeploymentError; any other
// failure is returned wrapped.
func Deploy(ctx context.Context, rt ledger.Runtime, args ledger.DeployArgs) (*Handle, error) {
	signers, err := rt.Signers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list signers: %w", err)
	}
	if len(signers) == 0 {
		return nil, ledger.ErrNoSigners
	}
	deployer := signers[0]

	addr, receipt, err := rt.DeployContract(ctx, args, deployer)
	if rev, ok := ledger.AsRevert(err); ok {
		return nil, &DeploymentError{Args: args, Reason: rev.Reason, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %q: %w", args.Name, err)
	}

	h := &Handle{
		runtime: rt,
		address: addr,
		args:    args,
		owner:   deployer,
	}
	if receipt != nil {
		h.deployGas = receipt.GasUsed
	}
	return h, nil
}

// Address returns the contract address.
func (h *Handle) Address() common.Address { return h.address }

// Args returns the constructor arguments the instance was deployed with.
func (h *Handle) Args() ledger.DeployArgs { return h.args }

// Owner returns the deploying signer.
func (h *Handle) Owner() ledger.Signer { return h.owner }

// DeployGas returns the gas used by the deployment, if the runtime reported it.
func (h *Handle) DeployGas() uint64 { return h.deployGas }

// Actors returns every runtime signer with its role on this contract, in
// the runtime's signer order.
func (h *Handle) Actors(ctx context.Context) ([]Actor, error) {
	signers, err := h.runtime.Signers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list signers: %w", err)
	}
	actors := make([]Actor, len(signers))
	for i, s := range signers {
		role := RoleUnprivileged
		if s.Address == h.owner.Address {
			role = RoleOwner
		}
		actors[i] = Actor{Signer: s, Role: role}
	}
	return actors, nil
}

// Unprivileged returns the first signer that does not own the contract.
func (h *Handle) Unprivileged(ctx context.Context) (ledger.Signer, error) {
	actors, err := h.Actors(ctx)
	if err != nil {
		return ledger.Signer{}, err
	}
	for _, a := range actors {
		if a.Role == RoleUnprivileged {
			return a.Signer, nil
		}
	}
	return ledger.Signer{}, fmt.Errorf("runtime has no unprivileged signer")
}

// Invoke executes a state-changing call as actor. A revert is reported in
// the result, not as an error; err is non-nil only when the runtime failed.
func (h *Handle) Invoke(ctx context.Context, method string, args []any, actor ledger.Signer) (OperationResult, error) {
	receipt, err := h.runtime.SendTransaction(ctx, h.address, method, args, actor)
	if rev, ok := ledger.AsRevert(err); ok {
		return OperationResult{Reverted: true, Reason: rev.Reason, GasUsed: rev.GasUsed}, nil
	}
	if err != nil {
		return OperationResult{}, fmt.Errorf("invoke %s as %s: %w", method, actor, err)
	}
	if receipt == nil {
		return OperationResult{}, fmt.Errorf("invoke %s as %s: runtime returned no receipt", method, actor)
	}
	return OperationResult{
		GasUsed: receipt.GasUsed,
		Value:   receipt.Return,
		Receipt: receipt,
	}, nil
}

// Read executes a view call. A revert is returned as a wrapped
// *ledger.RevertError.
func (h *Handle) Read(ctx context.Context, method string, args []any) ([]any, error) {
	vals, err := h.runtime.CallView(ctx, h.address, method, args)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", method, err)
	}
	return vals, nil
}

// ReadOne executes a view call that returns exactly one value.
func (h *Handle) ReadOne(ctx context.Context, method string, args []any) (any, error) {
	vals, err := h.Read(ctx, method, args)
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("read %s: expected 1 return value, got %d", method, len(vals))
	}
	return vals[0], nil
}
