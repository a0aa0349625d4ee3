package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/mintcheck/internal/contract"
	"github.com/roach88/mintcheck/internal/ledger"
)

// CheckFunc is the body of a check. It returns nil on pass, a *CheckFailure
// when the invariant does not hold, and any other error when the check
// could not be carried out.
type CheckFunc func(ctx context.Context, env *Env) error

// Check is one conformance invariant.
type Check struct {
	Name        string
	Description string
	Run         CheckFunc
}

// Check names.
const (
	CheckZeroAddressRejection = "zero_address_rejection"
	CheckIdentifierMonotonic  = "identifier_monotonicity"
	CheckMintCostCeiling      = "mint_cost_ceiling"
	CheckPauseAccessControl   = "pause_access_control"
	CheckSupplyCeiling        = "supply_ceiling"
	CheckZeroSupplyDeployment = "zero_supply_deployment"
)

// Checks returns every check in declared order.
func Checks() []Check {
	return []Check{
		{
			Name:        CheckZeroAddressRejection,
			Description: "minting to the zero address reverts and assigns no identifier",
			Run:         zeroAddressRejection,
		},
		{
			Name:        CheckIdentifierMonotonic,
			Description: "successive mints assign identifiers 0..N-1 in call order",
			Run:         identifierMonotonicity,
		},
		{
			Name:        CheckMintCostCeiling,
			Description: "a single mint stays within the gas ceiling",
			Run:         mintCostCeiling,
		},
		{
			Name:        CheckPauseAccessControl,
			Description: "setPaused from a non-owner reverts and leaves the paused flag alone",
			Run:         pauseAccessControl,
		},
		{
			Name:        CheckSupplyCeiling,
			Description: "minting beyond maxSupply reverts",
			Run:         supplyCeiling,
		},
		{
			Name:        CheckZeroSupplyDeployment,
			Description: "the constructor rejects maxSupply = 0",
			Run:         zeroSupplyDeployment,
		},
	}
}

func zeroAddressRejection(ctx context.Context, env *Env) error {
	h, err := env.Deploy(ctx)
	if err != nil {
		return err
	}
	nft := h.Issuance()
	want := env.Config().Expect.ZeroAddressReason

	res, err := nft.Mint(ctx, common.Address{}, h.Owner())
	if err != nil {
		return err
	}
	if !res.Reverted {
		return env.Fail(fmt.Sprintf("revert containing %q", want), "mint succeeded with identifier %d", res.TokenID)
	}
	if !reasonContains(res.Reason, want) {
		return env.Fail(fmt.Sprintf("revert containing %q", want), "revert %q", res.Reason)
	}

	supply, err := nft.TotalSupply(ctx)
	if err != nil {
		return err
	}
	if supply != 0 {
		return env.Fail("total supply 0 after the rejected mint", "%d", supply)
	}

	env.Notef("reverted: %s", res.Reason)
	return nil
}

func identifierMonotonicity(ctx context.Context, env *Env) error {
	n := env.Config().MintCount
	h, err := env.Deploy(ctx)
	if err != nil {
		return err
	}
	nft := h.Issuance()

	to, err := recipients(ctx, h, n)
	if err != nil {
		return err
	}

	for i, addr := range to {
		res, err := nft.Mint(ctx, addr, h.Owner())
		if err != nil {
			return err
		}
		if res.Reverted {
			return env.Fail(fmt.Sprintf("mint %d to succeed", i+1), "revert %q", res.Reason)
		}
		if res.TokenID != uint64(i) {
			return env.Fail(fmt.Sprintf("identifier %d from mint %d", i, i+1), "identifier %d", res.TokenID)
		}
	}

	for i, addr := range to {
		owner, err := nft.OwnerOf(ctx, uint64(i))
		if rev, ok := ledger.AsRevert(err); ok {
			return env.Fail(fmt.Sprintf("ownerOf(%d) = %s", i, addr.Hex()), "revert %q", rev.Reason)
		}
		if err != nil {
			return err
		}
		if owner != addr {
			return env.Fail(fmt.Sprintf("ownerOf(%d) = %s", i, addr.Hex()), "%s", owner.Hex())
		}
	}

	supply, err := nft.TotalSupply(ctx)
	if err != nil {
		return err
	}
	if supply != uint64(n) {
		return env.Fail(fmt.Sprintf("total supply %d", n), "%d", supply)
	}

	env.Record("mints", uint64(n), "")
	env.Notef("%d mints assigned identifiers 0..%d in call order", n, n-1)
	return nil
}

func mintCostCeiling(ctx context.Context, env *Env) error {
	ceiling := env.Config().CostCeiling
	h, err := env.Deploy(ctx)
	if err != nil {
		return err
	}

	to, err := recipients(ctx, h, 1)
	if err != nil {
		return err
	}
	res, err := h.Issuance().Mint(ctx, to[0], h.Owner())
	if err != nil {
		return err
	}
	env.Record("cost_ceiling", ceiling, "gas")
	if res.Reverted {
		return env.Fail("a successful mint to measure", "revert %q", res.Reason)
	}
	env.Record("mint_gas", res.GasUsed, "gas")

	if res.GasUsed >= ceiling {
		return env.Fail(fmt.Sprintf("below %s gas", grouped(ceiling)), "%s gas", grouped(res.GasUsed))
	}
	env.Notef("mint used %s gas, ceiling is %s", grouped(res.GasUsed), grouped(ceiling))
	return nil
}

func pauseAccessControl(ctx context.Context, env *Env) error {
	h, err := env.Deploy(ctx)
	if err != nil {
		return err
	}
	nft := h.Issuance()
	want := env.Config().Expect.NotOwnerReason

	other, err := h.Unprivileged(ctx)
	if err != nil {
		return err
	}
	before, err := nft.Paused(ctx)
	if err != nil {
		return err
	}

	res, err := nft.SetPaused(ctx, true, other)
	if err != nil {
		return err
	}
	if !res.Reverted {
		return env.Fail(fmt.Sprintf("revert containing %q", want), "setPaused(true) from %s succeeded", other)
	}
	if !reasonContains(res.Reason, want) {
		return env.Fail(fmt.Sprintf("revert containing %q", want), "revert %q", res.Reason)
	}

	after, err := nft.Paused(ctx)
	if err != nil {
		return err
	}
	if after != before {
		return env.Fail(fmt.Sprintf("paused() to remain %t", before), "%t", after)
	}

	env.Notef("setPaused(true) from %s reverted: %s", actorName(other), res.Reason)
	return nil
}

// supplyCeiling mints the whole target supply, then one more.
func supplyCeiling(ctx context.Context, env *Env) error {
	h, err := env.Deploy(ctx)
	if err != nil {
		return err
	}
	nft := h.Issuance()
	limit := h.Args().MaxSupply
	want := env.Config().Expect.MaxSupplyReason

	to, err := recipients(ctx, h, 1)
	if err != nil {
		return err
	}

	for i := uint64(1); i <= limit; i++ {
		res, err := nft.Mint(ctx, to[0], h.Owner())
		if err != nil {
			return err
		}
		if res.Reverted {
			return env.Fail(fmt.Sprintf("mint %d of %d to succeed", i, limit), "revert %q", res.Reason)
		}
	}

	res, err := nft.Mint(ctx, to[0], h.Owner())
	if err != nil {
		return err
	}
	if !res.Reverted {
		return env.Fail(fmt.Sprintf("mint %d to revert with %q", limit+1, want), "mint succeeded with identifier %d", res.TokenID)
	}
	if !reasonContains(res.Reason, want) {
		return env.Fail(fmt.Sprintf("revert containing %q", want), "revert %q", res.Reason)
	}

	supply, err := nft.TotalSupply(ctx)
	if err != nil {
		return err
	}
	if supply != limit {
		return env.Fail(fmt.Sprintf("total supply %d", limit), "%d", supply)
	}

	env.Record("max_supply", limit, "tokens")
	env.Notef("mint %d reverted: %s", limit+1, res.Reason)
	return nil
}

func zeroSupplyDeployment(ctx context.Context, env *Env) error {
	args := env.Config().Target
	args.MaxSupply = 0

	h, err := env.DeployArgs(ctx, args)
	var depErr *contract.DeploymentError
	if errors.As(err, &depErr) {
		if depErr.Reason == "" {
			env.Notef("constructor rejected maxSupply = 0")
		} else {
			env.Notef("constructor rejected maxSupply = 0: %s", depErr.Reason)
		}
		return nil
	}
	if err != nil {
		return err
	}
	return env.Fail("deployment with maxSupply = 0 to be rejected", "contract deployed at %s", h.Address().Hex())
}

// recipients returns n distinct non-zero addresses: the contract's
// unprivileged signers first, then derived addresses.
func recipients(ctx context.Context, h *contract.Handle, n int) ([]common.Address, error) {
	actors, err := h.Actors(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]common.Address, 0, n)
	for _, a := range actors {
		if len(out) == n {
			break
		}
		if a.Role == contract.RoleUnprivileged {
			out = append(out, a.Address)
		}
	}
	for i := len(out); len(out) < n; i++ {
		seed := crypto.Keccak256([]byte(fmt.Sprintf("mintcheck/recipient/%d", i)))
		out = append(out, common.BytesToAddress(seed))
	}
	return out, nil
}

// reasonContains matches a revert reason against an expected fragment.
// Both sides are NFC-normalized first.
func reasonContains(reason, want string) bool {
	return strings.Contains(norm.NFC.String(reason), norm.NFC.String(want))
}

func grouped(n uint64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func actorName(s ledger.Signer) string {
	if s.Label != "" {
		return s.Label
	}
	return s.Address.Hex()
}
