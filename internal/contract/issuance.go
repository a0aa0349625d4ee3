package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/roach88/mintcheck/internal/ledger"
)

// Issuance is the capability of an ERC-721 style issuance contract.
type Issuance interface {
	Mint(ctx context.Context, to common.Address, actor ledger.Signer) (MintResult, error)
	OwnerOf(ctx context.Context, id uint64) (common.Address, error)
	SetPaused(ctx context.Context, paused bool, actor ledger.Signer) (OperationResult, error)
	Paused(ctx context.Context) (bool, error)
	TotalSupply(ctx context.Context) (uint64, error)
	MaxSupply(ctx context.Context) (uint64, error)
	BalanceOf(ctx context.Context, owner common.Address) (uint64, error)
	TokenURI(ctx context.Context, id uint64) (string, error)
	Owner(ctx context.Context) (common.Address, error)
}

// MintResult is an OperationResult plus the identifier a successful mint
// assigned.
type MintResult struct {
	OperationResult
	TokenID uint64
}

// Issuance returns the typed capability backed by h.
func (h *Handle) Issuance() Issuance {
	return issuance{h: h}
}

type issuance struct {
	h *Handle
}

var _ Issuance = issuance{}

// Mint calls safeMint(to). The identifier comes from the Transfer event in
// the receipt, or from the return value when there is no event.
func (c issuance) Mint(ctx context.Context, to common.Address, actor ledger.Signer) (MintResult, error) {
	res, err := c.h.Invoke(ctx, ledger.MethodSafeMint, []any{to}, actor)
	if err != nil || res.Reverted {
		return MintResult{OperationResult: res}, err
	}

	id, err := mintedID(res)
	if err != nil {
		return MintResult{}, fmt.Errorf("safeMint to %s: %w", to.Hex(), err)
	}
	return MintResult{OperationResult: res, TokenID: id}, nil
}

func mintedID(res OperationResult) (uint64, error) {
	if ev, ok := res.Receipt.FindEvent(ledger.EventTransfer); ok {
		if v, ok := ev.Fields["tokenId"]; ok {
			return toUint64(v)
		}
	}
	if len(res.Value) == 1 {
		return toUint64(res.Value[0])
	}
	return 0, fmt.Errorf("receipt has no Transfer event or return value carrying the token id")
}

func (c issuance) OwnerOf(ctx context.Context, id uint64) (common.Address, error) {
	v, err := c.h.ReadOne(ctx, ledger.MethodOwnerOf, []any{new(big.Int).SetUint64(id)})
	if err != nil {
		return common.Address{}, err
	}
	return toAddress(ledger.MethodOwnerOf, v)
}

func (c issuance) SetPaused(ctx context.Context, paused bool, actor ledger.Signer) (OperationResult, error) {
	return c.h.Invoke(ctx, ledger.MethodSetPaused, []any{paused}, actor)
}

func (c issuance) Paused(ctx context.Context) (bool, error) {
	v, err := c.h.ReadOne(ctx, ledger.MethodPaused, nil)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected result type %T", ledger.MethodPaused, v)
	}
	return b, nil
}

func (c issuance) TotalSupply(ctx context.Context) (uint64, error) {
	return c.readUint(ctx, ledger.MethodTotalSupply, nil)
}

func (c issuance) MaxSupply(ctx context.Context) (uint64, error) {
	return c.readUint(ctx, ledger.MethodMaxSupply, nil)
}

func (c issuance) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	return c.readUint(ctx, ledger.MethodBalanceOf, []any{owner})
}

func (c issuance) TokenURI(ctx context.Context, id uint64) (string, error) {
	v, err := c.h.ReadOne(ctx, ledger.MethodTokenURI, []any{new(big.Int).SetUint64(id)})
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected result type %T", ledger.MethodTokenURI, v)
	}
	return s, nil
}

func (c issuance) Owner(ctx context.Context) (common.Address, error) {
	v, err := c.h.ReadOne(ctx, ledger.MethodOwner, nil)
	if err != nil {
		return common.Address{}, err
	}
	return toAddress(ledger.MethodOwner, v)
}

func (c issuance) readUint(ctx context.Context, method string, args []any) (uint64, error) {
	v, err := c.h.ReadOne(ctx, method, args)
	if err != nil {
		return 0, err
	}
	n, err := toUint64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", method, err)
	}
	return n, nil
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil || n.Sign() < 0 || !n.IsUint64() {
			return 0, fmt.Errorf("value %v does not fit in uint64", n)
		}
		return n.Uint64(), nil
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	}
	return 0, fmt.Errorf("unexpected numeric type %T", v)
}

func toAddress(method string, v any) (common.Address, error) {
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected result type %T", method, v)
	}
	return addr, nil
}
