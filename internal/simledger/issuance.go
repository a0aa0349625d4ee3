package simledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/roach88/mintcheck/internal/ledger"
	"github.com/roach88/mintcheck/internal/store"
)

// safeMint follows the modifier order of the emulated contract:
// onlyOwner, whenNotPaused, supply cap, then ERC721 _safeMint.
func (r *Runtime) safeMint(ctx context.Context, c store.Contract, to common.Address, from ledger.Signer, m *meter) (*ledger.Receipt, error) {
	m.read(1)
	if from.Address != c.Owner {
		return nil, r.revert(ledger.MethodSafeMint, from, ReasonNotOwner, m)
	}

	m.read(1)
	if c.Paused {
		return nil, r.revert(ledger.MethodSafeMint, from, ReasonPaused, m)
	}

	m.read(2)
	supply, err := r.store.TotalSupply(ctx, c.Address)
	if err != nil {
		return nil, err
	}
	if supply >= c.MaxSupply && !r.flaws.IgnoreMaxSupply {
		return nil, r.revert(ledger.MethodSafeMint, from, ReasonMaxSupply, m)
	}

	if to == (common.Address{}) && !r.flaws.AllowZeroAddressMint {
		return nil, r.revert(ledger.MethodSafeMint, from, ReasonZeroAddressMint, m)
	}

	m.read(1)
	balance, err := r.store.BalanceOf(ctx, c.Address, to)
	if err != nil {
		return nil, err
	}

	tokenID, err := r.store.MintToken(ctx, c.Address, to, r.block)
	if err != nil {
		return nil, err
	}

	m.write(true)         // _owners[tokenId]
	m.write(balance == 0) // _balances[to]
	m.write(c.NextTokenID == 0)
	m.log(4) // Transfer(from, to, tokenId), all indexed
	m.add(r.flaws.ExtraMintGas)

	return &ledger.Receipt{
		Events: []ledger.Event{{
			Name: ledger.EventTransfer,
			Fields: map[string]any{
				"from":    common.Address{},
				"to":      to,
				"tokenId": new(big.Int).SetUint64(tokenID),
			},
		}},
	}, nil
}

func (r *Runtime) setPaused(ctx context.Context, c store.Contract, paused bool, from ledger.Signer, m *meter) (*ledger.Receipt, error) {
	m.read(1)
	if from.Address != c.Owner && !r.flaws.UnguardedPause {
		return nil, r.revert(ledger.MethodSetPaused, from, ReasonNotOwner, m)
	}

	m.write(!c.Paused && paused)
	if err := r.store.SetPaused(ctx, c.Address, paused); err != nil {
		return nil, err
	}
	return &ledger.Receipt{}, nil
}

// view returns values typed the way go-ethereum's ABI decoder would:
// uint256 as *big.Int, address as common.Address.
func (r *Runtime) view(ctx context.Context, c store.Contract, method string, args []any) ([]any, error) {
	switch method {
	case ledger.MethodPaused:
		return []any{c.Paused}, nil

	case ledger.MethodOwner:
		return []any{c.Owner}, nil

	case ledger.MethodName:
		return []any{c.Name}, nil

	case ledger.MethodSymbol:
		return []any{c.Symbol}, nil

	case ledger.MethodMaxSupply:
		return []any{new(big.Int).SetUint64(c.MaxSupply)}, nil

	case ledger.MethodTotalSupply:
		supply, err := r.store.TotalSupply(ctx, c.Address)
		if err != nil {
			return nil, err
		}
		return []any{new(big.Int).SetUint64(supply)}, nil

	case ledger.MethodBalanceOf:
		owner := args[0].(common.Address)
		if owner == (common.Address{}) {
			return nil, &ledger.RevertError{Reason: ReasonZeroOwner}
		}
		balance, err := r.store.BalanceOf(ctx, c.Address, owner)
		if err != nil {
			return nil, err
		}
		return []any{new(big.Int).SetUint64(balance)}, nil

	case ledger.MethodOwnerOf:
		owner, err := r.tokenOwner(ctx, c, args[0].(*big.Int))
		if err != nil {
			return nil, err
		}
		return []any{owner}, nil

	case ledger.MethodTokenURI:
		id := args[0].(*big.Int)
		if _, err := r.tokenOwner(ctx, c, id); err != nil {
			return nil, err
		}
		if c.BaseURI == "" {
			return []any{""}, nil
		}
		return []any{c.BaseURI + strconv.FormatUint(id.Uint64(), 10)}, nil
	}

	return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownMethod, method)
}

func (r *Runtime) tokenOwner(ctx context.Context, c store.Contract, id *big.Int) (common.Address, error) {
	if id.Sign() < 0 || !id.IsUint64() {
		return common.Address{}, &ledger.RevertError{Reason: ReasonInvalidTokenID}
	}
	owner, err := r.store.OwnerOf(ctx, c.Address, id.Uint64())
	if errors.Is(err, store.ErrNotFound) {
		return common.Address{}, &ledger.RevertError{Reason: ReasonInvalidTokenID}
	}
	if err != nil {
		return common.Address{}, err
	}
	return owner, nil
}
