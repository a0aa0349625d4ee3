package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MintToken assigns the contract's next identifier to owner.
//
// The identifier read, the token insert and the counter bump happen in one
// transaction, so identifiers are unique and strictly increasing per contract.
// Supply limits are contract logic and are not checked here.
func (s *Store) MintToken(ctx context.Context, addr common.Address, owner common.Address, seq int64) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mint token: begin: %w", err)
	}
	defer tx.Rollback()

	c, err := getContract(ctx, tx, addr)
	if err != nil {
		return 0, fmt.Errorf("mint token: %w", err)
	}

	tokenID := c.NextTokenID
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tokens (contract, token_id, owner, seq)
		VALUES (?, ?, ?, ?)
	`, addr.Hex(), int64(tokenID), owner.Hex(), seq); err != nil {
		return 0, fmt.Errorf("mint token %d: %w", tokenID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE contracts SET next_token_id = ? WHERE address = ?
	`, int64(tokenID+1), addr.Hex()); err != nil {
		return 0, fmt.Errorf("mint token: advance counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mint token: commit: %w", err)
	}
	return tokenID, nil
}

// OwnerOf returns the owner of a token.
// Returns ErrNotFound if the token was never minted.
func (s *Store) OwnerOf(ctx context.Context, addr common.Address, tokenID uint64) (common.Address, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, `
		SELECT owner FROM tokens WHERE contract = ? AND token_id = ?
	`, addr.Hex(), int64(tokenID)).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return common.Address{}, fmt.Errorf("token %d: %w", tokenID, ErrNotFound)
	}
	if err != nil {
		return common.Address{}, fmt.Errorf("owner of: %w", err)
	}
	return common.HexToAddress(owner), nil
}

// BalanceOf returns how many tokens of the contract owner holds.
func (s *Store) BalanceOf(ctx context.Context, addr common.Address, owner common.Address) (uint64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tokens WHERE contract = ? AND owner = ?
	`, addr.Hex(), owner.Hex()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("balance of: %w", err)
	}
	return uint64(n), nil
}

// TotalSupply returns the number of tokens minted by the contract.
func (s *Store) TotalSupply(ctx context.Context, addr common.Address) (uint64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tokens WHERE contract = ?
	`, addr.Hex()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("total supply: %w", err)
	}
	return uint64(n), nil
}
