package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
)

// Contract is the persisted state of one deployed issuance contract.
type Contract struct {
	Address     common.Address
	Name        string
	Symbol      string
	MaxSupply   uint64
	BaseURI     string
	Owner       common.Address
	Paused      bool
	NextTokenID uint64
	Seq         int64 // block of deployment
}

// InsertContract records a newly deployed contract.
// Returns an error if a contract already exists at the same address.
func (s *Store) InsertContract(ctx context.Context, c Contract) error {
	if c.MaxSupply > math.MaxInt64 {
		return fmt.Errorf("insert contract: max supply %d exceeds storage range", c.MaxSupply)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts
		(address, name, symbol, max_supply, base_uri, owner, paused, next_token_id, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.Address.Hex(),
		c.Name,
		c.Symbol,
		int64(c.MaxSupply),
		c.BaseURI,
		c.Owner.Hex(),
		c.Paused,
		int64(c.NextTokenID),
		c.Seq,
	)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

// GetContract loads a contract by address.
// Returns ErrNotFound if no contract is deployed there.
func (s *Store) GetContract(ctx context.Context, addr common.Address) (Contract, error) {
	return getContract(ctx, s.db, addr)
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getContract(ctx context.Context, q queryer, addr common.Address) (Contract, error) {
	var (
		c           Contract
		address     string
		owner       string
		maxSupply   int64
		nextTokenID int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT address, name, symbol, max_supply, base_uri, owner, paused, next_token_id, seq
		FROM contracts
		WHERE address = ?
	`, addr.Hex()).Scan(
		&address,
		&c.Name,
		&c.Symbol,
		&maxSupply,
		&c.BaseURI,
		&owner,
		&c.Paused,
		&nextTokenID,
		&c.Seq,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Contract{}, fmt.Errorf("contract %s: %w", addr.Hex(), ErrNotFound)
	}
	if err != nil {
		return Contract{}, fmt.Errorf("get contract: %w", err)
	}

	c.Address = common.HexToAddress(address)
	c.Owner = common.HexToAddress(owner)
	c.MaxSupply = uint64(maxSupply)
	c.NextTokenID = uint64(nextTokenID)
	return c, nil
}

// SetPaused updates the pause flag of a contract.
func (s *Store) SetPaused(ctx context.Context, addr common.Address, paused bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE contracts SET paused = ? WHERE address = ?
	`, paused, addr.Hex())
	if err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("contract %s: %w", addr.Hex(), ErrNotFound)
	}
	return nil
}

// CountContracts returns the number of deployed contracts.
func (s *Store) CountContracts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contracts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count contracts: %w", err)
	}
	return n, nil
}
