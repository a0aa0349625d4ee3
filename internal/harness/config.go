package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/mintcheck/internal/ledger"
)

// Defaults for Config.
const (
	DefaultCostCeiling = 200_000
	DefaultMintCount   = 2

	DefaultZeroAddressReason = "mint to the zero address"
	DefaultNotOwnerReason    = "caller is not the owner"
	DefaultMaxSupplyReason   = "max supply"
)

// Order is the order checks run in.
type Order string

const (
	OrderDeclared Order = "declared"
	OrderShuffled Order = "shuffled" // deterministic permutation of Seed
)

// Expectations are the revert-reason fragments the checks look for.
// Matching is by substring after Unicode normalization.
type Expectations struct {
	ZeroAddressReason string `json:"zero_address_reason" yaml:"zero_address_reason"`
	NotOwnerReason    string `json:"not_owner_reason" yaml:"not_owner_reason"`
	MaxSupplyReason   string `json:"max_supply_reason" yaml:"max_supply_reason"`
}

// Config parameterizes a suite run.
type Config struct {
	// Target is deployed afresh by every check.
	Target ledger.DeployArgs

	// CostCeiling is the gas a single mint may use.
	CostCeiling uint64

	// MintCount is the number of mints identifier_monotonicity performs.
	MintCount int

	Expect Expectations

	// Checks selects checks by name; entries are path.Match patterns.
	// Empty means all.
	Checks []string

	Order Order
	Seed  int64
}

// DefaultConfig returns the configuration of the reference scenario.
func DefaultConfig() Config {
	return Config{
		Target: ledger.DeployArgs{
			Name:      "TestNFT",
			Symbol:    "TNFT",
			MaxSupply: 10,
			BaseURI:   "ipfs://CID/",
		},
		CostCeiling: DefaultCostCeiling,
		MintCount:   DefaultMintCount,
		Expect: Expectations{
			ZeroAddressReason: DefaultZeroAddressReason,
			NotOwnerReason:    DefaultNotOwnerReason,
			MaxSupplyReason:   DefaultMaxSupplyReason,
		},
		Order: OrderDeclared,
	}
}

// Validate reports configuration errors that would make a check meaningless.
func (c Config) Validate() error {
	var errs []error
	if c.Target.Name == "" {
		errs = append(errs, errors.New("target name is required"))
	}
	if c.Target.Symbol == "" {
		errs = append(errs, errors.New("target symbol is required"))
	}
	if c.Target.MaxSupply == 0 {
		errs = append(errs, errors.New("target max supply must be positive"))
	}
	if c.CostCeiling == 0 {
		errs = append(errs, errors.New("cost ceiling must be positive"))
	}
	if c.MintCount < 1 {
		errs = append(errs, errors.New("mint count must be at least 1"))
	} else if uint64(c.MintCount) > c.Target.MaxSupply {
		errs = append(errs, fmt.Errorf("mint count %d exceeds target max supply %d", c.MintCount, c.Target.MaxSupply))
	}
	switch c.Order {
	case OrderDeclared, OrderShuffled, "":
	default:
		errs = append(errs, fmt.Errorf("unknown order %q", c.Order))
	}
	return errors.Join(errs...)
}
