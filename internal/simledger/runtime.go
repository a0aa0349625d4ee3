package simledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/roach88/mintcheck/internal/ledger"
	"github.com/roach88/mintcheck/internal/store"
)

// DefaultAccounts is the number of signers when Config.Accounts is zero.
const DefaultAccounts = 5

// Revert reasons of the emulated collection.
const (
	ReasonNotOwner        = "Ownable: caller is not the owner"
	ReasonPaused          = "Pausable: paused"
	ReasonMaxSupply       = "NftCollection: max supply reached"
	ReasonZeroAddressMint = "ERC721: mint to the zero address"
	ReasonInvalidTokenID  = "ERC721: invalid token ID"
	ReasonZeroOwner       = "ERC721: address zero is not a valid owner"
	ReasonZeroSupply      = "NftCollection: max supply must be positive"
	ReasonSupplyTooLarge  = "NftCollection: max supply too large"
)

// Config configures a reference runtime.
type Config struct {
	// Path of the state database. Empty means ":memory:".
	Path string

	// Accounts is the number of signers. Zero means DefaultAccounts.
	Accounts int

	// Gas overrides the gas schedule. The zero value means DefaultGasSchedule.
	Gas GasSchedule

	Flaws Flaws

	Logger *slog.Logger
}

// Flaws break individual contract rules.
type Flaws struct {
	AllowZeroAddressMint bool   // mint to 0x0 succeeds
	UnguardedPause       bool   // anyone may call setPaused
	IgnoreMaxSupply      bool   // mint past the cap
	AcceptZeroSupply     bool   // constructor accepts maxSupply = 0
	TokenIDOffset        uint64 // first identifier handed out
	ExtraMintGas         uint64 // added to every successful mint
}

// Runtime is an in-process ledger.Runtime.
// It is safe for concurrent use; calls are serialized.
type Runtime struct {
	mu      sync.Mutex
	store   *store.Store
	gas     GasSchedule
	flaws   Flaws
	signers []ledger.Signer
	nonces  map[common.Address]uint64
	block   int64
	logger  *slog.Logger
}

var _ ledger.Runtime = (*Runtime)(nil)

// New creates a runtime with a fresh state database.
func New(cfg Config) (*Runtime, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	accounts := cfg.Accounts
	if accounts <= 0 {
		accounts = DefaultAccounts
	}
	gas := cfg.Gas
	if gas == (GasSchedule{}) {
		gas = DefaultGasSchedule()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	signers, err := newSigners(accounts)
	if err != nil {
		return nil, fmt.Errorf("failed to create signers: %w", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	return &Runtime{
		store:   st,
		gas:     gas,
		flaws:   cfg.Flaws,
		signers: signers,
		nonces:  make(map[common.Address]uint64),
		logger:  logger,
	}, nil
}

// Close releases the state database. Deployed contracts are discarded.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, err := r.store.CountContracts(context.Background()); err == nil {
		r.logger.Debug("runtime closed", "contracts", n, "blocks", r.block)
	}
	return r.store.Close()
}

// Signers returns the runtime's accounts; index 0 is labelled "owner".
func (r *Runtime) Signers(ctx context.Context) ([]ledger.Signer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]ledger.Signer, len(r.signers))
	copy(out, r.signers)
	return out, nil
}

// DeployContract runs the collection constructor.
func (r *Runtime) DeployContract(ctx context.Context, args ledger.DeployArgs, deployer ledger.Signer) (common.Address, *ledger.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return common.Address{}, nil, err
	}
	if !r.knownSigner(deployer.Address) {
		return common.Address{}, nil, fmt.Errorf("deploy: unknown signer %s", deployer.Address.Hex())
	}

	calldata, err := parsedABI.Pack("", args.Name, args.Symbol, new(big.Int).SetUint64(args.MaxSupply), args.BaseURI)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("deploy: encode constructor: %w", err)
	}

	m := newMeter(r.gas)
	m.intrinsic(calldata)
	nonce := r.nextNonce(deployer.Address)
	txHash := transactionHash(deployer.Address, nonce, calldata)
	r.block++

	if args.MaxSupply == 0 && !r.flaws.AcceptZeroSupply {
		return common.Address{}, nil, r.revert("constructor", deployer, ReasonZeroSupply, m)
	}
	if args.MaxSupply > math.MaxInt64 {
		return common.Address{}, nil, r.revert("constructor", deployer, ReasonSupplyTooLarge, m)
	}

	m.create()
	m.write(args.Name != "")
	m.write(args.Symbol != "")
	m.write(args.MaxSupply != 0)
	m.write(args.BaseURI != "")
	m.write(true) // owner

	addr := crypto.CreateAddress(deployer.Address, nonce)
	err = r.store.InsertContract(ctx, store.Contract{
		Address:     addr,
		Name:        args.Name,
		Symbol:      args.Symbol,
		MaxSupply:   args.MaxSupply,
		BaseURI:     args.BaseURI,
		Owner:       deployer.Address,
		NextTokenID: r.flaws.TokenIDOffset,
		Seq:         r.block,
	})
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("deploy: %w", err)
	}

	r.logger.Debug("contract deployed",
		"address", addr.Hex(),
		"deployer", deployer.Address.Hex(),
		"gas_used", m.used(),
		"block", r.block,
	)

	return addr, &ledger.Receipt{
		TxHash:          txHash,
		ContractAddress: addr,
		GasUsed:         m.used(),
	}, nil
}

// SendTransaction executes safeMint or setPaused.
func (r *Runtime) SendTransaction(ctx context.Context, contract common.Address, method string, args []any, signer ledger.Signer) (*ledger.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abiMethod, ok := parsedABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownMethod, method)
	}
	if abiMethod.IsConstant() {
		return nil, fmt.Errorf("%s is a view method; use CallView", method)
	}
	if !r.knownSigner(signer.Address) {
		return nil, fmt.Errorf("%s: unknown signer %s", method, signer.Address.Hex())
	}

	calldata, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: encode arguments: %w", method, err)
	}

	c, err := r.store.GetContract(ctx, contract)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w %s", ledger.ErrUnknownContract, contract.Hex())
	}
	if err != nil {
		return nil, err
	}

	m := newMeter(r.gas)
	m.intrinsic(calldata)
	nonce := r.nextNonce(signer.Address)
	r.block++

	var receipt *ledger.Receipt
	switch method {
	case ledger.MethodSafeMint:
		receipt, err = r.safeMint(ctx, c, args[0].(common.Address), signer, m)
	case ledger.MethodSetPaused:
		receipt, err = r.setPaused(ctx, c, args[0].(bool), signer, m)
	default:
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownMethod, method)
	}
	if err != nil {
		return nil, err
	}

	receipt.TxHash = transactionHash(signer.Address, nonce, calldata)
	receipt.GasUsed = m.used()

	r.logger.Debug("transaction mined",
		"method", method,
		"contract", contract.Hex(),
		"from", signer.Address.Hex(),
		"gas_used", receipt.GasUsed,
		"block", r.block,
	)
	return receipt, nil
}

// CallView answers read-only calls against current state.
func (r *Runtime) CallView(ctx context.Context, contract common.Address, method string, args []any) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abiMethod, ok := parsedABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownMethod, method)
	}
	if !abiMethod.IsConstant() {
		return nil, fmt.Errorf("%s changes state; use SendTransaction", method)
	}
	if _, err := parsedABI.Pack(method, args...); err != nil {
		return nil, fmt.Errorf("%s: encode arguments: %w", method, err)
	}

	c, err := r.store.GetContract(ctx, contract)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w %s", ledger.ErrUnknownContract, contract.Hex())
	}
	if err != nil {
		return nil, err
	}

	return r.view(ctx, c, method, args)
}

func (r *Runtime) knownSigner(addr common.Address) bool {
	for _, s := range r.signers {
		if s.Address == addr {
			return true
		}
	}
	return false
}

// nextNonce consumes a nonce. Reverted transactions consume one too.
func (r *Runtime) nextNonce(addr common.Address) uint64 {
	n := r.nonces[addr]
	r.nonces[addr] = n + 1
	return n
}

func (r *Runtime) revert(method string, from ledger.Signer, reason string, m *meter) error {
	r.logger.Debug("transaction reverted",
		"method", method,
		"from", from.Address.Hex(),
		"reason", reason,
		"gas_used", m.used(),
		"block", r.block,
	)
	return &ledger.RevertError{Reason: reason, GasUsed: m.used()}
}

func transactionHash(from common.Address, nonce uint64, calldata []byte) common.Hash {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return crypto.Keccak256Hash(from.Bytes(), n[:], calldata)
}
