package evmledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/roach88/mintcheck/internal/ledger"
)

// Defaults applied when Config fields are zero.
const (
	DefaultReceiptTimeout = 30 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
)

// Backend is the subset of *ethclient.Client the runtime uses.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

// Config configures a JSON-RPC runtime.
type Config struct {
	// URL of the node's JSON-RPC endpoint (http, ws or ipc).
	URL string

	// Artifact is the compiled issuance contract.
	Artifact *Artifact

	// Keys are hex-encoded private keys; index 0 deploys and owns contracts.
	Keys []string

	// ReceiptTimeout bounds the wait for each receipt. Zero means
	// DefaultReceiptTimeout.
	ReceiptTimeout time.Duration

	// PollInterval is the receipt polling period. Zero means DefaultPollInterval.
	PollInterval time.Duration

	Logger *slog.Logger
}

type account struct {
	signer ledger.Signer
	key    *ecdsa.PrivateKey
}

// Runtime is a ledger.Runtime backed by an EVM node.
type Runtime struct {
	backend  Backend
	artifact *Artifact
	accounts []account
	timeout  time.Duration
	poll     time.Duration
	logger   *slog.Logger
	closer   func()

	chainMu sync.Mutex
	chainID *big.Int
}

var _ ledger.Runtime = (*Runtime)(nil)

// Dial connects to the node at cfg.URL.
func Dial(ctx context.Context, cfg Config) (*Runtime, error) {
	if cfg.URL == "" {
		return nil, errors.New("rpc url is required")
	}
	client, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URL, err)
	}
	rt, err := New(client, cfg)
	if err != nil {
		client.Close()
		return nil, err
	}
	rt.closer = client.Close
	return rt, nil
}

// New wraps an existing backend.
func New(backend Backend, cfg Config) (*Runtime, error) {
	if cfg.Artifact == nil {
		return nil, errors.New("contract artifact is required")
	}

	accounts := make([]account, 0, len(cfg.Keys))
	for i, hexKey := range cfg.Keys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		label := "owner"
		if i > 0 {
			label = fmt.Sprintf("signer%d", i)
		}
		accounts = append(accounts, account{
			signer: ledger.Signer{Address: crypto.PubkeyToAddress(key.PublicKey), Label: label},
			key:    key,
		})
	}

	timeout := cfg.ReceiptTimeout
	if timeout <= 0 {
		timeout = DefaultReceiptTimeout
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Runtime{
		backend:  backend,
		artifact: cfg.Artifact,
		accounts: accounts,
		timeout:  timeout,
		poll:     poll,
		logger:   logger,
	}, nil
}

// Close disconnects from the node if Dial opened the connection.
func (r *Runtime) Close() error {
	if r.closer != nil {
		r.closer()
	}
	return nil
}

// Signers returns the configured accounts in key order.
func (r *Runtime) Signers(ctx context.Context) ([]ledger.Signer, error) {
	if len(r.accounts) == 0 {
		return nil, ledger.ErrNoSigners
	}
	out := make([]ledger.Signer, len(r.accounts))
	for i, a := range r.accounts {
		out[i] = a.signer
	}
	return out, nil
}

// DeployContract sends the artifact's creation code with encoded constructor arguments.
func (r *Runtime) DeployContract(ctx context.Context, args ledger.DeployArgs, deployer ledger.Signer) (common.Address, *ledger.Receipt, error) {
	ctorArgs, err := r.artifact.ABI.Pack("", args.Name, args.Symbol, new(big.Int).SetUint64(args.MaxSupply), args.BaseURI)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("deploy: encode constructor: %w", err)
	}
	data := append(append([]byte{}, r.artifact.Bytecode...), ctorArgs...)

	receipt, err := r.transact(ctx, nil, data, deployer, "constructor")
	if err != nil {
		return common.Address{}, nil, err
	}
	if receipt.ContractAddress == (common.Address{}) {
		return common.Address{}, nil, fmt.Errorf("no contract address in receipt for tx %s", receipt.TxHash.Hex())
	}
	return receipt.ContractAddress, receipt, nil
}

// SendTransaction encodes method with the artifact ABI and waits for the receipt.
func (r *Runtime) SendTransaction(ctx context.Context, contract common.Address, method string, args []any, signer ledger.Signer) (*ledger.Receipt, error) {
	if _, ok := r.artifact.ABI.Methods[method]; !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownMethod, method)
	}
	data, err := r.artifact.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: encode arguments: %w", method, err)
	}
	return r.transact(ctx, &contract, data, signer, method)
}

// CallView performs eth_call against the latest block.
func (r *Runtime) CallView(ctx context.Context, contract common.Address, method string, args []any) ([]any, error) {
	if _, ok := r.artifact.ABI.Methods[method]; !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownMethod, method)
	}
	data, err := r.artifact.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: encode arguments: %w", method, err)
	}

	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		if rev, ok := asRevert(err, r.artifact.ABI); ok {
			return nil, rev
		}
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("call %s: empty result (no code at %s?)", method, contract.Hex())
	}

	vals, err := r.artifact.ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("call %s: decode result: %w", method, err)
	}
	return vals, nil
}

// transact signs and sends one transaction. to == nil means contract creation.
func (r *Runtime) transact(ctx context.Context, to *common.Address, data []byte, from ledger.Signer, label string) (*ledger.Receipt, error) {
	acct, ok := r.account(from.Address)
	if !ok {
		return nil, fmt.Errorf("%s: no key for signer %s", label, from.Address.Hex())
	}

	msg := ethereum.CallMsg{From: from.Address, To: to, Data: data}

	// A revert shows up here, before anything is mined.
	gas, err := r.backend.EstimateGas(ctx, msg)
	if err != nil {
		if rev, ok := asRevert(err, r.artifact.ABI); ok {
			r.logger.Debug("transaction reverted in estimation", "method", label, "from", from.Address.Hex(), "reason", rev.Reason)
			return nil, rev
		}
		return nil, fmt.Errorf("%s: estimate gas: %w", label, err)
	}

	chainID, err := r.chain(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := r.backend.PendingNonceAt(ctx, from.Address)
	if err != nil {
		return nil, fmt.Errorf("%s: get nonce: %w", label, err)
	}
	tip, err := r.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: get gas tip: %w", label, err)
	}
	gasPrice, err := r.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: get gas price: %w", label, err)
	}

	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: new(big.Int).Add(gasPrice, tip),
		Gas:       gas + gas/5,
		To:        to,
		Data:      data,
	})
	signed, err := ethtypes.SignTx(tx, ethtypes.NewLondonSigner(chainID), acct.key)
	if err != nil {
		return nil, fmt.Errorf("%s: sign: %w", label, err)
	}
	if err := r.backend.SendTransaction(ctx, signed); err != nil {
		if rev, ok := asRevert(err, r.artifact.ABI); ok {
			return nil, rev
		}
		return nil, fmt.Errorf("%s: send: %w", label, err)
	}

	receipt, err := r.waitMined(ctx, signed.Hash())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	if receipt.Status == ethtypes.ReceiptStatusFailed {
		rev := r.replayRevert(ctx, msg, receipt)
		r.logger.Debug("transaction reverted", "method", label, "tx", signed.Hash().Hex(), "reason", rev.Reason, "gas_used", rev.GasUsed)
		return nil, rev
	}

	r.logger.Debug("transaction mined",
		"method", label,
		"tx", signed.Hash().Hex(),
		"from", from.Address.Hex(),
		"gas_used", receipt.GasUsed,
		"block", receipt.BlockNumber,
	)

	return &ledger.Receipt{
		TxHash:          receipt.TxHash,
		ContractAddress: receipt.ContractAddress,
		GasUsed:         receipt.GasUsed,
		Events:          r.decodeLogs(receipt.Logs),
	}, nil
}

// waitMined polls for the receipt until it appears, ctx ends, or the
// configured receipt timeout passes.
func (r *Runtime) waitMined(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		receipt, err := r.backend.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("get receipt %s: %w", txHash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timeout waiting for transaction %s: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// replayRevert re-executes a failed transaction at its block to recover the reason.
func (r *Runtime) replayRevert(ctx context.Context, msg ethereum.CallMsg, receipt *ethtypes.Receipt) *ledger.RevertError {
	rev := &ledger.RevertError{GasUsed: receipt.GasUsed}
	_, err := r.backend.CallContract(ctx, msg, receipt.BlockNumber)
	if decoded, ok := asRevert(err, r.artifact.ABI); ok {
		rev.Reason = decoded.Reason
		rev.Data = decoded.Data
	}
	return rev
}

// decodeLogs decodes the logs the artifact ABI knows about; others are skipped.
func (r *Runtime) decodeLogs(logs []*ethtypes.Log) []ledger.Event {
	var events []ledger.Event
	for _, lg := range logs {
		if lg == nil || len(lg.Topics) == 0 {
			continue
		}
		ev, err := r.artifact.ABI.EventByID(lg.Topics[0])
		if err != nil {
			continue
		}

		fields := make(map[string]any)
		if len(lg.Data) > 0 {
			if err := r.artifact.ABI.UnpackIntoMap(fields, ev.Name, lg.Data); err != nil {
				r.logger.Warn("failed to decode event data", "event", ev.Name, "error", err)
				continue
			}
		}
		var indexed abi.Arguments
		for _, arg := range ev.Inputs {
			if arg.Indexed {
				indexed = append(indexed, arg)
			}
		}
		if err := abi.ParseTopicsIntoMap(fields, indexed, lg.Topics[1:]); err != nil {
			r.logger.Warn("failed to decode event topics", "event", ev.Name, "error", err)
			continue
		}
		events = append(events, ledger.Event{Name: ev.Name, Fields: fields})
	}
	return events
}

func (r *Runtime) account(addr common.Address) (account, bool) {
	for _, a := range r.accounts {
		if a.signer.Address == addr {
			return a, true
		}
	}
	return account{}, false
}

func (r *Runtime) chain(ctx context.Context) (*big.Int, error) {
	r.chainMu.Lock()
	defer r.chainMu.Unlock()

	if r.chainID != nil {
		return r.chainID, nil
	}
	id, err := r.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	r.chainID = id
	return id, nil
}
