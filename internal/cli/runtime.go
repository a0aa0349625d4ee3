package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/mintcheck/internal/config"
	"github.com/roach88/mintcheck/internal/evmledger"
	"github.com/roach88/mintcheck/internal/ledger"
	"github.com/roach88/mintcheck/internal/simledger"
)

// Runtime is a ledger runtime the CLI owns and must close.
type Runtime interface {
	ledger.Runtime
	io.Closer
}

// RuntimeOpener opens the runtime described by cfg. It also returns a label
// for the report header.
type RuntimeOpener func(ctx context.Context, cfg config.Runtime, logger *slog.Logger) (Runtime, string, error)

// OpenRuntime opens the in-process reference runtime or dials a node.
func OpenRuntime(ctx context.Context, cfg config.Runtime, logger *slog.Logger) (Runtime, string, error) {
	switch cfg.Kind {
	case config.RuntimeSim, "":
		rt, err := simledger.New(simledger.Config{
			Accounts: cfg.Accounts,
			Logger:   logger,
		})
		if err != nil {
			return nil, "", err
		}
		return rt, "sim", nil

	case config.RuntimeRPC:
		artifact, err := evmledger.LoadArtifact(cfg.Artifact)
		if err != nil {
			return nil, "", err
		}
		rt, err := evmledger.Dial(ctx, evmledger.Config{
			URL:            cfg.RPCURL,
			Artifact:       artifact,
			Keys:           cfg.Keys,
			ReceiptTimeout: cfg.ReceiptTimeout,
			PollInterval:   cfg.PollInterval,
			Logger:         logger,
		})
		if err != nil {
			return nil, "", err
		}
		return rt, "rpc " + cfg.RPCURL, nil
	}

	return nil, "", fmt.Errorf("unknown runtime kind %q", cfg.Kind)
}
