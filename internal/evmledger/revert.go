package evmledger

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/roach88/mintcheck/internal/ledger"
)

const revertPrefix = "execution reverted"

// panicSelector is the 4-byte selector of Panic(uint256).
var panicSelector = []byte{0x4e, 0x48, 0x7b, 0x71}

// asRevert converts a JSON-RPC error into a *ledger.RevertError when the node
// reports an EVM revert. Any other error is returned unchanged with ok=false.
func asRevert(err error, contractABI abi.ABI) (*ledger.RevertError, bool) {
	if err == nil {
		return nil, false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if data, ok := errorData(dataErr.ErrorData()); ok {
			return &ledger.RevertError{Reason: decodeRevert(data, contractABI), Data: data}, true
		}
	}

	msg := err.Error()
	if idx := strings.Index(msg, revertPrefix); idx >= 0 {
		reason := strings.TrimPrefix(msg[idx+len(revertPrefix):], ":")
		return &ledger.RevertError{Reason: strings.TrimSpace(reason)}, true
	}
	return nil, false
}

func errorData(v any) ([]byte, bool) {
	switch data := v.(type) {
	case string:
		b, err := hexutil.Decode(data)
		if err != nil {
			return nil, false
		}
		return b, true
	case []byte:
		return data, true
	}
	return nil, false
}

// decodeRevert renders revert data as a human-readable reason.
func decodeRevert(data []byte, contractABI abi.ABI) string {
	if len(data) == 0 {
		return ""
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason
	}
	if len(data) < 4 {
		return hexutil.Encode(data)
	}

	selector := data[:4]
	if bytes.Equal(selector, panicSelector) {
		args := abi.Arguments{{Type: mustType("uint256")}}
		if vals, err := args.Unpack(data[4:]); err == nil && len(vals) == 1 {
			return fmt.Sprintf("panic code %v", vals[0])
		}
	}

	for name, abiErr := range contractABI.Errors {
		if !bytes.Equal(abiErr.ID[:4], selector) {
			continue
		}
		vals, err := abiErr.Inputs.Unpack(data[4:])
		if err != nil {
			return name
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = fmt.Sprint(v)
		}
		return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
	}

	return hexutil.Encode(data)
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}
