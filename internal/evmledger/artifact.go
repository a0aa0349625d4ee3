package evmledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Bytecode     []byte
}

// artifactJSON covers both Hardhat ("bytecode": "0x...") and Foundry
// ("bytecode": {"object": "0x..."}) output.
type artifactJSON struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

// LoadArtifact reads a compiled contract artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return ParseArtifact(data)
}

// ParseArtifact decodes a compiled contract artifact.
func ParseArtifact(data []byte) (*Artifact, error) {
	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}
	if len(raw.ABI) == 0 {
		return nil, fmt.Errorf("artifact has no abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("invalid artifact abi: %w", err)
	}

	code, err := parseBytecode(raw.Bytecode)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		ContractName: raw.ContractName,
		ABI:          parsed,
		Bytecode:     code,
	}, nil
}

func parseBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("artifact has no bytecode")
	}

	var hexCode string
	if err := json.Unmarshal(raw, &hexCode); err != nil {
		var foundry struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &foundry); err != nil {
			return nil, fmt.Errorf("unrecognized bytecode format: %w", err)
		}
		hexCode = foundry.Object
	}

	if !strings.HasPrefix(hexCode, "0x") {
		hexCode = "0x" + hexCode
	}
	if strings.Contains(hexCode, "__") {
		return nil, fmt.Errorf("bytecode has unlinked library placeholders")
	}
	code, err := hexutil.Decode(hexCode)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("artifact bytecode is empty (abstract contract or interface?)")
	}
	return code, nil
}
