package simledger

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/roach88/mintcheck/internal/ledger"
)

// devKeys are the well-known development accounts of local EVM test nodes,
// so reports from the reference runtime show familiar addresses.
var devKeys = []string{
	"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	"59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
	"5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
	"7c852118294e51e653712a81e05800f419141751be58f605c371e15141b007a6",
	"47e179ec197488593b187f80a00eb0da91f1b9d0b13f8733639f19c30a34926a",
}

// accountKey returns the private key of account i. Accounts past the
// development set are derived from a fixed seed.
func accountKey(i int) (*ecdsa.PrivateKey, error) {
	if i < len(devKeys) {
		return crypto.HexToECDSA(devKeys[i])
	}
	seed := crypto.Keccak256([]byte(fmt.Sprintf("mintcheck/simledger/account/%d", i)))
	return crypto.ToECDSA(seed)
}

func accountLabel(i int) string {
	if i == 0 {
		return "owner"
	}
	return fmt.Sprintf("signer%d", i)
}

func newSigners(n int) ([]ledger.Signer, error) {
	signers := make([]ledger.Signer, 0, n)
	for i := 0; i < n; i++ {
		key, err := accountKey(i)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		signers = append(signers, ledger.Signer{
			Address: crypto.PubkeyToAddress(key.PublicKey),
			Label:   accountLabel(i),
		})
	}
	return signers, nil
}
