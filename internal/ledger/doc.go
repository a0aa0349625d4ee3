// Package ledger defines the boundary between the conformance engine and the
// environment that deploys and executes issuance contracts.
//
// The engine never talks to a chain directly. Everything goes through a
// Runtime, which deploys a contract from constructor arguments, submits
// state-changing transactions as a given signer, answers view calls, and
// lists the available signers in a stable order (index 0 is the deployer and
// therefore the owner of every contract it deploys).
//
// A transaction that aborts inside the contract is reported as a
// *RevertError carrying the human-readable reason. Any other error means the
// runtime itself failed (unreachable node, malformed receipt, unknown method)
// and must not be mistaken for contract behavior.
//
// Two implementations ship with mintcheck:
//   - simledger: a deterministic in-process reference runtime
//   - evmledger: a JSON-RPC adapter over go-ethereum's ethclient
package ledger
