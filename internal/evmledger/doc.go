// Package evmledger runs the conformance engine against a real EVM node.
//
// It implements ledger.Runtime over go-ethereum's ethclient: contracts are
// deployed from a compiled Hardhat or Foundry artifact, transactions are
// signed locally with the configured keys and sent as EIP-1559 transactions,
// and receipts are polled until they are mined.
//
// Revert reasons are recovered the way node tooling does it: a call that
// fails gas estimation or eth_call carries the revert payload in the JSON-RPC
// error data, which is decoded as Error(string), Panic(uint256) or one of the
// artifact's custom errors. A transaction that is mined with status 0 is
// replayed with eth_call at its block to obtain the reason.
package evmledger
