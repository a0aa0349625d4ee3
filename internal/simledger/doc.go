// Package simledger is a deterministic in-process ledger runtime.
//
// It emulates an ERC-721 style issuance contract (Ownable, pausable, capped
// supply, base URI) closely enough to run the conformance checks without a
// node: the same method names, the same revert reasons as OpenZeppelin 4.x,
// Transfer events in receipts, and a gas figure computed from a fixed
// schedule (intrinsic cost from the ABI-encoded calldata plus storage and log
// costs for what the call touched).
//
// Contract state lives in an internal/store database, ":memory:" by default,
// and is gone when the runtime is closed.
//
// Flaws lets tests break individual contract rules so they can prove the
// conformance checks notice.
package simledger
