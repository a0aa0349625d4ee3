// Package store provides SQLite-backed state for the reference ledger runtime.
//
// Each Store holds the deployed issuance contracts of one runtime and the
// token records they have minted. Opening ":memory:" gives a private database
// that disappears with Close, which is how the reference runtime keeps every
// conformance run isolated.
//
// # Invariants
//
//   - (contract, token_id) is the primary key of tokens, so an identifier can
//     never be assigned twice within one contract
//   - next_token_id only moves forward, inside the same transaction that
//     inserts the token
//
// # Database Configuration
//
//   - WAL mode for file-backed databases
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - a single open connection (SQLite has one writer, and ":memory:" is
//     per-connection)
package store
