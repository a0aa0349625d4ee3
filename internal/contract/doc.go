// Package contract is the uniform call surface over one deployed issuance
// contract.
//
// A Handle is obtained from Deploy and wraps the contract address together
// with the ledger.Runtime that deployed it. Invoke submits state-changing
// calls as a given actor and turns a revert into an OperationResult rather
// than an error, so callers can assert on the reason. Read answers view
// calls. The handle never rolls anything back: sequential calls observe the
// cumulative state of the contract.
//
// Issuance is the typed capability over the same handle, used by the
// conformance checks instead of calling methods by name.
package contract
