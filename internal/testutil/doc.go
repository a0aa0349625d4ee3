// Package testutil holds deterministic stand-ins for the clock, the run-ID
// generator and the ledger runtime, so reports can be compared byte for byte
// against golden files and harness errors can be provoked on demand.
package testutil
