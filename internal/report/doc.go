// Package report aggregates check outcomes into a run report.
//
// A Collector receives outcomes one at a time as checks finish and keeps
// them in arrival order. Report snapshots the run with pass, failure and
// error counts kept apart, so infrastructure trouble is never counted as a
// regression. WriteText renders the terminal summary and WriteJSON the form
// consumed by CI.
package report
