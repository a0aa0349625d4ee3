// Package harness runs the conformance checks against issuance contracts.
//
// # Checks
//
// Every check deploys its own contract instance through contract.Deploy and
// never touches another check's instance, so checks can run in any order
// and a failing check cannot poison the next one:
//
//   - zero_address_rejection: minting to 0x0 reverts and assigns nothing
//   - identifier_monotonicity: N mints yield identifiers 0..N-1 in call
//     order, owned by their recipients
//   - mint_cost_ceiling: one mint costs no more than the configured gas
//   - pause_access_control: setPaused from a non-owner reverts and the
//     paused flag is unchanged
//   - supply_ceiling: minting past maxSupply reverts
//   - zero_supply_deployment: the constructor rejects maxSupply = 0
//
// # Outcomes
//
// A check returns nil to pass and a *CheckFailure when the invariant does
// not hold. Any other error (deployment failed, runtime unreachable, an
// unexpected return type) is a harness error: it ends only that check, is
// logged at error level, and is reported with kind "error" so it cannot be
// mistaken for a regression.
//
// # Usage
//
//	suite, err := harness.New(rt, harness.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	collector := report.NewCollector(report.Options{Target: cfg.Target})
//	if err := suite.Run(ctx, collector); err != nil {
//	    return err
//	}
//	report.WriteText(os.Stdout, collector.Report())
package harness
