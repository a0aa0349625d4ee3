// Package config loads the run descriptor of a conformance run.
//
// A descriptor is a YAML file naming the contract to deploy, the check
// parameters and the runtime to deploy it on:
//
//	target:
//	  name: TestNFT
//	  symbol: TNFT
//	  max_supply: 10
//	  base_uri: "ipfs://CID/"
//	cost_ceiling: 200000
//	mint_count: 2
//	order: declared
//	runtime:
//	  kind: sim
//
// Fields left out keep their Default values. Unknown fields are rejected so
// typos surface immediately. Validate checks the effective configuration
// (file plus command-line overrides) against an embedded CUE schema.
package config
