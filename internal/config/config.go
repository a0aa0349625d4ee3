package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mintcheck/internal/harness"
	"github.com/roach88/mintcheck/internal/ledger"
)

//go:embed schema.cue
var schemaSource string

// Runtime kinds.
const (
	RuntimeSim = "sim"
	RuntimeRPC = "rpc"
)

// Config is a run descriptor.
type Config struct {
	Target      ledger.DeployArgs    `yaml:"target"`
	CostCeiling uint64               `yaml:"cost_ceiling"`
	MintCount   int                  `yaml:"mint_count"`
	Order       string               `yaml:"order"`
	Seed        int64                `yaml:"seed"`
	Checks      []string             `yaml:"checks"`
	Expect      harness.Expectations `yaml:"expect"`
	Runtime     Runtime              `yaml:"runtime"`
}

// Runtime selects and configures the ledger runtime.
type Runtime struct {
	Kind string `yaml:"kind"` // "sim" or "rpc"

	// Accounts is the number of reference-runtime signers; zero means the
	// runtime default.
	Accounts int `yaml:"accounts"`

	RPCURL         string        `yaml:"rpc_url"`
	Artifact       string        `yaml:"artifact"`
	Keys           []string      `yaml:"keys"`
	ReceiptTimeout time.Duration `yaml:"receipt_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
}

// Default returns the configuration of the reference scenario on the
// in-process runtime.
func Default() Config {
	suite := harness.DefaultConfig()
	return Config{
		Target:      suite.Target,
		CostCeiling: suite.CostCeiling,
		MintCount:   suite.MintCount,
		Order:       string(suite.Order),
		Seed:        1,
		Checks:      []string{"*"},
		Expect:      suite.Expect,
		Runtime: Runtime{
			Kind:           RuntimeSim,
			ReceiptTimeout: 30 * time.Second,
			PollInterval:   500 * time.Millisecond,
		},
	}
}

// Load reads a descriptor file. Fields not present keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a descriptor. Unknown fields are an error.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// Suite returns the harness configuration described by c.
func (c Config) Suite() harness.Config {
	return harness.Config{
		Target:      c.Target,
		CostCeiling: c.CostCeiling,
		MintCount:   c.MintCount,
		Expect:      c.Expect,
		Checks:      c.Checks,
		Order:       harness.Order(c.Order),
		Seed:        c.Seed,
	}
}

// ValidationError is one schema violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks c against the schema. Every violation is reported; the
// returned error joins one *ValidationError per violation.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("invalid embedded schema: %w", err)
	}

	v := schema.Unify(ctx.Encode(c.view()))
	err := v.Validate(cue.Concrete(true), cue.All())
	if err == nil {
		return nil
	}

	var errs []error
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		errs = append(errs, &ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	return errors.Join(errs...)
}

// view is c as the schema sees it: schema field names, durations in
// milliseconds.
func (c Config) view() map[string]any {
	checks := c.Checks
	if checks == nil {
		checks = []string{}
	}
	keys := c.Runtime.Keys
	if keys == nil {
		keys = []string{}
	}
	return map[string]any{
		"target": map[string]any{
			"name":       c.Target.Name,
			"symbol":     c.Target.Symbol,
			"max_supply": c.Target.MaxSupply,
			"base_uri":   c.Target.BaseURI,
		},
		"cost_ceiling": c.CostCeiling,
		"mint_count":   c.MintCount,
		"order":        c.Order,
		"seed":         c.Seed,
		"checks":       checks,
		"expect": map[string]any{
			"zero_address_reason": c.Expect.ZeroAddressReason,
			"not_owner_reason":    c.Expect.NotOwnerReason,
			"max_supply_reason":   c.Expect.MaxSupplyReason,
		},
		"runtime": map[string]any{
			"kind":               c.Runtime.Kind,
			"accounts":           c.Runtime.Accounts,
			"rpc_url":            c.Runtime.RPCURL,
			"artifact":           c.Runtime.Artifact,
			"keys":               keys,
			"receipt_timeout_ms": c.Runtime.ReceiptTimeout.Milliseconds(),
			"poll_interval_ms":   c.Runtime.PollInterval.Milliseconds(),
		},
	}
}
