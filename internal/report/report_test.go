package report

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mintcheck/internal/ledger"
	"github.com/roach88/mintcheck/internal/testutil"
)

var testTarget = ledger.DeployArgs{
	Name:      "TestNFT",
	Symbol:    "TNFT",
	MaxSupply: 10,
	BaseURI:   "ipfs://CID/",
}

func newTestCollector(target ledger.DeployArgs, runtime string) *Collector {
	return NewCollector(Options{
		Target:  target,
		Runtime: runtime,
		Clock:   testutil.NewDeterministicClock(),
		IDs:     testutil.NewFixedRunIDGenerator(""),
	})
}

// mixedCollector holds one outcome of every kind.
func mixedCollector() *Collector {
	c := newTestCollector(testTarget, "sim")
	c.Add(Outcome{
		Name:   "zero_address_rejection",
		Kind:   KindPass,
		Detail: "reverted: ERC721: mint to the zero address",
	})
	c.Add(Outcome{
		Name:   "identifier_monotonicity",
		Kind:   KindPass,
		Detail: "2 mints assigned identifiers 0..1 in call order",
	})
	c.Add(Outcome{
		Name:   "mint_cost_ceiling",
		Kind:   KindFailure,
		Detail: "mint used 250,321 gas, ceiling is 200,000",
		Metrics: []Metric{
			{Name: "mint_gas", Value: 250321, Unit: "gas"},
			{Name: "cost_ceiling", Value: 200000, Unit: "gas"},
		},
	})
	c.Add(Outcome{
		Name:   "pause_access_control",
		Kind:   KindError,
		Detail: "read paused: connection refused",
	})
	return c
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestCollector_Counts(t *testing.T) {
	r := mixedCollector().Report()

	assert.Equal(t, testutil.DefaultRunID, r.RunID)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 2, r.Passed)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 1, r.Errored)
	assert.False(t, r.OK())
	assert.Equal(t, testutil.Epoch, r.StartedAt)
	assert.Equal(t, testutil.Epoch.Add(time.Second), r.FinishedAt)
}

func TestCollector_KeepsArrivalOrder(t *testing.T) {
	r := mixedCollector().Report()

	names := make([]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		names[i] = o.Name
	}
	assert.Equal(t, []string{
		"zero_address_rejection",
		"identifier_monotonicity",
		"mint_cost_ceiling",
		"pause_access_control",
	}, names)
}

func TestCollector_Passed(t *testing.T) {
	c := newTestCollector(testTarget, "")
	assert.True(t, c.Passed(), "an empty run has nothing failing")

	c.Add(Outcome{Name: "a", Kind: KindPass})
	assert.True(t, c.Passed())

	c.Add(Outcome{Name: "b", Kind: KindError, Detail: "boom"})
	assert.False(t, c.Passed(), "an error must not count as a pass")
}

func TestCollector_FailureAndErrorAreDistinct(t *testing.T) {
	c := newTestCollector(testTarget, "")
	c.Add(Outcome{Name: "a", Kind: KindFailure})
	c.Add(Outcome{Name: "b", Kind: KindFailure})
	c.Add(Outcome{Name: "c", Kind: KindError})

	r := c.Report()
	assert.Equal(t, 2, r.Failed)
	assert.Equal(t, 1, r.Errored)
	assert.Equal(t, 0, r.Passed)
}

func TestCollector_ReportIsSnapshot(t *testing.T) {
	c := newTestCollector(testTarget, "")
	c.Add(Outcome{Name: "a", Kind: KindPass})

	r := c.Report()
	c.Add(Outcome{Name: "b", Kind: KindFailure})

	assert.Len(t, r.Outcomes, 1)
	assert.True(t, r.OK())
	assert.Len(t, c.Report().Outcomes, 2)
}

func TestCollector_ConcurrentAdd(t *testing.T) {
	c := newTestCollector(testTarget, "")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(Outcome{Name: "x", Kind: KindPass})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, c.Report().Passed)
}

func TestCollector_Defaults(t *testing.T) {
	c := NewCollector(Options{Target: testTarget})

	_, err := uuid.Parse(c.RunID())
	require.NoError(t, err)
	assert.False(t, c.Report().StartedAt.IsZero())
}

func TestUUIDv7Generator(t *testing.T) {
	id, err := uuid.Parse(UUIDv7Generator{}.Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestWriteText_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, mixedCollector().Report()))
	golden(t).Assert(t, "mixed_text", buf.Bytes())
}

func TestWriteText_Empty(t *testing.T) {
	c := newTestCollector(ledger.DeployArgs{Name: "Bare", Symbol: "BR", MaxSupply: 1000}, "")

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, c.Report()))
	golden(t).Assert(t, "empty_text", buf.Bytes())
}

func TestWriteJSON_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, mixedCollector().Report()))
	golden(t).Assert(t, "mixed_json", buf.Bytes())
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, mixedCollector().Report()))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, KindFailure, decoded.Outcomes[2].Kind)
	assert.Equal(t, uint64(250321), decoded.Outcomes[2].Metrics[0].Value)
	assert.Equal(t, testTarget, decoded.Target)
}
