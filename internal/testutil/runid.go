package testutil

// DefaultRunID is returned by a FixedRunIDGenerator created with an empty id.
const DefaultRunID = "00000000-0000-7000-8000-000000000001"

// FixedRunIDGenerator generates the same run ID every time.
//
// This enables golden snapshot comparison of reports, which embed the run ID.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator that always returns id.
// If id is empty, Generate() returns DefaultRunID.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
