package harness

import "fmt"

// CheckFailure reports that an invariant did not hold.
type CheckFailure struct {
	Check    string
	Expected string
	Actual   string
}

func (e *CheckFailure) Error() string {
	return fmt.Sprintf("check %s failed: %s", e.Check, e.Detail())
}

// Detail is the human-readable failure without the check name.
func (e *CheckFailure) Detail() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}
