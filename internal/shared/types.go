package shared

// Outcome tags the result of an aggregation so "nothing there" and
// "could not find out" stay distinguishable after errors are masked.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeEmpty  Outcome = "empty"
	OutcomeFailed Outcome = "failed"
)

// OutcomeOf derives the tag for a list result and the error that produced it.
func OutcomeOf(n int, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeFailed
	case n == 0:
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}
