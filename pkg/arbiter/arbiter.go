// Package arbiter merges the pattern and generative classifier outputs
// into a single classification.
package arbiter

import "github.com/zen-systems/intentgate/pkg/intent"

// Arbiter applies the arbitration decision table.
type Arbiter struct {
	// ShortCircuitThreshold is the pattern confidence at or above which
	// the generative stage is skipped entirely.
	ShortCircuitThreshold float64
}

// New creates an arbiter with the given short-circuit threshold.
func New(shortCircuitThreshold float64) *Arbiter {
	return &Arbiter{ShortCircuitThreshold: shortCircuitThreshold}
}

// ShortCircuit reports whether the pattern result alone is confident
// enough to skip the generative stage.
func (a *Arbiter) ShortCircuit(patternResult *intent.Classification) bool {
	return patternResult != nil && patternResult.Confidence >= a.ShortCircuitThreshold
}

// Resolve merges the two stage results. The returned agreement flag is
// true only when both stages independently produced the same kind.
// When both stages are nil, Resolve returns nil; the caller falls
// through to the fallback provider chain.
func (a *Arbiter) Resolve(patternResult, generativeResult *intent.Classification) (*intent.Classification, bool) {
	switch {
	case patternResult == nil && generativeResult == nil:
		return nil, false

	case generativeResult == nil:
		return patternResult, false

	case patternResult == nil:
		return generativeResult, false

	case patternResult.Kind == generativeResult.Kind:
		return merge(patternResult, generativeResult), true

	default:
		// Disagreement: higher confidence wins. Ties resolve to the
		// pattern result, which is deterministic and auditable.
		if generativeResult.Confidence > patternResult.Confidence {
			return generativeResult, false
		}
		return patternResult, false
	}
}

// merge keeps the higher-confidence result but unions the entity maps,
// pattern extractions winning on key collisions.
func merge(patternResult, generativeResult *intent.Classification) *intent.Classification {
	winner := patternResult
	other := generativeResult
	if generativeResult.Confidence > patternResult.Confidence {
		winner, other = generativeResult, patternResult
	}

	merged := *winner
	entities := make(map[string]string, len(winner.Entities)+len(other.Entities))
	for k, v := range generativeResult.Entities {
		entities[k] = v
	}
	for k, v := range patternResult.Entities {
		entities[k] = v
	}
	if len(entities) > 0 {
		merged.Entities = entities
	}
	if merged.Reasoning == "" {
		merged.Reasoning = generativeResult.Reasoning
	}
	return &merged
}
