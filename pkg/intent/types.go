package intent

import "fmt"

// Kind identifies the target service domain for a query.
type Kind string

const (
	KindSourceControl Kind = "source_control"
	KindBuildSystem   Kind = "build_system"
	KindTicketing     Kind = "ticketing"
	KindGraph         Kind = "graph_database"
	KindMonitoring    Kind = "monitoring"
	KindCodeOps       Kind = "code_operations"
	KindWorkflow      Kind = "workflow"
	KindChat          Kind = "chat"
)

// Kinds lists every valid kind in classification priority order.
var Kinds = []Kind{
	KindWorkflow,
	KindTicketing,
	KindBuildSystem,
	KindSourceControl,
	KindGraph,
	KindMonitoring,
	KindCodeOps,
	KindChat,
}

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// MethodDefault marks a classification produced by the built-in chat fallback.
const MethodDefault = "default"

// Classification is the output of a single classifier stage.
// A nil *Classification means the stage produced no result.
type Classification struct {
	Kind       Kind              `json:"kind"`
	Confidence float64           `json:"confidence"`
	Method     string            `json:"method"`
	Entities   map[string]string `json:"entities,omitempty"`
	Reasoning  string            `json:"reasoning,omitempty"`
}

// Validate checks the classification invariants. A violation is a
// programming error, not a runtime condition.
func (c *Classification) Validate() error {
	if c == nil {
		return nil
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", c.Kind)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %.3f out of range [0,1]", c.Confidence)
	}
	return nil
}

// RoutingDecision is the final output of the engine for one query.
type RoutingDecision struct {
	ID                  string            `json:"id"`
	TopLevel            Kind              `json:"top_level"`
	TopLevelConfidence  float64           `json:"top_level_confidence"`
	Method              string            `json:"method"`
	Agreement           bool              `json:"agreement"`
	SubAction           string            `json:"sub_action"`
	SubActionConfidence float64           `json:"sub_action_confidence"`
	Parameters          map[string]string `json:"parameters"`
	Systems             []Kind            `json:"systems,omitempty"`
	Trace               []string          `json:"trace,omitempty"`
}

// Clamp bounds a confidence value to [0,1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
