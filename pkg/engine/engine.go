// Package engine is the façade over the hybrid classification
// pipeline: pattern stage, generative stage, arbitration, fallback
// providers, and second-level dispatch.
package engine

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/arbiter"
	"github.com/zen-systems/intentgate/pkg/classify"
	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/dispatch"
	"github.com/zen-systems/intentgate/pkg/intent"
	"github.com/zen-systems/intentgate/pkg/pattern"
)

// Engine classifies queries into routing decisions. It is stateless
// across calls; the only shared state is the immutable compiled rule
// tables, so concurrent Classify calls are safe.
type Engine struct {
	pattern    *pattern.Classifier
	generative *classify.Generative
	fallback   *classify.FallbackChain
	arbiter    *arbiter.Arbiter
	dispatcher *dispatch.Dispatcher
	cfg        *config.EngineConfig
	debug      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.debug = debug
	}
}

// WithRules overrides the default pattern rule tables.
func WithRules(tables []pattern.KindRules) Option {
	return func(e *Engine) {
		e.pattern = pattern.NewClassifier(tables)
	}
}

// New creates an engine over the given adapters and configuration.
// A nil config uses the defaults.
func New(adapters map[string]adapter.Adapter, cfg *config.EngineConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultEngineConfig()
	}

	e := &Engine{
		pattern:    pattern.NewClassifier(nil),
		arbiter:    arbiter.New(cfg.ShortCircuitThreshold),
		dispatcher: dispatch.NewDispatcher(),
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(e)
	}

	timeout := time.Duration(cfg.AttemptTimeoutMs) * time.Millisecond
	e.generative = classify.NewGenerative(adapters, cfg.GenerativeModels, timeout, e.debug)
	e.fallback = classify.NewFallbackChain(adapters, cfg.FallbackProviders, cfg.FallbackConfidenceCap, timeout, e.debug)

	return e
}

// Rules exposes the pattern rule tables for inspection.
func (e *Engine) Rules() []pattern.KindRules {
	return e.pattern.Tables()
}

// Classify turns a free-form query into a routing decision. It never
// returns an error: every stage failure degrades toward the chat
// default. The caller may cancel via ctx, which aborts any in-flight
// provider calls.
func (e *Engine) Classify(ctx context.Context, text string) *intent.RoutingDecision {
	trace := []string{"pattern"}

	patternResult := e.pattern.Match(text)

	var generativeResult *intent.Classification
	if e.arbiter.ShortCircuit(patternResult) {
		// A high-confidence pattern match never pays generative
		// latency; the generative call is not issued at all.
		trace = append(trace, "short_circuit")
		if e.debug {
			log.Printf("[engine] short-circuit on pattern %s (%.2f)", patternResult.Kind, patternResult.Confidence)
		}
	} else {
		trace = append(trace, "generative")
		generativeResult = e.generative.Extract(ctx, text)
	}

	final, agreement := e.arbiter.Resolve(patternResult, generativeResult)

	if final == nil {
		trace = append(trace, "fallback")
		final = e.fallback.Extract(ctx, text)
	}
	if final == nil {
		trace = append(trace, "default")
		final = &intent.Classification{
			Kind:       intent.KindChat,
			Confidence: e.cfg.DefaultConfidence,
			Method:     intent.MethodDefault,
		}
	}

	if err := final.Validate(); err != nil {
		// Unreachable with validated rule tables and clamped
		// generative confidence; a hit here is a defect.
		log.Printf("[engine] invariant violation: %v", err)
		final = &intent.Classification{
			Kind:       intent.KindChat,
			Confidence: e.cfg.DefaultConfidence,
			Method:     intent.MethodDefault,
		}
	}

	trace = append(trace, "dispatch")
	dispatched := e.dispatcher.Dispatch(final.Kind, text)

	for k, v := range final.Entities {
		if _, ok := dispatched.Parameters[k]; !ok {
			dispatched.Parameters[k] = v
		}
	}

	return &intent.RoutingDecision{
		ID:                  uuid.NewString(),
		TopLevel:            final.Kind,
		TopLevelConfidence:  final.Confidence,
		Method:              final.Method,
		Agreement:           agreement,
		SubAction:           dispatched.SubAction,
		SubActionConfidence: dispatched.Confidence,
		Parameters:          dispatched.Parameters,
		Systems:             dispatched.Systems,
		Trace:               trace,
	}
}
