// Package classify implements the generative extraction stage of the
// routing engine: a schema-describing prompt sent through an ordered
// chain of provider/model pairs, with strict decoding of the reply.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/intent"
)

// ModelRef names one provider/model pair in a fallback order.
type ModelRef struct {
	Adapter string `yaml:"adapter"`
	Model   string `yaml:"model"`
}

func (r ModelRef) String() string {
	return r.Adapter + "/" + r.Model
}

// Generative extracts a classification by asking a model chain for a
// fixed-shape JSON record. The first decodable result wins.
type Generative struct {
	adapters map[string]adapter.Adapter
	models   []ModelRef
	timeout  time.Duration
	debug    bool
}

// NewGenerative creates the generative classifier stage.
func NewGenerative(adapters map[string]adapter.Adapter, models []ModelRef, timeout time.Duration, debug bool) *Generative {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generative{adapters: adapters, models: models, timeout: timeout, debug: debug}
}

// Extract runs the model chain. It returns nil when every attempt
// fails; attempt errors are absorbed, never propagated.
func (g *Generative) Extract(ctx context.Context, text string) *intent.Classification {
	return tryChain(ctx, g.adapters, g.models, text, "generative", g.timeout, g.debug)
}

// FallbackChain is the last-resort provider sequence, consulted only
// when both the pattern and generative stages produced nothing.
type FallbackChain struct {
	adapters      map[string]adapter.Adapter
	providers     []ModelRef
	confidenceCap float64
	timeout       time.Duration
	debug         bool
}

// NewFallbackChain creates the fallback stage. Results are capped at
// confidenceCap regardless of what the provider reports.
func NewFallbackChain(adapters map[string]adapter.Adapter, providers []ModelRef, confidenceCap float64, timeout time.Duration, debug bool) *FallbackChain {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FallbackChain{
		adapters:      adapters,
		providers:     providers,
		confidenceCap: confidenceCap,
		timeout:       timeout,
		debug:         debug,
	}
}

// Extract runs the fallback provider chain.
func (f *FallbackChain) Extract(ctx context.Context, text string) *intent.Classification {
	result := tryChain(ctx, f.adapters, f.providers, text, "fallback", f.timeout, f.debug)
	if result == nil {
		return nil
	}
	if result.Confidence > f.confidenceCap {
		result.Confidence = f.confidenceCap
	}
	return result
}

// tryChain walks the refs in order: one attempt per ref with its own
// deadline, no retries of the same ref. The first response that decodes
// into a valid record is returned immediately.
func tryChain(ctx context.Context, adapters map[string]adapter.Adapter, refs []ModelRef, text, methodPrefix string, timeout time.Duration, debug bool) *intent.Classification {
	prompt := buildExtractionPrompt(text)

	for _, ref := range refs {
		if ctx.Err() != nil {
			return nil
		}

		adapterImpl, ok := adapters[ref.Adapter]
		if !ok || adapterImpl == nil {
			if debug {
				log.Printf("[classify] adapter %q not configured, skipping", ref.Adapter)
			}
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := adapterImpl.Generate(attemptCtx, ref.Model, prompt)
		cancel()
		if err != nil {
			if debug {
				log.Printf("[classify] %s failed: %v", ref, err)
			}
			continue
		}
		if resp == nil || strings.TrimSpace(resp.Content) == "" {
			if debug {
				log.Printf("[classify] %s returned empty response", ref)
			}
			continue
		}

		result, err := decodeExtraction(resp.Content)
		if err != nil {
			if debug {
				log.Printf("[classify] %s response invalid: %v", ref, err)
			}
			continue
		}

		result.Method = methodPrefix + ":" + ref.Model
		return result
	}

	return nil
}

// extractionRecord is the fixed shape the model is instructed to emit.
type extractionRecord struct {
	Kind       string            `json:"kind"`
	Confidence float64           `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
	Entities   map[string]string `json:"entities"`
}

// decodeExtraction strips any markdown fencing and decodes the record.
// Anything that does not match the expected shape is rejected; the
// caller treats rejection as a failed attempt.
func decodeExtraction(content string) (*intent.Classification, error) {
	content = stripFences(content)

	var record extractionRecord
	if err := json.Unmarshal([]byte(content), &record); err != nil {
		return nil, err
	}
	if record.Kind == "" {
		return nil, fmt.Errorf("missing kind")
	}

	kind := intent.Kind(record.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", record.Kind)
	}

	// The self-reported confidence is trusted but clamped: this stage
	// has no independent signal to validate it against.
	return &intent.Classification{
		Kind:       kind,
		Confidence: intent.Clamp(record.Confidence),
		Entities:   record.Entities,
		Reasoning:  record.Reasoning,
	}, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	if idx := strings.LastIndex(content, "```"); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}

func buildExtractionPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("You are an intent classifier for a developer assistant. ")
	sb.WriteString("Classify the query into exactly one kind.\n\n")
	sb.WriteString("Kinds:\n")
	sb.WriteString("- source_control: repositories, pull requests, commits, branches, cloning\n")
	sb.WriteString("- build_system: CI/CD builds, jobs, pipelines, console logs\n")
	sb.WriteString("- ticketing: tickets, issues, sprints, project tracking\n")
	sb.WriteString("- graph_database: dependency and impact analysis over a code graph\n")
	sb.WriteString("- monitoring: application health, resource utilization, alerts, transactions\n")
	sb.WriteString("- code_operations: generating, editing, reviewing, testing code\n")
	sb.WriteString("- workflow: operations spanning multiple of the above services\n")
	sb.WriteString("- chat: general conversation or unclear intent\n\n")
	sb.WriteString("Query:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nReturn ONLY JSON, no other text:\n")
	sb.WriteString(`{"kind":"...","confidence":0.0,"reasoning":"...","entities":{"key":"value"}}`)
	sb.WriteString("\n\nConfidence must be between 0 and 1. If unclear, answer chat with low confidence.")
	return sb.String()
}
