package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/classify"
	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/intent"
)

type fixedAdapter struct {
	name    string
	content string
	err     error
	calls   int
}

func (a *fixedAdapter) Generate(_ context.Context, model string, prompt string) (*adapter.Response, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &adapter.Response{Content: a.content, Adapter: a.name, Model: model}, nil
}

func (a *fixedAdapter) Name() string { return a.name }

func (a *fixedAdapter) Models() []string { return []string{"fixed-1"} }

func testConfig() *config.EngineConfig {
	cfg := config.DefaultEngineConfig()
	cfg.GenerativeModels = []classify.ModelRef{{Adapter: "gen", Model: "gen-1"}}
	cfg.FallbackProviders = []classify.ModelRef{{Adapter: "fb", Model: "fb-1"}}
	return cfg
}

func hasStage(trace []string, stage string) bool {
	for _, s := range trace {
		if s == stage {
			return true
		}
	}
	return false
}

func TestClassifyDefaultsToChat(t *testing.T) {
	e := New(map[string]adapter.Adapter{}, testConfig())

	decision := e.Classify(context.Background(), "hello there")
	if decision.TopLevel != intent.KindChat {
		t.Fatalf("expected chat, got %s", decision.TopLevel)
	}
	if decision.Method != intent.MethodDefault {
		t.Fatalf("expected default method, got %s", decision.Method)
	}
	if decision.TopLevelConfidence != 0.5 {
		t.Fatalf("expected default confidence 0.5, got %.2f", decision.TopLevelConfidence)
	}
	if decision.SubAction != "general" {
		t.Fatalf("expected general sub-action, got %s", decision.SubAction)
	}
	if decision.Agreement {
		t.Fatal("expected no agreement")
	}
	for _, stage := range []string{"pattern", "generative", "fallback", "default", "dispatch"} {
		if !hasStage(decision.Trace, stage) {
			t.Fatalf("expected stage %s in trace %v", stage, decision.Trace)
		}
	}
}

func TestClassifyNeverFails(t *testing.T) {
	failing := &fixedAdapter{name: "gen", err: errors.New("network is down")}
	alsoFailing := &fixedAdapter{name: "fb", err: errors.New("gateway 502")}
	e := New(map[string]adapter.Adapter{"gen": failing, "fb": alsoFailing}, testConfig())

	queries := []string{
		"",
		"hello there",
		strings.Repeat("x", 1<<20),
		"show me PROJ-123",
		"\x00\xff weird bytes",
	}

	for _, query := range queries {
		decision := e.Classify(context.Background(), query)
		if decision == nil {
			t.Fatalf("%.20q: expected a decision", query)
		}
		if !decision.TopLevel.Valid() {
			t.Fatalf("%.20q: invalid top level %q", query, decision.TopLevel)
		}
		if decision.TopLevelConfidence < 0 || decision.TopLevelConfidence > 1 {
			t.Fatalf("%.20q: confidence %.2f out of range", query, decision.TopLevelConfidence)
		}
		if decision.Parameters["query"] != query {
			t.Fatalf("%.20q: verbatim query missing from parameters", query)
		}
	}
}

func TestClassifyShortCircuitSkipsGenerative(t *testing.T) {
	gen := &fixedAdapter{name: "gen", content: `{"kind":"chat","confidence":0.9}`}
	e := New(map[string]adapter.Adapter{"gen": gen}, testConfig())

	decision := e.Classify(context.Background(), "show me PROJ-123")
	if decision.TopLevel != intent.KindTicketing {
		t.Fatalf("expected ticketing, got %s", decision.TopLevel)
	}
	if decision.SubAction != "ticket_operations" {
		t.Fatalf("expected ticket_operations, got %s", decision.SubAction)
	}
	if decision.Parameters["ticket_key"] != "PROJ-123" {
		t.Fatalf("expected ticket_key parameter, got %v", decision.Parameters)
	}
	if gen.calls != 0 {
		t.Fatalf("expected generative stage skipped, got %d calls", gen.calls)
	}
	if !hasStage(decision.Trace, "short_circuit") {
		t.Fatalf("expected short_circuit in trace %v", decision.Trace)
	}
	if hasStage(decision.Trace, "generative") {
		t.Fatalf("expected no generative stage in trace %v", decision.Trace)
	}
}

func TestClassifyRepositoryOperations(t *testing.T) {
	e := New(map[string]adapter.Adapter{}, testConfig())

	decision := e.Classify(context.Background(), "clone microsoft/vscode")
	if decision.TopLevel != intent.KindSourceControl {
		t.Fatalf("expected source_control, got %s", decision.TopLevel)
	}
	if decision.SubAction != "repository_operations" {
		t.Fatalf("expected repository_operations, got %s", decision.SubAction)
	}
	if decision.Parameters["organization"] != "microsoft" || decision.Parameters["repository"] != "vscode" {
		t.Fatalf("expected org/repo parameters, got %v", decision.Parameters)
	}
}

func TestClassifyDisagreementHigherConfidenceWins(t *testing.T) {
	// Pattern sees a generic code cue at 0.7; the model is sure it is a
	// build query at 0.9.
	gen := &fixedAdapter{name: "gen", content: `{"kind":"build_system","confidence":0.9}`}
	e := New(map[string]adapter.Adapter{"gen": gen}, testConfig())

	decision := e.Classify(context.Background(), "tidy up the programming here")
	if decision.TopLevel != intent.KindBuildSystem {
		t.Fatalf("expected build_system to win, got %s", decision.TopLevel)
	}
	if decision.TopLevelConfidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %.2f", decision.TopLevelConfidence)
	}
	if decision.Agreement {
		t.Fatal("expected no agreement")
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generative call, got %d", gen.calls)
	}
}

func TestClassifyAgreement(t *testing.T) {
	gen := &fixedAdapter{name: "gen", content: `{"kind":"code_operations","confidence":0.85}`}
	e := New(map[string]adapter.Adapter{"gen": gen}, testConfig())

	decision := e.Classify(context.Background(), "tidy up the programming here")
	if decision.TopLevel != intent.KindCodeOps {
		t.Fatalf("expected code_operations, got %s", decision.TopLevel)
	}
	if !decision.Agreement {
		t.Fatal("expected agreement")
	}
	if decision.TopLevelConfidence != 0.85 {
		t.Fatalf("expected higher confidence 0.85, got %.2f", decision.TopLevelConfidence)
	}
}

func TestClassifyFallbackCap(t *testing.T) {
	gen := &fixedAdapter{name: "gen", err: errors.New("primary down")}
	fb := &fixedAdapter{name: "fb", content: `{"kind":"monitoring","confidence":0.95}`}
	e := New(map[string]adapter.Adapter{"gen": gen, "fb": fb}, testConfig())

	decision := e.Classify(context.Background(), "hello there")
	if decision.TopLevel != intent.KindMonitoring {
		t.Fatalf("expected monitoring from fallback, got %s", decision.TopLevel)
	}
	if decision.TopLevelConfidence > 0.5 {
		t.Fatalf("fallback confidence %.2f above cap", decision.TopLevelConfidence)
	}
	if !strings.HasPrefix(decision.Method, "fallback:") {
		t.Fatalf("expected fallback method, got %s", decision.Method)
	}
	if !hasStage(decision.Trace, "fallback") {
		t.Fatalf("expected fallback in trace %v", decision.Trace)
	}
}

func TestClassifyWorkflowFanOut(t *testing.T) {
	e := New(map[string]adapter.Adapter{}, testConfig())

	decision := e.Classify(context.Background(), "get commits that modified class OrderService")
	if decision.TopLevel != intent.KindWorkflow {
		t.Fatalf("expected workflow, got %s", decision.TopLevel)
	}
	if decision.SubAction != "multi_service_workflow" {
		t.Fatalf("expected multi_service_workflow, got %s", decision.SubAction)
	}
	if len(decision.Systems) == 0 {
		t.Fatalf("expected implicated systems, got none")
	}
}

func TestClassifyConcurrent(t *testing.T) {
	e := New(map[string]adapter.Adapter{}, testConfig())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				decision := e.Classify(context.Background(), "show me PROJ-123")
				if decision.TopLevel != intent.KindTicketing {
					t.Errorf("expected ticketing, got %s", decision.TopLevel)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
