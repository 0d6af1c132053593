package dispatch

import (
	"reflect"
	"testing"

	"github.com/zen-systems/intentgate/pkg/intent"
)

func TestDispatchSubActions(t *testing.T) {
	tests := []struct {
		kind      intent.Kind
		query     string
		action    string
		operation string
	}{
		{intent.KindSourceControl, "any open PRs on RC1", "pull_request_operations", "list_prs"},
		{intent.KindSourceControl, "latest commits from main", "commit_operations", "list_commits"},
		{intent.KindSourceControl, "clone microsoft/vscode", "repository_operations", "clone_repo"},
		{intent.KindBuildSystem, "last 5 builds from deploy-all", "build_status", "get_build_status"},
		{intent.KindBuildSystem, "why did the console log show errors", "console_analysis", "analyze_console"},
		{intent.KindBuildSystem, "what parameters did job 20 use", "build_parameters", "get_parameters"},
		{intent.KindTicketing, "get comments for PROJ-456", "comment_operations", "get_comments"},
		{intent.KindTicketing, "show me PROJ-123", "ticket_operations", "get_ticket"},
		{intent.KindGraph, "dependencies of class UserService", "dependency_analysis", "find_dependencies"},
		{intent.KindGraph, "what is affected by changing validateUser", "impact_analysis", "find_impact"},
		{intent.KindMonitoring, "resource utilization for prod", "resource_monitoring", "get_resource_utilization"},
		{intent.KindMonitoring, "critical alerts last hour", "alert_management", "get_alerts"},
		{intent.KindMonitoring, "slow transactions for PaymentService", "transaction_monitoring", "get_transactions"},
		{intent.KindCodeOps, "review the auth module", "code_review", "review_code"},
		{intent.KindCodeOps, "fix the login bug", "debugging", "debug_code"},
	}

	d := NewDispatcher()
	for _, tt := range tests {
		result := d.Dispatch(tt.kind, tt.query)
		if result.SubAction != tt.action {
			t.Fatalf("%q: expected %s, got %s", tt.query, tt.action, result.SubAction)
		}
		if result.Confidence != 0.9 {
			t.Fatalf("%q: expected confidence 0.9, got %.2f", tt.query, result.Confidence)
		}
		if result.Parameters["operation"] != tt.operation {
			t.Fatalf("%q: expected operation %s, got %s", tt.query, tt.operation, result.Parameters["operation"])
		}
		if result.Parameters["query"] != tt.query {
			t.Fatalf("%q: verbatim query missing from parameters", tt.query)
		}
	}
}

func TestDispatchGeneralFallback(t *testing.T) {
	d := NewDispatcher()

	for _, kind := range []intent.Kind{
		intent.KindSourceControl,
		intent.KindBuildSystem,
		intent.KindTicketing,
		intent.KindGraph,
		intent.KindMonitoring,
		intent.KindCodeOps,
		intent.KindChat,
	} {
		result := d.Dispatch(kind, "do the thing please")
		if result.SubAction != "general" {
			t.Fatalf("%s: expected general, got %s", kind, result.SubAction)
		}
		if result.Confidence != 0.7 {
			t.Fatalf("%s: expected confidence 0.7, got %.2f", kind, result.Confidence)
		}
		if result.Parameters["query"] != "do the thing please" {
			t.Fatalf("%s: verbatim query missing", kind)
		}
	}
}

func TestDispatchWorkflow(t *testing.T) {
	d := NewDispatcher()

	result := d.Dispatch(intent.KindWorkflow, "get commits for jira ticket ABC-1 and check impact in the graph")
	if result.SubAction != "multi_service_workflow" {
		t.Fatalf("expected multi_service_workflow, got %s", result.SubAction)
	}
	if result.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8, got %.2f", result.Confidence)
	}

	want := []intent.Kind{intent.KindTicketing, intent.KindSourceControl, intent.KindGraph}
	if !reflect.DeepEqual(result.Systems, want) {
		t.Fatalf("expected systems %v, got %v", want, result.Systems)
	}
	if result.Parameters["systems"] != "ticketing,source_control,graph_database" {
		t.Fatalf("unexpected systems parameter %q", result.Parameters["systems"])
	}
	if result.Parameters["operation"] != "orchestrate" {
		t.Fatalf("unexpected operation %q", result.Parameters["operation"])
	}
}

func TestImplicatedServicesOrder(t *testing.T) {
	systems := ImplicatedServices("jenkins build for repo nothing, with alerts")
	want := []intent.Kind{intent.KindBuildSystem, intent.KindSourceControl, intent.KindMonitoring}
	if !reflect.DeepEqual(systems, want) {
		t.Fatalf("expected %v, got %v", want, systems)
	}

	if systems := ImplicatedServices("hello there"); systems != nil {
		t.Fatalf("expected no systems, got %v", systems)
	}
}
