// Package dispatch refines a top-level classification into a
// service-specific sub-action with extracted parameters. Everything
// here is pure pattern matching; no generative calls at this level.
package dispatch

import (
	"regexp"
	"strings"

	"github.com/zen-systems/intentgate/pkg/intent"
)

const (
	// matchedConfidence is the fixed confidence for a matched sub-rule.
	matchedConfidence = 0.9
	// generalConfidence is the fixed confidence for a service's general
	// sub-action. Unmatched text inside a known service is never an error.
	generalConfidence = 0.7
	// workflowConfidence is the fixed confidence for the multi-service
	// workflow sub-action.
	workflowConfidence = 0.8
)

// Result is the outcome of second-level dispatch.
type Result struct {
	SubAction  string
	Confidence float64
	Parameters map[string]string
	// Systems is populated only for workflow dispatch: the services
	// implicated by the query, for the caller to fan out to.
	Systems []intent.Kind
}

type subRule struct {
	action    string
	operation string
	expr      *regexp.Regexp
}

// serviceRules maps each dispatchable kind to its ordered sub-rules.
// First match wins; no match falls through to the general sub-action.
var serviceRules = map[intent.Kind][]subRule{
	intent.KindSourceControl: {
		{action: "pull_request_operations", operation: "list_prs",
			expr: regexp.MustCompile(`\b(?:prs?|pull\s?requests?)\b`)},
		{action: "commit_operations", operation: "list_commits",
			expr: regexp.MustCompile(`\bcommits?\b`)},
		{action: "repository_operations", operation: "clone_repo",
			expr: regexp.MustCompile(`\b(?:clone|fork|checkout)\b`)},
	},
	intent.KindBuildSystem: {
		{action: "build_status", operation: "get_build_status",
			expr: regexp.MustCompile(`\b(?:builds?|status)\b`)},
		{action: "console_analysis", operation: "analyze_console",
			expr: regexp.MustCompile(`\b(?:console|logs?)\b`)},
		{action: "build_parameters", operation: "get_parameters",
			expr: regexp.MustCompile(`\bparameters?\b`)},
	},
	intent.KindTicketing: {
		{action: "comment_operations", operation: "get_comments",
			expr: regexp.MustCompile(`\bcomments?\b`)},
		{action: "ticket_operations", operation: "get_ticket",
			expr: regexp.MustCompile(`\b(?:[a-z][a-z0-9]+-\d+|tickets?|issues?)\b`)},
	},
	intent.KindGraph: {
		{action: "dependency_analysis", operation: "find_dependencies",
			expr: regexp.MustCompile(`\bdependenc\w+\b`)},
		{action: "impact_analysis", operation: "find_impact",
			expr: regexp.MustCompile(`\b(?:impact|affected)\b`)},
	},
	intent.KindMonitoring: {
		{action: "resource_monitoring", operation: "get_resource_utilization",
			expr: regexp.MustCompile(`\bresources?\b.*\b(?:utilization|usage)\b|\b(?:cpu|memory|disk|network)\b`)},
		{action: "alert_management", operation: "get_alerts",
			expr: regexp.MustCompile(`\balert\w*\b`)},
		{action: "transaction_monitoring", operation: "get_transactions",
			expr: regexp.MustCompile(`\btransactions?\b`)},
	},
	intent.KindCodeOps: {
		{action: "code_review", operation: "review_code",
			expr: regexp.MustCompile(`\b(?:review|analy[sz]e|inspect)\b`)},
		{action: "debugging", operation: "debug_code",
			expr: regexp.MustCompile(`\b(?:debug|fix|error|bug)\b`)},
	},
}

// generalActions names the catch-all sub-action per service.
var generalActions = map[intent.Kind]string{
	intent.KindSourceControl: "general",
	intent.KindBuildSystem:   "general",
	intent.KindTicketing:     "general",
	intent.KindGraph:         "general",
	intent.KindMonitoring:    "general",
	intent.KindCodeOps:       "general",
	intent.KindChat:          "general",
}

// serviceCues is used by workflow dispatch to re-scan the text for
// each implicated service.
var serviceCues = map[intent.Kind]*regexp.Regexp{
	intent.KindSourceControl: regexp.MustCompile(`\b(?:github|git|repos?|repositor\w+|commits?|prs?|pull\s?requests?|branch(?:es)?|clone)\b`),
	intent.KindBuildSystem:   regexp.MustCompile(`\b(?:jenkins|builds?|jobs?|pipelines?|ci|cd)\b`),
	intent.KindTicketing:     regexp.MustCompile(`\b(?:jira|tickets?|sprints?|issues?)\b`),
	intent.KindGraph:         regexp.MustCompile(`\b(?:neo4j|graph|dependenc\w+|impact)\b`),
	intent.KindMonitoring:    regexp.MustCompile(`\b(?:appdynamics|appd|monitoring|alerts?|utilization)\b`),
	intent.KindCodeOps:       regexp.MustCompile(`\b(?:code|refactor\w*|lint|tests?)\b`),
}

// Dispatcher selects the sub-action classifier for a service.
type Dispatcher struct{}

// NewDispatcher creates a dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch refines topLevel for the given query text. The returned
// parameters always include the verbatim query.
func (d *Dispatcher) Dispatch(topLevel intent.Kind, text string) Result {
	params := map[string]string{"query": text}

	if topLevel == intent.KindWorkflow {
		systems := ImplicatedServices(text)
		names := make([]string, len(systems))
		for i, s := range systems {
			names[i] = string(s)
		}
		params["operation"] = "orchestrate"
		params["systems"] = strings.Join(names, ",")
		return Result{
			SubAction:  "multi_service_workflow",
			Confidence: workflowConfidence,
			Parameters: params,
			Systems:    systems,
		}
	}

	lower := strings.ToLower(text)
	for _, rule := range serviceRules[topLevel] {
		if rule.expr.MatchString(lower) {
			params["operation"] = rule.operation
			return Result{
				SubAction:  rule.action,
				Confidence: matchedConfidence,
				Parameters: params,
			}
		}
	}

	params["operation"] = "general"
	return Result{
		SubAction:  generalActions[topLevel],
		Confidence: generalConfidence,
		Parameters: params,
	}
}

// ImplicatedServices returns the services whose cue sets match the
// text, in classification priority order.
func ImplicatedServices(text string) []intent.Kind {
	lower := strings.ToLower(text)
	var systems []intent.Kind
	for _, kind := range intent.Kinds {
		cue, ok := serviceCues[kind]
		if !ok {
			continue
		}
		if cue.MatchString(lower) {
			systems = append(systems, kind)
		}
	}
	return systems
}
