package pattern

import (
	"regexp"

	"github.com/zen-systems/intentgate/pkg/intent"
)

// Rule is a single compiled pattern with a fixed confidence.
// Confidence constants are hand-tuned defaults: highly specific lexical
// cues (a ticket key, an org/repo token) score higher than generic
// keyword hits.
type Rule struct {
	Name       string
	Expr       *regexp.Regexp
	Confidence float64
	// KeepCase matches against the original text instead of the
	// lowercased copy. Ticket keys are only meaningful in upper case.
	KeepCase bool
}

// KindRules is the ordered rule list for one kind. Within a kind the
// first matching rule wins.
type KindRules struct {
	Kind  intent.Kind
	Rules []Rule
}

// DefaultRules returns the rule tables in evaluation priority order.
// Workflow-spanning cues are checked before single-service cues, and
// ticket-key shaped tokens before everything else single-service,
// since they are near-unambiguous.
func DefaultRules() []KindRules {
	return []KindRules{
		{
			Kind: intent.KindWorkflow,
			Rules: []Rule{
				{Name: "commits_for_ticket", Confidence: 0.9,
					Expr: regexp.MustCompile(`(?:get|show|fetch|list)\b.*\b(?:commits?|prs?|pull requests?)\b.*\b(?:jira|tickets?)\b`)},
				{Name: "ticket_to_graph", Confidence: 0.9,
					Expr: regexp.MustCompile(`\b(?:jira|tickets?)\b.*\b(?:description|details)\b.*\b(?:graph|neo4j|impact)\b`)},
				{Name: "change_impact_chain", Confidence: 0.9,
					Expr: regexp.MustCompile(`\b(?:commits?|prs?|pull requests?)\b.*\b(?:changed|modified)\b.*\b(?:class(?:es)?|methods?)\b`)},
				{Name: "analysis_across_graph", Confidence: 0.85,
					Expr: regexp.MustCompile(`\b(?:analyze|check)\b.*\b(?:impact|dependenc\w+)\b.*\b(?:graph|neo4j)\b.*\b(?:commits?|tickets?|builds?)\b`)},
			},
		},
		{
			Kind: intent.KindTicketing,
			Rules: []Rule{
				{Name: "ticket_key", Confidence: 0.9, KeepCase: true,
					Expr: regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)},
				{Name: "ticket_verb", Confidence: 0.85,
					Expr: regexp.MustCompile(`\b(?:show|get|find|search|open|close)\b.*\b(?:tickets?|issues?|jira)\b`)},
				{Name: "ticket_keyword", Confidence: 0.8,
					Expr: regexp.MustCompile(`\b(?:jira|tickets?|sprints?|backlog|stor(?:y|ies))\b`)},
			},
		},
		{
			Kind: intent.KindBuildSystem,
			Rules: []Rule{
				{Name: "ci_keyword", Confidence: 0.9,
					Expr: regexp.MustCompile(`\b(?:jenkins|pipelines?|ci|cd)\b`)},
				{Name: "build_detail", Confidence: 0.85,
					Expr: regexp.MustCompile(`\b(?:builds?|jobs?)\b.*\b(?:status|number|parameters?|console|log)\b|\b(?:status|parameters?|console)\b.*\b(?:builds?|jobs?)\b`)},
				{Name: "build_state", Confidence: 0.85,
					Expr: regexp.MustCompile(`\b(?:failed|running|pending|aborted|successful)\s+(?:builds?|jobs?)\b`)},
				{Name: "build_keyword", Confidence: 0.7,
					Expr: regexp.MustCompile(`\b(?:builds?|jobs?)\b`)},
			},
		},
		{
			Kind: intent.KindSourceControl,
			Rules: []Rule{
				{Name: "org_repo_operation", Confidence: 0.9,
					Expr: regexp.MustCompile(`\b(?:clone|fork|checkout|pull|fetch)\s+[\w.-]+/[\w.-]+\b`)},
				{Name: "org_repo_context", Confidence: 0.9,
					Expr: regexp.MustCompile(`\b[\w.-]+/[\w.-]+\b.*\b(?:prs?|pull requests?|commits?|branch(?:es)?)\b|\b(?:prs?|pull requests?|commits?|branch(?:es)?)\b.*\b[\w.-]+/[\w.-]+\b`)},
				{Name: "pull_request", Confidence: 0.85,
					Expr: regexp.MustCompile(`\b(?:prs?|pull\s?requests?)\b`)},
				{Name: "commit", Confidence: 0.8,
					Expr: regexp.MustCompile(`\bcommits?\b`)},
				{Name: "scm_keyword", Confidence: 0.75,
					Expr: regexp.MustCompile(`\b(?:github|git|repos?|repositor(?:y|ies)|branch|merge|push|clone)\b`)},
			},
		},
		{
			Kind: intent.KindGraph,
			Rules: []Rule{
				{Name: "graph_keyword", Confidence: 0.9,
					Expr: regexp.MustCompile(`\b(?:neo4j|graph)\b`)},
				{Name: "dependency_analysis", Confidence: 0.85,
					Expr: regexp.MustCompile(`\b(?:dependenc\w+|impact)\s+(?:analysis|of|for)\b`)},
				{Name: "who_depends", Confidence: 0.85,
					Expr: regexp.MustCompile(`\b(?:which|what)\s+(?:repositor(?:y|ies)|class(?:es)?|methods?|functions?)\b.*\b(?:depends?|calls?|uses?|affected)\b`)},
				{Name: "updown_stream", Confidence: 0.8,
					Expr: regexp.MustCompile(`\b(?:upstream|downstream)\s+dependenc\w+\b`)},
			},
		},
		{
			Kind: intent.KindMonitoring,
			Rules: []Rule{
				{Name: "apm_keyword", Confidence: 0.9,
					Expr: regexp.MustCompile(`\b(?:appdynamics|app dynamics|appd)\b`)},
				{Name: "resource_utilization", Confidence: 0.85,
					Expr: regexp.MustCompile(`\bresources?\s+(?:utilization|usage)\b`)},
				{Name: "host_metric", Confidence: 0.8,
					Expr: regexp.MustCompile(`\b(?:cpu|memory|disk|network)\s+(?:usage|utilization)\b`)},
				{Name: "slow_transactions", Confidence: 0.8,
					Expr: regexp.MustCompile(`\b(?:slow|response\s+time)\b.*\btransactions?\b`)},
				{Name: "monitoring_keyword", Confidence: 0.7,
					Expr: regexp.MustCompile(`\b(?:alerts?|monitoring|health\s+(?:summary|status)|business\s+transactions?)\b`)},
			},
		},
		{
			Kind: intent.KindCodeOps,
			Rules: []Rule{
				{Name: "code_verb_object", Confidence: 0.8,
					Expr: regexp.MustCompile(`\b(?:generate|create|write|implement|edit|modify|update|fix|refactor|format|lint|document)\b.*\b(?:code|functions?|class(?:es)?|modules?|scripts?|files?|tests?|endpoints?)\b`)},
				{Name: "test_keyword", Confidence: 0.8,
					Expr: regexp.MustCompile(`\b(?:unit|integration)\s+tests?\b`)},
				{Name: "review_code", Confidence: 0.75,
					Expr: regexp.MustCompile(`\b(?:review|analy[sz]e|inspect|examine|debug)\b.*\b(?:code|functions?|class(?:es)?|modules?|files?)\b`)},
				{Name: "code_keyword", Confidence: 0.7,
					Expr: regexp.MustCompile(`\b(?:code|coding|programming|refactor(?:ing)?)\b`)},
			},
		},
	}
}
