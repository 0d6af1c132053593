package pattern

import (
	"regexp"
	"strings"

	"github.com/zen-systems/intentgate/pkg/intent"
)

// Classifier matches queries against ordered regex rule tables.
// It is a pure function of the rule tables and the input: no I/O, no
// mutation after construction, safe for concurrent use.
type Classifier struct {
	tables []KindRules
}

// NewClassifier creates a classifier over the given rule tables.
// A nil table list uses DefaultRules.
func NewClassifier(tables []KindRules) *Classifier {
	if tables == nil {
		tables = DefaultRules()
	}
	return &Classifier{tables: tables}
}

// Tables returns the rule tables in evaluation order.
func (c *Classifier) Tables() []KindRules {
	return c.tables
}

// Match returns the classification for the first kind whose rule list
// matches, or nil when nothing matches.
func (c *Classifier) Match(text string) *intent.Classification {
	lower := strings.ToLower(text)

	for _, table := range c.tables {
		for _, rule := range table.Rules {
			subject := lower
			if rule.KeepCase {
				subject = text
			}
			if rule.Expr.MatchString(subject) {
				return &intent.Classification{
					Kind:       table.Kind,
					Confidence: rule.Confidence,
					Method:     "pattern",
					Entities:   ExtractEntities(text),
				}
			}
		}
	}

	return nil
}

var (
	ticketKeyRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]+-\d+)\b`)
	orgRepoRe   = regexp.MustCompile(`\b([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)\b`)
	countRe     = regexp.MustCompile(`\b(\d+)\s+(?:latest|last|recent|commits?|builds?|jobs?|alerts?|prs?|pull requests?|transactions?)\b|\b(?:latest|last|recent)\s+(\d+)\b`)
	branchRe    = regexp.MustCompile(`(?i)\b(rc1|rc2|rc3|rc4|main|master|develop)\b`)
	commitShaRe = regexp.MustCompile(`\b([a-f0-9]{7,40})\b`)
	classNameRe = regexp.MustCompile(`\b(?:class|method|function)\s+([A-Za-z][A-Za-z0-9_]+)`)
)

// ExtractEntities pulls structured tokens out of the raw query text.
// Keys are optional; an entity absent from the text is absent from the map.
func ExtractEntities(text string) map[string]string {
	entities := make(map[string]string)

	if m := ticketKeyRe.FindStringSubmatch(text); m != nil {
		entities["ticket_key"] = m[1]
	}
	if m := orgRepoRe.FindStringSubmatch(text); m != nil {
		entities["organization"] = m[1]
		entities["repository"] = m[2]
	}
	if m := countRe.FindStringSubmatch(strings.ToLower(text)); m != nil {
		if m[1] != "" {
			entities["count"] = m[1]
		} else {
			entities["count"] = m[2]
		}
	}
	if m := branchRe.FindStringSubmatch(text); m != nil {
		entities["branch"] = strings.ToLower(m[1])
	}
	if m := commitShaRe.FindStringSubmatch(text); m != nil {
		// A ticket key digit run or a plain count can look hex-shaped;
		// only keep real mixed hex tokens.
		if strings.IndexFunc(m[1], func(r rune) bool { return r >= 'a' && r <= 'f' }) >= 0 {
			entities["commit_sha"] = m[1]
		}
	}
	if m := classNameRe.FindStringSubmatch(text); m != nil {
		entities["class_name"] = m[1]
	}

	return entities
}
