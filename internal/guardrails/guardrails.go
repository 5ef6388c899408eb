// Package guardrails runs content-safety checks on inbound messages
// before any provider is contacted. A blocked message never reaches
// the dispatcher and consumes no rate-limit capacity.
package guardrails

import "regexp"

// Verdict is the outcome of a check.
type Verdict struct {
	Blocked bool
	Reason  string
}

// Checker inspects one user message.
type Checker interface {
	Check(message string) Verdict
}

type rule struct {
	pattern *regexp.Regexp
	reason  string
}

// RegexChecker blocks messages matching any of its rules. The default
// rule set targets obvious PII disclosure.
type RegexChecker struct {
	rules []rule
}

func NewRegexChecker() *RegexChecker {
	return &RegexChecker{
		rules: []rule{
			{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "message contains a social security number"},
			{regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`), "message contains a possible card number"},
			{regexp.MustCompile(`(?i)\b(?:api[_-]?key|secret[_-]?key|password)\s*[:=]\s*\S+`), "message contains a credential"},
		},
	}
}

// AddRule installs an extra pattern. Intended for startup wiring, not
// concurrent use.
func (c *RegexChecker) AddRule(pattern *regexp.Regexp, reason string) {
	c.rules = append(c.rules, rule{pattern: pattern, reason: reason})
}

func (c *RegexChecker) Check(message string) Verdict {
	for _, r := range c.rules {
		if r.pattern.MatchString(message) {
			return Verdict{Blocked: true, Reason: r.reason}
		}
	}
	return Verdict{}
}

// NoopChecker allows everything. Used when guardrails are disabled.
type NoopChecker struct{}

func (NoopChecker) Check(string) Verdict { return Verdict{} }
