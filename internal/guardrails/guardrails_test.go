package guardrails_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexusai/broker/internal/guardrails"
)

func TestRegexCheckerBlocksPII(t *testing.T) {
	c := guardrails.NewRegexChecker()

	cases := []struct {
		name    string
		message string
		reason  string
	}{
		{"ssn", "my ssn is 123-45-6789", "social security number"},
		{"card", "card: 4111 1111 1111 1111", "card number"},
		{"api key", "here is my api_key=sk-abc123", "credential"},
		{"password", "password: hunter2", "credential"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := c.Check(tc.message)
			assert.True(t, v.Blocked)
			assert.Contains(t, v.Reason, tc.reason)
		})
	}
}

func TestRegexCheckerAllowsOrdinaryText(t *testing.T) {
	c := guardrails.NewRegexChecker()

	for _, msg := range []string{
		"What is the capital of France?",
		"Write a haiku about autumn.",
		"My order number is 42.",
	} {
		v := c.Check(msg)
		assert.False(t, v.Blocked, msg)
		assert.Empty(t, v.Reason)
	}
}

func TestAddRule(t *testing.T) {
	c := guardrails.NewRegexChecker()
	c.AddRule(regexp.MustCompile(`(?i)\bforbidden-word\b`), "message contains a banned term")

	v := c.Check("this has a Forbidden-Word inside")
	assert.True(t, v.Blocked)
	assert.Equal(t, "message contains a banned term", v.Reason)
}

func TestNoopChecker(t *testing.T) {
	var c guardrails.Checker = guardrails.NoopChecker{}
	assert.False(t, c.Check("password: hunter2").Blocked)
}
