package source

import (
	"strings"

	"github.com/faruk-isik/x-trend-bot/internal/model"
)

// RuleKind defines the type of a topic rule.
type RuleKind string

// Supported rule kinds.
const (
	RuleInclude RuleKind = "include"
	RuleExclude RuleKind = "exclude"
)

// Rule is a single keyword rule matched against a candidate's title and
// body, case-insensitively. The bot's query excludes tabloid and sports
// topics; exclude rules catch items the upstream query modifiers miss.
type Rule struct {
	Kind  RuleKind
	Value string
}

// ExcludeRules builds exclude rules from a list of keywords.
func ExcludeRules(words []string) []Rule {
	var rules []Rule
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			rules = append(rules, Rule{Kind: RuleExclude, Value: w})
		}
	}
	return rules
}

// ApplyRules returns the candidates passing the given rules, preserving
// source order. With no rules every item passes. Include rules use OR
// logic (at least one must match); exclude rules use AND logic (none may
// match).
func ApplyRules(items []model.RawItem, rules []Rule) []model.RawItem {
	if len(rules) == 0 {
		return items
	}
	var kept []model.RawItem
	for _, item := range items {
		if matches(item, rules) {
			kept = append(kept, item)
		}
	}
	return kept
}

func matches(item model.RawItem, rules []Rule) bool {
	text := strings.ToLower(item.Title + " " + item.Body)

	hasIncludes := false
	anyIncludeMatched := false
	for _, r := range rules {
		hit := strings.Contains(text, strings.ToLower(r.Value))
		switch r.Kind {
		case RuleInclude:
			hasIncludes = true
			if hit {
				anyIncludeMatched = true
			}
		case RuleExclude:
			if hit {
				return false
			}
		}
	}
	return !hasIncludes || anyIncludeMatched
}
