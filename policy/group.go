// Package policy maps dataset names to caching policies. Datasets are
// organized into named groups, each with one or more matching rules
// (exact, prefix or regex) and a Policy carrying the cache TTL, a forced
// refresh budget and an auth requirement. A Resolver picks the
// best-matching group for a dataset name.
package policy

import (
	"regexp"
	"time"
)

// RefreshRule bounds forced refreshes for the datasets of a group.
type RefreshRule struct {
	// PerSecond is the sustained number of forced refreshes allowed per
	// second for each dataset.
	PerSecond float64
	// Burst is the number of forced refreshes that may arrive at once.
	Burst int
}

// Policy holds the configuration that applies to a matched dataset group.
type Policy struct {
	// TTL is the lifetime of the cached collection. Zero means the cache
	// default.
	TTL time.Duration
	// Refresh, when set, rate-limits forced refreshes of the dataset.
	Refresh *RefreshRule
	// AuthRequired marks the group's datasets as off-limits without
	// authentication.
	AuthRequired bool
}

// matchKind distinguishes the three matching strategies.
type matchKind int

const (
	kindExact  matchKind = iota // highest priority
	kindPrefix                  // medium priority
	kindRegex                   // lowest priority
)

// rule is a single matching rule inside a group.
type rule struct {
	kind    matchKind
	pattern string         // used for exact and prefix matches
	re      *regexp.Regexp // used for regex matches
}

// GroupBuilder constructs a dataset group with one or more matching rules
// and a policy.
type GroupBuilder struct {
	name   string
	rules  []rule
	policy *Policy
}

// Group starts building a new dataset group with the given name.
func Group(name string) *GroupBuilder {
	return &GroupBuilder{name: name}
}

// Exact adds an exact-match rule for the dataset name.
func (g *GroupBuilder) Exact(pattern string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindExact, pattern: pattern})
	return g
}

// Prefix adds a prefix-match rule for dataset names.
func (g *GroupBuilder) Prefix(pattern string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindPrefix, pattern: pattern})
	return g
}

// Regex adds a regex-match rule for dataset names.
// The pattern is compiled immediately; an invalid regex will panic.
func (g *GroupBuilder) Regex(pattern string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindRegex, pattern: pattern, re: regexp.MustCompile(pattern)})
	return g
}

// Policy attaches a Policy to the group and returns the finished builder.
func (g *GroupBuilder) Policy(p Policy) *GroupBuilder {
	g.policy = &p
	return g
}
