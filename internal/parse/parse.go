// Package parse turns normalized contract text into structured fields.
//
// Every extractor is an ordered list of strategy functions over the
// same text. Scalar fields (number, contractor, object, amount, term)
// use a short-circuit combinator: the first strategy that yields a
// value wins and later fallbacks are not attempted. The annex detector
// instead unions all of its strategies before deduplicating.
//
// Absence of a match is a normal outcome, never an error: extractors
// return "" and the caller assembles a record with empty defaults.
package parse

import "regexp"

// Strategy is one attempt at extracting a field from text.
type Strategy func(text string) (string, bool)

// firstMatch runs strategies in order and returns the first hit.
func firstMatch(text string, strategies ...Strategy) string {
	for _, s := range strategies {
		if v, ok := s(text); ok {
			return v
		}
	}
	return ""
}

// matchGroup lifts a single-capture regexp into a Strategy.
func matchGroup(re *regexp.Regexp) Strategy {
	return func(text string) (string, bool) {
		if re == nil {
			return "", false
		}
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return m[1], true
	}
}

// compile returns nil on a bad pattern instead of panicking; strategies
// treat a nil regexp as "contributes nothing" so one broken pattern
// cannot take the whole extractor down.
func compile(pattern string) *regexp.Regexp {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}

// boundedCapture emulates a lazy capture terminated by a lookahead,
// which Go's regexp does not support: it matches head, then finds the
// earliest boundary after it and returns the slice in between. Fails
// when either the head or the boundary is absent, matching the
// original patterns' behavior.
func boundedCapture(text string, head, boundary *regexp.Regexp) (string, bool) {
	if head == nil || boundary == nil {
		return "", false
	}
	loc := head.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	b := boundary.FindStringIndex(rest)
	if b == nil {
		return "", false
	}
	return rest[:b[0]], true
}
