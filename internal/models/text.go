package models

import "strings"

// WordCount returns the number of whitespace-delimited tokens in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ContainsAny reports whether s contains any of words as a substring.
// Callers lower-case s first; matching is not word-bounded, so "code"
// also matches "decode".
func ContainsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
