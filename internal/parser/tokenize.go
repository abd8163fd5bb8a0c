package parser

import "strings"

// Tokenize splits text into display tokens on runs of whitespace.
// Punctuation, quotes and symbols stay attached to their word; no
// normalization or case-folding is applied. Joining the result with
// single spaces and tokenizing again reproduces the same sequence.
func Tokenize(text string) []string {
	return strings.Fields(text)
}
