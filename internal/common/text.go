package common

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldKey normalizes text for case-insensitive uniqueness and lookups. It
// trims surrounding whitespace and applies Unicode case folding, so "Полы"
// and "полы" share a key.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
