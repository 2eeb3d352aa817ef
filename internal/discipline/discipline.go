// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discipline maps informally supplied trade labels (filenames,
// user-typed tags) to canonical short codes. Normalize is total and
// idempotent: an unrecognized label passes through as a literal bucket
// rather than failing, because it gates query filtering.
package discipline

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// aliases maps long-form labels and informal abbreviations to canonical codes.
var aliases = map[string]string{
	"MECHANICAL":     "ACMV",
	"HVAC":           "ACMV",
	"MECH":           "ACMV",
	"PLUMBING":       "SP",
	"PLUMB":          "SP",
	"SANITARY":       "SP",
	"ELECTRICAL":     "ELEC",
	"ELECTRIC":       "ELEC",
	"FIRE":           "FP",
	"FIREPROTECTION": "FP",
	"STRUCTURAL":     "STR",
	"STRUCTURE":      "STR",
	"STRUCT":         "STR",
	"ARCHITECTURE":   "ARC",
	"ARCHITECTURAL":  "ARC",
	"ARCH":           "ARC",
	"CURTAINWALL":    "CW",
}

// codes is the set of canonical short codes. Canonical codes normalize to
// themselves.
var codes = map[string]bool{
	"ACMV": true,
	"STR":  true,
	"ARC":  true,
	"ELEC": true,
	"FP":   true,
	"SP":   true,
	"CW":   true,
}

const maxPassthrough = 10

// Normalize maps a raw discipline label to its canonical short code. The
// whole trimmed string is checked against the alias and code tables first;
// only then is the string split on "-" and "_" and each token checked, so
// "STRUCT_HVAC" resolves via its first recognized token ("STRUCT" -> "STR").
// When nothing matches, the first 2-4 letter alphabetic token wins, and
// failing that the upper-cased input truncated to 10 characters passes
// through unchanged.
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return s
	}

	if c, ok := aliases[s]; ok {
		return c
	}
	if codes[s] {
		return s
	}

	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_'
	})

	for _, tok := range tokens {
		if codes[tok] {
			return tok
		}
		if c, ok := aliases[tok]; ok {
			return c
		}
	}

	for _, tok := range tokens {
		if n := utf8.RuneCountInString(tok); n >= 2 && n <= 4 && alphabetic(tok) {
			return tok
		}
	}

	if utf8.RuneCountInString(s) > maxPassthrough {
		// Truncation can expose an alias prefix ("ELECTRICALLY1" ->
		// "ELECTRICAL"), so the truncated form is normalized once more
		// to keep Normalize idempotent. The recursion cannot go deeper:
		// the second pass never truncates again. Truncation counts runes
		// so a multi-byte character is never split.
		return Normalize(truncateRunes(s, maxPassthrough))
	}
	return s
}

// NormalizeAll maps every label in the slice, preserving order. A nil input
// returns nil.
func NormalizeAll(raws []string) []string {
	if raws == nil {
		return nil
	}
	out := make([]string, len(raws))
	for i, r := range raws {
		out[i] = Normalize(r)
	}
	return out
}

// DetectFromFilename derives a discipline code from a file path when no
// explicit hint was supplied, e.g. "Terminal1_STR.ifc" -> "STR". The
// filename stem goes through the same normalization as a typed label.
func DetectFromFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return Normalize(stem)
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

func alphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
