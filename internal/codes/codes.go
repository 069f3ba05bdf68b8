// Package codes normalizes client, product and invoice codes.
package codes

import "strings"

// Clean trims s and strips its leading zeros. An all-zero code becomes "".
func Clean(s string) string {
	return strings.TrimLeft(strings.TrimSpace(s), "0")
}

// ParseList splits a comma separated input into cleaned, de-duplicated codes,
// keeping the order in which they were first typed.
func ParseList(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		c := Clean(part)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Digits keeps only the ASCII digits of s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// InvoiceKey is the comparison form of an invoice number: digits only,
// without leading zeros. Identifiers with no digits compare by their
// trimmed text.
func InvoiceKey(id string) string {
	if key := Clean(Digits(id)); key != "" {
		return key
	}
	return strings.TrimSpace(id)
}

// Set builds a lookup set from codes.
func Set(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, c := range list {
		set[c] = struct{}{}
	}
	return set
}
