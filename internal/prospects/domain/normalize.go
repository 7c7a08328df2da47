package domain

import "strings"

// NormalizeIdentity lowercases, trims, and collapses internal whitespace so
// that "Green  Shores " and "green shores" dedupe to the same key. Used for
// the (name, city) uniqueness check across discovery, import, and manual
// creation.
func NormalizeIdentity(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
