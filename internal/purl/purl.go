// Package purl translates npm-style package specifiers into package
// URLs (pkg:npm/<name>[@<version>]). Translation is deterministic and
// intentionally conservative: anything that is not a package token
// (flags, the -- terminator) yields no PURL at all rather than a
// malformed one.
package purl

import "strings"

const ecosystem = "npm"

// ToPurl converts a package specifier into a canonical PURL, or ""
// when the token is not a package (flag-like tokens, the bare --
// terminator, empty strings). Scope and version range survive
// verbatim; semver range operators are not normalized.
func ToPurl(spec string) string {
	name, version, ok := SplitSpecifier(spec)
	if !ok {
		return ""
	}
	if version == "" {
		return "pkg:" + ecosystem + "/" + name
	}
	return "pkg:" + ecosystem + "/" + name + "@" + version
}

// SplitSpecifier separates a specifier into name and optional version
// range. ok is false for non-package tokens.
func SplitSpecifier(spec string) (name, version string, ok bool) {
	if spec == "" || spec == "--" || strings.HasPrefix(spec, "-") {
		return "", "", false
	}

	// The version separator is the last @ that is not the scope marker.
	at := strings.LastIndex(spec, "@")
	if at <= 0 {
		// No version, or a scoped name with no version (@scope/name
		// has its only @ at position 0).
		return spec, "", true
	}
	return spec[:at], spec[at+1:], true
}

// Batch translates a slice of specifiers, dropping every token that
// does not translate. Order is preserved and duplicates collapse to
// the first occurrence so the risk query stays minimal.
func Batch(specs []string) []string {
	seen := make(map[string]bool, len(specs))
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		p := ToPurl(s)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
