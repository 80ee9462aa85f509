package lowdown

import "strings"

// Whitelist is a set of namespace prefixes gating which constructs are documented.
//
// An empty whitelist accepts every class and rejects every free function,
// so that a code base's own types are documented by default
// without pulling in potentially huge sets of functions.
type Whitelist []string

// ParseWhitelist parses a comma-separated list of namespace prefixes.
func ParseWhitelist(s string) Whitelist {
	var whitelist Whitelist
	for _, prefix := range strings.Split(s, ",") {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			whitelist = append(whitelist, prefix)
		}
	}
	return whitelist
}

// AllowsClass reports whether the class with the fully qualified name should be documented.
func (w Whitelist) AllowsClass(name string) bool {
	if len(w) == 0 {
		return true
	}
	return w.matches(name)
}

// AllowsFunction reports whether the free function with the fully qualified name should be documented.
func (w Whitelist) AllowsFunction(name string) bool {
	if len(w) == 0 {
		return false
	}
	return w.matches(name)
}

// matches performs a case-insensitive prefix match, anchored at the start of the name.
func (w Whitelist) matches(name string) bool {
	name = strings.ToLower(name)
	for _, prefix := range w {
		if strings.HasPrefix(name, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}
