// Package path implements path-component splitting, pattern compilation and
// the wildcard-aware matcher used to route a request path to a registered
// handler pattern.
//
// A pattern is split into components on "/"; a component equal to "*" is a
// wildcard that can capture one or more consecutive path components. Among
// every pattern that matches a given path, the one with the most components
// wins; a tie is broken in favor of fewer wildcards (more literal
// components), and a further tie is broken by whichever pattern was
// registered first.
package path

import "strings"

// splitComponents mirrors the root/trailing-slash handling of a URL path:
// a leading slash is stripped before each component, "/" alone yields a
// single empty component, and a trailing slash contributes no component of
// its own (so "/a/" and "/a" split identically).
func splitComponents(p string, isRoot bool) []string {
	if len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	if len(p) == 0 {
		if isRoot {
			return []string{""}
		}
		return nil
	}
	pos := strings.IndexByte(p, '/')
	var value string
	if pos < 0 {
		value = p
		pos = len(p)
	} else {
		value = p[:pos]
	}
	return append([]string{value}, splitComponents(p[pos:], false)...)
}

// Split breaks a concrete request path into its components.
func Split(p string) []string {
	return splitComponents(p, true)
}

const wildcard = "*"

// component is one element of a compiled Pattern: its literal text, and,
// when it's a wildcard, the index of the capture group it belongs to.
type component struct {
	value         string
	wildcardIndex int // -1 for a literal component
}

// Pattern is a compiled route pattern: a sequence of literal and wildcard
// components, with precomputed component counts used to rank matches.
type Pattern struct {
	Raw           string
	components    []component
	WildcardCount int
	HardCount     int
}

// NewPattern compiles s into a Pattern.
func NewPattern(s string) Pattern {
	raw := splitComponents(s, true)
	comps := make([]component, len(raw))
	wcIdx := -1
	pat := Pattern{Raw: s}
	for i, v := range raw {
		idx := -1
		if v == wildcard {
			wcIdx++
			idx = wcIdx
			pat.WildcardCount++
		} else {
			pat.HardCount++
		}
		comps[i] = component{value: v, wildcardIndex: idx}
	}
	pat.components = comps
	return pat
}

// componentCount is the total number of components the pattern was
// compiled from, used as the primary ranking key.
func (p Pattern) componentCount() int { return len(p.components) }

// match attempts to fit pattern against path, backtracking across a
// wildcard's greedy/non-greedy choice. On success it returns, per wildcard
// index, the path components that wildcard captured, in order.
func match(pattern []component, path []string) (bool, [][]string) {
	if len(pattern) == 0 && len(path) == 0 {
		return true, nil
	}
	if len(pattern) == 0 || len(path) == 0 {
		return false, nil
	}

	head := pattern[0]

	if head.value == path[0] {
		if ok, caps := match(pattern[1:], path[1:]); ok {
			return true, caps
		}
	}

	if head.wildcardIndex >= 0 {
		// Option 1: the wildcard captures exactly this one component.
		if ok, caps := match(pattern[1:], path[1:]); ok {
			return true, prepend(caps, head.wildcardIndex, path[0])
		}
		// Option 2: the wildcard also swallows this component and stays put,
		// extending a multi-segment capture.
		if ok, caps := match(pattern, path[1:]); ok {
			return true, prepend(caps, head.wildcardIndex, path[0])
		}
	}

	return false, nil
}

func prepend(caps [][]string, idx int, value string) [][]string {
	if len(caps) <= idx {
		grown := make([][]string, idx+1)
		copy(grown, caps)
		caps = grown
	}
	caps[idx] = append([]string{value}, caps[idx]...)
	return caps
}

// Match reports whether path matches pattern and, if so, the components
// bound to each of the pattern's wildcards.
func Match(pattern Pattern, path []string) (bool, [][]string) {
	return match(pattern.components, path)
}

// MatchPatterns picks the best-ranked pattern in patterns that matches
// path, per the package doc's ranking rule. It returns -1 and a nil capture
// set if none match.
func MatchPatterns(patterns []Pattern, path []string) (int, [][]string) {
	best := -1
	var bestCaps [][]string

	for i, p := range patterns {
		ok, caps := Match(p, path)
		if !ok {
			continue
		}
		if best == -1 {
			best, bestCaps = i, caps
			continue
		}
		curCount := p.componentCount()
		resCount := patterns[best].componentCount()
		if curCount > resCount || (curCount == resCount && p.WildcardCount < patterns[best].WildcardCount) {
			best, bestCaps = i, caps
		}
	}

	return best, bestCaps
}
