package policy

import (
	"fmt"
	"regexp"
	"regexp/syntax"
)

// Size and nesting limits the engine enforces on every compiled pattern.
// A backtracking-heavy regex dialect could make these unenforceable; Go's
// regexp package is RE2-based (linear time, no backreferences or
// lookaround), which is precisely why it is the right engine here.
const (
	maxPatternSize  = 1 << 20
	maxPatternNest  = 50
	maxPatternBytes = 4096
)

// syntaxFlags is syntax.Perl with UnicodeGroups removed: command matching
// never needs \p{...}/\P{...} classes, and disabling them keeps pattern
// authors from accidentally writing locale-sensitive rules.
const syntaxFlags = syntax.Perl &^ syntax.UnicodeGroups

// Pattern is a compiled regular expression paired with its original source
// string, as policy authors wrote it.
type Pattern struct {
	source   string
	compiled *regexp.Regexp
}

// Source returns the pattern's original regex text.
func (p Pattern) Source() string { return p.source }

// MatchString reports whether the pattern matches anywhere in s. Policy
// authors are responsible for anchoring (e.g. "^ls ") — the engine never
// re-anchors on their behalf.
func (p Pattern) MatchString(s string) bool {
	return p.compiled.MatchString(s)
}

// compilePattern validates and compiles a single pattern source string,
// rejecting anything that could make matching superlinear or that relies
// on Unicode character classes.
func compilePattern(src string) (Pattern, error) {
	if len(src) == 0 {
		return Pattern{}, fmt.Errorf("pattern: empty pattern source")
	}
	if len(src) > maxPatternBytes {
		return Pattern{}, fmt.Errorf("pattern: source exceeds %d bytes", maxPatternBytes)
	}

	parsed, err := syntax.Parse(src, syntaxFlags)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: %w", src, err)
	}

	size := 0
	depth := regexpDepth(parsed, 0, &size)
	if size > maxPatternSize {
		return Pattern{}, fmt.Errorf("pattern %q: exceeds size limit (%d > %d)", src, size, maxPatternSize)
	}
	if depth > maxPatternNest {
		return Pattern{}, fmt.Errorf("pattern %q: exceeds nesting limit (%d > %d)", src, depth, maxPatternNest)
	}

	compiled, err := regexp.Compile(src)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: %w", src, err)
	}
	compiled.Longest() // leftmost-longest, never the result of backtracking preference

	return Pattern{source: src, compiled: compiled}, nil
}

// regexpDepth walks the parsed AST, accumulating the total node count into
// size and returning the maximum nesting depth below this node.
func regexpDepth(re *syntax.Regexp, depth int, size *int) int {
	*size++
	maxChild := depth
	for _, sub := range re.Sub {
		if d := regexpDepth(sub, depth+1, size); d > maxChild {
			maxChild = d
		}
	}
	return maxChild
}
