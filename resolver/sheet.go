package resolver

import (
	"regexp"
	"strings"
)

// SheetSpec describes how to find the data sheet of a workbook.
type SheetSpec struct {
	// Pattern is a sheet name with at most one {PLACEHOLDER}, for example
	// "PI{PI_NUMBER} - Capacity".
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	// Param, when set, is substituted for the placeholder.
	Param string `yaml:"-" json:"-"`
	// Fallbacks are exact names tried last, in order.
	Fallbacks []string `yaml:"fallbacks,omitempty" json:"fallbacks,omitempty"`
}

// SheetTier says which step of ResolveSheet found the sheet.
type SheetTier int

const (
	SheetTierNone SheetTier = iota
	SheetTierParam
	SheetTierPattern
	SheetTierFallback
)

// String returns the tier name.
func (t SheetTier) String() string {
	switch t {
	case SheetTierParam:
		return "param"
	case SheetTierPattern:
		return "pattern"
	case SheetTierFallback:
		return "fallback"
	default:
		return "none"
	}
}

// SheetMatch is a resolved sheet. Param holds the placeholder value, either
// the one supplied or the one read back from the matched name.
type SheetMatch struct {
	Name  string
	Param string
	Tier  SheetTier
}

var placeholderRe = regexp.MustCompile(`\{[^{}]*\}`)

// ResolveSheet picks the sheet described by spec from names:
//
//  1. with a Param, the pattern with the placeholder substituted, exactly;
//  2. the first name matching the pattern loosely (case-insensitive, any
//     whitespace between tokens, any word in place of the placeholder);
//  3. the first fallback name present, exactly.
//
// It returns false when none of these finds a sheet.
func ResolveSheet(names []string, spec SheetSpec) (SheetMatch, bool) {
	pattern := strings.TrimSpace(spec.Pattern)

	if pattern != "" && spec.Param != "" {
		want := substitute(pattern, spec.Param)
		for _, n := range names {
			if n == want {
				return SheetMatch{Name: n, Param: spec.Param, Tier: SheetTierParam}, true
			}
		}
	}

	if pattern != "" {
		if re, err := relaxedPattern(pattern); err == nil {
			for _, n := range names {
				m := re.FindStringSubmatch(n)
				if m == nil {
					continue
				}
				match := SheetMatch{Name: n, Tier: SheetTierPattern}
				if len(m) > 1 {
					match.Param = m[1]
				}
				return match, true
			}
		}
	}

	for _, fb := range spec.Fallbacks {
		for _, n := range names {
			if n == fb {
				return SheetMatch{Name: n, Tier: SheetTierFallback}, true
			}
		}
	}
	return SheetMatch{}, false
}

func substitute(pattern, param string) string {
	loc := placeholderRe.FindStringIndex(pattern)
	if loc == nil {
		return pattern
	}
	return pattern[:loc[0]] + param + pattern[loc[1]:]
}

// relaxedPattern compiles pattern into an anchored, case-insensitive
// expression that allows any whitespace between tokens and captures the
// placeholder.
func relaxedPattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?i)^\s*`)

	loc := placeholderRe.FindStringIndex(pattern)
	if loc == nil {
		b.WriteString(relaxedLiteral(pattern))
	} else {
		b.WriteString(relaxedLiteral(pattern[:loc[0]]))
		b.WriteString(`\s*(\w+)\s*`)
		b.WriteString(relaxedLiteral(pattern[loc[1]:]))
	}

	b.WriteString(`\s*$`)
	return regexp.Compile(b.String())
}

func relaxedLiteral(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(fields, `\s*`)
}
