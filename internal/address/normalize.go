// Package address canonicalizes US street addresses so that matching can use
// plain string equality and substring containment.
package address

import (
	"regexp"
	"strings"
)

// expansion is one whole-word rewrite applied during normalization.
type expansion struct {
	re   *regexp.Regexp
	full string
}

// Street suffixes first, then directionals. Slice order keeps the rewrite
// sequence deterministic.
var expansions = buildExpansions([]struct{ abbr, full string }{
	{"ST", "STREET"},
	{"AVE", "AVENUE"},
	{"BLVD", "BOULEVARD"},
	{"DR", "DRIVE"},
	{"RD", "ROAD"},
	{"LN", "LANE"},
	{"CT", "COURT"},
	{"PL", "PLACE"},
	{"TER", "TERRACE"},
	{"WAY", "WAY"},
	{"CIR", "CIRCLE"},
	{"PKWY", "PARKWAY"},
	{"N", "NORTH"},
	{"S", "SOUTH"},
	{"E", "EAST"},
	{"W", "WEST"},
	{"NE", "NORTHEAST"},
	{"NW", "NORTHWEST"},
	{"SE", "SOUTHEAST"},
	{"SW", "SOUTHWEST"},
})

func buildExpansions(rules []struct{ abbr, full string }) []expansion {
	out := make([]expansion, 0, len(rules))
	for _, r := range rules {
		out = append(out, expansion{regexp.MustCompile(`\b` + r.abbr + `\b`), r.full})
	}
	return out
}

var (
	punctRe    = regexp.MustCompile(`[^\w\s-]`)
	spaceRe    = regexp.MustCompile(`\s+`)
	leadZeroRe = regexp.MustCompile(`\b0+(\d+)\b`)
	unitRe     = regexp.MustCompile(`\b(UNIT|APT|SUITE|STE|#)\s*`)
	stateZipRe = regexp.MustCompile(`^([A-Z]{2})\s*(\d{5}(?:-\d{4})?)?`)
)

// Normalize canonicalizes an address: uppercase, punctuation stripped
// (hyphens kept), whitespace collapsed, suffix and directional abbreviations
// expanded on word boundaries, leading zeros removed from numeric tokens,
// and unit markers rewritten to "UNIT ". Idempotent and total; empty input
// yields empty output.
func Normalize(addr string) string {
	if addr == "" {
		return ""
	}
	s := strings.ToUpper(strings.TrimSpace(addr))
	s = punctRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	for _, e := range expansions {
		s = e.re.ReplaceAllString(s, e.full)
	}
	s = leadZeroRe.ReplaceAllString(s, "$1")
	s = unitRe.ReplaceAllString(s, "UNIT ")
	return strings.TrimSpace(s)
}

// Components are the comma-separated logical parts of a free-text address.
type Components struct {
	Street string
	City   string
	State  string
	Zip    string
}

// ExtractComponents splits an address into street, city and "state zip"
// parts. The third part must start with a two-letter state code, optionally
// followed by a 5 or 5+4 digit ZIP. Missing parts come back as empty
// strings; extra parts are ignored.
func ExtractComponents(addr string) Components {
	var c Components
	if strings.TrimSpace(addr) == "" {
		return c
	}
	parts := strings.Split(addr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	c.Street = parts[0]
	if len(parts) > 1 {
		c.City = parts[1]
	}
	if len(parts) > 2 {
		if m := stateZipRe.FindStringSubmatch(parts[2]); m != nil {
			c.State = m[1]
			c.Zip = m[2]
		}
	}
	return c
}
