package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// All field patterns are anchored to the start of a line. SMW tags are
// short and several are substrings of longer tags (DI vs SDI), so an
// unanchored search would silently read the wrong field.
var (
	// Pattern: ObjTp=<record type>
	objTpPattern = regexp.MustCompile(`(?m)^ObjTp=(\w+)\r?$`)

	// Pattern: H=<decimal handle>
	handlePattern = regexp.MustCompile(`(?m)^H=(\d+)\r?$`)

	// Pattern: Nm=<name, rest of line>
	namePattern = regexp.MustCompile(`(?m)^Nm=(.*)$`)

	// Pattern: Ad=<hex address>
	addressPattern = regexp.MustCompile(`(?m)^Ad=([0-9A-Fa-f]+)\r?$`)

	// Pattern: ObjVer=<version>
	versionPattern = regexp.MustCompile(`(?m)^ObjVer=(\d+)\r?$`)

	// Declared I/O count fields
	digitalInPattern  = regexp.MustCompile(`(?m)^DI=(\d+)\r?$`)
	analogInPattern   = regexp.MustCompile(`(?m)^AI=(\d+)\r?$`)
	totalInPattern    = regexp.MustCompile(`(?m)^TI=(\d+)\r?$`)
	digitalOutPattern = regexp.MustCompile(`(?m)^DO=(\d+)\r?$`)

	// Join assignments: I<raw index>=<signal handle>, O<raw index>=<signal handle>
	inputJoinPattern  = regexp.MustCompile(`(?m)^I(\d+)=(\d+)\r?$`)
	outputJoinPattern = regexp.MustCompile(`(?m)^O(\d+)=(\d+)\r?$`)
)

// matchObjTp returns the record type tag, or "" if the record has none.
func matchObjTp(text string) string {
	if m := objTpPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// matchHandle returns the record's handle as its literal digit string.
// Handles stay strings so lookup preserves the document's exact spelling.
func matchHandle(text string) string {
	if m := handlePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// matchName returns the record's name field, trimmed.
func matchName(text string) (string, bool) {
	if m := namePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// matchAddress returns the record's hex address, case preserved.
func matchAddress(text string) string {
	if m := addressPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// matchVersion returns the record's ObjVer value, or -1 if absent.
func matchVersion(text string) int {
	if m := versionPattern.FindStringSubmatch(text); m != nil {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return -1
		}
		return v
	}
	return -1
}

// matchCount returns a declared count field's value, defaulting to 0
// when the field is missing.
func matchCount(p *regexp.Regexp, text string) int {
	if m := p.FindStringSubmatch(text); m != nil {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return 0
		}
		return v
	}
	return 0
}

// hasTotalIn reports whether the record declares a TI field at all.
// A block without one is not a usable device definition.
func hasTotalIn(text string) bool {
	return totalInPattern.MatchString(text)
}

// modelNamePattern builds an exact-match pattern for a model name.
// Anchoring both ends keeps "TSW-560" from selecting "TSW-560-NAV".
func modelNamePattern(model string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^Nm=` + regexp.QuoteMeta(model) + `\r?$`)
}
