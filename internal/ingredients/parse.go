package ingredients

import (
	"regexp"
	"strings"
)

var quantityRe = regexp.MustCompile(`^([\d./\s]+)\s*([a-zA-Z]+)?\s+(.*)$`)

// parseLine splits a raw ingredient line into (quantity, unit, name) on a
// best-effort basis: a line the regex can't decompose is kept whole as the
// name with an empty quantity/unit, never an error — malformed ingredient
// text is expected input, not a pipeline failure.
func parseLine(raw string) (quantity, unit, name string) {
	raw = strings.TrimSpace(raw)
	m := quantityRe.FindStringSubmatch(raw)
	if m == nil {
		return "", "", raw
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
}
