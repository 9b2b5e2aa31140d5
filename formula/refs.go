package formula

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// refPattern matches a single A1-style cell reference. Trailing
	// digits keep it from matching function names like SUM.
	refPattern = regexp.MustCompile(`\b([A-Z]{1,3})([0-9]+)\b`)

	// anyCaseRef matches references before case normalization.
	anyCaseRef = regexp.MustCompile(`\b([A-Za-z]{1,3})([0-9]+)\b`)

	// rangePattern matches an A1:B3 cell range.
	rangePattern = regexp.MustCompile(`\b([A-Za-z]{1,3}[0-9]+)\s*:\s*([A-Za-z]{1,3}[0-9]+)\b`)
)

// translate rewrites a formula expression into JavaScript: ranges
// expand to comma-separated reference lists and references normalize to
// upper case so they match the bound variables.
func translate(expr string) string {
	js := rangePattern.ReplaceAllStringFunc(expr, func(m string) string {
		parts := rangePattern.FindStringSubmatch(m)
		return expandRange(parts[1], parts[2])
	})
	return anyCaseRef.ReplaceAllStringFunc(js, strings.ToUpper)
}

// expandRange lists the individual references covered by a range,
// row-major. An unparseable endpoint leaves the range text unchanged
// so evaluation surfaces the error.
func expandRange(from, to string) string {
	r1, c1, ok1 := parseRef(strings.ToUpper(from))
	r2, c2, ok2 := parseRef(strings.ToUpper(to))
	if !ok1 || !ok2 {
		return from + ":" + to
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}

	var refs []string
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			refs = append(refs, cellRef(r, c))
		}
	}
	return strings.Join(refs, ",")
}

// parseRef converts an upper-case A1-style reference to zero-based row
// and column indices.
func parseRef(ref string) (row, col int, ok bool) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, false
	}
	n, err := strconv.Atoi(ref[i:])
	if err != nil || n < 1 {
		return 0, 0, false
	}
	return n - 1, col - 1, true
}

// cellRef renders zero-based row and column indices as an A1-style
// reference.
func cellRef(row, col int) string {
	var letters []byte
	for c := col + 1; c > 0; c = (c - 1) / 26 {
		letters = append([]byte{byte('A' + (c-1)%26)}, letters...)
	}
	return string(letters) + strconv.Itoa(row+1)
}
