package text

import (
	"unicode"

	"github.com/tsawler/pagina/model"
)

// Span is the rune range [Start, End) of one wrapped line. Offsets are
// absolute rune offsets into the string that was wrapped.
type Span struct {
	Start int
	End   int
}

// Wrap breaks s into line spans no wider than width using greedy word
// wrapping. A word wider than a whole line is broken at character
// granularity. The empty string yields a single empty span: even an empty
// paragraph occupies a line.
func Wrap(s string, width model.Twips, m Measurer) []Span {
	return WrapRange(s, 0, -1, width, m)
}

// WrapRange wraps the rune range [from, to) of s. A negative to means the
// end of the string. Continuation frames use this to re-break the
// remainder of a paragraph without touching the part already placed.
func WrapRange(s string, from, to int, width model.Twips, m Measurer) []Span {
	runes := []rune(s)
	if to < 0 || to > len(runes) {
		to = len(runes)
	}
	if from < 0 {
		from = 0
	}
	if from > to {
		from = to
	}
	if from == to {
		return []Span{{Start: from, End: to}}
	}

	words := splitWords(runes, from, to, m)
	if len(words) == 0 {
		// nothing but whitespace still occupies one line
		return []Span{{Start: from, End: to}}
	}

	space := m.AdvanceWidth(' ')
	var spans []Span
	lineStart, lineEnd := -1, -1
	var lineW model.Twips

	flush := func() {
		if lineStart >= 0 {
			spans = append(spans, Span{Start: lineStart, End: lineEnd})
			lineStart, lineEnd = -1, -1
			lineW = 0
		}
	}

	for _, wd := range words {
		if wd.width > width {
			// the word can never fit a line; break it at characters
			flush()
			cs := wd.start
			var cw model.Twips
			for k := wd.start; k < wd.end; k++ {
				a := m.AdvanceWidth(runes[k])
				if cw+a > width && k > cs {
					spans = append(spans, Span{Start: cs, End: k})
					cs = k
					cw = 0
				}
				cw += a
			}
			lineStart, lineEnd, lineW = cs, wd.end, cw
			continue
		}
		if lineStart < 0 {
			lineStart, lineEnd, lineW = wd.start, wd.end, wd.width
			continue
		}
		if lineW+space+wd.width > width {
			flush()
			lineStart, lineEnd, lineW = wd.start, wd.end, wd.width
			continue
		}
		lineW += space + wd.width
		lineEnd = wd.end
	}
	flush()
	return spans
}

type word struct {
	start, end int
	width      model.Twips
}

func splitWords(runes []rune, from, to int, m Measurer) []word {
	var words []word
	i := from
	for i < to {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		j := i
		var w model.Twips
		for j < to && !unicode.IsSpace(runes[j]) {
			w += m.AdvanceWidth(runes[j])
			j++
		}
		words = append(words, word{start: i, end: j, width: w})
		i = j
	}
	return words
}
