package scan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/pagina/model"
)

// Paragraphs splits recognized page text into paragraphs at blank lines.
//
// Line breaks inside a block are soft wraps from the page layout, so the
// block is rejoined into a single run of text. A word hyphenated across
// lines ("para-" / "graph") is stitched back together when the next line
// starts with a lowercase letter; a hyphen before a capitalized line is
// treated as part of a compound and kept.
func Paragraphs(text string) []*model.Paragraph {
	var paras []*model.Paragraph
	var block []string

	flush := func() {
		if len(block) == 0 {
			return
		}
		paras = append(paras, &model.Paragraph{Text: joinLines(block)})
		block = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	return paras
}

// joinLines merges the wrapped lines of one block into a single string.
func joinLines(lines []string) string {
	out := lines[0]
	for _, line := range lines[1:] {
		if strings.HasSuffix(out, "-") {
			if startsLower(line) {
				out = strings.TrimSuffix(out, "-") + line
			} else {
				out += line
			}
			continue
		}
		out += " " + line
	}
	return out
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
