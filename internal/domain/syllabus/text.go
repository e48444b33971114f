package syllabus

import (
	"strings"
	"unicode"
)

// MinTextRunes is the smallest amount of non-whitespace text a document must
// yield before it is treated as readable. Below it the document is most
// likely a scanned image.
const MinTextRunes = 20

// JoinPages concatenates page text in document order. Every page boundary is
// a line break so lines from adjacent pages never merge.
func JoinPages(pages []string) string {
	var builder strings.Builder
	for i, page := range pages {
		if i > 0 {
			builder.WriteByte('\n')
		}
		builder.WriteString(strings.TrimRight(page, "\r\n"))
	}
	return strings.TrimSpace(builder.String())
}

// CheckText fails with ErrNoTextFound when text has fewer than minRunes
// non-whitespace runes. A non-positive minRunes uses MinTextRunes.
func CheckText(text string, minRunes int) error {
	if minRunes <= 0 {
		minRunes = MinTextRunes
	}
	count := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		count++
		if count >= minRunes {
			return nil
		}
	}
	return ErrNoTextFound
}
