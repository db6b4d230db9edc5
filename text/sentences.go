package text

import (
	"strings"
	"unicode"
)

// SplitSentences splits text into trimmed sentences in their original order.
//
// A sentence ends at '.', '!' or '?' when followed by whitespace or the end of
// the text (closing quotes and brackets stay with the sentence), or at a line
// break. Terminal punctuation is kept. Abbreviations are not recognized, so
// "e.g. this" yields two sentences.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	emit := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			sentences = append(sentences, collapseSpace(s))
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\n' || r == '\r':
			emit(i)
		case r == '.' || r == '!' || r == '?':
			end := i + 1
			for end < len(runes) && isCloser(runes[end]) {
				end++
			}
			if end == len(runes) || unicode.IsSpace(runes[end]) {
				emit(end)
				i = end - 1
			}
		}
	}
	emit(len(runes))
	return sentences
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
