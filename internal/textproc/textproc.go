// Package textproc prepares raw input text for flashcard generation.
package textproc

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Paragraphs shorter than this are assumed to be headers or noise.
const minParagraphLen = 20

const (
	// FormatPlain leaves the text as-is apart from whitespace cleanup.
	FormatPlain = "plain"
	// FormatMarkdown additionally strips lightweight markup before cleanup.
	FormatMarkdown = "markdown"
)

var (
	headingPattern   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldPattern      = regexp.MustCompile(`(\*\*|__)(.*?)(\*\*|__)`)
	italicPattern    = regexp.MustCompile(`(\*|_)(.*?)(\*|_)`)
	blankLinePattern = regexp.MustCompile(`\n\s*\n`)
)

// Normalize cleans raw input text: markup stripping when hinted,
// whitespace collapse within paragraphs, removal of paragraphs shorter
// than the minimum content length, rejoined with blank lines. It never
// fails; the result may be empty if every paragraph was filtered.
func Normalize(raw, formatHint string) string {
	text := raw

	if formatHint == FormatMarkdown {
		text = headingPattern.ReplaceAllString(text, "")
		text = boldPattern.ReplaceAllString(text, "$2")
		text = italicPattern.ReplaceAllString(text, "$2")
	}

	var kept []string
	for _, para := range blankLinePattern.Split(text, -1) {
		// Collapse all whitespace runs, newlines included, to single spaces.
		para = strings.Join(strings.Fields(para), " ")
		if len(para) <= minParagraphLen {
			continue
		}
		kept = append(kept, para)
	}

	return strings.Join(kept, "\n\n")
}

// Truncate caps text at max bytes to control generation cost. The cut
// backs up to the nearest rune boundary so the result stays valid UTF-8.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
