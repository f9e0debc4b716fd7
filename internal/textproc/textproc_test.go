package textproc

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	in := "This  paragraph \t has   irregular whitespace runs inside it."
	out := Normalize(in, FormatPlain)

	if strings.Contains(out, "  ") {
		t.Errorf("Expected collapsed whitespace, got %q", out)
	}
	if out != "This paragraph has irregular whitespace runs inside it." {
		t.Errorf("Unexpected normalization result: %q", out)
	}
}

func TestNormalize_DropsShortParagraphs(t *testing.T) {
	short := "tiny"
	long := "This paragraph is definitely long enough to survive."
	out := Normalize(short+"\n\n"+long, FormatPlain)

	if strings.Contains(out, short) {
		t.Errorf("Expected short paragraph to be removed, got %q", out)
	}
	if !strings.Contains(out, long) {
		t.Errorf("Expected long paragraph to be kept, got %q", out)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := "First paragraph with enough content to be kept around.\n\nhdr\n\nSecond paragraph that also clears the minimum length bar."

	once := Normalize(in, FormatPlain)
	twice := Normalize(once, FormatPlain)

	if once != twice {
		t.Errorf("Expected idempotent normalization:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestNormalize_StripsMarkdownMarkers(t *testing.T) {
	in := "## Heading text for this study section\n\nSome **bold words** and some _italic words_ inside a sentence."
	out := Normalize(in, FormatMarkdown)

	for _, marker := range []string{"#", "**", "_"} {
		if strings.Contains(out, marker) {
			t.Errorf("Expected marker %q to be stripped, got %q", marker, out)
		}
	}
	if !strings.Contains(out, "bold words") || !strings.Contains(out, "italic words") {
		t.Errorf("Expected inner text to be preserved, got %q", out)
	}
}

func TestNormalize_AllFiltered(t *testing.T) {
	out := Normalize("a\n\nbb\n\nccc", FormatPlain)
	if out != "" {
		t.Errorf("Expected empty result when every paragraph is filtered, got %q", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 4); got != "abcd" {
		t.Errorf("Expected 'abcd', got %q", got)
	}
	if got := Truncate("abc", 4); got != "abc" {
		t.Errorf("Expected 'abc', got %q", got)
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "é" is two bytes; a cap of 3 lands in the middle of it.
	if got := Truncate("aaé", 3); got != "aa" {
		t.Errorf("Expected 'aa', got %q", got)
	}

	long := strings.Repeat("日本語テキスト", 40)
	cut := Truncate(long, 100)
	if !utf8.ValidString(cut) {
		t.Errorf("Expected truncated text to remain valid UTF-8, got %q", cut)
	}
	if len(cut) > 100 {
		t.Errorf("Expected at most 100 bytes, got %d", len(cut))
	}
}
