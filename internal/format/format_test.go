package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLegacyStepListNeverFails(t *testing.T) {
	p := LegacyStepList()
	for _, in := range []string{
		"",
		"   ",
		"plain prose without any markers",
		"^",
		"x^",
		"\n\n\n",
	} {
		require.NotPanics(t, func() { _ = p.Normalize(in) }, "input %q", in)
	}
	require.Equal(t, "", p.Normalize(""))
	require.Equal(t, "plain prose", p.Normalize("plain prose"))
}

func TestSuperscriptTags(t *testing.T) {
	got := LegacyStepList().Normalize("x^2 + 3")
	require.Contains(t, got, "x<sup>2</sup>")
	require.NotContains(t, got, "x²", "glyph rule must not double-apply once the generic rule consumed ^2")
	require.NotContains(t, got, "^2")
}

func TestSuperscriptGlyphStageAloneStillRewrites(t *testing.T) {
	// In isolation the legacy stage still works; inside the pipeline it is
	// a no-op because superscriptTags runs first.
	require.Equal(t, "x²", superscriptGlyphs("x^2"))
	require.Equal(t, "x<sup>2</sup>", superscriptGlyphs(superscriptTags("x^2")))
}

func TestCollapseBlankLines(t *testing.T) {
	require.Equal(t, "a\nb", collapseBlankLines("  a\n\n\nb  "))
	require.Equal(t, "a\nb", collapseBlankLines("a\n   \nb"))
}

func TestBoldFinalAnswer(t *testing.T) {
	got := LegacyStepList().Normalize("Final answer: 42")
	require.Equal(t, "<strong>Final Answer: 42</strong>", got)
	require.Equal(t, 1, strings.Count(got, "<strong>"))
}

func TestBoldFinalAnswerMarkers(t *testing.T) {
	for _, in := range []string{"The answer is 7", "the ANSWER IS: 7", "Result: 7", "result 7"} {
		got := LegacyStepList().Normalize(in)
		require.Contains(t, got, "<strong>Final Answer: 7</strong>", "input %q", in)
	}
}

func TestBoldFinalAnswerIsGreedyAcrossLines(t *testing.T) {
	got := LegacyStepList().Normalize("The answer is: 7\nBecause.")
	require.Equal(t, "<strong>Final Answer: 7<br>Because.</strong>", got)
}

func TestStepList(t *testing.T) {
	got := LegacyStepList().Normalize("1. Do this\n2. Do that\nDone.")
	require.Equal(t, "<ol><br><li>Do this</li><br><li>Do that</li><br></ol><br>Done.", got)
}

func TestStepListParenthesisMarker(t *testing.T) {
	got := LegacyStepList().Normalize("1) First\n2) Second")
	require.Equal(t, "<ol><br><li>First</li><br><li>Second</li><br></ol>", got)
}

func TestStepListClosesBetweenRuns(t *testing.T) {
	got := LegacyStepList().Normalize("1. A\nnote\n1. B")
	require.Equal(t, "<ol><br><li>A</li><br></ol><br>note<br><ol><br><li>B</li><br></ol>", got)
}

func TestStepListIdempotentOnFormattedOutput(t *testing.T) {
	once := stepList("1. Do this\n2. Do that\nDone.")
	twice := stepList(once)
	require.Equal(t, strings.Count(once, "<ol>"), strings.Count(twice, "<ol>"))
	require.Equal(t, strings.Count(once, "</ol>"), strings.Count(twice, "</ol>"))
}

func TestSimpleStepPassthrough(t *testing.T) {
	p := SimpleStepPassthrough()
	got := p.Normalize("  Step 1: isolate x  \n\nsome note\nFinal Answer: x = 3\n")
	require.Equal(t, "Step 1: isolate x<br>some note<br><strong>Final Answer: x = 3</strong>", got)
}

func TestSimpleStepPassthroughTotal(t *testing.T) {
	p := SimpleStepPassthrough()
	require.Equal(t, "", p.Normalize(""))
	require.Equal(t, "", p.Normalize("\n \n"))
	require.Equal(t, "x^2 stays", p.Normalize("x^2 stays"))
}

func TestByName(t *testing.T) {
	p, err := ByName("legacy")
	require.NoError(t, err)
	require.Equal(t, "legacy-step-list", p.Name())

	p, err = ByName("simple")
	require.NoError(t, err)
	require.Equal(t, "simple-step-passthrough", p.Name())

	p, err = ByName("")
	require.NoError(t, err)
	require.Equal(t, "legacy-step-list", p.Name())

	_, err = ByName("fancy")
	require.Error(t, err)
}
