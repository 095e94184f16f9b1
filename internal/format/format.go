// Package format turns raw LLM completions into presentation-ready text.
//
// Two pipelines exist because two historical endpoints formatted answers
// differently. LegacyStepList is the canonical web variant (HTML ordered
// lists, <sup> exponents); SimpleStepPassthrough is the lighter variant
// used by the Telegram front end. Each pipeline is an ordered chain of
// pure stages, so individual rules stay independently testable.
package format

import (
	"fmt"
	"regexp"
	"strings"
)

// LineBreak joins every emitted line in both pipelines.
const LineBreak = "<br>"

// Stage is a single pure text transform.
type Stage struct {
	Name  string
	Apply func(string) string
}

// Pipeline applies its stages in order. Normalize is total: it never fails,
// worst case the input comes back lightly modified.
type Pipeline struct {
	name   string
	stages []Stage
}

func (p Pipeline) Name() string { return p.name }

func (p Pipeline) Normalize(raw string) string {
	s := raw
	for _, st := range p.stages {
		s = st.Apply(s)
	}
	return s
}

// LegacyStepList is the original formatting chain: exponent markup,
// whitespace collapse, final-answer emphasis, numbered steps as <ol>.
func LegacyStepList() Pipeline {
	return Pipeline{
		name: "legacy-step-list",
		stages: []Stage{
			{Name: "superscript-tags", Apply: superscriptTags},
			{Name: "superscript-glyphs", Apply: superscriptGlyphs},
			{Name: "collapse-blank-lines", Apply: collapseBlankLines},
			{Name: "bold-final-answer", Apply: boldFinalAnswer},
			{Name: "step-list", Apply: stepList},
		},
	}
}

// SimpleStepPassthrough trims lines, drops blanks and bolds the final
// answer, leaving everything else verbatim.
func SimpleStepPassthrough() Pipeline {
	return Pipeline{
		name: "simple-step-passthrough",
		stages: []Stage{
			{Name: "passthrough-lines", Apply: passthroughLines},
		},
	}
}

// ByName resolves a pipeline from configuration ("legacy" or "simple").
func ByName(name string) (Pipeline, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "legacy", "legacy-step-list":
		return LegacyStepList(), nil
	case "simple", "simple-step-passthrough":
		return SimpleStepPassthrough(), nil
	default:
		return Pipeline{}, fmt.Errorf("format: unknown pipeline %q; use 'legacy' or 'simple'", name)
	}
}

var reSuperscript = regexp.MustCompile(`\^(\d+)`)

func superscriptTags(s string) string {
	return reSuperscript.ReplaceAllString(s, "<sup>$1</sup>")
}

// literalGlyphs predates superscriptTags, which already consumes every
// "^<digit>" token, so on caret input these replacements never fire.
// The stage is kept, ordered after the generic rule, for compatibility
// with the historical output.
var literalGlyphs = [][2]string{
	{"x^2", "x²"}, {"x^3", "x³"}, {"x^4", "x⁴"}, {"x^5", "x⁵"},
	{"x^6", "x⁶"}, {"x^7", "x⁷"}, {"x^8", "x⁸"}, {"x^9", "x⁹"},
}

func superscriptGlyphs(s string) string {
	for _, g := range literalGlyphs {
		s = strings.ReplaceAll(s, g[0], g[1])
	}
	return s
}

var reBlankRun = regexp.MustCompile(`\n\s*\n`)

func collapseBlankLines(s string) string {
	return reBlankRun.ReplaceAllString(strings.TrimSpace(s), "\n")
}

// reFinalAnswer is deliberately greedy across newlines: everything from the
// marker to the end of the text lands inside the bold span, matching the
// historical behavior. At most one match can fire.
var reFinalAnswer = regexp.MustCompile(`(?is)(Final answer|The answer is|Result):?\s*(.+)`)

func boldFinalAnswer(s string) string {
	return reFinalAnswer.ReplaceAllString(s, "<strong>Final Answer: $2</strong>")
}

var reStepLine = regexp.MustCompile(`^\d+[.)]\s`)

func stepList(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines)+2)
	inList := false
	for _, line := range lines {
		if reStepLine.MatchString(line) {
			if !inList {
				out = append(out, "<ol>")
				inList = true
			}
			content := line
			if i := strings.Index(line, " "); i >= 0 {
				content = line[i+1:]
			}
			out = append(out, "<li>"+content+"</li>")
			continue
		}
		if inList {
			out = append(out, "</ol>")
			inList = false
		}
		out = append(out, line)
	}
	if inList {
		out = append(out, "</ol>")
	}
	return strings.Join(out, LineBreak)
}

func passthroughLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			// blank lines are dropped
		case strings.HasPrefix(line, "Step "):
			out = append(out, line)
		case strings.HasPrefix(strings.ToLower(line), "final answer:"):
			out = append(out, "<strong>"+line+"</strong>")
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, LineBreak)
}
