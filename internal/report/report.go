// Package report renders a scored validation result as a human-readable
// markdown document. The renderer fills a fixed starter template by
// placeholder replacement; all formatting lives in the template text.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/questbench/txvalidator/internal/check"
)

var starterTemplate = `# Transaction Validation Report

This document summarizes the scored validation of a generated transaction.

## Verdict

> <<Verdict>>
>
> - Operation: ` + "`<<Operation>>`" + `
> - Score: ` + "`<<Score>> / <<MaxScore>>`" + `
<<StatusLine>>

## Checks

| Check | Result | Score | Detail |
|-------|--------|-------|--------|
<<Checks>>

<<StartDetails>>

## Details

<<Details>>

<<EndDetails>>

<<StartTrace>>

## Evaluation Trace

<<Trace>>

<<EndTrace>>
`

// Render produces the markdown report for a result.
func Render(operation string, res *check.ValidationResult) []byte {
	verdict := "❌ FAILED"
	if res.Passed {
		verdict = "✅ PASSED"
	}

	out := starterTemplate
	out = strings.Replace(out, "<<Verdict>>", verdict, 1)
	out = strings.Replace(out, "<<Operation>>", operation, 1)
	out = strings.Replace(out, "<<Score>>", fmt.Sprintf("%.0f", res.Score), 1)
	out = strings.Replace(out, "<<MaxScore>>", fmt.Sprintf("%d", res.MaxScore), 1)

	statusLine := ""
	if res.Status != "" {
		statusLine = fmt.Sprintf("> - Status: `%s`", res.Status)
	}
	out = strings.Replace(out, "<<StatusLine>>", statusLine, 1)
	out = strings.Replace(out, "<<Checks>>", renderChecks(res.Checks), 1)
	out = fillSection(out, "Details", renderDetails(res.Details))
	out = fillSection(out, "Trace", renderTrace(res.Trace))

	return []byte(strings.TrimSuffix(collapseBlankRuns(out), "\n") + "\n")
}

func renderChecks(checks []check.Result) string {
	var b strings.Builder
	for _, c := range checks {
		mark := "❌"
		if c.Passed {
			mark = "✅"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", c.Name, mark, c.Score, escapeCell(c.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- **%s**: `%v`\n", k, details[k])
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderTrace(trace []string) string {
	var b strings.Builder
	for i, line := range trace {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// fillSection replaces the named section's body, or removes the section
// entirely when the body is empty.
func fillSection(template, name, body string) string {
	startKey := "<<Start" + name + ">>\n\n"
	endKey := "<<End" + name + ">>\n"

	if body == "" {
		startIdx := strings.Index(template, startKey)
		endIdx := strings.Index(template, endKey)
		if startIdx < 0 || endIdx < 0 {
			return template
		}
		return template[:startIdx] + template[endIdx+len(endKey):]
	}

	template = strings.Replace(template, startKey, "", 1)
	template = strings.Replace(template, endKey, "", 1)
	return strings.Replace(template, "<<"+name+">>", body, 1)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", "\\|"), "\n", " ")
}

func collapseBlankRuns(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
