package export

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/wippyai/nib-archive/nib"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 3

// Diff compares the YAML Document projections of a and b line by line.
// Removed lines start with "- ", added lines with "+ " and context lines
// with two spaces; runs of unchanged lines between hunks collapse to "@@".
// Equal archives give an empty string.
func Diff(a, b *nib.Archive) (string, error) {
	left, err := yamlDocument(a)
	if err != nil {
		return "", err
	}
	right, err := yamlDocument(b)
	if err != nil {
		return "", err
	}
	return diffLines(left, right), nil
}

func yamlDocument(a *nib.Archive) (string, error) {
	doc, err := Project(a)
	if err != nil {
		return "", err
	}
	// Warnings depend on how the archive was read, not on its content.
	doc.Warnings = nil
	out, err := Marshal(doc, YAML, Options{Indent: 2})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type diffLine struct {
	op   diffpatch.Operation
	text string
}

func diffLines(from, to string) string {
	dmp := diffpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var lines []diffLine
	changed := false
	for _, d := range diffs {
		if d.Type != diffpatch.DiffEqual {
			changed = true
		}
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text != "" {
				lines = append(lines, diffLine{op: d.Type, text: strings.TrimSuffix(text, "\n")})
			}
		}
	}
	if !changed {
		return ""
	}

	// Keep each line that is within diffContext of a change.
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.op == diffpatch.DiffEqual {
			continue
		}
		for j := max(0, i-diffContext); j <= min(len(lines)-1, i+diffContext); j++ {
			keep[j] = true
		}
	}

	var sb strings.Builder
	skipped := false
	for i, l := range lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped && sb.Len() > 0 {
			sb.WriteString("@@\n")
		}
		skipped = false
		switch l.op {
		case diffpatch.DiffInsert:
			sb.WriteString("+ ")
		case diffpatch.DiffDelete:
			sb.WriteString("- ")
		default:
			sb.WriteString("  ")
		}
		sb.WriteString(l.text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
