// Package libdiff renders line differences between documents.
package libdiff

import (
	"bytes"
	"strings"

	"github.com/signadot/graphcodec/encode"
	"github.com/signadot/graphcodec/format"
	"github.com/signadot/graphcodec/ir"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns the line diff of a and b rendered as indented JSON, or "" when
// they are equal. Removed lines are prefixed with "-", added lines with "+"
// and unchanged lines with a space.
func Diff(a, b *ir.Node) (string, error) {
	if ir.Equal(a, b) {
		return "", nil
	}
	from, err := render(a)
	if err != nil {
		return "", err
	}
	to, err := render(b)
	if err != nil {
		return "", err
	}
	return DiffText(from, to), nil
}

// DiffText is Diff for text already rendered.
func DiffText(from, to string) string {
	if from == to {
		return ""
	}
	dmp := diffpatch.New()
	fromChars, toChars, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(fromChars, toChars, false), lines)
	buf := &strings.Builder{}
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix = "+"
		case diffpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			buf.WriteString(prefix)
			buf.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				buf.WriteByte('\n')
			}
		}
	}
	return buf.String()
}

func render(node *ir.Node) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(node, buf, encode.EncodeFormat(format.JSONFormat)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
