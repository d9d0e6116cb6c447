package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	nibarchive "github.com/wippyai/nib-archive"
	"github.com/wippyai/nib-archive/errors"
	"github.com/wippyai/nib-archive/export"
	"github.com/wippyai/nib-archive/nib"
)

func runToJSON(e *env, args []string) error {
	a, err := e.open(args[0])
	if err != nil {
		return err
	}
	data, err := e.project(a, export.JSON)
	if err != nil {
		return err
	}
	if err := nibarchive.WriteFile(args[1], data); err != nil {
		return err
	}
	e.log.Info("wrote projection",
		zap.String("path", args[1]),
		zap.Int("objects", len(a.Objects)),
		zap.Int("bytes", len(data)))
	return nil
}

func runExport(e *env, args []string) error {
	name := e.opts.format
	if name == "" {
		name = e.cfg.Export.Format
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	a, err := e.open(args[0])
	if err != nil {
		return err
	}
	data, err := e.project(a, format)
	if err != nil {
		return err
	}

	if len(args) == 2 {
		return nibarchive.WriteFile(args[1], data)
	}
	if format.Binary() && isTerminal(e.stdout) {
		return fmt.Errorf("refusing to write %s to a terminal; give an output path or redirect stdout", format)
	}
	_, err = e.stdout.Write(data)
	return err
}

// project renders a in format f, flat or as a full document.
func (e *env) project(a *nib.Archive, f export.Format) ([]byte, error) {
	var (
		v   any
		err error
	)
	if e.opts.flat {
		v, err = export.Flat(a)
	} else {
		v, err = export.Project(a)
	}
	if err != nil {
		return nil, err
	}
	return export.Marshal(v, f, export.Options{Indent: e.cfg.Export.Indent})
}

// readAndDecode returns the raw file alongside the archive.
func (e *env) readAndDecode(path string) ([]byte, *nib.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Load(fmt.Sprintf("read %s", path), err)
	}
	a, err := nib.Decode(data, e.decodeOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open NIB archive %s: %w", path, err)
	}
	return data, a, nil
}

func runInfo(e *env, args []string) error {
	data, a, err := e.readAndDecode(args[0])
	if err != nil {
		return err
	}
	h, err := nib.ParseHeader(data)
	if err != nil {
		return err
	}

	p := newPrinter(e.stdout)
	p.title(args[0])
	p.field("size", fmt.Sprintf("%d bytes", len(data)))
	p.field("format", fmt.Sprint(h.FormatVersion))
	p.field("coder", fmt.Sprint(h.CoderVersion))
	p.table("objects", h.Objects)
	p.table("keys", h.Keys)
	p.table("values", h.Values)
	p.table("class names", h.ClassNames)
	p.field("trailing", fmt.Sprintf("%d bytes", len(a.Trailing)))
	p.field("blake3", nibarchive.Digest(data))

	canonical, err := nibarchive.CanonicalDigest(a)
	if err != nil {
		return err
	}
	if canonical == nibarchive.Digest(data) {
		p.field("canonical", "identical")
	} else {
		p.field("canonical", canonical)
	}

	p.field("warnings", fmt.Sprint(len(a.Warnings)))
	for _, w := range a.Warnings {
		p.warning(w.Error())
	}
	return p.err
}

func runVerify(e *env, args []string) error {
	data, a, err := e.readAndDecode(args[0])
	if err != nil {
		return err
	}
	out, err := a.Encode()
	if err != nil {
		return err
	}

	if bytes.Equal(data, out) {
		fmt.Fprintf(e.stdout, "ok: %s re-encodes byte for byte (%d bytes)\n", args[0], len(data))
		return nil
	}

	at := firstDifference(data, out)
	e.log.Debug("re-encoding differs",
		zap.String("path", args[0]),
		zap.Int("offset", at),
		zap.Int("input", len(data)),
		zap.Int("output", len(out)))
	return &exitError{
		code: 2,
		msg: fmt.Sprintf("differs: %s re-encodes to %d bytes (input %d), first difference at offset %d",
			args[0], len(out), len(data), at),
	}
}

func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func runDiff(e *env, args []string) error {
	left, err := e.open(args[0])
	if err != nil {
		return err
	}
	right, err := e.open(args[1])
	if err != nil {
		return err
	}

	out, err := export.Diff(left, right)
	if err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	if _, err := fmt.Fprintf(e.stdout, "--- %s\n+++ %s\n%s", args[0], args[1], out); err != nil {
		return err
	}
	return &exitError{code: 1}
}

func runBrowse(e *env, args []string) error {
	if !isTerminal(e.stdout) {
		return fmt.Errorf("browse needs a terminal; use info or export instead")
	}
	a, err := e.open(args[0])
	if err != nil {
		return err
	}
	return runInteractive(args[0], a)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printer writes aligned "label value" lines, styled when the output is a
// terminal. The first write error is kept in err.
type printer struct {
	w     io.Writer
	color bool
	err   error
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, color: isTerminal(w)}
}

func (p *printer) line(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s+"\n")
	}
}

func (p *printer) title(s string) {
	if p.color {
		s = titleStyle.Render(s)
	}
	p.line(s)
}

func (p *printer) field(label, value string) {
	label = fmt.Sprintf("%-12s", label)
	if p.color {
		label = labelStyle.Render(label)
	}
	p.line(label + value)
}

func (p *printer) table(label string, t nib.Table) {
	p.field(label, fmt.Sprintf("%d at offset %d", t.Count, t.Offset))
}

func (p *printer) warning(s string) {
	s = "  " + strings.TrimSpace(s)
	if p.color {
		s = errorStyle.Render(s)
	}
	p.line(s)
}
