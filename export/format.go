package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/nib-archive/errors"
)

// Format selects an output encoding.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	CBOR    Format = "cbor"
	MsgPack Format = "msgpack"
)

// Formats lists every supported format.
var Formats = []Format{JSON, YAML, CBOR, MsgPack}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case JSON, YAML, CBOR, MsgPack:
		return f, nil
	case "yml":
		return YAML, nil
	case "mpk":
		return MsgPack, nil
	}
	return "", errors.Unsupported(errors.PhaseExport, fmt.Sprintf("format %q", name))
}

// Binary reports whether f produces non-text output.
func (f Format) Binary() bool {
	return f == CBOR || f == MsgPack
}

// Options tune text output.
type Options struct {
	// Indent is the indentation width for JSON and YAML. Zero writes
	// compact JSON and default-indented YAML.
	Indent int
}

// cborMode encodes with Core Deterministic Encoding: sorted map keys and
// shortest-form integers, so equal projections give equal bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// Marshal encodes a projection (a *Document or the result of Flat) in f.
// Text formats end with a newline.
func Marshal(v any, f Format, opts Options) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch f {
	case JSON:
		out, err = marshalJSON(v, opts.Indent)
	case YAML:
		out, err = marshalYAML(v, opts.Indent)
	case CBOR:
		out, err = cborMode.Marshal(v)
	case MsgPack:
		out, err = marshalMsgPack(v)
	default:
		return nil, errors.Unsupported(errors.PhaseExport, fmt.Sprintf("format %q", f))
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidInput, err,
			fmt.Sprintf("encode %s", f))
	}
	return out, nil
}

// Write encodes v in f to w.
func Write(w io.Writer, v any, f Format, opts Options) error {
	data, err := Marshal(v, f, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func marshalJSON(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalYAML(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if indent > 0 {
		enc.SetIndent(indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalMsgPack(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
