package codec

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	rdebug "runtime/debug"
	"sync"

	"github.com/signadot/graphcodec/encode"
	"github.com/signadot/graphcodec/format"
	"github.com/signadot/graphcodec/ir"
	"github.com/signadot/graphcodec/parse"
)

// Codec holds the configuration shared by conversions. It is immutable
// after New and safe for concurrent use.
type Codec struct {
	converters []Converter
	logger     *slog.Logger
	format     format.Format
	parseOpts  []parse.ParseOption
	encodeOpts []encode.EncodeOption
	hook       func(op string, t reflect.Type, ws []Warning)
	pool       *Pool
}

func New(opts ...Option) *Codec {
	c := &Codec{format: format.JSONFormat}
	for _, opt := range opts {
		opt(c)
	}
	if c.converters == nil {
		c.converters = DefaultConverters()
	}
	return c
}

var (
	defaultCodec     *Codec
	defaultCodecOnce sync.Once
)

// Default returns the codec used by the package level functions when no
// options are given.
func Default() *Codec {
	defaultCodecOnce.Do(func() { defaultCodec = New() })
	return defaultCodec
}

func codecFor(opts []Option) *Codec {
	if len(opts) == 0 {
		return Default()
	}
	return New(opts...)
}

// Converters returns a copy of the codec's converter list.
func (c *Codec) Converters() []Converter {
	return append([]Converter(nil), c.converters...)
}

func (c *Codec) Format() format.Format {
	return c.format
}

func (c *Codec) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Parse reads text in the codec format.
func (c *Codec) Parse(d []byte) (*ir.Node, error) {
	opts := append([]parse.ParseOption{parse.ParseFormat(c.format)}, c.parseOpts...)
	return parse.Parse(d, opts...)
}

// Render writes node in the codec format, compact unless the encode
// options say otherwise.
func (c *Codec) Render(node *ir.Node) ([]byte, error) {
	opts := append([]encode.EncodeOption{encode.EncodeFormat(c.format), encode.EncodeWire(true)}, c.encodeOpts...)
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(node, buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func recoverPanic(errp *error) {
	if r := recover(); r != nil {
		*errp = &PanicError{Value: r, Stack: rdebug.Stack()}
	}
}

// finish flushes the diagnostics of a top-level call and logs its failure.
func (c *Codec) finish(op string, t reflect.Type, diag *Diagnostics, err error) {
	log := c.log()
	if ws := diag.Flush(log, op, t); len(ws) > 0 && c.hook != nil {
		c.hook(op, t, ws)
	}
	if err != nil {
		attrs := []any{"op", op, "type", typeName(t), "error", err}
		var pe *PanicError
		if errors.As(err, &pe) {
			attrs = append(attrs, "stack", string(pe.Stack))
		}
		log.Error("conversion failed", attrs...)
	}
}

// deserializeTop runs a complete text deserialization onto existing, which
// must be a settable value or the zero Value.
func (c *Codec) deserializeTop(op string, d []byte, t reflect.Type, existing reflect.Value) (res reflect.Value, err error) {
	diag := &Diagnostics{}
	// a document that does not parse is a warning, not a logged failure
	noDoc := false
	defer func() {
		logged := err
		if noDoc {
			logged = nil
		}
		c.finish(op, t, diag, logged)
	}()
	defer recoverPanic(&err)
	res = existing
	node, perr := c.Parse(d)
	if perr != nil {
		noDoc = true
		diag.Warnf("", "parse failed: %v", perr)
		return res, &UnmarshalError{Message: "nothing to deserialize", Err: perr}
	}
	if node == nil {
		noDoc = true
		diag.Warnf("", "empty document")
		return res, &UnmarshalError{Message: "nothing to deserialize"}
	}
	return c.deserialize(node, t, existing, ir.Root, diag)
}

func (c *Codec) deserializeNodeTop(op string, node *ir.Node, t reflect.Type, existing reflect.Value) (res reflect.Value, err error) {
	diag := &Diagnostics{}
	noDoc := node == nil
	defer func() {
		logged := err
		if noDoc {
			logged = nil
		}
		c.finish(op, t, diag, logged)
	}()
	defer recoverPanic(&err)
	res = existing
	if noDoc {
		diag.Warnf("", "empty document")
		return res, &UnmarshalError{Message: "nothing to deserialize"}
	}
	return c.deserialize(node, t, existing, ir.Root, diag)
}

func (c *Codec) serializeTop(op string, v reflect.Value, t reflect.Type) (res *ir.Node, err error) {
	diag := &Diagnostics{}
	defer func() { c.finish(op, t, diag, err) }()
	defer recoverPanic(&err)
	return c.serialize(v, ir.Root, diag)
}

// seedTop returns a fresh T with tag defaults applied.
func seedTop[T any](c *Codec) (res T, err error) {
	t := reflect.TypeFor[T]()
	diag := &Diagnostics{}
	defer func() { c.finish("seed", t, diag, err) }()
	defer recoverPanic(&err)
	sv, err := c.seed(t, ir.Root, diag)
	if err != nil {
		return res, err
	}
	reflect.ValueOf(&res).Elem().Set(sv)
	return res, nil
}

func valueAs[T any](v reflect.Value) T {
	var res T
	if v.IsValid() {
		reflect.ValueOf(&res).Elem().Set(v)
	}
	return res
}

// DeserializeObject reads text into a freshly constructed T. On failure the
// fresh value is returned with false.
func DeserializeObject[T any](text string, opts ...Option) (T, bool) {
	return deserializeFresh[T](codecFor(opts), text)
}

func deserializeFresh[T any](c *Codec, text string) (T, bool) {
	seeded, err := seedTop[T](c)
	if err != nil {
		return seeded, false
	}
	return deserializeInto(c, text, seeded)
}

// DeserializeObjectInto reads text onto existing. Object members absent
// from the text keep their values; pointers in existing are updated in
// place.
func DeserializeObjectInto[T any](text string, existing T, opts ...Option) (T, bool) {
	return deserializeInto(codecFor(opts), text, existing)
}

func deserializeInto[T any](c *Codec, text string, existing T) (T, bool) {
	t := reflect.TypeFor[T]()
	ev := reflect.ValueOf(&existing).Elem()
	res, err := c.deserializeTop("deserialize", []byte(text), t, ev)
	if err != nil {
		return existing, false
	}
	return valueAs[T](res), true
}

// DeserializeNode is DeserializeObjectInto for an already parsed document.
func DeserializeNode[T any](node *ir.Node, existing T, opts ...Option) (T, bool) {
	c := codecFor(opts)
	t := reflect.TypeFor[T]()
	ev := reflect.ValueOf(&existing).Elem()
	res, err := c.deserializeNodeTop("deserialize", node, t, ev)
	if err != nil {
		return existing, false
	}
	return valueAs[T](res), true
}

// SerializeObject renders v as text. On failure it returns "{}" and false.
func SerializeObject[T any](v T, opts ...Option) (string, bool) {
	return serializeText(codecFor(opts), v)
}

func serializeText[T any](c *Codec, v T) (string, bool) {
	node, ok := serializeNode(c, v)
	if !ok {
		return "{}", false
	}
	d, err := c.Render(node)
	if err != nil {
		c.finish("render", reflect.TypeFor[T](), &Diagnostics{}, err)
		return "{}", false
	}
	return string(d), true
}

// SerializeNode converts v into a document without rendering it.
func SerializeNode[T any](v T, opts ...Option) (*ir.Node, bool) {
	return serializeNode(codecFor(opts), v)
}

func serializeNode[T any](c *Codec, v T) (*ir.Node, bool) {
	node, err := c.serializeTop("serialize", reflect.ValueOf(&v).Elem(), reflect.TypeFor[T]())
	if err != nil {
		return nil, false
	}
	return node, true
}

// DeserializeText merges text onto the value target points to.
func (c *Codec) DeserializeText(text string, target any) bool {
	return c.Unmarshal([]byte(text), target) == nil
}

// SerializeText renders v. On failure it returns "{}" and false.
func (c *Codec) SerializeText(v any) (string, bool) {
	d, err := c.Marshal(v)
	if err != nil {
		return "{}", false
	}
	return string(d), true
}

// Unmarshal is DeserializeText reporting the failure. Warnings are logged,
// not returned.
func (c *Codec) Unmarshal(d []byte, target any) error {
	pv := reflect.ValueOf(target)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		err := &UnmarshalError{Message: fmt.Sprintf("target must be a non-nil pointer, got %T", target), Err: ErrUnsupported}
		c.finish("deserialize", reflect.TypeOf(target), &Diagnostics{}, err)
		return err
	}
	ev := pv.Elem()
	res, err := c.deserializeTop("deserialize", d, ev.Type(), ev)
	if err != nil {
		return err
	}
	ev.Set(res)
	return nil
}

// Marshal is SerializeText reporting the failure.
func (c *Codec) Marshal(v any) ([]byte, error) {
	t := reflect.TypeOf(v)
	node, err := c.serializeTop("serialize", reflect.ValueOf(v), t)
	if err != nil {
		return nil, &MarshalError{Message: "serialize failed", Err: err}
	}
	d, err := c.Render(node)
	if err != nil {
		c.finish("render", t, &Diagnostics{}, err)
		return nil, &MarshalError{Message: "render failed", Err: err}
	}
	return d, nil
}
