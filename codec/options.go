package codec

import (
	"log/slog"
	"reflect"

	"github.com/signadot/graphcodec/encode"
	"github.com/signadot/graphcodec/format"
	"github.com/signadot/graphcodec/parse"
)

// Option configures a Codec.
type Option func(*Codec)

// WithConverters replaces the converter list. The defaults are not merged
// in; calling it with no converters disables conversion plugins entirely.
func WithConverters(convs ...Converter) Option {
	return func(c *Codec) {
		c.converters = append([]Converter{}, convs...)
	}
}

// WithLogger sets the logger receiving flushed diagnostics and failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

// WithFormat sets the document format used for both text input and output.
func WithFormat(f format.Format) Option {
	return func(c *Codec) { c.format = f }
}

func WithParseOptions(opts ...parse.ParseOption) Option {
	return func(c *Codec) { c.parseOpts = append(c.parseOpts, opts...) }
}

// WithEncodeOptions adds options applied after the codec's own defaults
// (compact output in the codec format).
func WithEncodeOptions(opts ...encode.EncodeOption) Option {
	return func(c *Codec) { c.encodeOpts = append(c.encodeOpts, opts...) }
}

// WithDiagnosticsHook registers f to receive the warnings of every call
// that produced some, after they are logged.
func WithDiagnosticsHook(f func(op string, t reflect.Type, ws []Warning)) Option {
	return func(c *Codec) { c.hook = f }
}

// WithWorkers bounds the asynchronous entry points to n concurrent
// conversions. Codecs asking for the same n share one pool, so the bound
// holds across calls.
func WithWorkers(n int) Option {
	return func(c *Codec) { c.pool = SizedPool(n) }
}

// WithPool runs the asynchronous entry points on p.
func WithPool(p *Pool) Option {
	return func(c *Codec) { c.pool = p }
}
