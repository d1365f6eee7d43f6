package parser

import (
	"github.com/arloliu/cesrparse/attach"
	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/internal/fallback"
)

// Option configures a Parser at construction time. Construction-time options
// are the only place this module needs functional options, so Option is
// wired directly to *Parser rather than routed through a generic indirection.
type Option interface {
	apply(*Parser) error
}

// optionFunc adapts a plain function to Option.
type optionFunc func(*Parser) error

func (f optionFunc) apply(p *Parser) error { return f(p) }

// newOption wraps fn, which may fail, as an Option.
func newOption(fn func(*Parser) error) Option {
	return optionFunc(fn)
}

// noErrOption wraps fn, which cannot fail, as an Option.
func noErrOption(fn func(*Parser)) Option {
	return optionFunc(func(p *Parser) error {
		fn(p)

		return nil
	})
}

// applyOptions applies opts to p in order, stopping at the first error.
func applyOptions(p *Parser, opts ...Option) error {
	for _, opt := range opts {
		if err := opt.apply(p); err != nil {
			return err
		}
	}

	return nil
}

// WithFramed selects framed mode: drain emits at most one frame per Feed
// call and stops consuming attachments after the first attachment group.
func WithFramed(framed bool) Option {
	return noErrOption(func(p *Parser) { p.framed = framed })
}

// WithDispatchMode selects strict (default) or compat attachment dispatch.
func WithDispatchMode(mode attach.DispatchMode) Option {
	return newOption(func(p *Parser) error {
		if mode != attach.StrictMode && mode != attach.CompatMode {
			return errs.Deserialize(0, "unknown dispatch mode")
		}
		p.mode = mode

		return nil
	})
}

// WithVersionFallback registers a callback invoked once per distinct counter
// code, after the parse step in which compat-mode first falls back to the
// other major version's table for that code. Later fallbacks on the same
// code only raise the tracked Count; the callback is not invoked again.
func WithVersionFallback(fn func(fallback.Event)) Option {
	return noErrOption(func(p *Parser) { p.onFallback = fn })
}
