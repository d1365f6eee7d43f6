// Package cesrparse provides a streaming parser for CESR (Composable Event
// Streaming Representation), the self-describing, concatenative, dual-domain
// encoding used by the KERI/ACDC decentralized-identifier and
// verifiable-credential protocol family.
//
// # Core Features
//
//   - Chunked, shortage-recoverable streaming: bytes may arrive in any
//     partition and the sequence of emitted frames is unaffected.
//   - Bit-exact text/binary domain parity via the b64 codec.
//   - Code-table-driven matter/counter/indexer decoding, with the matter and
//     indexer code lookups hash-accelerated through internal/ctab.
//   - Strict or compat-mode version dispatch with audit callbacks.
//
// # Basic Usage
//
//	p, _ := cesrparse.CreateParser()
//	for _, em := range p.Feed(chunk) {
//	    if em.Err != nil {
//	        // handle fatal error; parser state has been reset
//	        continue
//	    }
//	    // consume em.Frame
//	}
//	for _, em := range p.Flush() {
//	    // drain remaining frame or residual-shortage notice
//	}
//
// This package provides convenient top-level wrappers around the parser
// package. For advanced usage and fine-grained control, use the parser
// package directly.
package cesrparse

import (
	"iter"

	"github.com/arloliu/cesrparse/attach"
	"github.com/arloliu/cesrparse/internal/fallback"
	"github.com/arloliu/cesrparse/parser"
)

// Re-exported so callers need not import the parser package directly for
// everyday use.
type (
	// Parser is a single-stream CESR frame assembler; see parser.Parser.
	Parser = parser.Parser
	// Option configures a Parser at construction time.
	Option = parser.Option
	// Emission is one Feed/Flush result: a completed Frame or a fatal error.
	Emission = parser.Emission
	// Frame is one complete decoded CESR message.
	Frame = parser.Frame
	// DispatchMode selects strict or compat-mode attachment dispatch.
	DispatchMode = attach.DispatchMode
	// FallbackEvent records one compat-mode version-dispatch fallback.
	FallbackEvent = fallback.Event
)

const (
	// StrictMode rejects a counter unrecognized under the active major
	// version even when the other major version's table recognizes it.
	StrictMode = attach.StrictMode
	// CompatMode falls back to the other major version's table and
	// reports the occurrence through WithVersionFallback.
	CompatMode = attach.CompatMode
)

// WithFramed selects framed mode: Feed emits at most one frame per call and
// stops consuming attachments after the first attachment group.
func WithFramed(framed bool) Option { return parser.WithFramed(framed) }

// WithDispatchMode selects strict (default) or compat attachment dispatch.
func WithDispatchMode(mode DispatchMode) Option { return parser.WithDispatchMode(mode) }

// WithVersionFallback registers a callback for compat-mode version
// fallbacks.
func WithVersionFallback(fn func(FallbackEvent)) Option { return parser.WithVersionFallback(fn) }

// CreateParser builds a new Parser.
func CreateParser(opts ...Option) (*Parser, error) {
	return parser.New(opts...)
}

// ParseBytes is a convenience for whole-buffer input: it feeds buf in one
// call and then flushes, returning every Emission in stream order.
func ParseBytes(buf []byte, opts ...Option) ([]Emission, error) {
	p, err := CreateParser(opts...)
	if err != nil {
		return nil, err
	}

	out := p.Feed(buf)
	out = append(out, p.Flush()...)

	return out, nil
}

// ToFrames adapts a sequence of byte chunks into a sequence of decoded
// frames, feeding the chunks in order to one fresh Parser and flushing at
// the end.
// Iteration stops after yielding the first Error emission: a "throws on
// first error" async-frame contract expressed idiomatically in Go by
// delivering the error in-band as the second yielded value instead of a
// panic, ending the sequence there.
func ToFrames(chunks iter.Seq[[]byte], opts ...Option) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		p, err := CreateParser(opts...)
		if err != nil {
			yield(nil, err)

			return
		}

		emit := func(emissions []Emission) bool {
			for _, em := range emissions {
				if em.Err != nil {
					yield(nil, em.Err)

					return false
				}
				if !yield(em.Frame, nil) {
					return false
				}
			}

			return true
		}

		for chunk := range chunks {
			if !emit(p.Feed(chunk)) {
				return
			}
		}

		emit(p.Flush())
	}
}
