// Package parser implements the top-level streaming state machine: it
// accepts arbitrary byte chunks, assembles complete frames (body plus
// attachments) out of them, and emits one Emission per completed frame or
// per fatal error, exactly once each, in stream order.
package parser

import (
	"errors"

	"github.com/arloliu/cesrparse/attach"
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/counter"
	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/internal/fallback"
	"github.com/arloliu/cesrparse/internal/pool"
	"github.com/arloliu/cesrparse/sniff"
)

// Emission is one unit of output from Feed/Flush: either a completed Frame
// or a fatal parse error.
type Emission struct {
	Frame *Frame
	Err   *errs.ParseError
}

// Parser is a single-stream, single-threaded CESR frame assembler. It is not
// safe to call Feed/Flush/Reset concurrently from multiple goroutines on the
// same instance; independent instances are fully independent.
type Parser struct {
	buf     *pool.ByteBuffer
	offset  int
	pending *Frame
	version codes.Versionage

	framed  bool
	mode    attach.DispatchMode
	tracker *fallback.Tracker

	onFallback   func(fallback.Event)
	fallbackSeen int
}

// New creates a Parser in Idle state, defaulting to strict dispatch mode,
// unframed operation, and CESR protocol version 2.0 as the active version
// until a genus/version counter or native verser updates it.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{
		buf:     pool.NewByteBuffer(pool.StreamBufferDefaultSize),
		version: codes.V2,
		mode:    attach.StrictMode,
		tracker: fallback.NewTracker(),
	}

	if err := applyOptions(p, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// Feed appends chunk to the parser's internal buffer and drains as many
// complete frames out of it as possible.
func (p *Parser) Feed(chunk []byte) []Emission {
	p.buf.Append(chunk)

	return p.drain()
}

// Flush finalizes the stream: a held Pending frame is emitted, and a
// non-empty residual buffer is reported as a Shortage error.
func (p *Parser) Flush() []Emission {
	var out []Emission

	if p.pending != nil {
		out = append(out, Emission{Frame: p.pending})
		p.pending = nil
	}

	if p.buf.Len() > 0 {
		out = append(out, Emission{Err: errs.Shortage(p.offset, 1, p.buf.Len())})
	}

	return out
}

// Reset discards all parser state: buffered bytes, a held Pending frame,
// the active version, and fallback-tracking history. The cumulative offset
// also restarts from zero.
func (p *Parser) Reset() {
	p.buf.Reset()
	p.pending = nil
	p.offset = 0
	p.version = codes.V2
	p.tracker.Reset()
	p.fallbackSeen = 0
}

// isFrameStartCounter reports whether tok is a counter that marks the start
// of a new frame, during Pending-resumption, rather than another attachment
// of the current one: a genus/version counter, or any counter whose
// BodyRole marks it as a body-group header.
func isFrameStartCounter(tok counter.Token) bool {
	return counter.IsGenus(tok.Code) || tok.Spec.BodyRole != codes.RoleNone
}

// peekResumesFrame reports whether the buffer's next cold start reveals a
// new frame boundary while a Pending frame is held: a message body, or a
// counter recognized as a frame-starting counter under the active version.
// conclusive is false when the buffer is not yet long enough to decide.
func (p *Parser) peekResumesFrame() (resumes bool, conclusive bool) {
	dom, err := sniff.Next(p.buf.Bytes(), p.offset)
	if err != nil {
		return false, false
	}
	if dom == codes.DomainMessage {
		return true, true
	}
	if dom != codes.DomainText && dom != codes.DomainBinary {
		return false, true
	}

	tok, _, terr := decodeCounterPeek(p.buf.Bytes(), p.offset, p.version.Major, dom)
	if terr != nil {
		return false, !errs.IsShortage(terr)
	}

	return isFrameStartCounter(tok), true
}

// emitError wraps err as an Error emission, unwrapping to the underlying
// *errs.ParseError when possible so offset/hint detail survives.
func emitError(offset int, err error) Emission {
	var pe *errs.ParseError
	if errors.As(err, &pe) {
		return Emission{Err: pe}
	}

	return Emission{Err: errs.Deserialize(offset, err.Error())}
}

// reportFallbacks invokes the registered WithVersionFallback callback for
// any tracker events recorded since the last call.
func (p *Parser) reportFallbacks() {
	if p.onFallback == nil {
		return
	}

	events := p.tracker.Events()
	for _, ev := range events[p.fallbackSeen:] {
		p.onFallback(*ev)
	}
	p.fallbackSeen = len(events)
}

// resetOnError discards the buffer and any Pending frame after a fatal
// error: any non-Shortage error resets the parser state.
func (p *Parser) resetOnError() {
	p.offset += p.buf.Len()
	p.buf.Reset()
	p.pending = nil
}

// drain implements the transition loop: skip annotation bytes, resume or
// extend a Pending frame, otherwise parse a new frame, and classify its stop
// reason as Pending (buffer exhausted, more attachments could still arrive)
// or a completed emission.
func (p *Parser) drain() []Emission {
	var out []Emission

drainLoop:
	for {
		for p.buf.Len() > 0 && sniff.Byte(p.buf.Bytes()[0]) == codes.DomainAnnotation {
			p.buf.Discard(1)
			p.offset++
		}

		if p.pending != nil {
			if p.buf.Len() == 0 {
				break drainLoop
			}

			resumes, conclusive := p.peekResumesFrame()
			if !conclusive {
				break drainLoop
			}
			if resumes {
				out = append(out, Emission{Frame: p.pending})
				p.pending = nil

				if p.framed {
					break drainLoop
				}

				continue drainLoop
			}

			res, reason, aerr := parseAttachments(p.buf.Bytes(), p.offset, p.version, p.mode, p.tracker, p.framed)
			p.reportFallbacks()
			if aerr != nil {
				if errs.IsShortage(aerr) {
					break drainLoop
				}

				out = append(out, emitError(p.offset, aerr))
				p.resetOnError()

				continue drainLoop
			}

			p.pending.Attachments = append(p.pending.Attachments, res.items...)
			p.buf.Discard(res.n)
			p.offset += res.n

			switch reason {
			case stopExhausted:
				break drainLoop
			case stopMessage, stopFramed:
				out = append(out, Emission{Frame: p.pending})
				p.pending = nil

				if p.framed {
					break drainLoop
				}
			}

			continue drainLoop
		}

		if p.buf.Len() == 0 {
			break drainLoop
		}

		frame, n, reason, err := parseFrame(p.buf.Bytes(), p.offset, p.version, p.mode, p.tracker, p.framed, false)
		p.reportFallbacks()
		if err != nil {
			if errs.IsShortage(err) {
				break drainLoop
			}

			out = append(out, emitError(p.offset, err))
			p.resetOnError()

			continue drainLoop
		}

		p.version = frame.Versionage
		p.buf.Discard(n)
		p.offset += n

		switch reason {
		case stopExhausted:
			p.pending = frame

			break drainLoop
		case stopMessage, stopFramed:
			out = append(out, Emission{Frame: frame})

			if p.framed {
				break drainLoop
			}
		}
	}

	return out
}
