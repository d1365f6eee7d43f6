// Package attach implements version-keyed attachment/body-group dispatch:
// given a counter at the head of a buffer, resolve its GroupSpec and decode
// its payload according to one of four group shapes (opaque, wrapper, tuple,
// composite).
package attach

import (
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/counter"
	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/indexer"
	"github.com/arloliu/cesrparse/internal/fallback"
	"github.com/arloliu/cesrparse/matter"
)

// DispatchMode selects strict or compat-mode version fallback behavior.
type DispatchMode int

const (
	// StrictMode rejects a counter code unrecognized under the active major
	// version, even if it is recognized under the other one.
	StrictMode DispatchMode = iota
	// CompatMode falls back to the other major version's table and records
	// an audit event when the active version's table doesn't recognize the
	// code.
	CompatMode
)

// TupleItem is one repetition of a ShapeTuple group's fixed slot sequence.
type TupleItem struct {
	Slots []any // each element is a matter.Token or an indexer.Token
}

// CompositeItem is one repetition of a ShapeComposite group: a lead tuple
// of primitives followed by a nested indexed-signature-list group.
type CompositeItem struct {
	Lead   []any
	Nested Group
}

// Group is one decoded attachment/body-group, including its header counter
// token and its payload decoded per the group's Shape.
type Group struct {
	Token    counter.Token
	Items    []any  // shape-dependent: [][]byte, []Group, []TupleItem, []CompositeItem, or nil
	Raw      []byte // the exact header+payload bytes this group consumed
	Consumed int    // len(Raw): text chars or binary bytes, header + payload
}

func unit(domain codes.Domain) int {
	if domain == codes.DomainBinary {
		return 3
	}

	return 4
}

func otherMajor(major int) int {
	if major == 1 {
		return 2
	}

	return 1
}

func decodeCounter(buf []byte, offset, major int, domain codes.Domain, mode DispatchMode, tracker *fallback.Tracker) (counter.Token, int, int, error) {
	decode := counter.DecodeText
	if domain == codes.DomainBinary {
		decode = counter.DecodeBinary
	}

	tok, n, err := decode(buf, offset, major)
	if err == nil {
		return tok, n, major, nil
	}
	if errs.IsShortage(err) || mode != CompatMode {
		return counter.Token{}, 0, major, err
	}

	fallbackMajor := otherMajor(major)
	tok, n, ferr := decode(buf, offset, fallbackMajor)
	if ferr != nil {
		return counter.Token{}, 0, major, err
	}

	if tracker != nil {
		tracker.Record(tok.Code, major, fallbackMajor, domain.String())
	}

	return tok, n, fallbackMajor, nil
}

func decodeToken(kind codes.TokenKind, buf []byte, offset int, domain codes.Domain) (any, int, error) {
	if domain == codes.DomainBinary {
		if kind == codes.TokenIndexer {
			tok, n, err := indexer.DecodeBinary(buf, offset)
			return tok, n, err
		}
		tok, n, err := matter.DecodeBinary(buf, offset)

		return tok, n, err
	}

	if kind == codes.TokenIndexer {
		tok, n, err := indexer.DecodeText(buf, offset)
		return tok, n, err
	}
	tok, n, err := matter.DecodeText(buf, offset)

	return tok, n, err
}

// Dispatch decodes one attachment/body-group header and its payload
// starting at the head of buf, in the given domain (text or binary), under
// the given active major version and dispatch mode.
func Dispatch(buf []byte, offset, major int, domain codes.Domain, mode DispatchMode, tracker *fallback.Tracker) (Group, error) {
	tok, headerLen, usedMajor, err := decodeCounter(buf, offset, major, domain, mode, tracker)
	if err != nil {
		return Group{}, err
	}

	total := headerLen
	spec := tok.Spec

	switch spec.Shape {
	case codes.ShapeGenus:
		return Group{Token: tok, Raw: buf[:total], Consumed: total}, nil

	case codes.ShapeOpaque:
		return dispatchOpaque(buf, offset, tok, total, domain)

	case codes.ShapeWrapper:
		return dispatchWrapper(buf, offset, tok, total, usedMajor, domain, mode, tracker)

	case codes.ShapeTuple:
		return dispatchTuple(buf, offset, tok, total, domain)

	case codes.ShapeComposite:
		return dispatchComposite(buf, offset, tok, total, usedMajor, domain, mode, tracker)

	default:
		return Group{}, errs.ColdStart(offset, "unsupported group shape")
	}
}

func dispatchOpaque(buf []byte, offset int, tok counter.Token, total int, domain codes.Domain) (Group, error) {
	u := unit(domain)
	payloadLen := tok.Count * u
	if len(buf) < total+payloadLen {
		return Group{}, errs.Shortage(offset+total, payloadLen, len(buf)-total)
	}

	payload := buf[total : total+payloadLen]
	items := make([]any, tok.Count)
	for i := 0; i < tok.Count; i++ {
		items[i] = payload[i*u : (i+1)*u]
	}

	end := total + payloadLen

	return Group{Token: tok, Items: items, Raw: buf[:end], Consumed: end}, nil
}

func dispatchWrapper(buf []byte, offset int, tok counter.Token, total, major int, domain codes.Domain, mode DispatchMode, tracker *fallback.Tracker) (Group, error) {
	u := unit(domain)
	payloadLen := tok.Count * u
	if len(buf) < total+payloadLen {
		return Group{}, errs.Shortage(offset+total, payloadLen, len(buf)-total)
	}

	payload := buf[total : total+payloadLen]
	var items []any

	consumed := 0
	for consumed < len(payload) {
		g, err := Dispatch(payload[consumed:], offset+total+consumed, major, domain, mode, tracker)
		if err != nil {
			return Group{}, err
		}
		items = append(items, g)
		consumed += g.Consumed
	}

	if consumed != len(payload) {
		return Group{}, errs.GroupSize(offset, "wrapper payload not consumed exactly")
	}

	end := total + payloadLen

	return Group{Token: tok, Items: items, Raw: buf[:end], Consumed: end}, nil
}

func dispatchTuple(buf []byte, offset int, tok counter.Token, total int, domain codes.Domain) (Group, error) {
	items := make([]any, 0, tok.Count)
	for i := 0; i < tok.Count; i++ {
		slots := make([]any, 0, len(tok.Spec.Tuple))
		for _, kind := range tok.Spec.Tuple {
			v, n, err := decodeToken(kind, buf[total:], offset+total, domain)
			if err != nil {
				return Group{}, err
			}
			slots = append(slots, v)
			total += n
		}
		items = append(items, TupleItem{Slots: slots})
	}

	return Group{Token: tok, Items: items, Raw: buf[:total], Consumed: total}, nil
}

func dispatchComposite(buf []byte, offset int, tok counter.Token, total, major int, domain codes.Domain, mode DispatchMode, tracker *fallback.Tracker) (Group, error) {
	items := make([]any, 0, tok.Count)
	for i := 0; i < tok.Count; i++ {
		lead := make([]any, 0, len(tok.Spec.CompositeLead))
		for _, kind := range tok.Spec.CompositeLead {
			v, n, err := decodeToken(kind, buf[total:], offset+total, domain)
			if err != nil {
				return Group{}, err
			}
			lead = append(lead, v)
			total += n
		}

		nested, err := Dispatch(buf[total:], offset+total, major, domain, mode, tracker)
		if err != nil {
			return Group{}, err
		}
		if !allowedSigerCode(nested.Token.Code, tok.Spec.NestedSigerCodes) {
			return Group{}, errs.ColdStart(offset+total, "nested list code not in version-appropriate siger codes")
		}
		total += nested.Consumed

		items = append(items, CompositeItem{Lead: lead, Nested: nested})
	}

	return Group{Token: tok, Items: items, Raw: buf[:total], Consumed: total}, nil
}

func allowedSigerCode(code string, allowed []string) bool {
	for _, c := range allowed {
		if c == code {
			return true
		}
	}

	return false
}
