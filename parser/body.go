package parser

import (
	"github.com/arloliu/cesrparse/attach"
	"github.com/arloliu/cesrparse/b64"
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/counter"
	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/internal/fallback"
	"github.com/arloliu/cesrparse/matter"
	"github.com/arloliu/cesrparse/serder"
	"github.com/arloliu/cesrparse/sniff"
	"github.com/arloliu/cesrparse/view"
)

func decodeMatter(buf []byte, offset int, domain codes.Domain) (matter.Token, int, error) {
	if domain == codes.DomainBinary {
		return matter.DecodeBinary(buf, offset)
	}

	return matter.DecodeText(buf, offset)
}

func decodeCounterPeek(buf []byte, offset, major int, domain codes.Domain) (counter.Token, int, error) {
	if domain == codes.DomainBinary {
		return counter.DecodeBinary(buf, offset, major)
	}

	return counter.DecodeText(buf, offset, major)
}

func unitSize(domain codes.Domain) int {
	if domain == codes.DomainBinary {
		return 3
	}

	return 4
}

// parseFrame decodes one complete frame (body plus trailing attachments)
// starting at the head of buf. When bounded is true,
// buf is the exact payload of an enclosing BodyWithAttachmentGroup and a
// Shortage encountered while decoding is a real error (the payload's length
// was already committed by the enclosing counter), not a suspension point.
func parseFrame(buf []byte, offset int, version codes.Versionage, mode attach.DispatchMode, tracker *fallback.Tracker, framed, bounded bool) (*Frame, int, stopReason, error) {
	total := 0

	for {
		dom, err := sniff.Next(buf[total:], offset+total)
		if err != nil {
			return nil, 0, 0, boundedErr(err, bounded)
		}
		if dom == codes.DomainAnnotation {
			total++
			continue
		}
		if dom == codes.DomainText || dom == codes.DomainBinary {
			tok, n, cerr := decodeCounterPeek(buf[total:], offset+total, version.Major, dom)
			if cerr == nil && counter.IsGenus(tok.Code) {
				nv, verr := counter.ParseVersionage(tok.QB64)
				if verr != nil {
					return nil, 0, 0, errs.Deserialize(offset+total, "malformed genus/version counter")
				}
				version = nv
				total += n

				continue
			}
		}

		break
	}

	frame := &Frame{Versionage: version}

	bodyDomain, err := sniff.Next(buf[total:], offset+total)
	if err != nil {
		return nil, 0, 0, boundedErr(err, bounded)
	}

	switch bodyDomain {
	case codes.DomainMessage:
		env, n, rerr := serder.Reap(buf[total:], offset+total)
		if rerr != nil {
			return nil, 0, 0, boundedErr(rerr, bounded)
		}
		frame.Serder = env
		total += n

	case codes.DomainText, codes.DomainBinary:
		n, berr := parseGroupBody(buf[total:], offset+total, bodyDomain, frame, bounded)
		if berr != nil {
			return nil, 0, 0, berr
		}
		total += n
		if frame.Native != nil {
			version = frame.Serder.Pvrsn
			frame.Versionage = version
		}

	default:
		return nil, 0, 0, errs.ColdStart(offset+total, "unexpected domain at body start")
	}

	consumedAttach, reason, aerr := parseAttachments(buf[total:], offset+total, version, mode, tracker, framed)
	if aerr != nil {
		return nil, 0, 0, aerr
	}
	frame.Attachments = consumedAttach.items
	total += consumedAttach.n

	return frame, total, reason, nil
}

// boundedErr converts a Shortage into a terminal Deserialize error when the
// caller is working within a size-bounded payload slice, where "ran out of
// bytes" can only mean a malformed stream, not a genuine streaming pause.
func boundedErr(err error, bounded bool) error {
	if bounded && errs.IsShortage(err) {
		return errs.Deserialize(0, "unexpected end of bounded payload")
	}

	return err
}

// parseGroupBody dispatches a text/binary-domain body counter:
// BodyWithAttachmentGroup (nested frame), NonNativeBodyGroup (foreign
// envelope wrapped as one matter primitive), or FixBody/MapBodyGroup
// (native tokenized body). Any other counter at a frame boundary is
// ColdStart.
func parseGroupBody(buf []byte, offset int, domain codes.Domain, frame *Frame, bounded bool) (int, error) {
	tok, headerLen, err := decodeCounterPeek(buf, offset, frame.Versionage.Major, domain)
	if err != nil {
		return 0, boundedErr(err, bounded)
	}

	spec := tok.Spec
	unit := unitSize(domain)
	payloadLen := tok.Count * unit

	if len(buf) < headerLen+payloadLen {
		return 0, boundedErr(errs.Shortage(offset, headerLen+payloadLen, len(buf)), bounded)
	}

	payload := buf[headerLen : headerLen+payloadLen]

	switch spec.BodyRole {
	case codes.RoleBodyWrap:
		nested, consumed, _, nerr := parseFrame(payload, offset+headerLen, frame.Versionage, attach.StrictMode, nil, false, true)
		if nerr != nil {
			return 0, nerr
		}
		if consumed != len(payload) {
			return 0, errs.ColdStart(offset, "body-with-attachment payload not consumed exactly")
		}

		*frame = *nested

		return headerLen + payloadLen, nil

	case codes.RoleNonNative:
		mtok, n, merr := decodeMatter(payload, offset+headerLen, domain)
		if merr != nil || n != len(payload) {
			frame.Serder = serder.Envelope{Raw: payload, Kind: "CESR"}

			return headerLen + payloadLen, nil
		}

		env, _, rerr := serder.Reap(mtok.Raw, 0)
		if rerr != nil {
			frame.Serder = serder.Envelope{Raw: payload, Kind: "CESR"}

			return headerLen + payloadLen, nil
		}
		frame.Serder = env

		return headerLen + payloadLen, nil

	case codes.RoleNative:
		native, proto, pvrsn, ilk, said, nerr := parseNativeBody(payload, offset+headerLen, spec.IsMap, domain, tok.Code)
		if nerr != nil {
			return 0, nerr
		}
		frame.Native = native
		frame.Serder = serder.Envelope{
			Raw: payload, Proto: proto, Kind: "CESR", Size: len(payload),
			Pvrsn: pvrsn, Ilk: &ilk, Said: &said,
		}

		return headerLen + payloadLen, nil

	default:
		return 0, errs.ColdStart(offset, "unsupported body-group counter")
	}
}

// skipLabelers consumes any advisory labeler tokens at the head of payload.
// Map-variant native bodies may interleave these ahead of any field; they
// carry no extraction semantics, so the caller resumes decoding its next
// required field immediately after. A no-op for Fix-variant bodies.
func skipLabelers(payload []byte, offset int, domain codes.Domain, isMap bool) ([]NativeField, int) {
	if !isMap {
		return nil, 0
	}

	var fields []NativeField
	total := 0
	for total < len(payload) {
		tok, n, err := decodeMatter(payload[total:], offset+total, domain)
		if err != nil || !codes.MatterIsLabeler(tok.Code) {
			break
		}
		fields = append(fields, NativeField{Code: tok.Code, QB64: tok.QB64})
		total += n
	}

	return fields, total
}

// parseNativeBody tokenizes a FixBodyGroup/MapBodyGroup payload: a verser
// (proto/version record), an ilker (operation tag), a saider (digest), and
// any further primitive or nested-group fields. For Map-variant bodies,
// advisory labeler tokens may precede any of the three and are skipped.
func parseNativeBody(payload []byte, offset int, isMap bool, domain codes.Domain, bodyCode string) (*NativeBody, string, codes.Versionage, string, string, error) {
	total := 0
	fields := make([]NativeField, 0, 4)

	if labels, n := skipLabelers(payload[total:], offset+total, domain, isMap); n > 0 {
		fields = append(fields, labels...)
		total += n
	}

	verserTok, n, err := decodeMatter(payload[total:], offset+total, domain)
	if err != nil {
		return nil, "", codes.Versionage{}, "", "", errs.Deserialize(offset+total, "expected verser field")
	}
	proto, pvrsn, err := view.Verser(verserTok)
	if err != nil {
		return nil, "", codes.Versionage{}, "", "", err
	}
	fields = append(fields, NativeField{Code: verserTok.Code, QB64: verserTok.QB64})
	total += n

	if labels, n := skipLabelers(payload[total:], offset+total, domain, isMap); n > 0 {
		fields = append(fields, labels...)
		total += n
	}

	ilkerTok, n, err := decodeMatter(payload[total:], offset+total, domain)
	if err != nil {
		return nil, "", codes.Versionage{}, "", "", errs.Deserialize(offset+total, "expected ilker field")
	}
	ilk, err := view.Ilker(ilkerTok)
	if err != nil {
		return nil, "", codes.Versionage{}, "", "", err
	}
	fields = append(fields, NativeField{Code: ilkerTok.Code, QB64: ilkerTok.QB64})
	total += n

	if labels, n := skipLabelers(payload[total:], offset+total, domain, isMap); n > 0 {
		fields = append(fields, labels...)
		total += n
	}

	saiderTok, n, err := decodeMatter(payload[total:], offset+total, domain)
	if err != nil {
		return nil, "", codes.Versionage{}, "", "", errs.Deserialize(offset+total, "expected saider field")
	}
	if _, err := view.Digester(saiderTok); err != nil {
		return nil, "", codes.Versionage{}, "", "", err
	}
	fields = append(fields, NativeField{Code: saiderTok.Code, QB64: saiderTok.QB64})
	total += n

	for total < len(payload) {
		dom, err := sniff.Next(payload[total:], offset+total)
		if err != nil {
			return nil, "", codes.Versionage{}, "", "", errs.Deserialize(offset+total, "truncated native body")
		}

		if dom == codes.DomainText || dom == codes.DomainBinary {
			if peekIsCounter(payload[total:], dom) {
				g, gerr := attach.Dispatch(payload[total:], offset+total, pvrsn.Major, dom, attach.StrictMode, nil)
				if gerr != nil {
					return nil, "", codes.Versionage{}, "", "", gerr
				}
				fields = append(fields, NativeField{Code: g.Token.Code, Nested: &g})
				total += g.Consumed

				continue
			}
		}

		v, n, verr := decodeFieldPrimitive(payload[total:], offset+total, domain)
		if verr != nil {
			return nil, "", codes.Versionage{}, "", "", verr
		}
		fields = append(fields, v)
		total += n
	}

	if total != len(payload) {
		return nil, "", codes.Versionage{}, "", "", errs.GroupSize(offset, "native body fields did not consume payload exactly")
	}

	native := &NativeBody{BodyCode: bodyCode, IsMap: isMap, Fields: fields}

	return native, proto, pvrsn, ilk, saiderTok.QB64, nil
}

// counterSextet is the 6-bit value of the text-domain counter lead
// character '-', used to recognize a counter at the head of a
// binary-domain buffer without fully decoding it.
var counterSextet, _ = b64.Sextet('-')

// peekIsCounter reports whether the lead of buf decodes as the counter
// lead character in the given domain ('-' in text; the matching leading
// sextet in binary).
func peekIsCounter(buf []byte, domain codes.Domain) bool {
	if len(buf) == 0 {
		return false
	}
	if domain == codes.DomainBinary {
		return int(buf[0]>>2) == counterSextet
	}

	return buf[0] == '-'
}

func decodeFieldPrimitive(buf []byte, offset int, domain codes.Domain) (NativeField, int, error) {
	tok, n, err := decodeMatter(buf, offset, domain)
	if err != nil {
		return NativeField{}, 0, err
	}

	return NativeField{Code: tok.Code, QB64: tok.QB64}, n, nil
}

// attachResult bundles the decoded attachment groups and bytes consumed by
// parseAttachments, keeping parseFrame's signature manageable.
type attachResult struct {
	items []attach.Group
	n     int
}

// parseAttachments runs the attachment-group loop following a frame's body:
// repeatedly dispatching groups until the next sniff reveals a message
// boundary, the buffer is exhausted, or framed mode cuts after one group.
func parseAttachments(buf []byte, offset int, version codes.Versionage, mode attach.DispatchMode, tracker *fallback.Tracker, framed bool) (attachResult, stopReason, error) {
	var items []attach.Group
	total := 0

	for {
		if framed && len(items) >= 1 {
			return attachResult{items: items, n: total}, stopFramed, nil
		}

		dom, err := sniff.Next(buf[total:], offset+total)
		if err != nil {
			return attachResult{items: items, n: total}, stopExhausted, nil
		}
		if dom == codes.DomainMessage {
			return attachResult{items: items, n: total}, stopMessage, nil
		}
		if dom == codes.DomainAnnotation {
			total++

			continue
		}

		g, gerr := attach.Dispatch(buf[total:], offset+total, version.Major, dom, mode, tracker)
		if gerr != nil {
			if errs.IsShortage(gerr) {
				return attachResult{items: items, n: total}, stopExhausted, nil
			}

			return attachResult{}, 0, gerr
		}

		items = append(items, g)
		total += g.Consumed
	}
}
