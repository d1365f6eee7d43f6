// Package serder reaps a complete, size-delimited message envelope (the
// "message"-domain body of a CESR frame) out of a stream slice, using the
// smell package to locate its version string and declared size.
package serder

import (
	"encoding/json"
	"errors"

	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/smell"
)

// Envelope is a reaped message body.
type Envelope struct {
	Raw       []byte
	ParsedMap map[string]any
	Proto     string
	Kind      string
	Size      int
	Pvrsn     codes.Versionage
	Gvrsn     *codes.Versionage
	Ilk       *string
	Said      *string
}

// Reap scans buf for a version string and, once its declared size is known,
// extracts the message body it bounds. Returns the envelope and the number
// of bytes consumed. Only kind=JSON bodies are decoded for ilk/said
// metadata; other kinds carry raw bytes with nil metadata, the
// cryptographic semantics being a consumer concern.
func Reap(buf []byte, offset int) (Envelope, int, error) {
	s, err := smell.Smell(buf)
	if err != nil {
		return Envelope{}, 0, offsetError(err, offset)
	}

	if len(buf) < s.Size {
		return Envelope{}, 0, errs.Shortage(offset, s.Size, len(buf))
	}

	raw := buf[:s.Size]

	env := Envelope{
		Raw: raw, Proto: s.Proto, Kind: s.Kind, Size: s.Size,
		Pvrsn: s.Pvrsn, Gvrsn: s.Gvrsn,
	}

	if s.Kind == "JSON" {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return Envelope{}, 0, errs.Deserialize(offset, "malformed JSON message body")
		}
		env.ParsedMap = m

		if t, ok := m["t"].(string); ok {
			env.Ilk = &t
		}
		if d, ok := m["d"].(string); ok {
			env.Said = &d
		}
	}

	return env, s.Size, nil
}

// offsetError rewrites a smell-reported error (which carries no meaningful
// offset of its own) to the caller's stream offset.
func offsetError(err error, offset int) error {
	var pe *errs.ParseError
	if errors.As(err, &pe) && pe.Kind == errs.KindShortage {
		return errs.Shortage(offset, pe.Need, pe.Have)
	}

	return errs.VersionErr(offset, "no version string found")
}
