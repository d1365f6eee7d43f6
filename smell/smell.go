// Package smell scans the first bytes of a serialized message body for a
// CESR version string (v1 fixed-width or v2 base64 layout) and reports the
// protocol, version, serialization kind, and declared size it finds.
package smell

import (
	"github.com/arloliu/cesrparse/b64"
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/errs"
)

// Smellage is the result of a successful version-string scan.
type Smellage struct {
	Proto string
	Pvrsn codes.Versionage
	Gvrsn *codes.Versionage // only set for a v2 match
	Kind  string
	Size  int
}

// maxWindow is the largest prefix of the body the smeller will scan.
const maxWindow = 256

// maxStartOffset is the furthest the version string's first byte may sit
// from the start of the body.
const maxStartOffset = 8

var protocols = map[string]bool{"KERI": true, "ACDC": true}
var kinds = map[string]bool{"JSON": true, "CBOR": true, "MGPK": true, "CESR": true}

// Smell scans buf for a version string. Returns VersionError
// if the window (up to 256 bytes, or the whole of a shorter buf) contains
// no match and buf is at least 64 bytes long; otherwise Shortage, since more
// input may still bring the version string into view.
func Smell(buf []byte) (Smellage, error) {
	window := len(buf)
	if window > maxWindow {
		window = maxWindow
	}

	limit := maxStartOffset
	if limit > window {
		limit = window
	}

	for off := 0; off <= limit; off++ {
		if s, ok := tryV1(buf, off); ok {
			return s, nil
		}
		if s, ok := tryV2(buf, off); ok {
			return s, nil
		}
	}

	if len(buf) >= 64 {
		return Smellage{}, errs.VersionErr(0, "no version string found in first 8 bytes of window")
	}

	return Smellage{}, errs.Shortage(0, 64, len(buf))
}

func isUpper4(b []byte) bool {
	if len(b) != 4 {
		return false
	}
	for _, c := range b {
		if c < 'A' || c > 'Z' {
			return false
		}
	}

	return true
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	default:
		return 0, false
	}
}

// tryV1 attempts the fixed-width v1 pattern starting at off:
// PROT(4) major(1 hex) minor(1 hex) KIND(4) size(6 hex) '_'.
func tryV1(buf []byte, off int) (Smellage, bool) {
	const length = 4 + 1 + 1 + 4 + 6 + 1
	if len(buf) < off+length {
		return Smellage{}, false
	}

	proto := string(buf[off : off+4])
	if !protocols[proto] {
		return Smellage{}, false
	}

	major, ok := hexVal(buf[off+4])
	if !ok {
		return Smellage{}, false
	}
	minor, ok := hexVal(buf[off+5])
	if !ok {
		return Smellage{}, false
	}

	kind := string(buf[off+6 : off+10])
	if !kinds[kind] {
		return Smellage{}, false
	}

	size := 0
	for i := 0; i < 6; i++ {
		v, ok := hexVal(buf[off+10+i])
		if !ok {
			return Smellage{}, false
		}
		size = size<<4 | v
	}

	if buf[off+16] != '_' {
		return Smellage{}, false
	}

	return Smellage{
		Proto: proto,
		Pvrsn: codes.Versionage{Major: major, Minor: minor},
		Kind:  kind,
		Size:  size,
	}, true
}

// tryV2 attempts the base64 v2 pattern starting at off:
// PROT(4) pmaj(1 b64) pmin(2 b64) gmaj(1 b64) gmin(2 b64) KIND(4) size(4 b64) '.'.
func tryV2(buf []byte, off int) (Smellage, bool) {
	const length = 4 + 1 + 2 + 1 + 2 + 4 + 4 + 1
	if len(buf) < off+length {
		return Smellage{}, false
	}

	proto := string(buf[off : off+4])
	if !protocols[proto] {
		return Smellage{}, false
	}

	pmaj, err := b64.ToInt(string(buf[off+4 : off+5]))
	if err != nil {
		return Smellage{}, false
	}
	pmin, err := b64.ToInt(string(buf[off+5 : off+7]))
	if err != nil {
		return Smellage{}, false
	}
	gmaj, err := b64.ToInt(string(buf[off+7 : off+8]))
	if err != nil {
		return Smellage{}, false
	}
	gmin, err := b64.ToInt(string(buf[off+8 : off+10]))
	if err != nil {
		return Smellage{}, false
	}

	kind := string(buf[off+10 : off+14])
	if !kinds[kind] {
		return Smellage{}, false
	}

	sizeRaw, err := b64.ToInt(string(buf[off+14 : off+18]))
	if err != nil {
		return Smellage{}, false
	}

	if buf[off+18] != '.' {
		return Smellage{}, false
	}

	gvrsn := codes.Versionage{Major: int(gmaj), Minor: int(gmin)}

	return Smellage{
		Proto: proto,
		Pvrsn: codes.Versionage{Major: int(pmaj), Minor: int(pmin)},
		Gvrsn: &gvrsn,
		Kind:  kind,
		Size:  int(sizeRaw),
	}, true
}
