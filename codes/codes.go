// Package codes holds the static, read-only sizing and name tables that
// drive every token decoder in this module: matter primitives, indexed
// primitives, and version-keyed group counters.
//
// The tables are plain Go literals: small, immutable, process-wide data
// initialized once at package load and shared read-only by every decoder
// instance. No table is ever mutated after init().
package codes

import "fmt"

// Domain classifies which of the four CESR domains the next unconsumed byte
// belongs to.
type Domain int

const (
	DomainUnknown Domain = iota
	DomainAnnotation
	DomainText
	DomainMessage
	DomainBinary
)

func (d Domain) String() string {
	switch d {
	case DomainAnnotation:
		return "annotation"
	case DomainText:
		return "text"
	case DomainMessage:
		return "message"
	case DomainBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Versionage is the {major, minor} pair that selects which counter table is
// active for subsequent token dispatch.
type Versionage struct {
	Major int
	Minor int
}

func (v Versionage) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// V1 and V2 are the two major versions the counter dispatch table is keyed
// by, per the genus/version counter semantics in the parser engine.
var (
	V1 = Versionage{Major: 1, Minor: 0}
	V2 = Versionage{Major: 2, Minor: 0}
)

// Sizage describes the sizing of a matter (or indexer) primitive code.
//
//   - HS: hard-code size, in text characters.
//   - SS: soft-size, in text characters (the count/index field(s)).
//   - XS: extra prepad sextets required between the hard and soft parts,
//     zero for almost all codes.
//   - FS: full size in text characters. Nil for variable-length codes,
//     whose size is instead computed from the decoded soft count:
//     FS = HS + SS + 4*b64ToInt(soft).
//   - LS: lead-size, the number of zero prepad bytes added to the raw body
//     before encoding so that (len(raw)+LS) is a multiple of 3.
type Sizage struct {
	HS int
	SS int
	XS int
	FS *int
	LS int
}

// FixedFS returns the full text size for a fixed-size code, panicking if
// called on a variable-size Sizage; callers should check FS == nil first.
func (s Sizage) FixedFS() int {
	if s.FS == nil {
		panic("codes: FixedFS called on a variable-size sizage")
	}

	return *s.FS
}

// IsVariable reports whether the code's full size depends on its soft count
// rather than being fixed by its table entry.
func (s Sizage) IsVariable() bool {
	return s.FS == nil
}

func fixed(fs int) *int { return &fs }

// Cizage describes the sizing of a counter code. Counters carry no variable
// body of their own: FS = HS + SS always, and the binary full size is the
// ceil(FS*3/4) byte count of that same header.
type Cizage struct {
	HS int
	SS int
	FS int
}

// Xizage describes the sizing of an indexed primitive code: like Sizage, but
// with two soft fields — the index (SS) and an optional ordinal (OS).
type Xizage struct {
	HS int
	SS int
	OS int
	XS int
	FS *int
	LS int
}

func (x Xizage) IsVariable() bool { return x.FS == nil }
