// Package counter decodes a single CESR group-header counter — the
// lead-'-' token that precedes an attachment group or body wrapper and
// declares a repetition count (or, for the genus/version counter, a new
// active Versionage) — in either the text or binary domain.
package counter

import (
	"github.com/arloliu/cesrparse/b64"
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/errs"
)

// Token is a decoded counter.
type Token struct {
	Code           string
	Name           string
	Count          int
	Spec           codes.GroupSpec
	QB64           string
	FullSizeText   int
	FullSizeBinary int
}

// genusCode is the distinguished code for the genus/version counter, always
// present in every major-version table.
const genusCode = "--"

// lookup resolves a counter's hard code against the dispatch table for the
// given major version. When major is not a supported version (cold start,
// before any version has been established), every code, the
// version-independent genus counter "--" included, is looked up in the v1
// table.
func lookup(major int, code string) (codes.GroupSpec, error) {
	table, ok := codes.CounterTable(major)
	if !ok {
		table, _ = codes.CounterTable(1)
	}
	spec, ok := table[code]
	if !ok {
		return codes.GroupSpec{}, errs.ErrUnknownCode
	}

	return spec, nil
}

// DecodeText decodes one counter from the start of a text-domain buffer
// under the given active major version, returning the token and the number
// of characters consumed.
func DecodeText(buf []byte, offset int, major int) (Token, int, error) {
	if len(buf) == 0 {
		return Token{}, 0, errs.Shortage(offset, 1, 0)
	}

	hs, ok := codes.CounterHards[buf[0]]
	if !ok {
		return Token{}, 0, errs.UnknownCode(offset, string(buf[0]))
	}
	if len(buf) < hs {
		return Token{}, 0, errs.Shortage(offset, hs, len(buf))
	}

	code := string(buf[:hs])
	spec, err := lookup(major, code)
	if err != nil {
		return Token{}, 0, errs.UnknownCode(offset, code)
	}

	fullSize := spec.FS
	if len(buf) < fullSize {
		return Token{}, 0, errs.Shortage(offset, fullSize, len(buf))
	}

	qb64 := string(buf[:fullSize])
	soft := qb64[spec.HS:fullSize]
	count, err := b64.ToInt(soft)
	if err != nil {
		return Token{}, 0, errs.Deserialize(offset, "bad counter soft count")
	}

	return Token{
		Code: spec.Code, Name: spec.Name, Count: int(count), Spec: spec, QB64: qb64,
		FullSizeText: fullSize, FullSizeBinary: b64.CeilToBinary(fullSize),
	}, fullSize, nil
}

// DecodeBinary decodes one counter from the start of a binary-domain buffer
// under the given active major version, returning the token and the number
// of bytes consumed.
func DecodeBinary(buf []byte, offset int, major int) (Token, int, error) {
	if len(buf) == 0 {
		return Token{}, 0, errs.Shortage(offset, 1, 0)
	}

	hs := 2 // every counter hard part is 2 sextets ('-' + selector)
	// The code is taken from the leading 4 sextets (3 whole bytes; no counter
	// is shorter), so the soft-count bits sharing the code's last byte are
	// not checked as pad bits.
	head, err := b64.TextFromBinary(buf, 4)
	if err != nil {
		return Token{}, 0, shortageOrDeserialize(err, offset)
	}
	codeText := head[:hs]

	spec, err := lookup(major, codeText)
	if err != nil {
		return Token{}, 0, errs.UnknownCode(offset, codeText)
	}

	fullSizeBinary := b64.CeilToBinary(spec.FS)
	if len(buf) < fullSizeBinary {
		return Token{}, 0, errs.Shortage(offset, fullSizeBinary, len(buf))
	}

	qb64, err := b64.TextFromBinary(buf, spec.FS)
	if err != nil {
		return Token{}, 0, shortageOrDeserialize(err, offset)
	}

	soft := qb64[spec.HS:]
	count, err := b64.ToInt(soft)
	if err != nil {
		return Token{}, 0, errs.Deserialize(offset, "bad counter soft count")
	}

	return Token{
		Code: spec.Code, Name: spec.Name, Count: int(count), Spec: spec, QB64: qb64,
		FullSizeText: spec.FS, FullSizeBinary: fullSizeBinary,
	}, fullSizeBinary, nil
}

// IsGenus reports whether code is the distinguished genus/version counter.
func IsGenus(code string) bool {
	return code == genusCode
}

// ParseVersionage extracts the active Versionage a genus/version counter
// declares: the last three base64 characters of the counter's qb64 encode
// major (clamped to {1,2}) and minor. The third character is reserved and
// not interpreted.
func ParseVersionage(qb64 string) (codes.Versionage, error) {
	if len(qb64) < 5 {
		return codes.Versionage{}, errs.ErrDeserialize
	}

	suffix := qb64[len(qb64)-3:]
	majorRaw, err := b64.ToInt(suffix[0:1])
	if err != nil {
		return codes.Versionage{}, errs.ErrBadChar
	}
	minorRaw, err := b64.ToInt(suffix[1:2])
	if err != nil {
		return codes.Versionage{}, errs.ErrBadChar
	}

	major := 2
	if majorRaw == 1 {
		major = 1
	}

	return codes.Versionage{Major: major, Minor: int(minorRaw)}, nil
}

func shortageOrDeserialize(err error, offset int) error {
	if errs.IsShortage(err) {
		return err
	}

	return errs.Deserialize(offset, err.Error())
}
