// Package matter decodes a single CESR matter primitive — a fixed- or
// variable-width token carrying raw bytes under a typed code — in either the
// text or binary domain.
package matter

import (
	"github.com/arloliu/cesrparse/b64"
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/internal/ctab"
)

// Token is a decoded matter primitive.
type Token struct {
	Code           string
	Name           string
	Raw            []byte
	QB64           string
	FullSizeText   int
	FullSizeBinary int
}

var table = ctab.Build(codes.MatterSizes)

var bards = buildBards(codes.MatterHards)

func buildBards(hards map[byte]int) map[int]int {
	out := make(map[int]int, len(hards))
	for ch, hs := range hards {
		if s, err := b64.Sextet(ch); err == nil {
			out[int(s)] = hs
		}
	}

	return out
}

// lookupCode finds the sizage entry for the hs-char code at the start of
// text, falling back to a 4-char code when the natural-width lookup misses
// (reserved for future table growth; no entry in the current table actually
// needs the fallback).
func lookupCode(text string, hs int) (codes.MatterEntry, int, bool) {
	if len(text) >= hs {
		if e, ok := table.Lookup(text[:hs]); ok {
			return e, hs, true
		}
	}
	if hs != 4 && len(text) >= 4 {
		if e, ok := table.Lookup(text[:4]); ok {
			return e, 4, true
		}
	}

	return codes.MatterEntry{}, 0, false
}

// DecodeText decodes one matter primitive from the start of a text-domain
// buffer, returning the token and the number of characters consumed.
func DecodeText(buf []byte, offset int) (Token, int, error) {
	if len(buf) == 0 {
		return Token{}, 0, errs.Shortage(offset, 1, 0)
	}

	hs, ok := codes.MatterHards[buf[0]]
	if !ok {
		return Token{}, 0, errs.UnknownCode(offset, string(buf[0]))
	}
	if len(buf) < hs {
		return Token{}, 0, errs.Shortage(offset, hs, len(buf))
	}

	entry, hs, ok := lookupCode(string(buf), hs)
	if !ok {
		return Token{}, 0, errs.UnknownCode(offset, string(buf[:hs]))
	}

	fullSize := 0
	if entry.FS != nil {
		fullSize = *entry.FS
	} else {
		ss := entry.SS
		if len(buf) < hs+ss {
			return Token{}, 0, errs.Shortage(offset, hs+ss, len(buf))
		}
		count, err := b64.ToInt(string(buf[hs : hs+ss]))
		if err != nil {
			return Token{}, 0, errs.Deserialize(offset, "bad soft count")
		}
		fullSize = hs + ss + 4*int(count)
	}

	if len(buf) < fullSize {
		return Token{}, 0, errs.Shortage(offset, fullSize, len(buf))
	}

	qb64 := string(buf[:fullSize])
	body := qb64[entry.HS+entry.SS+entry.XS:]
	raw, err := b64.DecodeBodyWithLead(body, entry.LS)
	if err != nil {
		return Token{}, 0, errs.Deserialize(offset, "malformed base64 body")
	}

	return Token{
		Code: entry.Code, Name: entry.Name, Raw: raw, QB64: qb64,
		FullSizeText: fullSize, FullSizeBinary: b64.CeilToBinary(fullSize),
	}, fullSize, nil
}

// DecodeBinary decodes one matter primitive from the start of a
// binary-domain buffer, returning the token and the number of bytes
// consumed.
func DecodeBinary(buf []byte, offset int) (Token, int, error) {
	if len(buf) == 0 {
		return Token{}, 0, errs.Shortage(offset, 1, 0)
	}

	hs, ok := bard(buf[0])
	if !ok {
		return Token{}, 0, errs.UnknownCode(offset, "binary lead sextet")
	}

	// The code is taken from the leading 4 sextets (3 whole bytes; no matter
	// token is shorter), so the payload bits sharing the code's last byte are
	// not checked as pad bits.
	head, err := b64.TextFromBinary(buf, 4)
	if err != nil {
		return Token{}, 0, shortageOrDeserialize(err, offset)
	}
	codeText := head[:hs]

	entry, ok := table.Lookup(codeText)
	if !ok {
		return Token{}, 0, errs.UnknownCode(offset, codeText)
	}

	fullSizeText := 0
	if entry.FS != nil {
		fullSizeText = *entry.FS
	} else {
		headText, err := b64.TextFromBinary(buf, entry.HS+entry.SS)
		if err != nil {
			return Token{}, 0, shortageOrDeserialize(err, offset)
		}
		count, err := b64.ToInt(headText[entry.HS:])
		if err != nil {
			return Token{}, 0, errs.Deserialize(offset, "bad soft count")
		}
		fullSizeText = entry.HS + entry.SS + 4*int(count)
	}

	fullSizeBinary := b64.CeilToBinary(fullSizeText)
	if len(buf) < fullSizeBinary {
		return Token{}, 0, errs.Shortage(offset, fullSizeBinary, len(buf))
	}

	qb64, err := b64.TextFromBinary(buf, fullSizeText)
	if err != nil {
		return Token{}, 0, shortageOrDeserialize(err, offset)
	}

	body := qb64[entry.HS+entry.SS+entry.XS:]
	raw, err := b64.DecodeBodyWithLead(body, entry.LS)
	if err != nil {
		return Token{}, 0, errs.Deserialize(offset, "malformed base64 body")
	}

	return Token{
		Code: entry.Code, Name: entry.Name, Raw: raw, QB64: qb64,
		FullSizeText: fullSizeText, FullSizeBinary: fullSizeBinary,
	}, fullSizeBinary, nil
}

func bard(b byte) (int, bool) {
	hs, ok := bards[int(b>>2)]
	return hs, ok
}

func shortageOrDeserialize(err error, offset int) error {
	if errs.IsShortage(err) {
		return err
	}

	return errs.Deserialize(offset, err.Error())
}
