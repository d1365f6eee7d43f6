// Package indexer decodes a single CESR indexed primitive — a matter-like
// token that additionally carries an index and, for some codes, an ordinal
// — in either the text or binary domain. Indexed primitives are used for
// controller- and witness-signed signatures inside attachment groups.
package indexer

import (
	"github.com/arloliu/cesrparse/b64"
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/internal/ctab"
)

// Token is a decoded indexed primitive.
type Token struct {
	Code           string
	Name           string
	Index          int
	Ordinal        int
	Raw            []byte
	QB64           string
	FullSizeText   int
	FullSizeBinary int
}

var table = ctab.Build(codes.IndexerSizes)

var bards = buildBards(codes.IndexerHards)

func buildBards(hards map[byte]int) map[int]int {
	out := make(map[int]int, len(hards))
	for ch, hs := range hards {
		if s, err := b64.Sextet(ch); err == nil {
			out[int(s)] = hs
		}
	}

	return out
}

func softFields(entry codes.IndexerEntry, head string) (index, ordinal int, err error) {
	idx, err := b64.ToInt(head[entry.HS : entry.HS+entry.SS])
	if err != nil {
		return 0, 0, errs.ErrBadChar
	}
	if entry.OS > 0 {
		ord, err := b64.ToInt(head[entry.HS+entry.SS : entry.HS+entry.SS+entry.OS])
		if err != nil {
			return 0, 0, errs.ErrBadChar
		}

		return int(idx), int(ord), nil
	}

	return int(idx), 0, nil
}

// DecodeText decodes one indexed primitive from the start of a text-domain
// buffer, returning the token and the number of characters consumed.
func DecodeText(buf []byte, offset int) (Token, int, error) {
	if len(buf) == 0 {
		return Token{}, 0, errs.Shortage(offset, 1, 0)
	}

	hs, ok := codes.IndexerHards[buf[0]]
	if !ok {
		return Token{}, 0, errs.UnknownCode(offset, string(buf[0]))
	}
	if len(buf) < hs {
		return Token{}, 0, errs.Shortage(offset, hs, len(buf))
	}

	entry, ok := table.Lookup(string(buf[:hs]))
	if !ok {
		return Token{}, 0, errs.UnknownCode(offset, string(buf[:hs]))
	}

	softLen := entry.HS + entry.SS + entry.OS
	if len(buf) < softLen {
		return Token{}, 0, errs.Shortage(offset, softLen, len(buf))
	}

	fullSize := 0
	if entry.FS != nil {
		fullSize = *entry.FS
	} else {
		countText := string(buf[entry.HS+entry.SS : softLen])
		count, err := b64.ToInt(countText)
		if err != nil {
			return Token{}, 0, errs.Deserialize(offset, "bad soft count")
		}
		fullSize = softLen + 4*int(count)
	}

	if len(buf) < fullSize {
		return Token{}, 0, errs.Shortage(offset, fullSize, len(buf))
	}

	qb64 := string(buf[:fullSize])
	index, ordinal, err := softFields(entry, qb64)
	if err != nil {
		return Token{}, 0, errs.Deserialize(offset, "bad index/ordinal field")
	}

	body := qb64[softLen+entry.XS:]
	raw, err := b64.DecodeBodyWithLead(body, entry.LS)
	if err != nil {
		return Token{}, 0, errs.Deserialize(offset, "malformed base64 body")
	}

	return Token{
		Code: entry.Code, Name: entry.Name, Index: index, Ordinal: ordinal,
		Raw: raw, QB64: qb64, FullSizeText: fullSize, FullSizeBinary: b64.CeilToBinary(fullSize),
	}, fullSize, nil
}

// DecodeBinary decodes one indexed primitive from the start of a
// binary-domain buffer, returning the token and the number of bytes
// consumed.
func DecodeBinary(buf []byte, offset int) (Token, int, error) {
	if len(buf) == 0 {
		return Token{}, 0, errs.Shortage(offset, 1, 0)
	}

	hs, ok := bards[int(buf[0]>>2)]
	if !ok {
		return Token{}, 0, errs.UnknownCode(offset, "binary lead sextet")
	}

	// The code is taken from the leading 4 sextets (3 whole bytes; no indexed
	// primitive is shorter), so the index bits sharing the code's last byte
	// are not checked as pad bits.
	head, err := b64.TextFromBinary(buf, 4)
	if err != nil {
		return Token{}, 0, shortageOrDeserialize(err, offset)
	}
	codeText := head[:hs]

	entry, ok := table.Lookup(codeText)
	if !ok {
		return Token{}, 0, errs.UnknownCode(offset, codeText)
	}

	softLen := entry.HS + entry.SS + entry.OS

	fullSizeText := 0
	if entry.FS != nil {
		fullSizeText = *entry.FS
	} else {
		headText, err := b64.TextFromBinary(buf, softLen)
		if err != nil {
			return Token{}, 0, shortageOrDeserialize(err, offset)
		}
		count, err := b64.ToInt(headText[entry.HS+entry.SS:])
		if err != nil {
			return Token{}, 0, errs.Deserialize(offset, "bad soft count")
		}
		fullSizeText = softLen + 4*int(count)
	}

	fullSizeBinary := b64.CeilToBinary(fullSizeText)
	if len(buf) < fullSizeBinary {
		return Token{}, 0, errs.Shortage(offset, fullSizeBinary, len(buf))
	}

	qb64, err := b64.TextFromBinary(buf, fullSizeText)
	if err != nil {
		return Token{}, 0, shortageOrDeserialize(err, offset)
	}

	index, ordinal, err := softFields(entry, qb64)
	if err != nil {
		return Token{}, 0, errs.Deserialize(offset, "bad index/ordinal field")
	}

	body := qb64[softLen+entry.XS:]
	raw, err := b64.DecodeBodyWithLead(body, entry.LS)
	if err != nil {
		return Token{}, 0, errs.Deserialize(offset, "malformed base64 body")
	}

	return Token{
		Code: entry.Code, Name: entry.Name, Index: index, Ordinal: ordinal,
		Raw: raw, QB64: qb64, FullSizeText: fullSizeText, FullSizeBinary: fullSizeBinary,
	}, fullSizeBinary, nil
}

func shortageOrDeserialize(err error, offset int) error {
	if errs.IsShortage(err) {
		return err
	}

	return errs.Deserialize(offset, err.Error())
}
