// Package b64 provides the base64url codec primitives the CESR text domain
// is built from: fixed-width unsigned integer encode/decode in the base64url
// alphabet, and the ceiling-division helpers that convert between the text
// (sextet/quadlet) and binary (byte/triplet) size domains.
//
// A small, stateless, dependency-free utility package that every
// higher-level decoder reaches for.
package b64

import "github.com/arloliu/cesrparse/errs"

// Alphabet is the base64url alphabet CESR text-domain codes are drawn from:
// standard url-safe base64 (RFC 4648 §5), big-endian sextet order.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

var reverse [256]int8

func init() {
	for i := range reverse {
		reverse[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		reverse[Alphabet[i]] = int8(i) //nolint:gosec
	}
}

// Sextet returns the 6-bit value of a single base64url character.
func Sextet(c byte) (int, error) {
	v := reverse[c]
	if v < 0 {
		return 0, errs.ErrBadChar
	}

	return int(v), nil
}

// ToInt decodes text as a big-endian, zero-padded (on the left, with 'A')
// fixed-width unsigned integer in the base64url alphabet.
func ToInt(text string) (int64, error) {
	var v int64
	for i := 0; i < len(text); i++ {
		sextet, err := Sextet(text[i])
		if err != nil {
			return 0, err
		}

		v = (v << 6) | int64(sextet)
	}

	return v, nil
}

// FromInt encodes value as a fixed-width unsigned integer of the given
// length (in base64url characters), zero-padded on the left with 'A'.
// Returns ErrOverflow if value does not fit in length characters.
func FromInt(value int64, length int) (string, error) {
	if length <= 0 {
		return "", errs.ErrOverflow
	}
	if value < 0 || (length < 11 && value >= int64(1)<<(6*uint(length))) {
		return "", errs.ErrOverflow
	}

	buf := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		buf[i] = Alphabet[value&0x3F]
		value >>= 6
	}

	return string(buf), nil
}

// CeilToBinary converts a count of text characters (sextets) to the
// equivalent number of binary bytes, rounding up: ceil(textChars*3/4).
func CeilToBinary(textChars int) int {
	return (textChars*3 + 3) / 4
}

// CeilToText converts a count of binary bytes to the equivalent number of
// text characters (sextets), rounding up: ceil(bytes*4/3).
func CeilToText(bytes int) int {
	return (bytes*4 + 2) / 3
}

// DecodeBody base64url-decodes a text body whose length is a multiple of 4
// into raw bytes. Unlike the standard library decoder this never requires
// '=' padding because CESR text bodies are always quadlet-aligned; callers
// that need to decode a non-quadlet-aligned span (soft counts, for example)
// should use ToInt instead.
func DecodeBody(text string) ([]byte, error) {
	if len(text)%4 != 0 {
		return nil, errs.ErrBadChar
	}

	out := make([]byte, 0, CeilToBinary(len(text)))
	for i := 0; i < len(text); i += 4 {
		quad := text[i : i+4]
		var acc uint32
		for j := 0; j < 4; j++ {
			s, err := Sextet(quad[j])
			if err != nil {
				return nil, err
			}
			acc = (acc << 6) | uint32(s)
		}
		out = append(out, byte(acc>>16), byte(acc>>8), byte(acc))
	}

	return out, nil
}

// TextFromBinary reconstructs the base64url text equivalent of the first
// textChars sextets of a binary-domain buffer, validating that any trailing
// pad bits within the last consumed byte are zero: the mid-pad bits between
// the code and payload must be zero.
//
// This is the bridge the binary-domain matter/counter/indexer decoders use
// to avoid re-implementing sizing logic twice: once textChars is known
// (directly for fixed-size codes, or after a first pass for variable-size
// codes) the reconstructed text is fed through the exact same body-slicing
// logic the text-domain decoder uses.
func TextFromBinary(data []byte, textChars int) (string, error) {
	nBytes := CeilToBinary(textChars)
	if len(data) < nBytes {
		return "", errs.Shortage(0, nBytes, len(data))
	}

	buf := data[:nBytes]
	text := make([]byte, textChars)

	bitPos := 0
	for i := 0; i < textChars; i++ {
		var v int
		for b := 0; b < 6; b++ {
			byteIdx := bitPos / 8
			bitIdx := 7 - (bitPos % 8)
			bit := int((buf[byteIdx] >> uint(bitIdx)) & 1) //nolint:gosec
			v = (v << 1) | bit
			bitPos++
		}
		text[i] = Alphabet[v]
	}

	totalBits := nBytes * 8
	for bp := textChars * 6; bp < totalBits; bp++ {
		byteIdx := bp / 8
		bitIdx := 7 - (bp % 8)
		if (buf[byteIdx]>>uint(bitIdx))&1 != 0 { //nolint:gosec
			return "", errs.Deserialize(0, "nonzero pad bit in binary-domain token")
		}
	}

	return string(text), nil
}

// DecodeBodyWithLead base64url-decodes a quadlet-aligned body and strips the
// ls leading zero-pad bytes that were added before encoding.
func DecodeBodyWithLead(body string, ls int) ([]byte, error) {
	raw, err := DecodeBody(body)
	if err != nil {
		return nil, err
	}
	if ls > len(raw) {
		return nil, errs.ErrBadChar
	}

	return raw[ls:], nil
}

// EncodeBody base64url-encodes raw bytes (whose length must be a multiple of
// 3) into a quadlet-aligned text body.
func EncodeBody(raw []byte) (string, error) {
	if len(raw)%3 != 0 {
		return "", errs.ErrBadChar
	}

	out := make([]byte, 0, CeilToText(len(raw)))
	for i := 0; i < len(raw); i += 3 {
		acc := uint32(raw[i])<<16 | uint32(raw[i+1])<<8 | uint32(raw[i+2])
		out = append(out,
			Alphabet[(acc>>18)&0x3F],
			Alphabet[(acc>>12)&0x3F],
			Alphabet[(acc>>6)&0x3F],
			Alphabet[acc&0x3F],
		)
	}

	return string(out), nil
}
