// Package sniff implements the cold-start domain classifier: given only the
// next unconsumed byte, decide whether it begins an annotation separator, a
// text-domain counter/matter token, a serialized message body, or a
// binary-domain (qb2) token.
package sniff

import (
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/errs"
)

// Byte classifies a single lookahead byte into its CESR domain: the
// encoding reserves the top three bits of the first byte to disambiguate
// all four domains without further lookahead.
func Byte(b byte) codes.Domain {
	switch b >> 5 {
	case 0:
		return codes.DomainAnnotation
	case 1, 2:
		return codes.DomainText
	case 3, 4, 5, 6:
		return codes.DomainMessage
	default: // 7
		return codes.DomainBinary
	}
}

// Next classifies the next byte of buf, reporting Shortage if buf is empty.
func Next(buf []byte, offset int) (codes.Domain, error) {
	if len(buf) == 0 {
		return codes.DomainUnknown, errs.Shortage(offset, 1, 0)
	}

	return Byte(buf[0]), nil
}
