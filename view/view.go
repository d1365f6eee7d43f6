// Package view provides thin, stateless validators that select a decoded
// matter or indexer token by semantic role — digest, version record, ilk
// tag, key prefix, indexed signature — without re-decoding anything. Each
// validator only checks that a token's code belongs to the expected family;
// it performs no cryptographic verification.
package view

import (
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/indexer"
	"github.com/arloliu/cesrparse/matter"
)

// Digester views tok as a self-addressing digest (SAID) primitive: any
// matter code in the 'E'-prefixed family.
func Digester(tok matter.Token) (matter.Token, error) {
	if !codes.MatterBySAIDFamily(tok.Code) {
		return matter.Token{}, errs.Deserialize(0, "not a digest-family matter code: "+tok.Code)
	}

	return tok, nil
}

// Verser views tok as a native-body version record: a matter token of code
// 0O or 1O whose raw body begins with "KERI" or "ACDC".
func Verser(tok matter.Token) (proto string, pvrsn codes.Versionage, err error) {
	if tok.Code != "0O" && tok.Code != "1O" {
		return "", codes.Versionage{}, errs.Deserialize(0, "not a verser matter code: "+tok.Code)
	}
	if len(tok.Raw) < 9 {
		return "", codes.Versionage{}, errs.Deserialize(0, "verser body too short")
	}

	proto = string(tok.Raw[0:4])
	if proto != "KERI" && proto != "ACDC" {
		return "", codes.Versionage{}, errs.Deserialize(0, "verser body does not start with KERI or ACDC")
	}

	packed := tok.Raw[8]

	return proto, codes.Versionage{Major: int(packed >> 4), Minor: int(packed & 0x0F)}, nil
}

// Ilker views tok as an ilk tag: a matter token of code X whose body holds
// a 3-byte ASCII operation tag (icp, rot, ixn, ...).
func Ilker(tok matter.Token) (string, error) {
	if tok.Code != "X" {
		return "", errs.Deserialize(0, "not an ilker matter code: "+tok.Code)
	}

	return string(tok.Raw), nil
}

// Prefixer views tok as an identifier key-state prefix: any matter
// primitive that is not itself tagged as a version record or ilk tag;
// digest-family codes are accepted. Prefixers share representation with
// ordinary matter primitives —
// the distinction is purely positional in the native-body field sequence.
func Prefixer(tok matter.Token) (matter.Token, error) {
	switch tok.Code {
	case "X", "0O", "1O":
		return matter.Token{}, errs.Deserialize(0, "not a prefixer-eligible matter code: "+tok.Code)
	default:
		return tok, nil
	}
}

// Siger views tok as a controller- or witness-indexed signature: an
// indexer token of code A or B.
func Siger(tok indexer.Token) (indexer.Token, error) {
	if tok.Code != "A" && tok.Code != "B" {
		return indexer.Token{}, errs.Deserialize(0, "not a siger indexer code: "+tok.Code)
	}

	return tok, nil
}
