package codes

// MatterEntry pairs a code's Sizage with its human-readable name, used for
// annotation/debugging purposes.
type MatterEntry struct {
	Code string
	Name string
	Sizage
}

// MatterHards maps the first character of a matter code to the code's hard
// size (in text characters). A decoder reads one character, looks up the
// hard size here, then re-reads that many characters to get the full code.
//
// This is a representative subset of the KERI/ACDC matter code registry,
// built to the same structural rules the real registry follows (1-char hard
// codes for 32-byte primitives, 2-char hard codes for 64-byte primitives,
// 2-char hard codes for fixed small records, and a variable-length family
// whose size comes from its soft count) rather than a byte-for-byte replica
// of the live table; see DESIGN.md.
var MatterHards = map[byte]int{
	'A': 1, 'B': 1, 'C': 1, 'D': 1, 'E': 1, 'F': 1, 'G': 1, 'H': 1, 'I': 1, 'X': 1,
	'0': 2,
	'4': 2,
}

// MatterSizes maps a full matter code to its Sizage and name.
// Digest/seed codes carry a 1-char hard code and no soft field; their body
// (the FS-HS text chars after the code) must itself be quadlet-aligned, so
// FS is one char past a multiple of 4 from HS=1. A 1-byte zero lead (LS: 1)
// brings the 32-byte payload up to a 33-byte, 3-aligned raw length before
// encoding, so the decoded FS=45 body (44 chars -> 33 bytes) strips back
// down to the intended 32-byte digest/seed.
var MatterSizes = map[string]MatterEntry{
	"A": {Code: "A", Name: "Seed_Ed25519", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(45), LS: 1}},
	"B": {Code: "B", Name: "Ed25519N", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(45), LS: 1}},
	"C": {Code: "C", Name: "X25519", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(45), LS: 1}},
	"D": {Code: "D", Name: "Ed25519", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(45), LS: 1}},
	"E": {Code: "E", Name: "Blake3_256", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(45), LS: 1}},
	"F": {Code: "F", Name: "Blake2b_256", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(45), LS: 1}},
	"G": {Code: "G", Name: "Blake2s_256", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(45), LS: 1}},
	"H": {Code: "H", Name: "SHA3_256", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(45), LS: 1}},
	"I": {Code: "I", Name: "SHA2_256", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(45), LS: 1}},
	// X is the ilk code: a 3-byte ASCII tag ("icp", "rot", "ixn", ...).
	"X": {Code: "X", Name: "Ilker", Sizage: Sizage{HS: 1, SS: 0, FS: fixed(5)}},

	// 0A carries a 2-byte lead to align a 64-byte digest to a 66-byte,
	// 3-aligned raw length (90-char FS: 2 hard + 88 body -> 66 bytes).
	"0A": {Code: "0A", Name: "Blake3_512", Sizage: Sizage{HS: 2, SS: 0, FS: fixed(90), LS: 2}},
	// 0O/1O are verser codes: a 9-byte record of 4-char proto + 4-char kind
	// + 1 packed (major<<4|minor) byte, consumed by the serder reaper's
	// native-body field tokenization.
	"0O": {Code: "0O", Name: "Verser", Sizage: Sizage{HS: 2, SS: 0, FS: fixed(14)}},
	"1O": {Code: "1O", Name: "Verser", Sizage: Sizage{HS: 2, SS: 0, FS: fixed(14)}},

	// 4A is a counted variable-length matter: soft count is in quadlets,
	// FS is computed at decode time from the soft field.
	"4A": {Code: "4A", Name: "Bytes_Big", Sizage: Sizage{HS: 2, SS: 2, FS: nil}},
	// 4B is a Label: a counted variable-length field-name tag that may
	// precede any field of a native map body. Same shape as 4A, distinct
	// code so a native-body tokenizer can tell "this is a label to skip"
	// from "this is a value" without guessing from content.
	"4B": {Code: "4B", Name: "Label", Sizage: Sizage{HS: 2, SS: 2, FS: nil}},
}

// MatterBySAIDFamily reports whether code belongs to the digest family the
// serder reaper accepts as a said (self-addressing identifier) token: any
// code whose text starts with 'E' is a digest primitive.
func MatterBySAIDFamily(code string) bool {
	return len(code) > 0 && code[0] == 'E'
}

// MatterIsLabeler reports whether code belongs to the family of advisory
// field-name labelers a native map body may interleave ahead of any field.
func MatterIsLabeler(code string) bool {
	return code == "4B"
}
