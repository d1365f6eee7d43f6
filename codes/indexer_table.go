package codes

// IndexerEntry pairs an indexer code's Xizage with its name.
type IndexerEntry struct {
	Code string
	Name string
	Xizage
}

// IndexerHards maps the first character of an indexer code to its hard
// size, mirroring MatterHards but for the indexed-primitive family (signed
// by a controller/witness, carrying an index and optional ordinal soft
// field in addition to the raw signature bytes).
var IndexerHards = map[byte]int{
	'A': 1, 'B': 1,
	'0': 2,
}

// IndexerSizes maps a full indexer code to its Xizage and name. As with
// MatterSizes, the body text following the hard+soft header (FS minus
// HS+SS+OS) must be quadlet-aligned; a 2-byte lead (LS: 2) brings the
// 64-byte Ed25519 signature up to a 66-byte, 3-aligned raw length before
// encoding.
var IndexerSizes = map[string]IndexerEntry{
	// A: controller-signed Ed25519 indexed signature. 1 char hard, 1 char
	// index soft field (6 bits, index 0-63), 64-byte raw signature.
	"A": {Code: "A", Name: "Ed25519_Sig", Xizage: Xizage{HS: 1, SS: 1, OS: 0, FS: fixed(90), LS: 2}},
	// B: witness-signed Ed25519 indexed signature, same shape as A but a
	// distinct code so WitnessIdxSigs and ControllerIdxSigs groups can
	// require different nested codes.
	"B": {Code: "B", Name: "Ed25519_Wit_Sig", Xizage: Xizage{HS: 1, SS: 1, OS: 0, FS: fixed(90), LS: 2}},
	// 0A: dual-indexed signature carrying both a current-key index and a
	// prior-key ordinal, used by TransIdxSigGroups-style rotations.
	"0A": {Code: "0A", Name: "Ed25519_Sig_Dual", Xizage: Xizage{HS: 2, SS: 1, OS: 1, FS: fixed(92), LS: 2}},
}
