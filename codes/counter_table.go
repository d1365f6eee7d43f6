package codes

// CounterHards maps the first byte of a counter token (always '-') to its
// hard size in text characters. All counters in this registry share a
// 2-character hard part (the leading '-' plus one selector character); the
// "Big" variants are distinguished by a larger soft size, not a larger hard
// part, which keeps hard-size lookup a one-entry table instead of a
// multi-width cascade like the matter/indexer tables need.
var CounterHards = map[byte]int{'-': 2}

// Shape describes how an attachment-dispatch/body-group counter's payload
// is structured: one of four counter families.
type Shape int

const (
	// ShapeOpaque payloads are count*unit raw bytes returned as a list of
	// fixed-width slices (no recursive dispatch, no tuple decoding).
	ShapeOpaque Shape = iota
	// ShapeWrapper payloads are recursively dispatched into zero or more
	// nested groups (or, at a frame boundary, reinterpreted per BodyRole).
	ShapeWrapper
	// ShapeTuple payloads are `count` repetitions of a fixed ordered tuple
	// of primitive kinds.
	ShapeTuple
	// ShapeComposite payloads are `count` repetitions of a tuple followed
	// by a nested indexed-signature-list counter.
	ShapeComposite
	// ShapeGenus is the genus/version counter: it carries no payload of its
	// own and instead sets the active Versionage for subsequent tokens.
	ShapeGenus
)

// TokenKind identifies which decoder a tuple/composite slot is read with.
type TokenKind int

const (
	TokenMatter TokenKind = iota
	TokenIndexer
)

// BodyRole marks the counters that carry a second meaning when they appear
// as the very first counter of a frame (cold start, before any body has
// been reaped) rather than mid-attachment-loop. Only counters with a
// non-zero BodyRole are legal there; any other code is ColdStart.
type BodyRole int

const (
	RoleNone BodyRole = iota
	// RoleBodyWrap: payload is one complete nested frame (body+attachments)
	// that must consume the payload exactly.
	RoleBodyWrap
	// RoleNonNative: payload is exactly one matter primitive whose raw
	// bytes are a complete serialized envelope in an alternate kind.
	RoleNonNative
	// RoleNative: payload is a native (FixBody/MapBody) CESR-encoded body.
	RoleNative
)

// GroupSpec is one entry of the per-major-version counter dispatch table.
type GroupSpec struct {
	Code string
	Name string
	Cizage
	Shape    Shape
	BodyRole BodyRole
	// IsMap distinguishes FixBodyGroup (false) from MapBodyGroup (true)
	// when BodyRole == RoleNative.
	IsMap bool
	// Tuple lists the token kinds of one repetition, for ShapeTuple.
	Tuple []TokenKind
	// CompositeLead lists the token kinds that precede the nested list, for
	// ShapeComposite.
	CompositeLead []TokenKind
	// NestedSigerCodes lists which counter codes are acceptable for the
	// nested indexed-signature list of a ShapeComposite group.
	NestedSigerCodes []string
}

func cz(hs, ss int) Cizage { return Cizage{HS: hs, SS: ss, FS: hs + ss} }

// counterTableV1 is the base (major version 1) attachment/body group
// dispatch table.
var counterTableV1 = map[string]GroupSpec{
	// Tuple family.
	"-A": {Code: "-A", Name: "ControllerIdxSigs", Cizage: cz(2, 2), Shape: ShapeTuple, Tuple: []TokenKind{TokenIndexer}},
	"-B": {Code: "-B", Name: "WitnessIdxSigs", Cizage: cz(2, 2), Shape: ShapeTuple, Tuple: []TokenKind{TokenIndexer}},
	"-C": {Code: "-C", Name: "NonTransReceiptCouples", Cizage: cz(2, 2), Shape: ShapeTuple, Tuple: []TokenKind{TokenMatter, TokenMatter}},
	"-D": {Code: "-D", Name: "TransReceiptQuadruples", Cizage: cz(2, 2), Shape: ShapeTuple, Tuple: []TokenKind{TokenMatter, TokenMatter, TokenMatter, TokenIndexer}},
	"-E": {Code: "-E", Name: "FirstSeenReplayCouples", Cizage: cz(2, 2), Shape: ShapeTuple, Tuple: []TokenKind{TokenMatter, TokenMatter}},
	"-H": {Code: "-H", Name: "SealSourceCouples", Cizage: cz(2, 2), Shape: ShapeTuple, Tuple: []TokenKind{TokenMatter, TokenMatter}},
	"-I": {Code: "-I", Name: "SealSourceTriples", Cizage: cz(2, 2), Shape: ShapeTuple, Tuple: []TokenKind{TokenMatter, TokenMatter, TokenMatter}},

	// Composite family: tuple + nested indexed-signature-list counter.
	"-F": {
		Code: "-F", Name: "TransIdxSigGroups", Cizage: cz(2, 2), Shape: ShapeComposite,
		CompositeLead: []TokenKind{TokenMatter, TokenMatter, TokenMatter}, NestedSigerCodes: []string{"-A", "-B"},
	},
	"-G": {
		Code: "-G", Name: "TransLastIdxSigGroups", Cizage: cz(2, 2), Shape: ShapeComposite,
		CompositeLead: []TokenKind{TokenMatter}, NestedSigerCodes: []string{"-A", "-B"},
	},

	// Attachment-only wrapper family (never legal at a frame boundary).
	"-V": {Code: "-V", Name: "AttachmentGroup", Cizage: cz(2, 2), Shape: ShapeWrapper},
	"-J": {Code: "-J", Name: "ESSRWrapperGroup", Cizage: cz(2, 4), Shape: ShapeWrapper},
	"-S": {Code: "-S", Name: "GenericGroup", Cizage: cz(2, 2), Shape: ShapeWrapper},
	"-T": {Code: "-T", Name: "GenericListGroup", Cizage: cz(2, 2), Shape: ShapeWrapper},
	"-U": {Code: "-U", Name: "GenericMapGroup", Cizage: cz(2, 2), Shape: ShapeWrapper},

	// Body-boundary family: legal both mid-attachment (as a generic
	// wrapper of nested groups) and at a frame boundary (per BodyRole).
	"-W": {Code: "-W", Name: "BodyWithAttachmentGroup", Cizage: cz(2, 2), Shape: ShapeWrapper, BodyRole: RoleBodyWrap},
	"-X": {Code: "-X", Name: "BodyWithAttachmentGroupBig", Cizage: cz(2, 4), Shape: ShapeWrapper, BodyRole: RoleBodyWrap},
	"-P": {Code: "-P", Name: "FixBodyGroup", Cizage: cz(2, 2), Shape: ShapeWrapper, BodyRole: RoleNative, IsMap: false},
	"-Q": {Code: "-Q", Name: "FixBodyGroupBig", Cizage: cz(2, 4), Shape: ShapeWrapper, BodyRole: RoleNative, IsMap: false},
	"-R": {Code: "-R", Name: "MapBodyGroup", Cizage: cz(2, 2), Shape: ShapeWrapper, BodyRole: RoleNative, IsMap: true},
	"-Y": {Code: "-Y", Name: "MapBodyGroupBig", Cizage: cz(2, 4), Shape: ShapeWrapper, BodyRole: RoleNative, IsMap: true},

	// Non-native body family: at a frame boundary the payload is a foreign
	// envelope (per BodyRole); mid-attachment it dispatches as opaque.
	"-N": {Code: "-N", Name: "NonNativeBodyGroup", Cizage: cz(2, 2), Shape: ShapeOpaque, BodyRole: RoleNonNative},
	"-O": {Code: "-O", Name: "NonNativeBodyGroupBig", Cizage: cz(2, 4), Shape: ShapeOpaque, BodyRole: RoleNonNative},

	// Genus/version counter.
	"--": {Code: "--", Name: "KERIACDCGenusVersion", Cizage: Cizage{HS: 2, SS: 3, FS: 5}, Shape: ShapeGenus},
}

// counterTableV2 extends the v1 table with a version-2-only wrapper code,
// used to exercise the compat-mode version fallback.
var counterTableV2 = buildV2()

func buildV2() map[string]GroupSpec {
	t := make(map[string]GroupSpec, len(counterTableV1)+1)
	for k, v := range counterTableV1 {
		t[k] = v
	}
	t["-Z"] = GroupSpec{Code: "-Z", Name: "ESSRPayloadGroupV2", Cizage: cz(2, 2), Shape: ShapeWrapper}

	return t
}

// CounterTable returns the attachment/body dispatch table for the given
// major version, and whether that major version is supported at all.
func CounterTable(major int) (map[string]GroupSpec, bool) {
	switch major {
	case 1:
		return counterTableV1, true
	case 2:
		return counterTableV2, true
	default:
		return nil, false
	}
}

// ControllerWitnessIdxSigCodes returns the counter codes recognized as
// nested indexed-signature lists for composite groups in the given major
// version: the version-appropriate controller/witness indexed-signature
// codes.
func ControllerWitnessIdxSigCodes(major int) []string {
	return []string{"-A", "-B"}
}
