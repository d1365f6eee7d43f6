// Package ctab accelerates code-table lookups with a hash-keyed index built
// once at process start.
//
// A CESR stream can decode millions of tokens, and every single one starts
// with a hard-size lookup followed by a full-code lookup in the
// matter/indexer/counter tables, making that the hottest path in the whole
// engine. Hashing the code string once per table entry at init time and
// comparing uint64s on the hot path avoids repeated string hashing/compares
// inside map[string]T for the few-dozen-entry tables this module ships with,
// and keeps the decoders themselves free of any hashing concern.
package ctab

import "github.com/cespare/xxhash/v2"

// Index is a frozen, hash-keyed view over a small string-keyed table. It is
// built once and never mutated, matching the "module-level decoded tables"
// design note: process-wide immutable static data shared by every parser
// instance.
type Index[T any] struct {
	byHash map[uint64]T
}

// Build freezes src (a code -> value table) into a hash-keyed Index.
func Build[T any](src map[string]T) *Index[T] {
	idx := &Index[T]{byHash: make(map[uint64]T, len(src))}
	for code, v := range src {
		idx.byHash[keyOf(code)] = v
	}

	return idx
}

// Lookup returns the value for code and whether it was present.
func (idx *Index[T]) Lookup(code string) (T, bool) {
	v, ok := idx.byHash[keyOf(code)]
	return v, ok
}

func keyOf(code string) uint64 {
	return xxhash.Sum64String(code)
}
