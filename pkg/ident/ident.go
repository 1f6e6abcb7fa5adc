// Package ident provides validated identifiers for vertex, edge, and
// property types.
//
// An Identifier names a "type" in the graph: a vertex type, an edge type,
// or a property name. Identifiers are interned as plain strings (Go strings
// are already reference-counted/immutable under the hood, so cloning one is
// already cheap — no extra pooling layer is needed the way a systems
// language without a GC would want one). Equality, ordering, and hashing all
// delegate to the underlying bytes.
package ident

import (
	"regexp"

	"github.com/mimirgraph/pgraph/pkg/pgerr"
)

// MaxLen is the maximum byte length of a validated identifier.
const MaxLen = 255

// validPattern is the canonical identifier validator for this database.
//
// The source design left this as an open question between a URL-shaped
// validator and a `[A-Za-z0-9_-]{<=255}` validator (see SPEC_FULL.md §4.1).
// This implementation picks the latter: it is cheap to check, has no
// surprising acceptance behavior, and matches what identifiers are actually
// used for here — byte-ordered map and index keys.
var validPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Identifier is a validated short name used for vertex/edge types and
// property names.
//
// The zero value is the empty identifier, usable as a sentinel range lower
// bound (see the store's range-query helpers).
type Identifier struct {
	s string
}

// New validates s and returns an Identifier, or a Validation error if s is
// empty, too long, or contains a disallowed character.
func New(s string) (Identifier, error) {
	if s == "" || len(s) > MaxLen {
		return Identifier{}, pgerr.Validationf("identifier length out of range: %d bytes", len(s))
	}
	if !validPattern.MatchString(s) {
		return Identifier{}, pgerr.Validationf("identifier %q contains disallowed characters", s)
	}
	return Identifier{s: s}, nil
}

// NewUnchecked returns an Identifier from bytes that were already validated,
// e.g. when reading back a previously-stored identifier. It never returns an
// error and must not be used for untrusted input.
func NewUnchecked(s string) Identifier {
	return Identifier{s: s}
}

// String returns the identifier's underlying bytes.
func (id Identifier) String() string { return id.s }

// IsZero reports whether id is the empty/default identifier.
func (id Identifier) IsZero() bool { return id.s == "" }

// Equal reports whether two identifiers have identical bytes.
func (id Identifier) Equal(other Identifier) bool { return id.s == other.s }

// Compare returns -1, 0, or 1 comparing id to other lexicographically by
// byte value, giving Identifiers a total order suitable for index keys.
func (id Identifier) Compare(other Identifier) int {
	switch {
	case id.s < other.s:
		return -1
	case id.s > other.s:
		return 1
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) { return []byte(id.s), nil }

// UnmarshalText implements encoding.TextUnmarshaler. The bytes are assumed
// already validated (they round-tripped through MarshalText), so, like
// NewUnchecked, this stores them without re-running validation.
func (id *Identifier) UnmarshalText(b []byte) error {
	id.s = string(b)
	return nil
}
