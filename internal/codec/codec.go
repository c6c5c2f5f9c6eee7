// Package codec implements the engine's serializer contract:
// given a value of a type known at the call site, produce a stable byte
// stream, and given those bytes, reproduce a structurally equal value.
package codec

import "io"

// Codec converts values to and from byte streams. Implementations must be
// safe for concurrent use; the engine never holds a codec-specific lock
// across a backend call.
type Codec interface {
	// Serialize writes v's encoding to w.
	Serialize(w io.Writer, v any) error
	// Deserialize reads an encoding from r into the value pointed to by out.
	Deserialize(r io.Reader, out any) error
	// CanSerialize reports whether v's type is accepted by this codec.
	// The engine calls this during precondition validation
	// before any backend call; a false result raises InvalidArgument.
	CanSerialize(v any) bool
}

// Name identifies a Codec for configuration and diagnostics purposes.
type Name string

const (
	// Structural is the default, portable codec (encoding/json under the
	// hood): it round-trips structural values — primitives, strings,
	// byte slices, maps, slices — but not arbitrary type identity across
	// process boundaries.
	Structural Name = "structural"

	// Binary is the richer codec (encoding/gob under the hood): it
	// preserves Go type identity within a single binary, matching a
	// "binary variant" that records type metadata, at the cost of
	// portability across different Go programs. Of the recognized
	// options, Binary exposes TypeFormat; AssemblyFormat and FilterLevel
	// have no Go analogue (see DESIGN.md) and are accepted but not
	// interpreted, to keep the option surface named consistently.
	Binary Name = "binary"
)

// AssemblyFormat mirrors the assembly_format option. Go binaries
// have no cross-assembly type-identity problem, so this is accepted by
// Options for API parity but does not change codec behavior; see
// DESIGN.md's Open Question resolution.
type AssemblyFormat string

const (
	AssemblyFormatSimple AssemblyFormat = "simple"
	AssemblyFormatFull   AssemblyFormat = "full"
)

// FilterLevel mirrors the filter_level option. It is accepted by Options
// but no codec reads it; restricting which types a decode may produce is
// done only through Options.Binder (see binary.go).
type FilterLevel string

const (
	FilterLevelLow  FilterLevel = "low"
	FilterLevelFull FilterLevel = "full"
)

// TypeFormat mirrors the type_format option: whether the codec
// always tags encoded values with their type or only does so when the
// destination type is ambiguous. The Binary codec always embeds type
// metadata (gob's wire format requires it); WhenNeeded is accepted and
// treated identically to All for that codec. The Structural codec never
// embeds type metadata, regardless of this setting.
type TypeFormat string

const (
	TypeFormatWhenNeeded TypeFormat = "when_needed"
	TypeFormatAll        TypeFormat = "all"
)

// Options configures a Binary codec instance.
type Options struct {
	AssemblyFormat AssemblyFormat
	FilterLevel    FilterLevel
	TypeFormat     TypeFormat

	// Binder, when non-nil, is consulted by the Binary codec before
	// instantiating a decoded type; returning false rejects the value
	// the way the optional "binder" hook does.
	Binder func(name string) bool

	// SurrogateSelector, when non-nil, lets a caller substitute one type
	// for another before encoding.
	SurrogateSelector func(v any) any
}

// DefaultOptions returns the Binary codec's default option set.
func DefaultOptions() Options {
	return Options{
		AssemblyFormat: AssemblyFormatSimple,
		FilterLevel:    FilterLevelFull,
		TypeFormat:     TypeFormatWhenNeeded,
	}
}
