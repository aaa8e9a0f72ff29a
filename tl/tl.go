// Package tl parses Type Language (TL) schema text into typed definitions.
//
// A TL definition describes one tagged binary record or RPC call:
//
//	ns.name#id {X:Type} flags:# field:flags.0?type = ReturnType;
//
// Parse never aborts on a malformed statement; it records a Diagnostic and
// continues with the rest of the schema.
package tl

import (
	"fmt"
	"strings"
)

// Category tells which section of the schema a definition came from.
type Category int

const (
	// CategoryTypes marks constructors (tagged records).
	CategoryTypes Category = iota
	// CategoryFunctions marks RPC calls.
	CategoryFunctions
)

func (c Category) String() string {
	switch c {
	case CategoryTypes:
		return "types"
	case CategoryFunctions:
		return "functions"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Type is a TL type reference, e.g. Vector<InputPeer> or !X.
type Type struct {
	// Name is the final segment of the type name.
	Name string
	// Namespace holds the leading dotted segments, outermost first.
	Namespace []string
	// Bare is true when the first character of Name is lowercase: the type
	// is encoded without a leading constructor id.
	Bare bool
	// GenericRef is true for schema-level type parameters written with a
	// leading '!'. Such references never resolve to a concrete definition.
	GenericRef bool
	// GenericArg holds the single generic argument, if any. Only set when
	// Name denotes a generic container such as Vector.
	GenericArg *Type
}

// FullName returns the dotted namespace-qualified name.
func (t Type) FullName() string {
	if len(t.Namespace) == 0 {
		return t.Name
	}
	return strings.Join(t.Namespace, ".") + "." + t.Name
}

func (t Type) String() string {
	s := t.FullName()
	if t.GenericRef {
		s = "!" + s
	}
	if t.GenericArg != nil {
		s = s + "<" + t.GenericArg.String() + ">"
	}
	return s
}

// Flag references one bit of a flags word declared earlier in the same
// definition.
type Flag struct {
	// Field names the flags-word parameter.
	Field string
	// Index is the bit position inside that word.
	Index int
}

func (f Flag) String() string {
	return fmt.Sprintf("%s.%d", f.Field, f.Index)
}

// Parameter is one field of a definition, in wire order.
type Parameter struct {
	Name string
	Type Type
	// Flag is nil for fields that are always present on the wire.
	Flag *Flag
	// IsFlags is true for the raw bit-container parameter itself, which is
	// never a visible data field.
	IsFlags bool
}

func (p Parameter) String() string {
	if p.IsFlags {
		return p.Name + ":#"
	}
	if p.Flag != nil {
		return fmt.Sprintf("%s:%s?%s", p.Name, p.Flag, p.Type)
	}
	return p.Name + ":" + p.Type.String()
}

// Definition is a single parsed TL statement: a constructor or a function.
// All fields are immutable after parsing; Params is the wire order and must
// never be reordered.
type Definition struct {
	Name       string
	Namespace  []string
	ID         uint32
	Params     []Parameter
	ReturnType Type
	Category   Category
}

// FullName returns the dotted namespace-qualified definition name.
func (d Definition) FullName() string {
	if len(d.Namespace) == 0 {
		return d.Name
	}
	return strings.Join(d.Namespace, ".") + "." + d.Name
}

func (d Definition) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s#%08x", d.FullName(), d.ID)
	for _, p := range d.Params {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	b.WriteString(" = ")
	b.WriteString(d.ReturnType.String())
	return b.String()
}
