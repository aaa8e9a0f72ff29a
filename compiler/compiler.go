// Package compiler turns parsed TL definitions into runnable codecs:
// records (one per constructor), tagged unions (one per boxed return type),
// and calls (one per function). The derived encode/decode logic is expressed
// entirely in terms of the wire package and operates on dynamic Objects.
//
// Compile is a pure function of its input and its output ordering equals
// the input order. All compiled artifacts are immutable after Compile
// returns; encode and decode calls may run concurrently.
package compiler

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/ankit-chaubey/layer/naming"
	"github.com/ankit-chaubey/layer/tl"
	"github.com/ankit-chaubey/layer/wire"
)

// Artifacts is the compiled form of one schema.
type Artifacts struct {
	// Records, Unions and Calls preserve definition order; unions appear in
	// order of their first member.
	Records []*Record
	Unions  []*Union
	Calls   []*Call
	// Layer is the schema version, when compiled from a parsed Schema.
	Layer int

	recordsByName map[string]*Record
	recordsByID   map[uint32]*Record
	unionsByName  map[string]*Union
	callsByName   map[string]*Call
	callsByID     map[uint32]*Call

	// codecs memoizes derived per-type-expression codecs. Read-mostly and
	// concurrent: codecs are resolved lazily during encode/decode calls,
	// which may run on many goroutines.
	codecs *xsync.Map[string, *valueCodec]
}

// CompileSchema compiles a parsed schema, carrying its layer version.
func CompileSchema(s *tl.Schema) (*Artifacts, error) {
	a, err := Compile(s.Definitions)
	if err != nil {
		return nil, err
	}
	a.Layer = s.Layer
	return a, nil
}

// Compile derives codecs for every definition. It fails on schemas that are
// structurally invalid: a flag naming a missing flags word, an unbound
// generic reference, or a duplicate constructor id within a category.
func Compile(defs []tl.Definition) (*Artifacts, error) {
	a := &Artifacts{
		recordsByName: make(map[string]*Record),
		recordsByID:   make(map[uint32]*Record),
		unionsByName:  make(map[string]*Union),
		callsByName:   make(map[string]*Call),
		callsByID:     make(map[uint32]*Call),
		codecs:        xsync.NewMap[string, *valueCodec](),
	}

	seen := map[tl.Category]map[uint32]string{
		tl.CategoryTypes:     {},
		tl.CategoryFunctions: {},
	}

	for _, def := range defs {
		if err := validate(&def); err != nil {
			return nil, fmt.Errorf("%s: %w", def.FullName(), err)
		}
		ids := seen[def.Category]
		if other, dup := ids[def.ID]; dup {
			return nil, fmt.Errorf("%w: %#08x used by both %s and %s",
				ErrDuplicateID, def.ID, other, def.FullName())
		}
		ids[def.ID] = def.FullName()

		switch def.Category {
		case tl.CategoryTypes:
			rec := &Record{
				def:    def,
				GoName: naming.Identifier(def.FullName()),
				arts:   a,
			}
			a.Records = append(a.Records, rec)
			a.recordsByName[def.FullName()] = rec
			a.recordsByID[def.ID] = rec

		case tl.CategoryFunctions:
			call := &Call{
				def:      def,
				GoName:   naming.Identifier(def.FullName()),
				Response: def.ReturnType,
				arts:     a,
			}
			a.Calls = append(a.Calls, call)
			a.callsByName[def.FullName()] = call
			a.callsByID[def.ID] = call
		}
	}

	// Group records into tagged unions by boxed return type.
	for _, rec := range a.Records {
		rt := rec.def.ReturnType
		if rt.GenericRef || rt.Bare {
			continue
		}
		key := rt.FullName()
		u, ok := a.unionsByName[key]
		if !ok {
			u = &Union{
				Name:   key,
				GoName: naming.Identifier(key),
				byID:   make(map[uint32]*Record),
				byName: make(map[string]*Record),
			}
			a.unionsByName[key] = u
			a.Unions = append(a.Unions, u)
		}
		u.members = append(u.members, rec)
		u.byID[rec.def.ID] = rec
		u.byName[rec.def.FullName()] = rec
	}

	return a, nil
}

// validate applies the hard compile-time checks of a single definition.
func validate(def *tl.Definition) error {
	flagsWords := map[string]struct{}{}
	for i := range def.Params {
		p := &def.Params[i]
		if p.IsFlags {
			flagsWords[p.Name] = struct{}{}
			continue
		}
		if p.Flag != nil {
			if _, ok := flagsWords[p.Flag.Field]; !ok {
				return fmt.Errorf("%w: %q in parameter %q", ErrUnknownFlagsWord, p.Flag.Field, p.Name)
			}
		}
		if err := checkGeneric(def, p.Type); err != nil {
			return fmt.Errorf("%w in parameter %q", err, p.Name)
		}
	}
	return nil
}

// checkGeneric verifies that a generic reference is bound by the enclosing
// definition. A definition binds exactly the type parameter it returns, so
// a `!X` parameter requires a `X` return type.
func checkGeneric(def *tl.Definition, ty tl.Type) error {
	if ty.GenericRef {
		if !def.ReturnType.GenericRef || def.ReturnType.Name != ty.Name {
			return fmt.Errorf("%w: %q", ErrUnboundGeneric, ty.Name)
		}
	}
	if ty.GenericArg != nil {
		return checkGeneric(def, *ty.GenericArg)
	}
	return nil
}

// Record returns the record with the given full constructor name.
func (a *Artifacts) Record(fullName string) (*Record, bool) {
	rec, ok := a.recordsByName[fullName]
	return rec, ok
}

// RecordByID returns the record with the given constructor id.
func (a *Artifacts) RecordByID(id uint32) (*Record, bool) {
	rec, ok := a.recordsByID[id]
	return rec, ok
}

// Union returns the union for the given boxed type full name.
func (a *Artifacts) Union(fullName string) (*Union, bool) {
	u, ok := a.unionsByName[fullName]
	return u, ok
}

// Call returns the call with the given full function name.
func (a *Artifacts) Call(fullName string) (*Call, bool) {
	c, ok := a.callsByName[fullName]
	return c, ok
}

// CallByID returns the call with the given constructor id.
func (a *Artifacts) CallByID(id uint32) (*Call, bool) {
	c, ok := a.callsByID[id]
	return c, ok
}

// DecodeObject decodes a boxed value of any compiled record: it reads the
// leading constructor id and dispatches to that record's decoder. An id
// absent from the schema fails with an UnknownConstructorError, consuming
// no further bytes.
func (a *Artifacts) DecodeObject(r *wire.Reader) (*Object, error) {
	id := r.Uint32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	rec, ok := a.recordsByID[id]
	if !ok {
		return nil, &UnknownConstructorError{ID: id}
	}
	return rec.Decode(r)
}
