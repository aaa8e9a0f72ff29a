package compiler

import (
	"github.com/ankit-chaubey/layer/tl"
	"github.com/ankit-chaubey/layer/wire"
)

// Record is the compiled codec of one constructor definition.
type Record struct {
	// GoName is the rendered target-language name of the record, supplied
	// by the naming package.
	GoName string

	def  tl.Definition
	arts *Artifacts
}

// Name returns the full constructor name.
func (r *Record) Name() string { return r.def.FullName() }

// ID returns the 32-bit constructor id.
func (r *Record) ID() uint32 { return r.def.ID }

// Definition returns the underlying definition. The returned value shares
// immutable parameter data; callers must not modify it.
func (r *Record) Definition() tl.Definition { return r.def }

// Fields lists the data fields in constructor order: fields that are always
// present first, then flagged fields. Flags words are omitted; they are
// never visible data. The wire order is unaffected and always equals the
// definition's parameter order.
func (r *Record) Fields() []tl.Parameter {
	out := make([]tl.Parameter, 0, len(r.def.Params))
	for _, p := range r.def.Params {
		if !p.IsFlags && p.Flag == nil {
			out = append(out, p)
		}
	}
	for _, p := range r.def.Params {
		if !p.IsFlags && p.Flag != nil {
			out = append(out, p)
		}
	}
	return out
}

// Encode writes obj bare: parameters only, no leading constructor id.
func (r *Record) Encode(w *wire.Writer, obj *Object) error {
	return r.arts.encodeParams(&r.def, w, obj)
}

// EncodeBoxed writes the constructor id followed by the bare encoding.
func (r *Record) EncodeBoxed(w *wire.Writer, obj *Object) error {
	w.PutUint32(r.def.ID)
	return r.Encode(w, obj)
}

// Decode reads the bare encoding of this record. The caller is expected to
// have consumed any leading constructor id already (unions do this).
func (r *Record) Decode(rd *wire.Reader) (*Object, error) {
	return r.arts.decodeParams(&r.def, rd)
}
