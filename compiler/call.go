package compiler

import (
	"github.com/ankit-chaubey/layer/tl"
	"github.com/ankit-chaubey/layer/wire"
)

// Call is the compiled codec of one RPC function. A call is never embedded
// bare inside another value, so Encode always writes the call's own id
// first. Response records which type a reply must decode as; moving bytes
// and dispatching replies belongs to the transport layer, not here.
type Call struct {
	// GoName is the rendered target-language name of the call.
	GoName string
	// Response is the declared reply type. For generic calls this is the
	// type parameter itself.
	Response tl.Type

	def  tl.Definition
	arts *Artifacts
}

// Name returns the full function name.
func (c *Call) Name() string { return c.def.FullName() }

// ID returns the 32-bit call id.
func (c *Call) ID() uint32 { return c.def.ID }

// Definition returns the underlying definition. The returned value shares
// immutable parameter data; callers must not modify it.
func (c *Call) Definition() tl.Definition { return c.def }

// Fields lists the data fields in constructor order, like Record.Fields.
func (c *Call) Fields() []tl.Parameter {
	out := make([]tl.Parameter, 0, len(c.def.Params))
	for _, p := range c.def.Params {
		if !p.IsFlags && p.Flag == nil {
			out = append(out, p)
		}
	}
	for _, p := range c.def.Params {
		if !p.IsFlags && p.Flag != nil {
			out = append(out, p)
		}
	}
	return out
}

// Encode writes the call id followed by its parameters, with the same
// field and flags logic as a record.
func (c *Call) Encode(w *wire.Writer, obj *Object) error {
	w.PutUint32(c.def.ID)
	return c.arts.encodeParams(&c.def, w, obj)
}

// ResponseDecoder returns the union that decodes this call's reply, when
// the response type is a compiled boxed type. Generic and primitive
// responses have no union and return false.
func (c *Call) ResponseDecoder() (*Union, bool) {
	if c.Response.GenericRef || c.Response.Bare {
		return nil, false
	}
	u, ok := c.arts.unionsByName[c.Response.FullName()]
	return u, ok
}
