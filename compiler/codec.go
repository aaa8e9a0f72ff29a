package compiler

import (
	"fmt"

	"github.com/ankit-chaubey/layer/tl"
	"github.com/ankit-chaubey/layer/wire"
)

// valueCodec carries the derived encode/decode logic for one type
// expression. Codecs for custom types resolve the referenced definition's
// codec by reference at call time, so direct and mutual recursion across
// definitions needs no special casing.
type valueCodec struct {
	encode func(w *wire.Writer, v any) error
	decode func(r *wire.Reader) (any, error)
}

// codecFor returns the codec for a type expression, memoizing the result.
// The cache is concurrent: encode and decode calls may resolve codecs from
// many goroutines at once.
func (a *Artifacts) codecFor(ty tl.Type) (*valueCodec, error) {
	key := ty.String()
	if c, ok := a.codecs.Load(key); ok {
		return c, nil
	}
	c, err := a.buildCodec(ty)
	if err != nil {
		return nil, err
	}
	actual, _ := a.codecs.LoadOrStore(key, c)
	return actual, nil
}

func (a *Artifacts) buildCodec(ty tl.Type) (*valueCodec, error) {
	if ty.GenericRef {
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				raw, err := want[[]byte](v, "pre-serialized []byte")
				if err != nil {
					return err
				}
				w.PutRaw(raw)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) {
				return nil, fmt.Errorf("%w: generic reference %s", ErrNotDecodable, ty.Name)
			},
		}, nil
	}

	if len(ty.Namespace) == 0 {
		if c := builtinCodec(ty.Name); c != nil {
			return c, nil
		}
		if ty.Name == "Vector" || ty.Name == "vector" {
			return a.vectorCodec(ty)
		}
	}

	return a.definitionCodec(ty)
}

// builtinCodec returns the codec for a primitive wire type, or nil when the
// name is not a primitive.
func builtinCodec(name string) *valueCodec {
	switch name {
	case "#":
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				u, err := want[uint32](v, "uint32")
				if err != nil {
					return err
				}
				w.PutUint32(u)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) { return r.Uint32(), r.Err() },
		}
	case "int":
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				i, err := want[int32](v, "int32")
				if err != nil {
					return err
				}
				w.PutInt32(i)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) { return r.Int32(), r.Err() },
		}
	case "long":
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				i, err := want[int64](v, "int64")
				if err != nil {
					return err
				}
				w.PutInt64(i)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) { return r.Int64(), r.Err() },
		}
	case "double":
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				f, err := want[float64](v, "float64")
				if err != nil {
					return err
				}
				w.PutDouble(f)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) { return r.Double(), r.Err() },
		}
	case "Bool":
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				b, err := want[bool](v, "bool")
				if err != nil {
					return err
				}
				w.PutBool(b)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) { return r.Bool(), r.Err() },
		}
	case "true":
		// Zero-width: the value lives entirely in a flags bit.
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error { return nil },
			decode: func(r *wire.Reader) (any, error) { return true, nil },
		}
	case "string":
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				s, err := want[string](v, "string")
				if err != nil {
					return err
				}
				w.PutString(s)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) { return r.String(), r.Err() },
		}
	case "bytes":
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				b, err := want[[]byte](v, "[]byte")
				if err != nil {
					return err
				}
				w.PutBytes(b)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) { return r.Bytes(), r.Err() },
		}
	case "int128":
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				b, err := want[[]byte](v, "[]byte of 16")
				if err != nil {
					return err
				}
				w.PutInt128(b)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) { return r.Int128(), r.Err() },
		}
	case "int256":
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				b, err := want[[]byte](v, "[]byte of 32")
				if err != nil {
					return err
				}
				w.PutInt256(b)
				return w.Err()
			},
			decode: func(r *wire.Reader) (any, error) { return r.Int256(), r.Err() },
		}
	default:
		return nil
	}
}

// vectorCodec derives the codec of a boxed or bare sequence. The item codec
// is resolved once, here; items are values of the item representation.
func (a *Artifacts) vectorCodec(ty tl.Type) (*valueCodec, error) {
	if ty.GenericArg == nil {
		return nil, fmt.Errorf("%w: %s without item type", ErrUnknownType, ty.Name)
	}
	item, err := a.codecFor(*ty.GenericArg)
	if err != nil {
		return nil, err
	}
	boxed := ty.Name == "Vector"

	return &valueCodec{
		encode: func(w *wire.Writer, v any) error {
			items, err := want[[]any](v, "[]any")
			if err != nil {
				return err
			}
			if boxed {
				w.PutVectorHeader(len(items))
			} else {
				w.PutBareVectorHeader(len(items))
			}
			for _, it := range items {
				if err := item.encode(w, it); err != nil {
					return err
				}
			}
			return w.Err()
		},
		decode: func(r *wire.Reader) (any, error) {
			var n int
			if boxed {
				n = r.VectorHeader()
			} else {
				n = r.BareVectorHeader()
			}
			if err := r.Err(); err != nil {
				return nil, err
			}
			items := make([]any, 0, n)
			for i := 0; i < n; i++ {
				it, err := item.decode(r)
				if err != nil {
					return nil, err
				}
				items = append(items, it)
			}
			return items, nil
		},
	}, nil
}

// definitionCodec derives the codec of a custom type: records encode bare,
// boxed types go through their union's id dispatch. The referenced artifact
// is looked up at call time so that recursive definitions resolve.
func (a *Artifacts) definitionCodec(ty tl.Type) (*valueCodec, error) {
	name := ty.FullName()
	if ty.Bare {
		return &valueCodec{
			encode: func(w *wire.Writer, v any) error {
				rec, ok := a.recordsByName[name]
				if !ok {
					return fmt.Errorf("%w: %s", ErrUnknownType, name)
				}
				obj, err := want[*Object](v, "*Object")
				if err != nil {
					return err
				}
				if obj.Name != "" && obj.Name != name {
					return fmt.Errorf("%w: want %s, got %s", ErrFieldType, name, obj.Name)
				}
				return rec.Encode(w, obj)
			},
			decode: func(r *wire.Reader) (any, error) {
				rec, ok := a.recordsByName[name]
				if !ok {
					return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
				}
				return rec.Decode(r)
			},
		}, nil
	}

	return &valueCodec{
		encode: func(w *wire.Writer, v any) error {
			u, ok := a.unionsByName[name]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownType, name)
			}
			obj, err := want[*Object](v, "*Object")
			if err != nil {
				return err
			}
			return u.Encode(w, obj)
		},
		decode: func(r *wire.Reader) (any, error) {
			u, ok := a.unionsByName[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
			}
			return u.Decode(r)
		},
	}, nil
}

// encodeParams writes every parameter of def in wire order. Flags words are
// synthesized from the presence of the fields they gate.
func (a *Artifacts) encodeParams(def *tl.Definition, w *wire.Writer, obj *Object) error {
	for i := range def.Params {
		p := &def.Params[i]
		switch {
		case p.IsFlags:
			w.PutUint32(flagsWord(def, p.Name, obj))

		case p.Flag != nil && isTrueType(p.Type):
			// Encoded entirely in the flags word.

		case p.Flag != nil:
			v, ok := obj.Fields[p.Name]
			if !ok || v == nil {
				continue
			}
			if err := a.encodeField(w, p, v); err != nil {
				return fmt.Errorf("%s.%s: %w", obj.Name, p.Name, err)
			}

		default:
			v, ok := obj.Fields[p.Name]
			if !ok {
				return fmt.Errorf("%w: %s.%s", ErrMissingField, obj.Name, p.Name)
			}
			if err := a.encodeField(w, p, v); err != nil {
				return fmt.Errorf("%s.%s: %w", obj.Name, p.Name, err)
			}
		}
	}
	return w.Err()
}

func (a *Artifacts) encodeField(w *wire.Writer, p *tl.Parameter, v any) error {
	c, err := a.codecFor(p.Type)
	if err != nil {
		return err
	}
	return c.encode(w, v)
}

// decodeParams reads every parameter of def in wire order, producing a
// dynamic Object. Fields gated by an unset flags bit stay absent.
func (a *Artifacts) decodeParams(def *tl.Definition, r *wire.Reader) (*Object, error) {
	obj := NewObject(def.FullName())
	var flags map[string]uint32

	for i := range def.Params {
		p := &def.Params[i]
		switch {
		case p.IsFlags:
			word := r.Uint32()
			if err := r.Err(); err != nil {
				return nil, err
			}
			if flags == nil {
				flags = make(map[string]uint32, 1)
			}
			flags[p.Name] = word

		case p.Flag != nil && isTrueType(p.Type):
			obj.Fields[p.Name] = flags[p.Flag.Field]>>uint(p.Flag.Index)&1 != 0

		case p.Flag != nil:
			if flags[p.Flag.Field]>>uint(p.Flag.Index)&1 == 0 {
				continue
			}
			v, err := a.decodeField(r, p)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", obj.Name, p.Name, err)
			}
			obj.Fields[p.Name] = v

		default:
			v, err := a.decodeField(r, p)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", obj.Name, p.Name, err)
			}
			obj.Fields[p.Name] = v
		}
	}
	return obj, nil
}

func (a *Artifacts) decodeField(r *wire.Reader, p *tl.Parameter) (any, error) {
	c, err := a.codecFor(p.Type)
	if err != nil {
		return nil, err
	}
	return c.decode(r)
}

// flagsWord computes the bit word for the flags parameter named field:
// one bit per gated parameter that is present. Zero-width booleans count as
// present when true.
func flagsWord(def *tl.Definition, field string, obj *Object) uint32 {
	var bits uint32
	for i := range def.Params {
		p := &def.Params[i]
		if p.Flag == nil || p.Flag.Field != field {
			continue
		}
		if isTrueType(p.Type) {
			if b, _ := obj.Fields[p.Name].(bool); b {
				bits |= 1 << uint(p.Flag.Index)
			}
		} else if v, ok := obj.Fields[p.Name]; ok && v != nil {
			bits |= 1 << uint(p.Flag.Index)
		}
	}
	return bits
}

// isTrueType reports whether ty is the zero-width boolean-flag type.
func isTrueType(ty tl.Type) bool {
	return ty.Name == "true" && len(ty.Namespace) == 0 && !ty.GenericRef
}

// want asserts the dynamic type of a field value.
func want[T any](v any, what string) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: want %s, got %T", ErrFieldType, what, v)
	}
	return t, nil
}
