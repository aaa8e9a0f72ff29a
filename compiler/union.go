package compiler

import (
	"fmt"

	"github.com/ankit-chaubey/layer/wire"
)

// Union is the tagged-union codec of one boxed type: all records sharing
// that boxed return type, with an immutable id → member decode table built
// once at compile time.
type Union struct {
	// Name is the boxed type's full name, e.g. "auth.SentCode".
	Name string
	// GoName is the rendered target-language name of the union.
	GoName string

	members []*Record
	byID    map[uint32]*Record
	byName  map[string]*Record
}

// Members lists the member records in definition order.
func (u *Union) Members() []*Record { return u.members }

// Member returns the member record with the given constructor id.
func (u *Union) Member(id uint32) (*Record, bool) {
	rec, ok := u.byID[id]
	return rec, ok
}

// MemberNamed returns the member record with the given full constructor name.
func (u *Union) MemberNamed(fullName string) (*Record, bool) {
	rec, ok := u.byName[fullName]
	return rec, ok
}

// Is reports whether obj is the named variant of this union.
func (u *Union) Is(obj *Object, fullName string) bool {
	_, ok := u.byName[fullName]
	return ok && obj != nil && obj.Name == fullName
}

// Encode writes the wrapped member's constructor id followed by the
// member's bare encoding. Objects that are not members of this union fail
// with ErrNotMember.
func (u *Union) Encode(w *wire.Writer, obj *Object) error {
	rec, ok := u.byName[obj.Name]
	if !ok {
		return fmt.Errorf("%w: %s in %s", ErrNotMember, obj.Name, u.Name)
	}
	return rec.EncodeBoxed(w, obj)
}

// Decode reads a constructor id and dispatches to the member's decoder.
// An id absent from the member table fails with an UnknownConstructorError
// carrying the id, consuming no further bytes.
func (u *Union) Decode(r *wire.Reader) (*Object, error) {
	id := r.Uint32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	rec, ok := u.byID[id]
	if !ok {
		return nil, &UnknownConstructorError{ID: id}
	}
	return rec.Decode(r)
}
