package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFlagsWord indicates a conditional parameter whose flag
	// references a parameter that is not a flags word declared earlier in
	// the same definition.
	ErrUnknownFlagsWord = errors.New("compiler: flag references unknown flags word")

	// ErrUnboundGeneric indicates a generic reference that is not bound by
	// the definition itself.
	ErrUnboundGeneric = errors.New("compiler: unbound generic reference")

	// ErrDuplicateID indicates two definitions of the same category sharing
	// a constructor id.
	ErrDuplicateID = errors.New("compiler: duplicate constructor id")

	// ErrUnknownType indicates a field whose type has no definition in the
	// compiled schema.
	ErrUnknownType = errors.New("compiler: no definition for type")

	// ErrMissingField indicates an encode with a required field absent.
	ErrMissingField = errors.New("compiler: missing required field")

	// ErrFieldType indicates a field value of the wrong dynamic type.
	ErrFieldType = errors.New("compiler: field value has wrong type")

	// ErrNotMember indicates an encode of an object through a union it does
	// not belong to.
	ErrNotMember = errors.New("compiler: object is not a member of union")

	// ErrNotDecodable indicates a decode of a type that has no decoder,
	// such as a generic reference.
	ErrNotDecodable = errors.New("compiler: type cannot be decoded")
)

// UnknownConstructorError reports a union or schema decode whose leading id
// is absent from the decode table. No further bytes are consumed.
type UnknownConstructorError struct {
	ID uint32
}

func (e *UnknownConstructorError) Error() string {
	return fmt.Sprintf("compiler: unknown constructor id %#010x", e.ID)
}
