package compiler

// Object is a dynamic value of one concrete constructor or call.
//
// Field values use a fixed set of Go types, chosen by the TL type of the
// parameter:
//
//	int (#)            uint32
//	int                int32
//	long               int64
//	double             float64
//	Bool, true         bool
//	string             string
//	bytes              []byte
//	int128, int256     []byte (16 / 32 bytes)
//	Vector<T>, vector  []any of the item representation
//	!X                 []byte (pre-serialized payload, written verbatim)
//	other definitions  *Object
//
// Optional fields gated by a flags bit are simply absent from Fields when
// not present; zero-width `true` fields are plain bools.
type Object struct {
	// Name is the full constructor name, e.g. "auth.sentCode".
	Name string
	// Fields maps parameter names to values. Flags words never appear here;
	// they are synthesized at encode time and consumed at decode time.
	Fields map[string]any
}

// NewObject creates an Object with an empty field set.
func NewObject(name string) *Object {
	return &Object{Name: name, Fields: map[string]any{}}
}

// Set assigns a field value and returns the object for chaining.
func (o *Object) Set(name string, value any) *Object {
	o.Fields[name] = value
	return o
}

// Get returns a field value, or nil when absent.
func (o *Object) Get(name string) any {
	return o.Fields[name]
}

// Has reports whether a field is present.
func (o *Object) Has(name string) bool {
	v, ok := o.Fields[name]
	return ok && v != nil
}
