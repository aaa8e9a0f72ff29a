package compiler

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/layer/tl"
	"github.com/ankit-chaubey/layer/wire"
)

const testSchema = `
// LAYER 158

boolFalse = Bool;
boolTrue = Bool;

resPQ nonce:int128 server_nonce:int128 pq:bytes server_public_key_fingerprints:Vector<long> = ResPQ;

user#3ff6ecb1 flags:# self:flags.0?true id:long first_name:flags.1?string photo:flags.2?UserProfilePhoto = User;
userEmpty id:long = User;

userProfilePhoto photo_id:long = UserProfilePhoto;

contact user_id:long mutual:Bool = Contact;

textPlain text:string = RichText;
textBold text:RichText = RichText;

pong msg_id:long ping_id:long = Pong;

messages.chats chats:Vector<User> = messages.Chats;

---functions---

ping ping_id:long = Pong;
invokeWithLayer {X:Type} layer:int query:!X = X;
`

func compileTestSchema(t *testing.T) *Artifacts {
	t.Helper()
	schema := tl.Parse(testSchema)
	require.Empty(t, schema.Diagnostics)
	arts, err := CompileSchema(schema)
	require.NoError(t, err)
	return arts
}

func TestCompileShapes(t *testing.T) {
	arts := compileTestSchema(t)

	assert.Equal(t, 158, arts.Layer)
	assert.Len(t, arts.Records, 11)
	assert.Len(t, arts.Calls, 2)

	// Output order equals input order.
	assert.Equal(t, "boolFalse", arts.Records[0].Name())
	assert.Equal(t, "boolTrue", arts.Records[1].Name())
	assert.Equal(t, "ping", arts.Calls[0].Name())

	// Unions appear in order of their first member and group by boxed
	// return type.
	require.NotEmpty(t, arts.Unions)
	assert.Equal(t, "Bool", arts.Unions[0].Name)

	user, ok := arts.Union("User")
	require.True(t, ok)
	assert.Len(t, user.Members(), 2)

	// Trivial single-member union.
	photo, ok := arts.Union("UserProfilePhoto")
	require.True(t, ok)
	assert.Len(t, photo.Members(), 1)

	// Namespaced boxed type.
	_, ok = arts.Union("messages.Chats")
	assert.True(t, ok)

	// Rendered names come from the naming package.
	rec, ok := arts.Record("messages.chats")
	require.True(t, ok)
	assert.Equal(t, "MessagesChats", rec.GoName)
}

func TestRecordRoundTrip(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("pong")
	require.True(t, ok)

	in := NewObject("pong").
		Set("msg_id", int64(101)).
		Set("ping_id", int64(202))

	w := wire.NewWriter()
	require.NoError(t, rec.Encode(w, in))
	data, err := w.Result()
	require.NoError(t, err)
	require.Len(t, data, 16)

	out, err := rec.Decode(wire.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRecordWireOrderKeepsFlagsWordPosition(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("user")
	require.True(t, ok)

	in := NewObject("user").
		Set("self", true).
		Set("id", int64(7))

	w := wire.NewWriter()
	require.NoError(t, rec.Encode(w, in))
	data, err := w.Result()
	require.NoError(t, err)

	// flags word first (bit 0 set), then the id, nothing else.
	require.Len(t, data, 4+8)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[:4]))
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(data[4:]))
}

func TestFlagsFidelityAllCombinations(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("user")
	require.True(t, ok)

	photo := NewObject("userProfilePhoto").Set("photo_id", int64(42))

	for mask := 0; mask < 8; mask++ {
		in := NewObject("user").
			Set("self", mask&1 != 0).
			Set("id", int64(7))
		if mask&2 != 0 {
			in.Set("first_name", "ann")
		}
		if mask&4 != 0 {
			in.Set("photo", photo)
		}

		w := wire.NewWriter()
		require.NoErrorf(t, rec.Encode(w, in), "mask %d", mask)
		data, err := w.Result()
		require.NoErrorf(t, err, "mask %d", mask)

		r := wire.NewReader(data)
		out, err := rec.Decode(r)
		require.NoErrorf(t, err, "mask %d", mask)
		assert.Equalf(t, in, out, "mask %d", mask)
		assert.Zerof(t, r.Remaining(), "mask %d", mask)
	}
}

func TestBuiltinFieldKinds(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("resPQ")
	require.True(t, ok)

	in := NewObject("resPQ").
		Set("nonce", bytes.Repeat([]byte{0x01}, 16)).
		Set("server_nonce", bytes.Repeat([]byte{0x02}, 16)).
		Set("pq", []byte{0x17, 0xED, 0x48, 0x94, 0x1A, 0x08, 0xF9, 0x81}).
		Set("server_public_key_fingerprints", []any{int64(-0x4e62f4852e3a9b0f), int64(99)})

	w := wire.NewWriter()
	require.NoError(t, rec.Encode(w, in))
	data, err := w.Result()
	require.NoError(t, err)

	out, err := rec.Decode(wire.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBoolField(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("contact")
	require.True(t, ok)

	for _, mutual := range []bool{true, false} {
		in := NewObject("contact").
			Set("user_id", int64(9)).
			Set("mutual", mutual)

		w := wire.NewWriter()
		require.NoError(t, rec.Encode(w, in))
		data, _ := w.Result()

		out, err := rec.Decode(wire.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestUnionEncodeDecode(t *testing.T) {
	arts := compileTestSchema(t)
	user, ok := arts.Union("User")
	require.True(t, ok)

	in := NewObject("userEmpty").Set("id", int64(12))

	w := wire.NewWriter()
	require.NoError(t, user.Encode(w, in))
	data, err := w.Result()
	require.NoError(t, err)

	// The member id leads, then the member's bare encoding.
	member, ok := arts.Record("userEmpty")
	require.True(t, ok)
	assert.Equal(t, member.ID(), binary.LittleEndian.Uint32(data[:4]))

	out, err := user.Decode(wire.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.True(t, user.Is(out, "userEmpty"))
	assert.False(t, user.Is(out, "user"))
}

func TestUnionRejectsForeignObject(t *testing.T) {
	arts := compileTestSchema(t)
	user, ok := arts.Union("User")
	require.True(t, ok)

	w := wire.NewWriter()
	err := user.Encode(w, NewObject("pong"))
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestUnionUnknownConstructor(t *testing.T) {
	arts := compileTestSchema(t)
	user, ok := arts.Union("User")
	require.True(t, ok)

	w := wire.NewWriter()
	w.PutUint32(0xDEADBEEF)
	w.PutInt64(5)
	data, _ := w.Result()

	r := wire.NewReader(data)
	_, err := user.Decode(r)
	var ucErr *UnknownConstructorError
	require.ErrorAs(t, err, &ucErr)
	assert.Equal(t, uint32(0xDEADBEEF), ucErr.ID)
	// Only the id was consumed.
	assert.Equal(t, 4, r.Pos())
}

func TestRecursiveUnionRoundTrip(t *testing.T) {
	arts := compileTestSchema(t)
	richText, ok := arts.Union("RichText")
	require.True(t, ok)

	in := NewObject("textBold").Set("text",
		NewObject("textBold").Set("text",
			NewObject("textPlain").Set("text", "deep")))

	w := wire.NewWriter()
	require.NoError(t, richText.Encode(w, in))
	data, err := w.Result()
	require.NoError(t, err)

	out, err := richText.Decode(wire.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestVectorOfBoxedValues(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("messages.chats")
	require.True(t, ok)

	in := NewObject("messages.chats").Set("chats", []any{
		NewObject("userEmpty").Set("id", int64(1)),
		NewObject("user").Set("self", false).Set("id", int64(2)),
	})

	w := wire.NewWriter()
	require.NoError(t, rec.Encode(w, in))
	data, err := w.Result()
	require.NoError(t, err)

	out, err := rec.Decode(wire.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCallEncodeWritesOwnID(t *testing.T) {
	arts := compileTestSchema(t)
	call, ok := arts.Call("ping")
	require.True(t, ok)

	obj := NewObject("ping").Set("ping_id", int64(55))
	w := wire.NewWriter()
	require.NoError(t, call.Encode(w, obj))
	data, err := w.Result()
	require.NoError(t, err)

	require.Len(t, data, 4+8)
	assert.Equal(t, call.ID(), binary.LittleEndian.Uint32(data[:4]))

	// Response metadata names the reply type; decoding replies is the
	// transport's job, but the decoder is exposed.
	assert.Equal(t, "Pong", call.Response.FullName())
	pong, ok := call.ResponseDecoder()
	require.True(t, ok)
	assert.Equal(t, "Pong", pong.Name)
}

func TestGenericCallCarriesRawPayload(t *testing.T) {
	arts := compileTestSchema(t)

	// Serialize an inner call first, then pass it as the generic payload.
	ping, ok := arts.Call("ping")
	require.True(t, ok)
	inner := wire.NewWriter()
	require.NoError(t, ping.Encode(inner, NewObject("ping").Set("ping_id", int64(1))))
	payload, err := inner.Result()
	require.NoError(t, err)

	invoke, ok := arts.Call("invokeWithLayer")
	require.True(t, ok)
	assert.True(t, invoke.Response.GenericRef)
	_, ok = invoke.ResponseDecoder()
	assert.False(t, ok)

	w := wire.NewWriter()
	obj := NewObject("invokeWithLayer").
		Set("layer", int32(158)).
		Set("query", append([]byte(nil), payload...))
	require.NoError(t, invoke.Encode(w, obj))
	data, err := w.Result()
	require.NoError(t, err)

	require.Len(t, data, 4+4+len(payload))
	r := wire.NewReader(data)
	assert.Equal(t, invoke.ID(), r.Uint32())
	assert.Equal(t, int32(158), r.Int32())
	assert.Equal(t, payload, r.Rest())
	require.NoError(t, r.Err())
}

func TestDecodeObjectDispatchesByID(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("pong")
	require.True(t, ok)

	in := NewObject("pong").Set("msg_id", int64(3)).Set("ping_id", int64(4))
	w := wire.NewWriter()
	require.NoError(t, rec.EncodeBoxed(w, in))
	data, _ := w.Result()

	out, err := arts.DecodeObject(wire.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = arts.DecodeObject(wire.NewReader([]byte{0xEF, 0xBE, 0xAD, 0xDE}))
	var ucErr *UnknownConstructorError
	require.ErrorAs(t, err, &ucErr)
	assert.Equal(t, uint32(0xDEADBEEF), ucErr.ID)
}

func TestEncodeMissingRequiredField(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("pong")
	require.True(t, ok)

	w := wire.NewWriter()
	err := rec.Encode(w, NewObject("pong").Set("msg_id", int64(1)))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestEncodeWrongFieldType(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("pong")
	require.True(t, ok)

	w := wire.NewWriter()
	err := rec.Encode(w, NewObject("pong").Set("msg_id", "not an int").Set("ping_id", int64(2)))
	assert.ErrorIs(t, err, ErrFieldType)
}

func TestDecodeInsufficientData(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("pong")
	require.True(t, ok)

	_, err := rec.Decode(wire.NewReader([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, wire.ErrInsufficientData)
}

func TestRecordFieldsConstructorOrder(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("user")
	require.True(t, ok)

	fields := rec.Fields()
	require.Len(t, fields, 4)
	// Unconditional fields first, flagged fields after; the flags word is
	// not a data field at all.
	assert.Equal(t, "id", fields[0].Name)
	assert.Equal(t, "self", fields[1].Name)
	assert.Equal(t, "first_name", fields[2].Name)
	assert.Equal(t, "photo", fields[3].Name)

	// The wire order in the definition is untouched.
	def := rec.Definition()
	assert.Equal(t, "flags", def.Params[0].Name)
	assert.Equal(t, "self", def.Params[1].Name)
	assert.Equal(t, "id", def.Params[2].Name)
}

func TestCompileRejectsUnknownFlagsWord(t *testing.T) {
	defs := []tl.Definition{{
		Name: "broken",
		ID:   1,
		Params: []tl.Parameter{{
			Name: "maybe",
			Type: tl.Type{Name: "int", Bare: true},
			Flag: &tl.Flag{Field: "flags", Index: 0},
		}},
		ReturnType: tl.Type{Name: "Broken"},
		Category:   tl.CategoryTypes,
	}}
	_, err := Compile(defs)
	assert.ErrorIs(t, err, ErrUnknownFlagsWord)
}

func TestCompileRejectsUnboundGeneric(t *testing.T) {
	defs := []tl.Definition{{
		Name: "broken",
		ID:   1,
		Params: []tl.Parameter{{
			Name: "query",
			Type: tl.Type{Name: "X", Bare: false, GenericRef: true},
		}},
		ReturnType: tl.Type{Name: "Broken"},
		Category:   tl.CategoryFunctions,
	}}
	_, err := Compile(defs)
	assert.ErrorIs(t, err, ErrUnboundGeneric)
}

func TestCompileRejectsDuplicateID(t *testing.T) {
	defs := []tl.Definition{
		{Name: "a", ID: 7, ReturnType: tl.Type{Name: "A"}, Category: tl.CategoryTypes},
		{Name: "b", ID: 7, ReturnType: tl.Type{Name: "B"}, Category: tl.CategoryTypes},
	}
	_, err := Compile(defs)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestDuplicateIDAllowedAcrossCategories(t *testing.T) {
	defs := []tl.Definition{
		{Name: "a", ID: 7, ReturnType: tl.Type{Name: "A"}, Category: tl.CategoryTypes},
		{Name: "b", ID: 7, ReturnType: tl.Type{Name: "B"}, Category: tl.CategoryFunctions},
	}
	_, err := Compile(defs)
	assert.NoError(t, err)
}

func TestNamespaces(t *testing.T) {
	schema := tl.Parse(testSchema)
	ns := Namespaces(schema.Definitions)

	require.Contains(t, ns, "")
	require.Contains(t, ns, "messages")
	assert.Len(t, ns["messages"], 1)
	assert.Equal(t, "chats", ns["messages"][0].Name)
}

func TestConcurrentEncodeDecode(t *testing.T) {
	arts := compileTestSchema(t)
	rec, ok := arts.Record("user")
	require.True(t, ok)

	in := NewObject("user").
		Set("self", true).
		Set("id", int64(7)).
		Set("first_name", "ann")

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			w := wire.NewWriter()
			if err := rec.Encode(w, in); err != nil {
				done <- err
				return
			}
			data, err := w.Result()
			if err != nil {
				done <- err
				return
			}
			_, err = rec.Decode(wire.NewReader(data))
			done <- err
		}()
	}
	for i := 0; i < 16; i++ {
		require.NoError(t, <-done)
	}
}

func BenchmarkRecordRoundTrip(b *testing.B) {
	schema := tl.Parse(testSchema)
	arts, err := CompileSchema(schema)
	if err != nil {
		b.Fatal(err)
	}
	rec, _ := arts.Record("user")
	in := NewObject("user").
		Set("self", true).
		Set("id", int64(7)).
		Set("first_name", "ann")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w := wire.GetWriter()
		if err := rec.Encode(w, in); err != nil {
			b.Fatal(err)
		}
		data, _ := w.Result()
		if _, err := rec.Decode(wire.NewReader(data)); err != nil {
			b.Fatal(err)
		}
		wire.PutWriter(w)
	}
}
