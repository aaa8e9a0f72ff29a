package tl

import (
	"fmt"
	"hash/crc32"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Schema is the result of parsing one TL source text.
type Schema struct {
	// Layer is the schema version declared by a `// LAYER <n>` comment,
	// or zero when absent.
	Layer int
	// Definitions holds every successfully parsed statement, in source order.
	Definitions []Definition
	// Diagnostics holds one entry per malformed statement.
	Diagnostics []Diagnostic
}

const (
	typesMarker     = "---types---"
	functionsMarker = "---functions---"
	layerPrefix     = "// LAYER"
)

var (
	explicitID = regexp.MustCompile(`#[0-9a-fA-F]+`)
	whitespace = regexp.MustCompile(`\s+`)
	flagRef    = regexp.MustCompile(`^(\w+)\.(\d+)\?(.+)$`)
)

// Parse turns TL schema text into a Schema. It never fails as a whole:
// malformed statements become Diagnostics and parsing continues.
func Parse(text string) *Schema {
	s := &Schema{}
	category := CategoryTypes

	flush := func(buffer string) {
		stmt := strings.TrimSpace(buffer)
		if stmt == "" {
			return
		}
		def, err := parseDefinition(stmt, category)
		if err != nil {
			s.Diagnostics = append(s.Diagnostics, Diagnostic{
				Statement: whitespace.ReplaceAllString(stmt, " "),
				Err:       err,
			})
			return
		}
		s.Definitions = append(s.Definitions, def)
	}

	var buffer string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		// The layer declaration lives in a comment, so it is inspected
		// before comments are stripped.
		if strings.HasPrefix(line, layerPrefix) {
			fields := strings.Fields(line)
			if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
				s.Layer = n
			}
		}

		if idx := strings.Index(line, "//"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		if line == "" {
			// A blank line flushes a pending statement that already looks
			// complete; partial statements keep accumulating.
			if strings.Contains(buffer, "=") {
				flush(buffer)
				buffer = ""
			}
			continue
		}

		switch line {
		case typesMarker:
			category = CategoryTypes
			buffer = ""
			continue
		case functionsMarker:
			category = CategoryFunctions
			buffer = ""
			continue
		}

		buffer += " " + line
		if strings.HasSuffix(line, ";") {
			flush(buffer)
			buffer = ""
		}
	}
	flush(buffer)

	return s
}

// parseDefinition parses one complete logical statement.
func parseDefinition(stmt string, category Category) (Definition, error) {
	line := strings.TrimRight(strings.TrimSpace(stmt), ";")

	eq := strings.LastIndex(line, "=")
	if eq < 0 {
		return Definition{}, ErrMissingSeparator
	}
	left := strings.TrimSpace(line[:eq])
	right := strings.TrimSpace(line[eq+1:])
	if right == "" {
		return Definition{}, fmt.Errorf("%w: missing return type", ErrEmptyType)
	}

	returnType, err := parseType(right)
	if err != nil {
		return Definition{}, err
	}

	tokens := strings.Fields(left)
	if len(tokens) == 0 {
		return Definition{}, ErrMissingName
	}
	nameToken := tokens[0]
	paramTokens := tokens[1:]

	var explicit *uint32
	if hash := strings.IndexByte(nameToken, '#'); hash >= 0 {
		idStr := nameToken[hash+1:]
		nameToken = nameToken[:hash]
		if idStr != "" {
			id, err := strconv.ParseUint(idStr, 16, 32)
			if err != nil {
				return Definition{}, fmt.Errorf("%w: %q", ErrInvalidID, idStr)
			}
			v := uint32(id)
			explicit = &v
		}
	}

	nameParts := strings.Split(nameToken, ".")
	name := nameParts[len(nameParts)-1]
	namespace := nameParts[:len(nameParts)-1]
	if name == "" {
		return Definition{}, ErrMissingName
	}
	for _, ns := range namespace {
		if ns == "" {
			return Definition{}, fmt.Errorf("%w: empty namespace segment in %q", ErrMissingName, nameToken)
		}
	}

	id := uint32(0)
	if explicit != nil {
		id = *explicit
	} else {
		id = inferID(stmt)
	}

	knownFlags := map[string]struct{}{}
	knownGenerics := map[string]struct{}{}
	var params []Parameter
	for _, token := range paramTokens {
		param, err := parseParameter(token, knownFlags, knownGenerics)
		if err != nil {
			return Definition{}, err
		}
		if param != nil {
			params = append(params, *param)
		}
	}

	// A return type naming a declared type parameter is a generic reference
	// even without the `!` prefix, as in `f {X:Type} query:!X = X`.
	if _, ok := knownGenerics[returnType.Name]; ok &&
		len(returnType.Namespace) == 0 && returnType.GenericArg == nil {
		returnType.GenericRef = true
	}

	return Definition{
		Name:       name,
		Namespace:  namespace,
		ID:         id,
		Params:     params,
		ReturnType: returnType,
		Category:   category,
	}, nil
}

// parseParameter parses a single whitespace-separated parameter token.
// A `{X:Type}` declaration registers X as a generic and yields no parameter.
func parseParameter(raw string, knownFlags, knownGenerics map[string]struct{}) (*Parameter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "{") {
		if !strings.HasSuffix(raw, "}") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTypeDef, raw)
		}
		inner := raw[1 : len(raw)-1]
		gname, gty, ok := strings.Cut(inner, ":")
		if !ok || strings.TrimSpace(gty) != "Type" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTypeDef, raw)
		}
		knownGenerics[strings.TrimSpace(gname)] = struct{}{}
		return nil, nil
	}

	name, tyStr, ok := strings.Cut(raw, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColon, raw)
	}
	name = strings.TrimSpace(name)
	tyStr = strings.TrimSpace(tyStr)
	if name == "" || tyStr == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptyParam, raw)
	}

	// Flags word: name:#
	if tyStr == "#" {
		knownFlags[name] = struct{}{}
		return &Parameter{
			Name:    name,
			Type:    Type{Name: "#", Bare: true},
			IsFlags: true,
		}, nil
	}

	// Conditional: name:flags.N?Type
	if m := flagRef.FindStringSubmatch(tyStr); m != nil {
		flagName := m[1]
		if _, ok := knownFlags[flagName]; !ok {
			return nil, fmt.Errorf("%w: %q in parameter %q", ErrUnknownFlag, flagName, name)
		}
		index, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("%w: bit index in %q", ErrInvalidID, raw)
		}
		ty, err := parseType(m[3])
		if err != nil {
			return nil, err
		}
		return &Parameter{
			Name: name,
			Type: ty,
			Flag: &Flag{Field: flagName, Index: index},
		}, nil
	}

	ty, err := parseType(tyStr)
	if err != nil {
		return nil, err
	}
	if ty.GenericRef {
		if _, ok := knownGenerics[ty.Name]; !ok {
			return nil, fmt.Errorf("%w: %q in parameter %q", ErrUnknownGeneric, ty.Name, name)
		}
	}
	return &Parameter{Name: name, Type: ty}, nil
}

// parseType parses a type expression: optional leading '!', dotted name,
// optional single generic argument in angle brackets.
func parseType(raw string) (Type, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Type{}, ErrEmptyType
	}

	genericRef := strings.HasPrefix(raw, "!")
	if genericRef {
		raw = raw[1:]
	}

	var genericArg *Type
	if idx := strings.IndexByte(raw, '<'); idx >= 0 {
		if !strings.HasSuffix(raw, ">") {
			return Type{}, fmt.Errorf("%w: %q", ErrInvalidGeneric, raw)
		}
		inner, err := parseType(raw[idx+1 : len(raw)-1])
		if err != nil {
			return Type{}, err
		}
		genericArg = &inner
		raw = raw[:idx]
	}

	parts := strings.Split(raw, ".")
	name := parts[len(parts)-1]
	namespace := parts[:len(parts)-1]
	if name == "" {
		return Type{}, fmt.Errorf("%w: %q", ErrEmptyType, raw)
	}

	return Type{
		Name:       name,
		Namespace:  namespace,
		Bare:       unicode.IsLower(rune(name[0])),
		GenericRef: genericRef,
		GenericArg: genericArg,
	}, nil
}

// idCanonicalizer rewrites a statement into the form the published ids are
// hashed over: bytes fields become string fields, generic brackets and
// type-parameter braces are dropped.
var idCanonicalizer = strings.NewReplacer(
	":bytes", ":string",
	"?bytes", "?string",
	"<", " ",
	">", "",
	"{", "",
	"}", "",
)

// inferID derives the constructor id of a statement that carries no explicit
// `#id`. The id is the IEEE CRC-32 of the canonical statement: explicit id
// stripped, bytes rewritten to string, angle brackets and braces removed,
// whitespace runs collapsed, trimmed, trailing terminator dropped. This
// reproduces the ids published with the original protocol schemas, e.g.
// 0x05162463 for resPQ.
func inferID(stmt string) uint32 {
	s := explicitID.ReplaceAllString(stmt, "")
	s = idCanonicalizer.Replace(s)
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ";")
	s = strings.TrimSpace(s)
	return crc32.ChecksumIEEE([]byte(s))
}
