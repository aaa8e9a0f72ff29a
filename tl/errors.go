package tl

import "errors"

var (
	// ErrMissingSeparator indicates a statement with no `=` between the
	// left side and the return type.
	ErrMissingSeparator = errors.New("tl: missing `=` separator in definition")

	// ErrMissingName indicates a definition with an empty or missing name.
	ErrMissingName = errors.New("tl: missing definition name")

	// ErrInvalidID indicates an unparseable explicit `#id` hex literal.
	ErrInvalidID = errors.New("tl: invalid constructor id literal")

	// ErrMissingColon indicates a parameter token without a `name:type` colon.
	ErrMissingColon = errors.New("tl: parameter without `name:type`")

	// ErrEmptyParam indicates a parameter with an empty name or type.
	ErrEmptyParam = errors.New("tl: empty name or type in parameter")

	// ErrEmptyType indicates an empty type expression.
	ErrEmptyType = errors.New("tl: empty type expression")

	// ErrUnknownFlag indicates a conditional parameter referencing a flags
	// word that was not declared earlier in the same definition.
	ErrUnknownFlag = errors.New("tl: unknown flags field")

	// ErrUnknownGeneric indicates a `!X` reference with no matching `{X:Type}`
	// declaration in the same definition.
	ErrUnknownGeneric = errors.New("tl: unknown generic reference")

	// ErrInvalidGeneric indicates malformed generic angle brackets.
	ErrInvalidGeneric = errors.New("tl: malformed generic argument")

	// ErrInvalidTypeDef indicates a `{...}` block that is not a valid
	// `{X:Type}` declaration.
	ErrInvalidTypeDef = errors.New("tl: malformed type-parameter declaration")
)

// Diagnostic ties a parse failure to the statement that caused it. The
// parser accumulates diagnostics instead of aborting, so a partially broken
// schema still yields every well-formed definition.
type Diagnostic struct {
	// Statement is the offending logical statement, whitespace-collapsed.
	Statement string
	// Err names the violated rule; it wraps one of this package's sentinel
	// errors.
	Err error
}

func (d Diagnostic) String() string {
	return d.Err.Error() + " in " + quoteStatement(d.Statement)
}

// quoteStatement quotes a statement for diagnostics, truncating very long ones.
func quoteStatement(s string) string {
	const max = 120
	if len(s) > max {
		s = s[:max] + "…"
	}
	return "`" + s + "`"
}
