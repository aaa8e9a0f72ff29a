// Package naming converts TL schema names into Go identifiers. It is a
// pure, deterministic string mapping with no wire-format behavior; the
// compiler consumes it only through the rendered names it returns.
package naming

import "strings"

// Identifier converts a TL name, possibly dotted and snake_cased, into an
// exported Go identifier: "auth.sent_code" → "AuthSentCode",
// "inputPeerSelf" → "InputPeerSelf", "msg_resend_req" → "MsgResendReq".
// Runs of capitals are normalized so "some_OK_name" becomes "SomeOkName".
func Identifier(name string) string {
	var out strings.Builder
	out.Grow(len(name))

	nextUpper := true
	prevUpper := false
	for _, ch := range name {
		switch {
		case ch == '_' || ch == '.':
			nextUpper = true
			prevUpper = false
		case nextUpper:
			out.WriteRune(toUpper(ch))
			nextUpper = false
			prevUpper = isUpper(ch)
		case isUpper(ch):
			if prevUpper {
				// Continuation of a cap-run: "OK" → "Ok".
				out.WriteRune(toLower(ch))
			} else {
				// camelCase word boundary, keep as-is.
				out.WriteRune(ch)
			}
			prevUpper = true
		default:
			out.WriteRune(ch)
			prevUpper = false
		}
	}
	return out.String()
}

// Local converts a TL parameter name into an unexported Go identifier,
// escaping Go keywords and predeclared names with a trailing underscore:
// "access_hash" → "accessHash", "type" → "type_".
func Local(name string) string {
	id := Identifier(name)
	if id == "" {
		return id
	}
	local := string(toLower(rune(id[0]))) + id[1:]
	if reserved[local] {
		return local + "_"
	}
	return local
}

// Variant derives a union variant name from a member's rendered name by
// stripping the union's rendered name prefix: member "InputPeerSelf" of
// union "InputPeer" becomes "Self". Members without the prefix keep their
// full name.
func Variant(member, union string) string {
	trimmed := strings.TrimPrefix(member, union)
	if trimmed == "" {
		return member
	}
	return trimmed
}

// reserved lists Go keywords and common predeclared identifiers that would
// shadow badly as parameter names.
var reserved = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
	"bool": true, "byte": true, "error": true, "int": true,
	"len": true, "new": true, "nil": true, "string": true, "true": true,
	"false": true,
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

func toLower(r rune) rune {
	if isUpper(r) {
		return r - 'A' + 'a'
	}
	return r
}
