package compiler

import (
	"strings"

	"github.com/ankit-chaubey/layer/tl"
)

// Namespaces maps each dotted namespace path to the definitions declared in
// it, in definition order. Definitions without a namespace live under the
// empty path. The map is built once from the definition list; callers must
// treat it as read-only.
func Namespaces(defs []tl.Definition) map[string][]tl.Definition {
	out := make(map[string][]tl.Definition)
	for _, def := range defs {
		key := strings.Join(def.Namespace, ".")
		out[key] = append(out[key], def)
	}
	return out
}
