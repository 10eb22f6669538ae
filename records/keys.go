package records

import (
	"github.com/iancoleman/strcase"
	"golang.org/x/text/unicode/norm"

	"github.com/reoring/ejson"
)

// TransformKeys returns a copy of v with fn applied to every object key,
// descending through arrays. Keys mapped to the same name collide and one
// of them wins.
func TransformKeys(v any, fn func(string) string) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fn(k)] = TransformKeys(e, fn)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = TransformKeys(e, fn)
		}
		return out
	case ejson.Records:
		out := make(ejson.Records, len(x))
		for i, r := range x {
			out[i] = TransformKeys(r, fn).(map[string]any)
		}
		return out
	}
	return v
}

// SnakeKeys renames keys to snake_case.
func SnakeKeys(v any) any { return TransformKeys(v, strcase.ToSnake) }

// CamelKeys renames keys to CamelCase.
func CamelKeys(v any) any { return TransformKeys(v, strcase.ToCamel) }

// LowerCamelKeys renames keys to lowerCamelCase.
func LowerCamelKeys(v any) any { return TransformKeys(v, strcase.ToLowerCamel) }

// KebabKeys renames keys to kebab-case.
func KebabKeys(v any) any { return TransformKeys(v, strcase.ToKebab) }

// ScreamingSnakeKeys renames keys to SCREAMING_SNAKE_CASE.
func ScreamingSnakeKeys(v any) any { return TransformKeys(v, strcase.ToScreamingSnake) }

// NormalizeKeys rewrites keys in Unicode NFC so that composed and
// decomposed spellings of the same name address one key.
func NormalizeKeys(v any) any { return TransformKeys(v, norm.NFC.String) }
