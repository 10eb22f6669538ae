package records

import "github.com/reoring/ejson"

// DeepCopy copies the containers of a decoded value (records, arrays and
// record lists). Scalars are shared; anything else is returned as is.
func DeepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return x
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = DeepCopy(e)
		}
		return out
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = DeepCopy(e)
		}
		return out
	case ejson.Records:
		if x == nil {
			return x
		}
		out := make(ejson.Records, len(x))
		for i, r := range x {
			out[i] = DeepCopy(r).(map[string]any)
		}
		return out
	}
	return v
}
