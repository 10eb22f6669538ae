package ejson

// NullString is the default encoding of Null.
const NullString = "EJSON::NULL"

// NullType is the type of Null.
type NullType struct{}

// Null marks an explicitly absent value, distinct from JSON null. The default
// encoder renders it as NullString.
var Null = NullType{}

// IsNull reports whether v is Null or its encoded form.
func IsNull(v any) bool {
	switch x := v.(type) {
	case NullType, *NullType:
		return true
	case string:
		return x == NullString
	}
	return false
}
