package jsonkit

// Fields lists the candidate field names of a payload for user selection.
// Arrays defer to their first element, assuming a uniform schema across
// elements; objects contribute their keys in document order; primitives
// and empty arrays have no fields.
func Fields(v Value) []string {
	switch v.Kind() {
	case Array:
		items := v.Items()
		if len(items) == 0 {
			return nil
		}
		return Fields(items[0])
	case Object:
		keys := v.Keys()
		out := make([]string, len(keys))
		copy(out, keys)
		return out
	default:
		return nil
	}
}
