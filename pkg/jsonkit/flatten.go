package jsonkit

// Flatten lifts one level of nesting out of an object: primitive members of
// a nested object surface under dotted keys ("company.name"), while arrays
// and anything nested deeper than one level are dropped. Non-object input
// is returned unchanged. When a dotted key collides with a literal key the
// later member wins.
func Flatten(v Value) Value {
	if v.Kind() != Object {
		return v
	}
	out := NewObject()
	for _, key := range v.Keys() {
		member, _ := v.Get(key)
		switch member.Kind() {
		case Object:
			for _, sub := range member.Keys() {
				nested, _ := member.Get(sub)
				if nested.Kind() == Object || nested.Kind() == Array {
					continue
				}
				out.Set(key+"."+sub, nested)
			}
		case Array:
			// arrays never become table columns
		default:
			out.Set(key, member)
		}
	}
	return out
}
