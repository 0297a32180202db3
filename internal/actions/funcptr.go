package actions

import "reflect"

// funcPtr extracts a comparable identity for a func value so the factory
// can tell "the same constructor registered twice" (a no-op) apart from
// "two different constructors for one name" (an error).
func funcPtr(f interface{}) uintptr {
	if f == nil {
		return 0
	}
	return reflect.ValueOf(f).Pointer()
}
