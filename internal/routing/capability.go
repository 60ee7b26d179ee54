package routing

import "reflect"

// AsMountable performs the mount-time capability check on a bound value.
func AsMountable(v any) (Mountable, bool) {
	m, ok := v.(Mountable)
	if !ok || isNil(m) {
		return nil, false
	}
	return m, true
}

// AsGroup performs the mount-time capability check on a router value.
func AsGroup(v any) (Group, bool) {
	g, ok := v.(Group)
	if !ok || isNil(g) {
		return nil, false
	}
	return g, true
}

// isNil catches typed nil pointers stored in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
