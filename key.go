package replaylatest

import "reflect"

// KeyFunc derives the discriminant key of an item. Items with equal keys
// occupy the same cache slot, so only the latest of them is replayed. The
// function must be total and stable: the same item always maps to the same
// key. An error fails the stream the item was emitted on.
type KeyFunc[T any] func(item T) (string, error)

// TypeKey keys items by their dynamic type. Named types are qualified with
// their package path, and pointer types are distinct from their element
// types. Nil items, including typed nil pointers, maps, slices, functions and
// channels, fail with ErrNilItem.
func TypeKey[T any](item T) (string, error) {
	v := reflect.ValueOf(any(item))
	if !v.IsValid() {
		return "", ErrNilItem
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			return "", ErrNilItem
		}
	}

	return typeName(v.Type()), nil
}

func typeName(t reflect.Type) string {
	switch {
	case t.Kind() == reflect.Pointer:
		return "*" + typeName(t.Elem())
	case t.Name() != "" && t.PkgPath() != "":
		return t.PkgPath() + "." + t.Name()
	default:
		return t.String()
	}
}
