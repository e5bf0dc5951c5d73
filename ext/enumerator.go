package ext

import (
	"iter"
	"reflect"
)

// Enumerator adapts Go sequences to the MoveNext/Current protocol used by
// reduced foreach loops.
type Enumerator struct {
	next func() (any, bool)
	stop func()
	cur  any
}

// MoveNext advances to the next element.
func (e *Enumerator) MoveNext() bool {
	v, ok := e.next()
	if !ok {
		e.cur = nil
		return false
	}
	e.cur = v
	return true
}

// Current returns the element MoveNext advanced to.
func (e *Enumerator) Current() any {
	return e.cur
}

// Close releases the underlying sequence. It is safe to call more than once.
func (e *Enumerator) Close() {
	if e.stop != nil {
		e.stop()
	}
}

// Pull enumerates an iter.Seq of any element type.
func Pull(seq any) *Enumerator {
	sv := reflect.ValueOf(seq)
	yt := sv.Type().In(0)
	wrapped := func(yield func(any) bool) {
		y := reflect.MakeFunc(yt, func(args []reflect.Value) []reflect.Value {
			return []reflect.Value{reflect.ValueOf(yield(args[0].Interface()))}
		})
		sv.Call([]reflect.Value{y})
	}
	next, stop := iter.Pull(iter.Seq[any](wrapped))
	return &Enumerator{next: next, stop: stop}
}

// Range enumerates slices, arrays, array pointers, strings (by rune), map
// keys and receive channels.
func Range(coll any) *Enumerator {
	v := reflect.ValueOf(coll)
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return &Enumerator{next: func() (any, bool) { return nil, false }}
		}
		return indexed(v.Elem())
	case reflect.String:
		return indexed(reflect.ValueOf([]rune(v.String())))
	case reflect.Map:
		it := v.MapRange()
		return &Enumerator{next: func() (any, bool) {
			if !it.Next() {
				return nil, false
			}
			return it.Key().Interface(), true
		}}
	case reflect.Chan:
		return &Enumerator{next: func() (any, bool) {
			x, ok := v.Recv()
			if !ok {
				return nil, false
			}
			return x.Interface(), true
		}}
	case reflect.Invalid:
		return &Enumerator{next: func() (any, bool) { return nil, false }}
	}
	return indexed(v)
}

func indexed(v reflect.Value) *Enumerator {
	i := 0
	return &Enumerator{next: func() (any, bool) {
		if i >= v.Len() {
			return nil, false
		}
		x := v.Index(i).Interface()
		i++
		return x, true
	}}
}
