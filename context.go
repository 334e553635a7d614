package mustache

import (
	"fmt"
	"reflect"
)

// Context is a view over a data value exposing the four operations
// spec.md §3 requires: get, interpolate, iterator, and expandLambda. Any
// value able to answer these for a dotted path is a Context — the
// abstraction is by capability, not by concrete type. reflectContext (the
// default, covering Go structs, maps, slices and scalars via reflection)
// and FuncContext (a caller-supplied resolver, for opaque or
// foreign-sourced data) both satisfy it.
type Context interface {
	// Get resolves path against the held value.
	Get(path []string) Resolution
	// Interpolate writes the scalar rendering of path's resolved value to w,
	// or writes nothing when the path doesn't resolve to a renderable scalar.
	// The returned Resolution reports how the path resolved: a value that
	// resolves but is not a scalar (a record, a non-byte sequence) is still
	// ResField, with nothing written.
	Interpolate(w *escapeWriter, path []string, escape EscapeMode) (Resolution, error)
	// Iterator resolves path to an iteration plan (Empty, Lambda, or
	// Sequence), per spec.md §3's Iterator shapes.
	Iterator(path []string) (*valueIterator, Resolution)
	// ExpandLambda invokes the lambda at path, if any, with a LambdaContext
	// carrying innerText and escape. render is supplied by the caller (the
	// render engine) to re-enter the parser/renderer for the lambda's
	// benefit, keeping Context decoupled from parse.go/render.go.
	ExpandLambda(w *escapeWriter, path []string, innerText string, escape EscapeMode, delims delimiters, render func(text string, d delimiters) (string, error)) (Resolution, error)
}

// reflectContext is the default Context, walking Go structs, maps, slices,
// arrays and scalars via reflection. It is also what backs JSON- and
// YAML-sourced data: both unmarshal into the same map[string]interface{} /
// []interface{} / scalar shapes that reflectContext already understands, so
// no separate walking algorithm is needed for those backends.
type reflectContext struct {
	v reflect.Value
}

func newReflectContext(data interface{}) *reflectContext {
	return &reflectContext{v: reflect.ValueOf(data)}
}

func (c *reflectContext) Get(path []string) Resolution {
	return resolveSegments(c.v, path)
}

func (c *reflectContext) Interpolate(w *escapeWriter, path []string, escape EscapeMode) (Resolution, error) {
	return interpolateFromGet(c.Get, w, path, escape)
}

func (c *reflectContext) Iterator(path []string) (*valueIterator, Resolution) {
	return iteratorFromGet(c.Get, path)
}

func (c *reflectContext) ExpandLambda(w *escapeWriter, path []string, innerText string, escape EscapeMode, delims delimiters, render func(string, delimiters) (string, error)) (Resolution, error) {
	return expandLambdaFromGet(c.Get, w, path, innerText, escape, delims, render)
}

// FuncContext lets a caller supply a resolver directly, for data sources
// that are not reachable by reflection — an FFI-backed handle, a lazily
// computed view, or anything else exposing only a lookup function. It plays
// the role spec.md §4.1 assigns to an "opaque FFI handle" backend.
type FuncContext struct {
	// Lookup resolves a full dotted path (already split into segments) and
	// reports whether it exists. Returning a LambdaFunc-shaped value marks
	// the path as a lambda.
	Lookup func(path []string) (value interface{}, ok bool)
}

func (f FuncContext) get(path []string) Resolution {
	v, ok := f.Lookup(path)
	if !ok {
		return notFoundRes
	}
	rv := reflect.ValueOf(v)
	if isLambdaCallable(rv) {
		return lambdaRes(rv)
	}
	return fieldRes(rv)
}

func (f FuncContext) Get(path []string) Resolution { return f.get(path) }

func (f FuncContext) Interpolate(w *escapeWriter, path []string, escape EscapeMode) (Resolution, error) {
	return interpolateFromGet(f.get, w, path, escape)
}

func (f FuncContext) Iterator(path []string) (*valueIterator, Resolution) {
	return iteratorFromGet(f.get, path)
}

func (f FuncContext) ExpandLambda(w *escapeWriter, path []string, innerText string, escape EscapeMode, delims delimiters, render func(string, delimiters) (string, error)) (Resolution, error) {
	return expandLambdaFromGet(f.get, w, path, innerText, escape, delims, render)
}

func interpolateFromGet(get func([]string) Resolution, w *escapeWriter, path []string, escape EscapeMode) (Resolution, error) {
	res := get(path)
	if res.Err != nil {
		return res, res.Err
	}
	if res.Kind == ResField {
		if s, _ := w.stringify(res.Value); s != "" {
			if _, err := w.writeEscaped([]byte(s), escape); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func iteratorFromGet(get func([]string) Resolution, path []string) (*valueIterator, Resolution) {
	res := get(path)
	switch res.Kind {
	case ResNotFound, ResBroken:
		return nil, res
	case ResLambda:
		return &valueIterator{shape: iterLambda, lambda: res.Value}, res
	default:
		return iteratorForValue(res.Value), res
	}
}

func expandLambdaFromGet(get func([]string) Resolution, w *escapeWriter, path []string, innerText string, escape EscapeMode, delims delimiters, render func(string, delimiters) (string, error)) (Resolution, error) {
	res := get(path)
	if res.Err != nil {
		return res, res.Err
	}
	if res.Kind != ResLambda {
		return res, nil
	}
	lc := &LambdaContext{InnerText: innerText, delims: delims, escape: escape, w: w, render: render}
	out, err := callLambda(res.Value, lc)
	if out != "" {
		if _, werr := w.writeEscaped([]byte(out), escape); werr != nil {
			return res, werr
		}
	}
	if err == nil {
		return res, nil
	}
	if isEngineError(err) {
		return res, err
	}
	// Per spec.md §7, an error returned directly by user lambda code is
	// swallowed rather than aborting the walk: any bytes already written
	// (above) remain, and rendering continues. Kept visible as a
	// best-effort diagnostic, matching the teacher's own recovered-panic
	// print in the lookup path.
	fmt.Printf("mustache: %s\n", &LambdaWriteError{Err: err})
	return res, nil
}

// iteratorShape tags the three Iterator shapes from spec.md §3.
type iteratorShape int

const (
	iterEmpty iteratorShape = iota
	iterLambda
	iterSequence
)

// valueIterator is a pull-based iteration state machine. It never suspends
// the render loop: next() advances an index and returns the item at that
// position, truthy() reports whether any item remains (or ever existed, for
// a not-yet-advanced iterator) without consuming one.
type valueIterator struct {
	shape  iteratorShape
	lambda reflect.Value
	items  []reflect.Value
	idx    int
}

func (it *valueIterator) truthy() bool {
	switch it.shape {
	case iterEmpty:
		return false
	case iterLambda:
		return true
	default:
		return len(it.items)-it.idx > 0
	}
}

func (it *valueIterator) next() (reflect.Value, bool) {
	if it.idx >= len(it.items) {
		return reflect.Value{}, false
	}
	v := it.items[it.idx]
	it.idx++
	return v, true
}

// iteratorForValue classifies a resolved Field value into the Sequence or
// Empty shape, per spec.md §4.2's iteration semantics:
//   - a nil pointer/interface/map/slice is Empty,
//   - a non-byte sequence yields each element as its own item,
//   - false is Empty, true is a truthy one-item singleton,
//   - any other falsey scalar (per isFalsey) is Empty,
//   - any other value is a truthy one-item singleton (the teacher's
//     "non-false sections have their value at the top of context" rule).
func iteratorForValue(v reflect.Value) *valueIterator {
	iv := indirect(v)
	if !iv.IsValid() {
		return &valueIterator{shape: iterEmpty}
	}
	if iv.Kind() == reflect.Slice || iv.Kind() == reflect.Array {
		n := iv.Len()
		if n == 0 {
			return &valueIterator{shape: iterEmpty}
		}
		items := make([]reflect.Value, n)
		for i := 0; i < n; i++ {
			items[i] = iv.Index(i)
		}
		return &valueIterator{shape: iterSequence, items: items}
	}
	if isFalsey(v) {
		return &valueIterator{shape: iterEmpty}
	}
	return &valueIterator{shape: iterSequence, items: []reflect.Value{v}}
}
