package pulse

import (
	"fmt"
	"sort"
	"strings"
)

// Field is an explicit accessor wrapper around one instrumented property.
// Read and Write behave exactly like the underlying atom's Get and Set:
// reads register dependencies during tracked runs, writes invalidate
// dependents.
type Field struct {
	name string
	atom *Atom[any]
}

// Name returns the property name.
func (f *Field) Name() string { return f.name }

// Read returns the property value, registering a dependency when called
// during a tracked run.
func (f *Field) Read() any { return f.atom.Get() }

// Peek returns the property value without registering a dependency.
func (f *Field) Peek() any { return f.atom.Peek() }

// Write replaces the property value; equal writes are suppressed.
func (f *Field) Write(v any) { f.atom.Set(v) }

// Version returns the property's version stamp.
func (f *Field) Version() uint64 { return f.atom.Version() }

// Object converts named properties into observable cells. It is the
// explicit counterpart of language-level accessor interception: each
// defined property is backed by an atom and exposed through a Field.
//
// Define validates every key before creating anything and commits all
// fields inside one batch, so dependents never observe a half-instrumented
// object.
type Object struct {
	rt     *Runtime
	name   string
	fields map[string]*Field
	order  []string
}

// NewObject creates an empty observable object on the given runtime.
func NewObject(rt *Runtime) *Object {
	if rt == nil {
		panic(ErrNilRuntime)
	}

	return &Object{
		rt:     rt,
		fields: make(map[string]*Field),
	}
}

// Named sets a diagnostic name used in field event names.
// Returns the object for chaining at construction.
func (o *Object) Named(name string) *Object {
	o.name = name
	return o
}

// Define instruments the given properties. Every key is validated first:
// an empty or "$"-prefixed name is reserved, and a property that is already
// defined is rejected. When any key fails, no field is created at all.
// Field creation is wrapped in a single batch.
func (o *Object) Define(props map[string]any) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := o.validateKey(k); err != nil {
			return err
		}
	}

	o.rt.Batch(func() {
		for _, k := range keys {
			atom := NewAtom[any](o.rt, props[k]).Named(o.fieldName(k))
			o.fields[k] = &Field{name: k, atom: atom}
			o.order = append(o.order, k)
		}
	})

	return nil
}

// Assign writes several existing properties as one atomic batch. Every key
// is validated first; when any key is not defined, nothing is written.
func (o *Object) Assign(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := o.fields[k]; !ok {
			return fmt.Errorf("%w: %q", ErrFieldUnknown, k)
		}
	}

	o.rt.Batch(func() {
		for _, k := range keys {
			o.fields[k].Write(values[k])
		}
	})

	return nil
}

// Field returns the accessor for a defined property.
func (o *Object) Field(name string) (*Field, bool) {
	f, ok := o.fields[name]
	return f, ok
}

// MustField returns the accessor for a defined property, panicking when the
// property was never defined. Intended for fields the caller just defined.
func (o *Object) MustField(name string) *Field {
	f, ok := o.fields[name]
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrFieldUnknown, name))
	}
	return f
}

// Read returns the value of a defined property, registering a dependency
// during tracked runs.
func (o *Object) Read(name string) (any, error) {
	f, ok := o.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldUnknown, name)
	}
	return f.Read(), nil
}

// Write replaces the value of a defined property.
func (o *Object) Write(name string, v any) error {
	f, ok := o.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldUnknown, name)
	}
	f.Write(v)
	return nil
}

// Keys returns the defined property names in definition order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.order))
	copy(keys, o.order)
	return keys
}

// validateKey rejects reserved and already-defined property names.
func (o *Object) validateKey(k string) error {
	if k == "" || strings.HasPrefix(k, "$") {
		return fmt.Errorf("%w: %q", ErrReservedKey, k)
	}
	if _, exists := o.fields[k]; exists {
		return fmt.Errorf("%w: %q", ErrFieldExists, k)
	}
	return nil
}

// fieldName builds the event name for a property's backing atom.
func (o *Object) fieldName(k string) string {
	if o.name == "" {
		return k
	}
	return o.name + "." + k
}
