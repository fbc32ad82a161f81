package value

import (
	"fmt"
	"strings"
)

// List is an ordered, logically immutable sequence of Values.
// Operations that would mutate it (append, set, etc.) return a new
// List sharing the unmodified backing slice where possible.
type List struct {
	Elements []Value
}

func NewList(elems ...Value) *List {
	return &List{Elements: elems}
}

func (*List) Kind() Kind { return KindList }

func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) Len() int { return len(l.Elements) }

// Index resolves a possibly-negative index against the list length
// (negative indices wrap from the end).
func (l *List) Index(i int) (int, bool) {
	n := len(l.Elements)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// ReservedDictKeys names the dict-method names forbidden as literal
// dict keys, since they'd shadow the built-in .keys/.values/.entries
// methods.
var ReservedDictKeys = map[string]bool{
	"keys":    true,
	"values":  true,
	"entries": true,
}

// Dict is an insertion-ordered, string-keyed, logically immutable map.
type Dict struct {
	order []string
	m     map[string]Value
}

// NewDict returns an empty Dict; entries are added with With. It does not
// itself enforce the reserved-key invariant; callers evaluating a dict
// literal must check ReservedDictKeys before calling this (see
// eval.evalDictLiteral), since that failure needs a precise source span.
func NewDict() *Dict {
	return &Dict{m: make(map[string]Value)}
}

// DictBuilder accumulates entries in place and yields a single
// finalized *Dict, used by eval.evalDictLiteral so that a property-
// style closure declared mid-literal can be bound (after the fact,
// once construction finishes) to the one true dict instance rather
// than to an intermediate copy-on-write snapshot.
type DictBuilder struct {
	d *Dict
}

func NewDictBuilder() *DictBuilder {
	return &DictBuilder{d: NewDict()}
}

// Set adds or overwrites key, preserving first-seen insertion order.
func (b *DictBuilder) Set(key string, v Value) {
	if _, exists := b.d.m[key]; !exists {
		b.d.order = append(b.d.order, key)
	}
	b.d.m[key] = v
}

// Dict returns the (still-mutable-by-builder) underlying instance.
// Callers must stop using the builder once they pass this pointer on.
func (b *DictBuilder) Dict() *Dict { return b.d }

func (*Dict) Kind() Kind { return KindDict }

func (d *Dict) Inspect() string {
	parts := make([]string, 0, len(d.order))
	for _, k := range d.order {
		parts = append(parts, fmt.Sprintf("%s: %s", k, d.m[k].Inspect()))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Get returns the value at key and whether it was present.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.m[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

func (d *Dict) Len() int { return len(d.order) }

// With returns a new Dict with key set to v, preserving insertion
// order (an existing key keeps its original position).
func (d *Dict) With(key string, v Value) *Dict {
	nd := &Dict{m: make(map[string]Value, len(d.m)+1)}
	nd.order = append(nd.order, d.order...)
	for k, val := range d.m {
		nd.m[k] = val
	}
	if _, exists := nd.m[key]; !exists {
		nd.order = append(nd.order, key)
	}
	nd.m[key] = v
	return nd
}

// Equal implements element-wise structural equality for dicts:
// same key-set and per-key equality.
func (d *Dict) Equal(other *Dict) bool {
	if d.Len() != other.Len() {
		return false
	}
	for k, v := range d.m {
		ov, ok := other.m[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}
