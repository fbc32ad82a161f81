// Package signal models the two control-flow signals that must stay
// distinguishable from both ordinary values and errors: break and
// return. They are plain Go values carried alongside value.Value
// through the evaluator's return path rather than panicked/recovered,
// kept out of the value package itself so ordinary script code can
// never observe or construct one.
package signal

import "github.com/rill-lang/rill/value"

// Signal is implemented by Break and Return.
type Signal interface {
	signal()
}

// Break unwinds to the nearest enclosing loop or iterator
// (each/map/fold/filter). Value is appended to a non-accumulator
// `each`'s result list, becomes the result of a while/do-while loop,
// and replaces the accumulator of fold or accumulator-form each;
// map and filter ignore it.
type Break struct {
	Value value.Value
}

func (Break) signal() {}

// Return unwinds to the nearest enclosing script closure.
type Return struct {
	Value value.Value
}

func (Return) signal() {}
