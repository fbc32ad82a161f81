package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/runtime"
	"github.com/rill-lang/rill/signal"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// Stepper is the alternative stepping interface: `createStepper(ast,
// context)` returns a handle whose Next() advances
// one top-level statement at a time, emitting the same step_start/
// step_end events evalProgram emits for a plain Execute call. A host
// driving a debugger or an LSP-style "run to next statement" feature
// uses this instead of Execute when it needs to pause between
// statements rather than run the whole program in one call.
type Stepper struct {
	e      *Evaluator
	stmts  []ast.Statement
	index  int
	last   value.Value
	done   bool
	failed *rillerr.Error
}

// CreateStepper builds a Stepper over program's top-level statements,
// sharing ctx with any other evaluation driven against it.
func CreateStepper(ctx *runtime.Context, program *ast.Program) *Stepper {
	return &Stepper{
		e:     New(ctx),
		stmts: program.Statements,
		last:  value.Null{},
	}
}

// Done reports whether every top-level statement has been consumed
// (by Next running to completion or by a prior step failing).
func (s *Stepper) Done() bool { return s.done }

// Value returns the result of the last successfully evaluated
// statement; meaningful once Done() is true and Err() is nil.
func (s *Stepper) Value() value.Value { return s.last }

// Err returns the error that stopped stepping, if Next ever returned
// one.
func (s *Stepper) Err() *rillerr.Error { return s.failed }

// Next advances exactly one top-level statement. It
// returns (value, true, nil) once the final statement lands, (value,
// false, nil) after an ordinary intermediate statement, or (nil, true,
// err) the moment a statement fails — matching Execute's one-shot
// error propagation, just paused at statement granularity instead of
// running the whole program.
func (s *Stepper) Next() (value.Value, bool, *rillerr.Error) {
	if s.done {
		return s.last, true, s.failed
	}
	if s.index >= len(s.stmts) {
		s.done = true
		return s.last, true, nil
	}

	stmt := s.stmts[s.index]
	s.e.Ctx.Emit("step_start", map[string]interface{}{"index": s.index})

	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		s.failed = rillerr.New("RILL-R-Generic", token.Span{}, "unsupported statement %T", stmt)
		s.done = true
		s.e.Ctx.EmitError(s.failed)
		return nil, true, s.failed
	}

	res := s.e.Eval(es.Expr)
	s.e.Ctx.Emit("step_end", map[string]interface{}{"index": s.index})

	if res.Err != nil {
		s.failed = res.Err
		s.done = true
		s.e.Ctx.EmitError(s.failed)
		return nil, true, s.failed
	}
	if res.Sig != nil {
		// break/return reaching the top level unwinds the whole
		// program immediately, same as evalProgram's abrupt-result
		// return (there is no enclosing loop/closure left to catch it).
		s.done = true
		switch sig := res.Sig.(type) {
		case signal.Return:
			if sig.Value != nil {
				s.last = sig.Value
			}
		case signal.Break:
			if sig.Value != nil {
				s.last = sig.Value
			}
		}
		return s.last, true, nil
	}

	v := res.Value
	if v == nil {
		v = value.Null{}
	}
	s.last = v
	s.e.Ctx.SetPipeValue(v)
	if err := s.e.checkAutoException(v, es.Expr.Span()); err != nil {
		s.failed = err
		s.done = true
		s.e.Ctx.EmitError(err)
		return nil, true, err
	}

	s.index++
	done := s.index >= len(s.stmts)
	s.done = done
	return s.last, done, nil
}
