package embed

import "github.com/rill-lang/rill/ast"

// Frontend turns source text into the AST this module's evaluator
// consumes. Lexing and parsing are explicit out-of-scope collaborators:
// this package only specifies the seam a host's own front-end plugs
// into via RegisterFrontend, and that cmd/rill and cmd/rilleval parse
// through via Parse.
type Frontend func(source string, filePath string) (*ast.Program, error)

// frontend is nil until a host (typically a cmd/* main package built
// alongside an actual lexer/parser) calls RegisterFrontend.
var frontend Frontend

// RegisterFrontend installs the parser a host's CLI or embedding uses
// to turn script text into *ast.Program. Call it from an init() in the
// package that supplies the lexer/parser.
func RegisterFrontend(f Frontend) {
	frontend = f
}

// Parse runs the registered Frontend, or reports that none is
// installed — this module ships the evaluator, not a front-end.
func Parse(source, filePath string) (*ast.Program, error) {
	if frontend == nil {
		return nil, errNoFrontend
	}
	return frontend(source, filePath)
}

var errNoFrontend = frontendError{}

type frontendError struct{}

func (frontendError) Error() string {
	return "embed: no frontend registered; call embed.RegisterFrontend with a lexer/parser before parsing source text"
}
