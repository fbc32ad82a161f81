package rillerr

// def is the registry entry backing a single ID: its category (for
// New's validation) and an optional documentation URL.
type def struct {
	Category Category
	HelpURL  string
}

// registry enumerates every error ID this implementation raises. New
// panics on an ID absent here, by design: an unknown ID is a
// programmer bug in the evaluator itself, never something a script
// can trigger.
var registry = map[ID]def{
	// Runtime errors.
	"RILL-R-UndefinedVariable":  {CategoryRuntime, ""},
	"RILL-R-TypeMismatch":       {CategoryRuntime, ""},
	"RILL-R-TypeAssertion":      {CategoryRuntime, ""},
	"RILL-R-MissingField":       {CategoryRuntime, ""},
	"RILL-R-IndexOutOfRange":    {CategoryRuntime, ""},
	"RILL-R-MissingArgument":    {CategoryRuntime, ""},
	"RILL-R-IterationLimit":     {CategoryRuntime, ""},
	"RILL-R-CallStackOverflow":  {CategoryRuntime, ""},
	"RILL-R-OperandType":        {CategoryRuntime, ""},
	"RILL-R-DivisionByZero":     {CategoryRuntime, ""},
	"RILL-R-InvalidRegex":       {CategoryRuntime, ""},
	"RILL-R-ReservedMethod":     {CategoryRuntime, ""},
	"RILL-R-AutoException":      {CategoryRuntime, ""},
	"RILL-R-Timeout":            {CategoryRuntime, ""},
	"RILL-R-Aborted":            {CategoryRuntime, ""},
	"RILL-R-Generic":            {CategoryRuntime, ""},
	"RILL-R-AlternativesMissing": {CategoryRuntime, ""},
	"RILL-R-UnknownIdentifier":  {CategoryRuntime, ""},
	"RILL-R-NotCallable":        {CategoryRuntime, ""},
	"RILL-R-AssertionFailed":    {CategoryRuntime, ""},
	"RILL-R-UserError":          {CategoryRuntime, ""},

	// Parse errors (produced by an out-of-scope parser; listed here so
	// the wire/human formats in §6/§7 have a stable home for them).
	"RILL-P-Syntax":       {CategoryParse, ""},
	"RILL-P-EmptyBlock":   {CategoryParse, ""},
	"RILL-P-ErrorMessage": {CategoryParse, ""},

	// Lex errors.
	"RILL-L-InvalidToken": {CategoryLex, ""},

	// Check (static-analysis) errors — informational only at runtime.
	"RILL-C-Validation": {CategoryCheck, ""},
}
