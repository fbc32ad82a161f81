// Command rilleval evaluates a single expression given on the command
// line.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/rill-lang/rill/pkg/embed"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/value"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	jsonOutput := false
	var expr string
	for _, a := range args {
		if a == "--json" {
			jsonOutput = true
			continue
		}
		if expr == "" {
			expr = a
		}
	}

	if expr == "" {
		fmt.Fprintln(os.Stderr, "usage: rilleval [--json] <expression>")
		return 1
	}

	program, err := embed.Parse(expr, "<eval>")
	if err != nil {
		fmt.Fprintln(os.Stderr, "rilleval:", err)
		return 1
	}

	vm := embed.New()
	result, _, rerr := vm.RunValue(program)
	if rerr != nil {
		printError(rerr, jsonOutput, isatty.IsTerminal(os.Stderr.Fd()))
		return 1
	}

	fmt.Println(value.ToDisplayString(result))
	return 0
}

func printError(rerr *rillerr.Error, jsonOutput, colored bool) {
	if jsonOutput {
		data, marshalErr := rerr.FormatJSON()
		if marshalErr != nil {
			fmt.Fprintln(os.Stderr, "rilleval: formatting error:", marshalErr)
			return
		}
		fmt.Fprintln(os.Stderr, string(data))
		return
	}
	msg := rerr.FormatHuman(false)
	if colored {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
}
