// Command rill executes a script file or stdin: positional args are
// surfaced to the script as `$`, exit code 0 on success with a
// printable value, non-zero on any error, --json switching error
// output to the structured form.
//
// Dispatch is raw os.Args, no flag package, with mattn/go-isatty
// gating colorized error output.
package main

import (
	"fmt"
	"io"
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
	var positional []string
	for _, a := range args {
		if a == "--json" {
			jsonOutput = true
			continue
		}
		positional = append(positional, a)
	}

	var source string
	var filePath string
	var scriptArgs []string

	if len(positional) == 0 || positional[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rill: reading stdin:", err)
			return 1
		}
		source = string(data)
		filePath = "<stdin>"
		if len(positional) > 1 {
			scriptArgs = positional[1:]
		}
	} else {
		data, err := os.ReadFile(positional[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "rill: reading", positional[0]+":", err)
			return 1
		}
		source = string(data)
		filePath = positional[0]
		scriptArgs = positional[1:]
	}

	program, err := embed.Parse(source, filePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rill:", err)
		return 1
	}

	vm := embed.New()
	if err := vm.SetPipe(scriptArgs); err != nil {
		fmt.Fprintln(os.Stderr, "rill:", err)
		return 1
	}

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
			fmt.Fprintln(os.Stderr, "rill: formatting error:", marshalErr)
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
