package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "ink"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<command>] [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<command>] [<path>...] [-- <arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and all-in-one tool for the %[1]s programming language. Running
with no command and no path starts a REPL.

The <command> can be one of:
       tokenize <path>...        Run the scanner and print the resulting
                                 tokens.
       parse <path>...           Run the scanner and parser and print the
                                 resulting abstract syntax tree.
       compile <path>...         Run the full pipeline through the compiler
                                 and print the disassembled bytecode.
       eval <source>             Compile and run a source string given
                                 directly on the command line.
       run <path>                Compile and run a single source file.
       version                   Print version and exit.
       help                      Show this help and exit.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -Dl --debug-lex           Print the token stream before running.
       -Dp --debug-parse         Print the abstract syntax tree before
                                 running.
       -Da --debug-analyze       Print the compiler's scope-resolution
                                 trace before running.
       -Dc --debug-compile       Print the disassembled bytecode before
                                 running.
       -Do --debug-optimize      Print the optimizer pass output before
                                 running.

More information on the %[1]s repository:
       https://github.com/mna/ink
`, binName)
)

// Cmd is the mainer.Cmd implementation backing the ink binary: a struct of
// flag-tagged fields plus one exported method per subcommand, dispatched by
// reflection in buildCmds.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	DebugLex      bool `flag:"Dl,debug-lex"`
	DebugParse    bool `flag:"Dp,debug-parse"`
	DebugAnalyze  bool `flag:"Da,debug-analyze"`
	DebugCompile  bool `flag:"Dc,debug-compile"`
	DebugOptimize bool `flag:"Do,debug-optimize"`

	args    []string
	flags   map[string]bool
	cmdFn   func(context.Context, mainer.Stdio, []string) error
	cmdArgs []string
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		c.cmdFn = c.Repl
		c.cmdArgs = nil
		return nil
	}

	if len(c.args) == 1 && c.args[0] == "help" {
		c.Help = true
		return nil
	}

	commands := buildCmds(c)
	cmdName := c.args[0]
	cmdFn, isCmd := commands[cmdName]
	if !isCmd {
		// no recognized command: treat the argument as the path to run,
		// same as invoking `run` explicitly.
		if len(c.args) != 1 {
			return fmt.Errorf("run: expected exactly one file argument")
		}
		c.cmdFn = c.Run
		c.cmdArgs = c.args
		return nil
	}
	c.cmdFn = cmdFn
	c.cmdArgs = c.args[1:]

	if (cmdName == "tokenize" || cmdName == "parse" || cmdName == "compile") && len(c.cmdArgs) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}
	if cmdName == "eval" && len(c.cmdArgs) != 1 {
		return fmt.Errorf("eval: expected exactly one source string argument")
	}
	if cmdName == "run" && len(c.cmdArgs) != 1 {
		return fmt.Errorf("run: expected exactly one file argument")
	}
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.cmdArgs); err != nil {
		// each command takes care of printing its own errors
		var overflow stackOverflowError
		if errors.As(err, &overflow) {
			return mainer.ExitCode(2)
		}
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds collects the subset of v's exported methods matching the
// standard subcommand signature: (context.Context, mainer.Stdio,
// []string) error.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
