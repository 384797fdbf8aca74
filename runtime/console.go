// runtime/console.go
package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/tevino/abool/v2"

	"simonwaldherr.de/go/nanolox/interp"
	"simonwaldherr.de/go/nanolox/parser"
	"simonwaldherr.de/go/nanolox/scanner"
)

// MaxTraceLines caps how many frames of a runtime traceback are printed;
// the rest are summarized in one line.
const MaxTraceLines = 16

// Console is the host side of a script: where print output goes and how
// diagnostics are shown. The flags are safe to read from another goroutine
// while a script runs.
type Console struct {
	Out   io.Writer
	Err   io.Writer
	Color bool

	HadError        *abool.AtomicBool
	HadRuntimeError *abool.AtomicBool

	errColor   *color.Color
	warnColor  *color.Color
	traceColor *color.Color
}

func NewConsole(out, errw io.Writer, useColor bool) *Console {
	c := &Console{
		Out:             out,
		Err:             errw,
		Color:           useColor,
		HadError:        abool.New(),
		HadRuntimeError: abool.New(),
		errColor:        color.New(color.FgRed, color.Bold),
		warnColor:       color.New(color.FgYellow),
		traceColor:      color.New(color.FgHiBlack),
	}
	for _, col := range []*color.Color{c.errColor, c.warnColor, c.traceColor} {
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// NewStdConsole writes to the process streams.
func NewStdConsole(useColor bool) *Console {
	return NewConsole(os.Stdout, os.Stderr, useColor)
}

// Reset clears both error flags, e.g. between REPL entries.
func (c *Console) Reset() {
	c.HadError.UnSet()
	c.HadRuntimeError.UnSet()
}

// Report prints every diagnostic carried by err, one per line, and sets the
// matching flag. Joined errors and the per-phase error lists are unpacked.
func (c *Console) Report(err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			c.Report(e)
		}
		return
	}

	var (
		scanErrs    scanner.ErrorList
		parseErrs   parser.ErrorList
		resolveErrs interp.ResolveErrors
		runtimeErr  *interp.RuntimeError
	)
	switch {
	case errors.As(err, &scanErrs):
		for _, e := range scanErrs {
			c.staticError(e.Error())
		}
	case errors.As(err, &parseErrs):
		for _, e := range parseErrs {
			c.staticError(e.Error())
		}
	case errors.As(err, &resolveErrs):
		for _, e := range resolveErrs {
			c.staticError(e.Error())
		}
	case errors.As(err, &runtimeErr):
		c.HadRuntimeError.Set()
		c.errColor.Fprintln(c.Err, runtimeErr.Error())
		c.printTrace(runtimeErr.Trace)
	default:
		c.HadRuntimeError.Set()
		c.errColor.Fprintln(c.Err, "error:", err)
	}
}

func (c *Console) staticError(msg string) {
	c.HadError.Set()
	c.errColor.Fprintln(c.Err, msg)
}

func (c *Console) printTrace(trace []string) {
	if len(trace) <= MaxTraceLines {
		for _, line := range trace {
			c.traceColor.Fprintln(c.Err, line)
		}
		return
	}
	head := trace[:MaxTraceLines-1]
	for _, line := range head {
		c.traceColor.Fprintln(c.Err, line)
	}
	c.traceColor.Fprintf(c.Err, "... %d more frames\n", len(trace)-len(head)-1)
	c.traceColor.Fprintln(c.Err, trace[len(trace)-1])
}

// Warn prints a yellow host message.
func (c *Console) Warn(format string, args ...any) {
	c.warnColor.Fprintln(c.Err, fmt.Sprintf(format, args...))
}

// HostNativeNames lists the globals RegisterHostNatives adds on top of the
// interpreter builtins.
var HostNativeNames = []string{"warn"}

// RegisterHostNatives points vm's print statements at the console and
// installs the builtins plus the console natives. Nothing touching files or
// the network is exposed.
func RegisterHostNatives(vm *interp.Interpreter, c *Console) {
	vm.SetOutput(c.Out)
	interp.RegisterBuiltins(vm)
	vm.RegisterNative("warn", 1, func(args []any) (any, error) {
		c.Warn("[warn] %s", interp.ToString(args[0]))
		return nil, nil
	})
}
