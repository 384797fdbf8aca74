package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"simonwaldherr.de/go/nanolox/config"
	"simonwaldherr.de/go/nanolox/interp"
	"simonwaldherr.de/go/nanolox/runtime"
)

// Exit codes follow sysexits.h.
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65
	exitNoInput  = 66
	exitSoftware = 70
)

// ErrTimeout is returned by RunSafe when the script outlives its budget.
var ErrTimeout = errors.New("execution timed out")

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	timeout    *time.Duration
	maxDepth   int
	printAST   bool
	vet        bool
	noColor    bool
	script     string
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "usage: nanolox-cli [options] <script.lox>\n"+
		"\n"+
		"options:\n"+
		"  -c FILE   load settings from a YAML config file\n"+
		"  -t SECS   abort the script after SECS seconds (0 disables)\n"+
		"  -d DEPTH  maximum call depth\n"+
		"  -a        print the syntax tree instead of running\n"+
		"  -v        run static checks instead of running\n"+
		"  -n        disable colored diagnostics\n"+
		"  -h        show this help\n")
}

// parseArgs reads the command line. A nil options with nil error means help
// was requested.
func parseArgs(args []string) (*options, error) {
	opts, optind, err := getopt.Getopts(args, "c:t:d:avnh")
	if err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			o.configPath = opt.Value
		case 't':
			secs, err := strconv.ParseFloat(opt.Value, 64)
			if err != nil || secs < 0 {
				return nil, fmt.Errorf("invalid -t parameter %q", opt.Value)
			}
			d := time.Duration(secs * float64(time.Second))
			o.timeout = &d
		case 'd':
			depth, err := strconv.Atoi(opt.Value)
			if err != nil || depth <= 0 {
				return nil, fmt.Errorf("invalid -d parameter %q", opt.Value)
			}
			o.maxDepth = depth
		case 'a':
			o.printAST = true
		case 'v':
			o.vet = true
		case 'n':
			o.noColor = true
		default: // 'h'
			return nil, nil
		}
	}
	rest := args[optind:]
	if len(rest) != 1 {
		return nil, errors.New("expected exactly one script")
	}
	o.script = rest[0]
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "nanolox: ", 0)

	o, err := parseArgs(args)
	if err != nil {
		logger.Println(err)
		usage(stderr)
		return exitUsage
	}
	if o == nil {
		usage(stdout)
		return exitOK
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		logger.Println(err)
		return exitUsage
	}
	if o.timeout != nil {
		cfg.Timeout = *o.timeout
	}
	if o.maxDepth > 0 {
		cfg.MaxCallDepth = o.maxDepth
	}
	if o.printAST {
		cfg.PrintAST = true
	}
	if o.noColor {
		cfg.Color = config.ColorNever
	}

	src, err := os.ReadFile(o.script)
	if err != nil {
		logger.Println("read error:", err)
		return exitNoInput
	}

	console := runtime.NewConsole(stdout, stderr, cfg.UseColor(!color.NoColor))

	switch {
	case o.vet:
		return vet(o.script, string(src), stdout, console)
	case cfg.PrintAST:
		tree, err := interp.FormatAST(string(src))
		if err != nil {
			console.Report(err)
			return exitDataErr
		}
		fmt.Fprint(stdout, tree)
		return exitOK
	}

	err = RunSafe(string(src), cfg, console)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrTimeout):
		console.Report(err)
		return exitSoftware
	}
	console.Report(err)
	if console.HadError.IsSet() {
		return exitDataErr
	}
	return exitSoftware
}

func vet(name, src string, stdout io.Writer, console *runtime.Console) int {
	issues, err := interp.VetSource(src, runtime.HostNativeNames...)
	if err != nil {
		console.Report(err)
		return exitDataErr
	}
	for _, issue := range issues {
		fmt.Fprintf(stdout, "%s: %s\n", name, issue)
	}
	return exitOK
}

// RunSafe executes untrusted Lox source with a context-based timeout. It
// recovers from panics so the host is never crashed by a script. A zero
// timeout waits indefinitely. RunSafe only returns once the interpreter
// goroutine has finished, so nothing it prints can interleave with the
// caller's report.
func RunSafe(source string, cfg *config.Config, console *runtime.Console) error {
	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic recovered: %v", r)
			}
		}()
		done <- runInterpreted(ctx, source, cfg, console)
	}()

	// On timeout the interpreter stops at its next loop or call check.
	err := <-done
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return fmt.Errorf("%w after %s", ErrTimeout, cfg.Timeout)
	}
	return err
}

// runInterpreted creates a sandboxed interpreter with only the console
// natives installed and executes the source.
func runInterpreted(ctx context.Context, source string, cfg *config.Config, console *runtime.Console) error {
	vm := interp.NewInterpreter()
	vm.MaxDepth = cfg.MaxCallDepth
	runtime.RegisterHostNatives(vm, console)
	return vm.RunContext(ctx, source)
}
