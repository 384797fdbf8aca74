package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
	"github.com/peterh/liner"

	"simonwaldherr.de/go/nanolox/config"
	"simonwaldherr.de/go/nanolox/interp"
	"simonwaldherr.de/go/nanolox/parser"
	"simonwaldherr.de/go/nanolox/runtime"
	"simonwaldherr.de/go/nanolox/scanner"
)

const (
	banner     = "nanolox REPL. Enter statements or expressions; :help lists commands, Ctrl-D exits."
	promptMain = "> "
	promptCont = ". "
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	logger := log.New(os.Stderr, "nanolox-repl: ", 0)

	opts, _, err := getopt.Getopts(args, "c:n")
	if err != nil {
		logger.Println(err)
		return 64
	}
	var cfgPath string
	noColor := false
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			cfgPath = opt.Value
		case 'n':
			noColor = true
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Println(err)
		return 64
	}
	if noColor {
		cfg.Color = config.ColorNever
	}

	fmt.Println(banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath(cfg.HistoryFile)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	s := newSession(os.Stdout, runtime.NewStdConsole(cfg.UseColor(!color.NoColor)), cfg)
	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if s.eval(code) {
			return 0
		}
	}
}

// historyPath places a relative history file in the home directory.
func historyPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

// lineReader is the part of *liner.State the input loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// readByParseProbe reads lines until the accumulated input no longer ends
// in the middle of a statement. ok is false at end of input.
func readByParseProbe(ln lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !needsMore(b.String()) {
			return b.String(), true
		}
	}
}

// needsMore reports whether src is an unfinished statement that more input
// could complete. A bare expression is complete as is.
func needsMore(src string) bool {
	toks, _ := scanner.Scan(src)
	if _, err := parser.ParseExpression(toks); err == nil {
		return false
	}
	_, err := parser.Parse(toks)
	return parser.IsIncomplete(err)
}

// session is one interpreter kept alive across entries.
type session struct {
	vm      *interp.Interpreter
	console *runtime.Console
	out     io.Writer
	showAST bool
	value   *color.Color
}

func newSession(out io.Writer, console *runtime.Console, cfg *config.Config) *session {
	vm := interp.NewInterpreter()
	vm.MaxDepth = cfg.MaxCallDepth
	runtime.RegisterHostNatives(vm, console)
	value := color.New(color.FgCyan)
	if !console.Color {
		value.DisableColor()
	}
	return &session{vm: vm, console: console, out: out, showAST: cfg.PrintAST, value: value}
}

// eval handles one entry and reports whether the session should end.
func (s *session) eval(code string) (exit bool) {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, ":") {
		return s.command(code)
	}

	s.console.Reset()
	stmts, parseErr := interp.ParseSource(code)
	if parseErr != nil {
		// Not a program; maybe a bare expression to echo.
		if v, err := s.vm.Eval(code); err == nil {
			s.value.Fprintln(s.out, interp.ToString(v))
			return false
		} else if !isSyntaxError(err) {
			s.console.Report(err)
			return false
		}
		s.console.Report(parseErr)
		return false
	}

	if s.showAST {
		_ = printTree(s.out, code)
	}
	if err := s.vm.Resolve(stmts); err != nil {
		s.console.Report(err)
		return false
	}
	s.console.Report(s.vm.Interpret(stmts))
	return false
}

func isSyntaxError(err error) bool {
	var scanErrs scanner.ErrorList
	var parseErrs parser.ErrorList
	return errors.As(err, &scanErrs) || errors.As(err, &parseErrs)
}

func printTree(w io.Writer, code string) error {
	tree, err := interp.FormatAST(code)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, tree)
	return err
}

func (s *session) command(cmd string) (exit bool) {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":ast":
		s.showAST = !s.showAST
		state := "off"
		if s.showAST {
			state = "on"
		}
		fmt.Fprintf(s.out, "syntax tree echo %s\n", state)
	case ":help":
		fmt.Fprintln(s.out, ":ast   toggle syntax tree echo\n:quit  leave the REPL")
	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for a list.")
	}
	return false
}
