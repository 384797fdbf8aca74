// cmd/wasm/host.go
package main

import (
	"context"
	"strings"
	"time"

	"simonwaldherr.de/go/nanolox/interp"
	"simonwaldherr.de/go/nanolox/runtime"
)

// runTimeout bounds a single run so a runaway loop cannot freeze the page.
const runTimeout = 5 * time.Second

// runResult is what the page receives for one run.
type runResult struct {
	Output      string
	Diagnostics string
	OK          bool
}

func (r runResult) toMap() map[string]any {
	return map[string]any{"output": r.Output, "diagnostics": r.Diagnostics, "ok": r.OK}
}

// runSource executes src in a fresh interpreter and captures both streams.
func runSource(src string) runResult {
	var out, diag strings.Builder
	console := runtime.NewConsole(&out, &diag, false)

	vm := interp.NewInterpreter()
	runtime.RegisterHostNatives(vm, console)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	err := vm.RunContext(ctx, src)
	console.Report(err)
	return runResult{Output: out.String(), Diagnostics: diag.String(), OK: err == nil}
}
