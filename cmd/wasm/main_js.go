//go:build js && wasm

// cmd/wasm/main_js.go
package main

import (
	"syscall/js"
)

// jsNanoloxRun runs Lox source coming from JS and returns
// {output, diagnostics, ok}.
func jsNanoloxRun(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(runResult{Diagnostics: "nanoloxRun: missing source\n"}.toMap())
	}
	return js.ValueOf(runSource(args[0].String()).toMap())
}

func main() {
	js.Global().Set("nanoloxRun", js.FuncOf(jsNanoloxRun))

	// Block forever for the browser event loop.
	select {}
}
