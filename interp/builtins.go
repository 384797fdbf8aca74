// interp/builtins.go
package interp

import (
	"time"
)

// BuiltinNames lists the globals every interpreter starts with.
var BuiltinNames = []string{"clock"}

// RegisterBuiltins installs the standard natives into vm's global scope.
func RegisterBuiltins(vm *Interpreter) {
	vm.RegisterNative("clock", 0, func(args []any) (any, error) {
		return float64(time.Now().UnixNano()) / float64(time.Second), nil
	})
}

// NewDefault returns an interpreter with the builtins installed.
func NewDefault() *Interpreter {
	vm := NewInterpreter()
	RegisterBuiltins(vm)
	return vm
}
