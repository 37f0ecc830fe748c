package matcher

import "fmt"

// Error is the Kind/Message tagged error shape used across the module.
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("matcher error (%v): %v", e.Kind, e.Message)
}

func errUndeclaredVariable(name string) error {
	return Error{Kind: "UndeclaredVariable", Message: fmt.Sprintf("WHERE references variable %q not declared in MATCH", name)}
}
