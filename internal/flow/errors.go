package flow

import (
	"fmt"
	"reflect"
)

// StageError wraps a fatal failure of a workflow node.
type StageError struct {
	Node Node
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Node, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking stage.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// errorTypeName names the underlying error type reported in error payloads.
func errorTypeName(err error) string {
	for {
		se, ok := err.(*StageError)
		if !ok || se.Err == nil {
			break
		}
		err = se.Err
	}
	if _, ok := err.(*PanicError); ok {
		return "panic"
	}
	t := reflect.TypeOf(err)
	if t == nil {
		return "unknown"
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}
