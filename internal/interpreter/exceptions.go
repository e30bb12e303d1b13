package interpreter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/funvibe/irfold/internal/ir"
)

// internalError marks failures of the evaluator itself: unsupported IR
// shapes, missing intrinsic bindings, exceeded bounds. These are not
// catchable from evaluated code and surface as IR error expressions at the
// outermost call.
type internalError struct {
	msg string
}

func (e internalError) Error() string { return e.msg }

// internalf panics with an internal interpreter error. The message must
// carry enough context to debug the interpreter, not the evaluated program.
func internalf(format string, args ...interface{}) {
	panic(internalError{msg: fmt.Sprintf(format, args...)})
}

// frameEntry formats one stack-trace line for a function entry.
func frameEntry(fn *ir.Function) string {
	file := fn.File
	if file == "" {
		file = "Unknown.lang"
	}
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return fmt.Sprintf("at %sKt.%s(%s:%d)", base, fn.FQName, filepath.Base(file), fn.Line)
}

// raise constructs an Exception of the given class with the trace frozen at
// the current stack state, stores it in the return register, and emits the
// Exception signal.
func (i *Interpreter) raise(class *ir.Class, format string, args ...interface{}) ExecutionResult {
	exc := &Exception{
		Class:   class,
		Message: fmt.Sprintf(format, args...),
		Trace:   i.stack.frozenTrace(),
	}
	i.stack.setReturn(exc)
	return exception
}

// rethrow propagates an already-frozen exception value.
func (i *Interpreter) rethrow(exc *Exception) ExecutionResult {
	i.stack.setReturn(exc)
	return exception
}

// exceptionFromValue converts a thrown value into an Exception. Objects of
// Throwable subtype contribute their message and cause fields; the trace is
// frozen here, at the throw site.
func (i *Interpreter) exceptionFromValue(v Value) *Exception {
	switch t := v.(type) {
	case *Exception:
		return t
	case *Object:
		exc := &Exception{
			Class: t.Class,
			Trace: i.stack.frozenTrace(),
		}
		if f := t.Class.FindField("message"); f != nil {
			if mv, ok := t.getField(f); ok {
				if p, isPrim := mv.(*Primitive); isPrim && !p.IsNull() {
					exc.Message = p.Raw.(string)
				}
			}
		}
		if f := t.Class.FindField("cause"); f != nil {
			if cv, ok := t.getField(f); ok {
				if p, isPrim := cv.(*Primitive); !isPrim || !p.IsNull() {
					exc.Cause = i.exceptionFromValue(cv)
				}
			}
		}
		return exc
	default:
		return &Exception{
			Class:   i.builtins.Throwable,
			Message: v.Inspect(),
			Trace:   i.stack.frozenTrace(),
		}
	}
}

// projectHostPanic maps a host runtime failure onto the source exception
// taxonomy, falling back to Throwable. Internal errors are not host
// failures and re-panic.
func (i *Interpreter) projectHostPanic(rec interface{}) *Exception {
	if ie, ok := rec.(internalError); ok {
		panic(ie)
	}
	msg := fmt.Sprintf("%v", rec)
	class := i.builtins.Throwable
	switch {
	case strings.Contains(msg, "divide by zero"):
		class = i.builtins.Arithmetic
		msg = "/ by zero"
	case strings.Contains(msg, "index out of range"):
		class = i.builtins.IndexOutOfBounds
	case strings.Contains(msg, "stack overflow"):
		class = i.builtins.StackOverflow
	}
	return &Exception{
		Class:   class,
		Message: msg,
		Trace:   i.stack.frozenTrace(),
	}
}
