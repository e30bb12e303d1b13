// Package interpreter evaluates fully-resolved IR expressions at compile
// time. Given an expression rooted in a module fragment it produces either a
// reduced IR constant carrying the computed value, or a synthesized IR error
// node carrying a formatted exception description.
//
// One Interpreter instance owns all evaluation state (frame stack, command
// counter, enum interns); instances must not be shared across goroutines.
// Multiple evaluations use multiple instances.
package interpreter

import (
	"github.com/funvibe/irfold/internal/config"
	"github.com/funvibe/irfold/internal/ir"
)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMaxCommands bounds the number of evaluation steps before the run is
// cut off with a TimeOut internal error.
func WithMaxCommands(n int) Option {
	return func(i *Interpreter) { i.maxCommands = n }
}

// WithMaxStackDepth bounds the call depth before a synthetic stack-overflow
// exception is raised.
func WithMaxStackDepth(n int) Option {
	return func(i *Interpreter) { i.maxDepth = n }
}

// WithYieldHook installs a hook invoked before each function entry, so a
// bounded-time host supervisor can observe progress.
func WithYieldHook(hook func()) Option {
	return func(i *Interpreter) { i.yield = hook }
}

type enumKey struct {
	class *ir.Class
	name  string
}

// Interpreter is a single-threaded, strictly sequential tree-walking
// evaluator.
type Interpreter struct {
	builtins *ir.Builtins

	maxCommands int
	maxDepth    int
	yield       func()

	stack      *callStack
	commands   int
	enums      map[enumKey]Value
	singles    map[*ir.Class]Value
	identities map[*Object]int32
	receivers  []*Object // constructor receivers, for instanceInitializer

	unit Value
}

// New constructs an evaluator over the given builtin class table. The table
// is read-only and may be shared between instances.
func New(builtins *ir.Builtins, opts ...Option) *Interpreter {
	i := &Interpreter{
		builtins:    builtins,
		maxCommands: config.DefaultMaxCommands,
		maxDepth:    config.DefaultMaxStackDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.unit = &Primitive{Kind: ir.KindUnit, Typ: ir.TypeOf(builtins.Unit)}
	return i
}

// Interpret evaluates expr and converts the final value back into an IR
// constant, or an IR error expression on exception or internal failure. All
// per-run state is reset on entry.
func (i *Interpreter) Interpret(expr ir.Expr) (result ir.Expr) {
	i.stack = newCallStack(i.maxDepth)
	i.commands = 0
	i.enums = make(map[enumKey]Value)
	i.singles = make(map[*ir.Class]Value)
	i.identities = make(map[*Object]int32)
	i.receivers = i.receivers[:0]

	defer func() {
		if rec := recover(); rec != nil {
			if ie, ok := rec.(internalError); ok {
				result = i.errorExpr(ie.msg)
				return
			}
			exc := i.projectHostPanic(rec)
			result = i.errorExpr(exc.Description())
		}
	}()

	i.stack.pushFrame("")
	defer i.stack.popFrame()

	res := i.interpret(expr)
	switch res.label {
	case labelNext, labelReturn:
		return i.toIRConst(i.stack.returned(), expr)
	case labelException:
		exc := i.stack.returned().(*Exception)
		return i.errorExpr(exc.Description())
	default:
		internalf("control-flow signal %s escaped the outermost frame", res.label)
		return nil
	}
}

// interpret is the recursive step over IR node variants. Every branch
// finishes by storing a value in the return register (when completing with
// Next) and returning the control-flow signal.
func (i *Interpreter) interpret(expr ir.Expr) ExecutionResult {
	i.commands++
	if i.commands > i.maxCommands {
		internalf("TimeOut: command limit %d exceeded", i.maxCommands)
	}

	switch n := expr.(type) {
	case *ir.Const:
		return i.interpretConst(n)
	case *ir.StringConcat:
		return i.interpretStringConcat(n)
	case *ir.GetValue:
		return i.interpretGetValue(n)
	case *ir.SetValue:
		return i.interpretSetValue(n)
	case *ir.GetField:
		return i.interpretGetField(n)
	case *ir.SetField:
		return i.interpretSetField(n)
	case *ir.Call:
		return i.interpretCall(n)
	case *ir.ConstructorCall:
		return i.interpretConstructorCall(n)
	case *ir.Block:
		return i.interpretBlock(n)
	case *ir.VarDecl:
		return i.interpretVarDecl(n)
	case *ir.While:
		return i.interpretWhile(n)
	case *ir.When:
		return i.interpretWhen(n)
	case *ir.Break:
		return breakOf(n.Label)
	case *ir.Continue:
		return continueOf(n.Label)
	case *ir.Return:
		return i.interpretReturn(n)
	case *ir.Throw:
		return i.interpretThrow(n)
	case *ir.Try:
		return i.interpretTry(n)
	case *ir.TypeOp:
		return i.interpretTypeOp(n)
	case *ir.Vararg:
		return i.interpretVararg(n)
	case *ir.FunctionExpr:
		i.stack.setReturn(&Lambda{Fn: n.Fn, Iface: n.Iface})
		return next
	case *ir.EnumValue:
		return i.interpretEnumValue(n)
	case *ir.GetObject:
		return i.interpretGetObject(n)
	case *ir.InstanceInitializer:
		return i.interpretInstanceInitializer(n)
	default:
		internalf("unsupported IR node %T", expr)
		return next
	}
}

// errorExpr synthesizes the IR error node for a surfaced failure. The
// message begins with a newline, matching the driver's framing contract.
func (i *Interpreter) errorExpr(description string) *ir.ErrorExpr {
	return &ir.ErrorExpr{Description: "\n" + description}
}

// toIRConst materializes the final value as an IR constant of the evaluated
// expression's declared type.
func (i *Interpreter) toIRConst(v Value, origin ir.Expr) ir.Expr {
	switch t := v.(type) {
	case *Primitive:
		if t.Kind == ir.KindArray {
			internalf("array value cannot materialize as an IR constant")
		}
		typ := t.Typ
		if typ == nil {
			typ = ir.TypeOf(i.builtins.Primitive(t.Kind))
		}
		return &ir.Const{Kind: t.Kind, Value: t.Raw, Typ: typ}
	case nil:
		internalf("return register is empty after evaluation")
	default:
		internalf("value of class %s cannot materialize as an IR constant", t.IRClass().Name)
	}
	return nil
}

func (i *Interpreter) boolValue(b bool) Value {
	return &Primitive{Kind: ir.KindBoolean, Raw: b, Typ: ir.TypeOf(i.builtins.Boolean)}
}

func (i *Interpreter) nullValue() Value {
	return &Primitive{Kind: ir.KindNull, Typ: ir.NullableOf(i.builtins.Nothing)}
}

// asBool coerces the return register to a host boolean; any other shape is
// an internal error because the IR is typed.
func asBool(v Value) bool {
	p, ok := v.(*Primitive)
	if !ok || p.Kind != ir.KindBoolean {
		internalf("condition evaluated to non-boolean value %s", v.Inspect())
	}
	return p.Raw.(bool)
}
