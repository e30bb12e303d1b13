package interpreter

import (
	"github.com/funvibe/irfold/internal/ir"
)

// interpretCall evaluates the dispatch receiver, the extension receiver, and
// each value argument in IR order, then selects the target through the
// dispatch cascade: host-wrapped method, intrinsic static, abstract-method
// resolution, fake-override walk, built-in signature table, IR body.
func (i *Interpreter) interpretCall(n *ir.Call) ExecutionResult {
	fn := n.Fn

	var dispatch Value
	if n.Dispatch != nil {
		if res := i.interpret(n.Dispatch); !res.isNext() {
			return res
		}
		dispatch = i.stack.returned()
		if p, ok := dispatch.(*Primitive); ok && p.IsNull() {
			if fn.Dispatch == nil || !fn.Dispatch.Typ.Nullable {
				return i.raise(i.builtins.NullPointer, "method %s invoked on null receiver", fn.Name)
			}
		}
	}

	var extension Value
	if n.Extension != nil {
		if res := i.interpret(n.Extension); !res.isNext() {
			return res
		}
		extension = i.stack.returned()
	}

	args, res := i.evalArguments(fn, dispatch, n.Args)
	if !res.isNext() {
		return res
	}

	return i.guarded(func() ExecutionResult {
		return i.dispatchCall(n, fn, dispatch, extension, args)
	})
}

// guarded intercepts host runtime failures at this recursion level and
// re-projects them into the source exception taxonomy. Interpreter internal
// errors pass through.
func (i *Interpreter) guarded(step func() ExecutionResult) (res ExecutionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = i.rethrow(i.projectHostPanic(rec))
		}
	}()
	return step()
}

// evalArguments binds value arguments left-to-right. A missing argument
// evaluates the parameter's default expression in a sub-frame that already
// contains the previously-bound parameters and the receiver.
func (i *Interpreter) evalArguments(fn *ir.Function, dispatch Value, exprs []ir.Expr) ([]Value, ExecutionResult) {
	if len(exprs) > len(fn.Params) {
		internalf("call to %s carries %d arguments for %d parameters", fn.FQName, len(exprs), len(fn.Params))
	}
	args := make([]Value, len(fn.Params))

	i.stack.pushSubFrame()
	defer i.stack.popSubFrame()
	if fn.Dispatch != nil && dispatch != nil {
		i.stack.declare(fn.Dispatch, dispatch)
	}

	for idx, param := range fn.Params {
		var expr ir.Expr
		if idx < len(exprs) {
			expr = exprs[idx]
		}
		if expr == nil {
			expr = param.Default
		}
		if expr == nil {
			internalf("call to %s is missing argument %q and no default exists", fn.FQName, param.Symbol.Name)
		}
		if res := i.interpret(expr); !res.isNext() {
			return nil, res
		}
		args[idx] = i.stack.returned()
		i.stack.declare(param.Symbol, args[idx])
	}
	return args, next
}

func (i *Interpreter) dispatchCall(n *ir.Call, fn *ir.Function, dispatch, extension Value, args []Value) ExecutionResult {
	// Host-wrapped dispatch: the receiver's behavior lives in the host
	// runtime. Interface defaults still evaluate their IR body.
	if w, ok := dispatch.(*Wrapped); ok && !isInterfaceDefault(fn) {
		return i.intrinsicMethod(w, fn, args)
	}

	// Intrinsic statics, selected by fully-qualified name.
	if fn.Parent != nil && fn.Parent.Intrinsic && fn.Body == nil {
		return i.intrinsicStatic(fn, args)
	}

	// Lambda invocation through the functional interface.
	if l, ok := dispatch.(*Lambda); ok && fn.Body == nil {
		return i.invokeLambda(l, args)
	}

	// Virtual dispatch: consult the runtime class of the receiver. Super
	// calls re-enter the named super body with the matching instance view.
	if obj, ok := dispatch.(*Object); ok && !n.Super {
		if impl := obj.Class.Override(fn); impl != nil && impl.Body != nil {
			return i.invoke(impl, obj, extension, args, false)
		}
	}
	if fn.Abstract {
		obj, ok := dispatch.(*Object)
		if !ok {
			internalf("abstract method %s called on non-object receiver", fn.FQName)
		}
		impl := obj.Class.Override(fn)
		if impl == nil || impl.Body == nil {
			return i.callBuiltin(fn, dispatch, extension, args)
		}
		return i.invoke(impl, obj, extension, args, false)
	}

	// Fake override: walk to the nearest real implementation; none in user
	// IR falls through to built-ins against the ultimate base signature.
	if fn.Body == nil && len(fn.Overridden) > 0 {
		resolved := fn.ResolveFakeOverride()
		if resolved.Body != nil {
			return i.invoke(resolved, dispatch, extension, args, n.Super)
		}
		return i.callBuiltin(resolved, dispatch, extension, args)
	}

	// Primitive and no-body members resolve through the signature tables.
	if fn.Body == nil {
		return i.callBuiltin(fn, dispatch, extension, args)
	}

	return i.invoke(fn, dispatch, extension, args, n.Super)
}

func isInterfaceDefault(fn *ir.Function) bool {
	return fn.Parent != nil && fn.Parent.Kind == ir.InterfaceDecl && fn.Body != nil
}

// invoke evaluates fn's IR body in a fresh frame. The receiver slot is bound
// using the callee's own receiver symbol, so super calls observe the correct
// instance view.
func (i *Interpreter) invoke(fn *ir.Function, dispatch, extension Value, args []Value, super bool) ExecutionResult {
	// The single suspension point: before any work for this call begins.
	if i.yield != nil {
		i.yield()
	}
	if i.stack.overflowed() {
		return i.raise(i.builtins.StackOverflow, "stack size exceeds %d frames", i.maxDepth)
	}

	i.stack.pushFrame(frameEntry(fn))
	defer i.stack.popFrame()

	if fn.Dispatch != nil && dispatch != nil {
		bound := dispatch
		if obj, ok := dispatch.(*Object); ok && super && fn.Parent != nil {
			bound = obj.superView(fn.Parent)
		}
		i.stack.declare(fn.Dispatch, bound)
	}
	if fn.Extension != nil && extension != nil {
		i.stack.declare(fn.Extension, extension)
	}
	for idx, param := range fn.Params {
		i.stack.declare(param.Symbol, args[idx])
	}

	if fn.Body == nil {
		internalf("function %s has no body to evaluate", fn.FQName)
	}
	res := i.interpret(fn.Body)
	if res.label == labelReturn && res.target == fn {
		return next
	}
	return res
}

// invokeLambda runs a lambda body. The new frame is seeded with every
// binding visible at the call site: closure values resolve through the
// enclosing frame stack at call time.
func (i *Interpreter) invokeLambda(l *Lambda, args []Value) ExecutionResult {
	if i.yield != nil {
		i.yield()
	}
	if i.stack.overflowed() {
		return i.raise(i.builtins.StackOverflow, "stack size exceeds %d frames", i.maxDepth)
	}

	captured := i.stack.visibleBindings()

	i.stack.pushFrame(frameEntry(l.Fn))
	defer i.stack.popFrame()

	for _, b := range captured {
		i.stack.declare(b.symbol, b.value)
	}
	if len(args) != len(l.Fn.Params) {
		internalf("lambda of arity %d invoked with %d arguments", len(l.Fn.Params), len(args))
	}
	for idx, param := range l.Fn.Params {
		i.stack.declare(param.Symbol, args[idx])
	}

	res := i.interpret(l.Fn.Body)
	if res.label == labelReturn && res.target == l.Fn {
		return next
	}
	return res
}
