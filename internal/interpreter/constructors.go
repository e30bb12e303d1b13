package interpreter

import (
	"github.com/funvibe/irfold/internal/ir"
)

// interpretConstructorCall binds value parameters, then allocates and
// initializes the instance. Intrinsic and array classes construct through
// the host; user classes evaluate their constructor body, whose first
// statement is expected to be a delegating call.
func (i *Interpreter) interpretConstructorCall(n *ir.ConstructorCall) ExecutionResult {
	args, res := i.evalArguments(n.Ctor, nil, n.Args)
	if !res.isNext() {
		return res
	}
	return i.guarded(func() ExecutionResult {
		return i.construct(n, args)
	})
}

func (i *Interpreter) construct(n *ir.ConstructorCall, args []Value) ExecutionResult {
	class := n.Class
	b := i.builtins

	switch {
	case class == b.Long:
		// The source's 64-bit integer is synthesized from its word pair on
		// hosts where it is not native: (high shl 32) + low.
		high := rawLong(args[0].(*Primitive))
		low := rawLong(args[1].(*Primitive))
		return i.finish(ir.KindLong, (high<<32)+low)

	case class == b.Char:
		code := rawLong(args[0].(*Primitive))
		return i.finish(ir.KindChar, rune(int32(code)))

	case class.Intrinsic:
		return i.intrinsicConstruct(class, n.Ctor, args)

	case class == b.Array:
		return i.constructArray(n, args)
	}

	return i.constructObject(n, args)
}

// constructArray allocates a mutable buffer of the given size. When an
// initializer lambda is supplied it runs once per index in order, writing
// each result.
func (i *Interpreter) constructArray(n *ir.ConstructorCall, args []Value) ExecutionResult {
	size := rawLong(args[0].(*Primitive))
	if size < 0 {
		return i.raise(i.builtins.IllegalArgument, "negative array size %d", size)
	}
	elem := ir.NullableOf(i.builtins.Any)
	buf := &arrayBuf{elem: elem, elems: make([]Value, size)}

	var initLambda *Lambda
	if len(args) > 1 {
		if l, ok := args[1].(*Lambda); ok {
			initLambda = l
		}
	}
	for idx := range buf.elems {
		if initLambda == nil {
			buf.elems[idx] = i.nullValue()
			continue
		}
		index := &Primitive{Kind: ir.KindInt, Raw: int32(idx), Typ: ir.TypeOf(i.builtins.Int)}
		if res := i.invokeLambda(initLambda, []Value{index}); !res.isNext() {
			return res
		}
		buf.elems[idx] = i.stack.returned()
	}
	i.stack.setReturn(&Primitive{Kind: ir.KindArray, Raw: buf, Typ: ir.ArrayOf(i.builtins.Array, elem)})
	return next
}

// constructObject allocates a UserObject for the constructor's class and
// evaluates the body. A primary constructor attaches the delegated instance
// as the super-instance; a secondary constructor copies the sibling
// instance's fields onto the new object.
func (i *Interpreter) constructObject(n *ir.ConstructorCall, args []Value) ExecutionResult {
	class := n.Class
	ctor := n.Ctor
	obj := newObject(class)

	// Builtin-declared classes carry no constructor body; their parameters
	// bind directly onto same-named fields.
	if ctor.Body == nil {
		for idx, param := range ctor.Params {
			if f := class.FindField(param.Symbol.Name); f != nil {
				obj.setField(f, args[idx])
			}
		}
		i.completeBuiltinFields(class, obj)
		i.stack.setReturn(obj)
		return next
	}

	if i.yield != nil {
		i.yield()
	}
	if i.stack.overflowed() {
		return i.raise(i.builtins.StackOverflow, "stack size exceeds %d frames", i.maxDepth)
	}

	i.receivers = append(i.receivers, obj)
	defer func() { i.receivers = i.receivers[:len(i.receivers)-1] }()

	i.stack.pushFrame(frameEntry(ctor))
	defer i.stack.popFrame()

	if ctor.Dispatch != nil {
		i.stack.declare(ctor.Dispatch, obj)
	}
	for idx, param := range ctor.Params {
		i.stack.declare(param.Symbol, args[idx])
	}

	stmts := ctor.Body.Stmts
	if len(stmts) > 0 {
		if delegate, ok := stmts[0].(*ir.ConstructorCall); ok && delegate.Delegating {
			if res := i.interpret(delegate); !res.isNext() {
				if res.label == labelReturn && res.target == ctor {
					i.stack.setReturn(obj)
					return next
				}
				return res
			}
			delegated, ok := i.stack.returned().(*Object)
			if !ok {
				internalf("delegating call of %s produced a non-object instance", ctor.FQName)
			}
			if ctor.Primary || delegate.Class != class {
				obj.Super = delegated
			} else {
				// Sibling delegation: the fully-formed instance's fields are
				// copied onto the new object.
				for f, v := range delegated.Fields {
					obj.Fields[f] = v
				}
				obj.Super = delegated.Super
			}
			stmts = stmts[1:]
		}
	}

	for _, stmt := range stmts {
		res := i.interpret(stmt)
		if res.label == labelReturn && res.target == ctor {
			i.stack.setReturn(obj)
			return next
		}
		if !res.isNext() {
			return res
		}
	}
	i.stack.setReturn(obj)
	return next
}

// completeBuiltinFields fills the slots builtin constructors leave implicit.
func (i *Interpreter) completeBuiltinFields(class *ir.Class, obj *Object) {
	switch class {
	case i.builtins.IntRange, i.builtins.LongRange, i.builtins.CharRange:
		if f := class.FindField("step"); f != nil {
			if _, ok := obj.getField(f); !ok {
				obj.setField(f, &Primitive{Kind: ir.KindInt, Raw: int32(1), Typ: ir.TypeOf(i.builtins.Int)})
			}
		}
	}
}
