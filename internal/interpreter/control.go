package interpreter

import (
	"github.com/funvibe/irfold/internal/ir"
)

// interpretBlock evaluates statements sequentially in a sub-frame. The
// run-then-check rule applies: the first non-Next signal propagates with the
// return register intact.
func (i *Interpreter) interpretBlock(n *ir.Block) ExecutionResult {
	i.stack.pushSubFrame()
	defer i.stack.popSubFrame()

	i.stack.setReturn(i.unit)
	for _, stmt := range n.Stmts {
		if res := i.interpret(stmt); !res.isNext() {
			return res
		}
	}
	return next
}

func (i *Interpreter) interpretVarDecl(n *ir.VarDecl) ExecutionResult {
	var v Value
	if n.Init != nil {
		if res := i.interpret(n.Init); !res.isNext() {
			return res
		}
		v = i.stack.returned()
	}
	i.stack.declare(n.Symbol, v)
	i.stack.setReturn(i.unit)
	return next
}

// interpretWhile re-evaluates the condition each iteration. Break and
// Continue signals carrying a different loop label unwind further out.
func (i *Interpreter) interpretWhile(n *ir.While) ExecutionResult {
	for {
		if res := i.interpret(n.Cond); !res.isNext() {
			return res
		}
		if !asBool(i.stack.returned()) {
			break
		}

		i.stack.pushSubFrame()
		res := i.interpret(n.Body)
		i.stack.popSubFrame()

		switch res.label {
		case labelNext:
		case labelBreak:
			if res.matchesLoop(n.Label) {
				i.stack.setReturn(i.unit)
				return next
			}
			return res
		case labelContinue:
			if res.matchesLoop(n.Label) {
				continue
			}
			return res
		default:
			return res
		}
	}
	i.stack.setReturn(i.unit)
	return next
}

// interpretWhen scans branches in source order. The first condition that
// yields true evaluates its result and emits BreakWhen, which exits the scan
// and never escapes it.
func (i *Interpreter) interpretWhen(n *ir.When) ExecutionResult {
	for _, branch := range n.Branches {
		if res := i.interpret(branch.Cond); !res.isNext() {
			return res
		}
		if !asBool(i.stack.returned()) {
			continue
		}
		res := i.interpret(branch.Result)
		if res.isNext() {
			res = breakWhen
		}
		if res.label == labelBreakWhen {
			return next
		}
		return res
	}
	i.stack.setReturn(i.unit)
	return next
}

func (i *Interpreter) interpretReturn(n *ir.Return) ExecutionResult {
	if n.Value == nil {
		i.stack.setReturn(i.unit)
		return returnOf(n.Target)
	}
	if res := i.interpret(n.Value); !res.isNext() {
		return res
	}
	return returnOf(n.Target)
}

func (i *Interpreter) interpretThrow(n *ir.Throw) ExecutionResult {
	if res := i.interpret(n.Value); !res.isNext() {
		return res
	}
	v := i.stack.returned()
	if p, ok := v.(*Primitive); ok && p.IsNull() {
		return i.raise(i.builtins.NullPointer, "throw of null value")
	}
	return i.rethrow(i.exceptionFromValue(v))
}

// interpretTry evaluates the try body, scans catch clauses on exception, and
// always runs the finally block. The finally result supersedes the pending
// try/catch result unless the finally completes with Next, in which case the
// prior result is preserved.
func (i *Interpreter) interpretTry(n *ir.Try) ExecutionResult {
	res := i.interpret(n.Body)

	if res.isException() {
		exc := i.stack.returned().(*Exception)
		for _, c := range n.Catches {
			if !exc.Class.IsSubclassOf(c.Param.Typ.Class) {
				continue
			}
			i.stack.pushSubFrame()
			i.stack.declare(c.Param, exc)
			res = i.interpret(c.Body)
			i.stack.popSubFrame()
			break
		}
	}

	if n.Finally != nil {
		pending := i.stack.returned()
		fres := i.interpret(n.Finally)
		if !fres.isNext() {
			return fres
		}
		i.stack.setReturn(pending)
	}
	return res
}

// interpretGetObject resolves an object declaration or companion singleton,
// interned per evaluation. Intrinsic companions come from the host bridge.
func (i *Interpreter) interpretGetObject(n *ir.GetObject) ExecutionResult {
	if v, ok := i.singles[n.Class]; ok {
		i.stack.setReturn(v)
		return next
	}
	if n.Class.Intrinsic {
		v := i.intrinsicCompanion(n.Class)
		i.singles[n.Class] = v
		i.stack.setReturn(v)
		return next
	}
	obj := newObject(n.Class)
	if n.Class.Super != nil && n.Class.Super != i.builtins.Any {
		obj.Super = newObject(n.Class.Super)
	}
	// Intern before running initializers so self-references resolve.
	i.singles[n.Class] = obj
	if res := i.runInitializers(n.Class, obj); !res.isNext() {
		delete(i.singles, n.Class)
		return res
	}
	i.stack.setReturn(obj)
	return next
}

// interpretInstanceInitializer runs the class's property initializers in
// declaration order, writing each computed value into the receiver's field
// map, and then its anonymous initializer blocks in declaration order. An
// init block declared between two properties still runs after all property
// initializers.
func (i *Interpreter) interpretInstanceInitializer(n *ir.InstanceInitializer) ExecutionResult {
	if len(i.receivers) == 0 {
		internalf("instanceInitializer of %s outside a constructor", n.Class.Name)
	}
	receiver := i.receivers[len(i.receivers)-1]
	if res := i.runInitializers(n.Class, receiver.superView(n.Class)); !res.isNext() {
		return res
	}
	i.stack.setReturn(i.unit)
	return next
}

func (i *Interpreter) runInitializers(class *ir.Class, receiver *Object) ExecutionResult {
	for _, f := range class.Fields {
		if f.Init == nil {
			continue
		}
		if res := i.interpret(f.Init); !res.isNext() {
			return res
		}
		receiver.setField(f, i.stack.returned())
	}
	for _, init := range class.Inits {
		if res := i.interpret(init); !res.isNext() {
			return res
		}
	}
	return next
}
