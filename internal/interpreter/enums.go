package interpreter

import (
	"github.com/funvibe/irfold/internal/ir"
)

// interpretEnumValue resolves an enum entry reference. Instances are
// interned by (enum class, entry name): the second and later references
// return the same instance.
func (i *Interpreter) interpretEnumValue(n *ir.EnumValue) ExecutionResult {
	key := enumKey{class: n.Class, name: n.Entry.Name}
	if v, ok := i.enums[key]; ok {
		i.stack.setReturn(v)
		return next
	}

	if n.Class.Intrinsic {
		v := i.intrinsicEnumValueOf(n.Class, n.Entry.Name)
		i.enums[key] = v
		i.stack.setReturn(v)
		return next
	}

	if n.Entry.Init == nil {
		internalf("enum entry %s.%s has no initializer", n.Class.Name, n.Entry.Name)
	}

	// The enum super-constructor call is rewritten to carry the entry name
	// and its declaration-order ordinal; the rewrite is undone afterwards so
	// the IR is left unmodified.
	super := findEnumSuperCall(n.Entry.Init)
	if super == nil {
		internalf("enum entry %s.%s has no enum super-constructor call", n.Class.Name, n.Entry.Name)
	}
	saved := super.Args
	ordinal := n.Class.EntryOrdinal(n.Entry)
	super.Args = []ir.Expr{
		&ir.Const{Kind: ir.KindString, Value: n.Entry.Name, Typ: ir.TypeOf(i.builtins.String)},
		&ir.Const{Kind: ir.KindInt, Value: int32(ordinal), Typ: ir.TypeOf(i.builtins.Int)},
	}
	res := i.interpret(n.Entry.Init)
	super.Args = saved

	if !res.isNext() {
		return res
	}
	v := i.stack.returned()
	i.enums[key] = v
	return next
}

// findEnumSuperCall locates the delegating enum super-constructor call
// reachable from an entry initializer: directly, or through the body of the
// constructor the initializer targets.
func findEnumSuperCall(init *ir.ConstructorCall) *ir.ConstructorCall {
	if init.EnumSuper {
		return init
	}
	if init.Ctor == nil || init.Ctor.Body == nil {
		return nil
	}
	for _, stmt := range init.Ctor.Body.Stmts {
		if call, ok := stmt.(*ir.ConstructorCall); ok {
			if call.EnumSuper {
				return call
			}
			if call.Delegating {
				if found := findEnumSuperCall(call); found != nil {
					return found
				}
			}
		}
	}
	return nil
}

// enumStatic implements the static surface of enum classes: valueOf and
// values.
func (i *Interpreter) enumStatic(fn *ir.Function, args []Value) ExecutionResult {
	enum := fn.Parent
	switch fn.Name {
	case "valueOf":
		name := args[0].(*Primitive).Raw.(string)
		entry := enum.FindEntry(name)
		if entry == nil {
			return i.raise(i.builtins.IllegalArgument, "No enum constant %s.%s", enum.FQName, name)
		}
		return i.interpret(&ir.EnumValue{Class: enum, Entry: entry})
	case "values":
		buf := &arrayBuf{elem: ir.TypeOf(enum)}
		for _, entry := range enum.Entries {
			if res := i.interpret(&ir.EnumValue{Class: enum, Entry: entry}); !res.isNext() {
				return res
			}
			buf.elems = append(buf.elems, i.stack.returned())
		}
		i.stack.setReturn(&Primitive{
			Kind: ir.KindArray,
			Raw:  buf,
			Typ:  ir.ArrayOf(i.builtins.Array, ir.TypeOf(enum)),
		})
		return next
	default:
		internalf("unsupported enum static %s", fn.FQName)
		return next
	}
}
