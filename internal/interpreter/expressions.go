package interpreter

import (
	"github.com/funvibe/irfold/internal/ir"
)

// interpretConst materializes a literal. Unsigned-typed constants are
// synthesized as constructor calls on the corresponding unsigned class,
// whose single backing field is the signed representation.
func (i *Interpreter) interpretConst(n *ir.Const) ExecutionResult {
	if n.Typ != nil && i.builtins.UnsignedClass(n.Kind) == n.Typ.Class {
		uclass := n.Typ.Class
		signed := ir.TypeOf(i.builtins.Primitive(n.Kind))
		call := &ir.ConstructorCall{
			Class: uclass,
			Ctor:  uclass.Constructors[0],
			Args:  []ir.Expr{&ir.Const{Kind: n.Kind, Value: n.Value, Typ: signed}},
		}
		return i.interpret(call)
	}
	typ := n.Typ
	if typ == nil {
		typ = ir.TypeOf(i.builtins.Primitive(n.Kind))
	}
	i.stack.setReturn(&Primitive{Kind: n.Kind, Raw: n.Value, Typ: typ})
	return next
}

func (i *Interpreter) interpretStringConcat(n *ir.StringConcat) ExecutionResult {
	var acc string
	for _, arg := range n.Args {
		if res := i.interpret(arg); !res.isNext() {
			return res
		}
		s, res := i.valueToString(i.stack.returned())
		if !res.isNext() {
			return res
		}
		acc += s
	}
	i.stack.setReturn(&Primitive{Kind: ir.KindString, Raw: acc, Typ: ir.TypeOf(i.builtins.String)})
	return next
}

func (i *Interpreter) interpretGetValue(n *ir.GetValue) ExecutionResult {
	v, ok := i.stack.load(n.Symbol)
	if !ok {
		internalf("unbound symbol %q in frame", n.Symbol.Name)
	}
	i.stack.setReturn(v)
	return next
}

// interpretSetValue mutates the binding in place in the frame where it was
// found; an unbound symbol is declared in the current frame.
func (i *Interpreter) interpretSetValue(n *ir.SetValue) ExecutionResult {
	if res := i.interpret(n.Value); !res.isNext() {
		return res
	}
	v := i.stack.returned()
	if !i.stack.assign(n.Symbol, v) {
		i.stack.declare(n.Symbol, v)
	}
	i.stack.setReturn(i.unit)
	return next
}

func (i *Interpreter) interpretGetField(n *ir.GetField) ExecutionResult {
	obj, res := i.receiverObject(n.Receiver, n.Field)
	if !res.isNext() {
		return res
	}
	v, ok := obj.getField(n.Field)
	if !ok {
		internalf("field %s.%s is not initialized on the receiver", n.Field.Owner.Name, n.Field.Name)
	}
	i.stack.setReturn(v)
	return next
}

func (i *Interpreter) interpretSetField(n *ir.SetField) ExecutionResult {
	obj, res := i.receiverObject(n.Receiver, n.Field)
	if !res.isNext() {
		return res
	}
	if res := i.interpret(n.Value); !res.isNext() {
		return res
	}
	obj.setField(n.Field, i.stack.returned())
	i.stack.setReturn(i.unit)
	return next
}

// receiverObject evaluates a field receiver down to its UserObject, raising
// NullPointerException on null.
func (i *Interpreter) receiverObject(receiver ir.Expr, field *ir.Field) (*Object, ExecutionResult) {
	if res := i.interpret(receiver); !res.isNext() {
		return nil, res
	}
	switch t := i.stack.returned().(type) {
	case *Object:
		return t, next
	case *Primitive:
		if t.IsNull() {
			return nil, i.raise(i.builtins.NullPointer, "field %s access on null receiver", field.Name)
		}
	}
	internalf("field %s.%s accessed on a non-object receiver", field.Owner.Name, field.Name)
	return nil, next
}

func (i *Interpreter) interpretTypeOp(n *ir.TypeOp) ExecutionResult {
	if res := i.interpret(n.Arg); !res.isNext() {
		return res
	}
	v := i.stack.returned()

	switch n.Op {
	case ir.Cast:
		if !i.isInstance(v, n.Target) {
			return i.raise(i.builtins.ClassCast, "class %s cannot be cast to class %s",
				i.classNameOf(v), n.Target.Class.Name)
		}
	case ir.ImplicitCast:
		if !i.isInstance(v, n.Target) {
			return i.raise(i.builtins.ClassCast, "%s cannot be cast to %s",
				i.classNameOf(v), n.Target.Class.Name)
		}
	case ir.SafeCast:
		if !i.isInstance(v, n.Target) {
			i.stack.setReturn(i.nullValue())
		}
	case ir.InstanceOf:
		i.stack.setReturn(i.boolValue(i.isInstance(v, n.Target)))
	case ir.NotInstanceOf:
		i.stack.setReturn(i.boolValue(!i.isInstance(v, n.Target)))
	case ir.ImplicitCoercionToUnit:
		i.stack.setReturn(i.unit)
	default:
		internalf("unsupported type operator %d", n.Op)
	}
	return next
}

// isInstance tests a runtime value against a declared type. Null is an
// instance of nullable types only; Any accepts every value.
func (i *Interpreter) isInstance(v Value, target *ir.Type) bool {
	if p, ok := v.(*Primitive); ok && p.IsNull() {
		return target.Nullable
	}
	if target.Class == i.builtins.Any {
		return true
	}
	return i.classOf(v).IsSubclassOf(target.Class)
}

// classOf resolves the runtime class used for dispatch and instance tests.
func (i *Interpreter) classOf(v Value) *ir.Class {
	if c := v.IRClass(); c != nil {
		return c
	}
	if p, ok := v.(*Primitive); ok {
		return i.builtins.Primitive(p.Kind)
	}
	return i.builtins.Any
}

func (i *Interpreter) classNameOf(v Value) string {
	return i.classOf(v).Name
}

// interpretVararg collects the elements into a primitive array of the IR
// element type. Spread elements are flattened: wrapped host arrays and
// primitive typed arrays are unwrapped element-wise, and any other spread
// value stays scalar. A non-spread element is kept as one element, even
// when it is an array.
func (i *Interpreter) interpretVararg(n *ir.Vararg) ExecutionResult {
	buf := &arrayBuf{elem: n.Elem}
	for _, el := range n.Elements {
		spread, isSpread := el.(*ir.Spread)
		target := el
		if isSpread {
			target = spread.Value
		}
		if res := i.interpret(target); !res.isNext() {
			return res
		}
		v := i.stack.returned()
		if !isSpread {
			buf.elems = append(buf.elems, v)
			continue
		}
		switch t := v.(type) {
		case *Primitive:
			if inner, ok := t.Raw.(*arrayBuf); ok && t.Kind == ir.KindArray {
				buf.elems = append(buf.elems, inner.elems...)
				continue
			}
			buf.elems = append(buf.elems, v)
		case *Wrapped:
			if hosted, ok := t.Host.([]Value); ok {
				buf.elems = append(buf.elems, hosted...)
				continue
			}
			buf.elems = append(buf.elems, v)
		default:
			buf.elems = append(buf.elems, v)
		}
	}
	arrType := ir.ArrayOf(i.builtins.Array, n.Elem)
	i.stack.setReturn(&Primitive{Kind: ir.KindArray, Raw: buf, Typ: arrType})
	return next
}
