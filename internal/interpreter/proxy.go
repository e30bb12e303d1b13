package interpreter

import (
	"fmt"
	"strings"

	"github.com/funvibe/irfold/internal/ir"
)

// The proxy layer supplies equals/hashCode/toString semantics for values
// that carry no user override: data-class style members synthesized from
// fields, identity-based defaults for everything else. User overrides
// always win and dispatch through the normal call path.

// valueToString stringifies a value the way evaluated code observes it:
// through the overridden-method resolver for user objects, through host
// formatting for primitives and wrapped values.
func (i *Interpreter) valueToString(v Value) (string, ExecutionResult) {
	switch t := v.(type) {
	case *Primitive:
		return t.Inspect(), next
	case *Wrapped:
		return t.Inspect(), next
	case *Lambda:
		return t.Inspect(), next
	case *Exception:
		return t.Inspect(), next
	case *Object:
		if impl := i.userOverride(t, "toString"); impl != nil {
			if res := i.invoke(impl, t, nil, nil, false); !res.isNext() {
				return "", res
			}
			out, ok := i.stack.returned().(*Primitive)
			if !ok || out.Kind != ir.KindString {
				internalf("toString override of %s produced a non-string value", t.Class.Name)
			}
			return out.Raw.(string), next
		}
		return i.defaultToString(t)
	}
	internalf("value %T has no string form", v)
	return "", next
}

func (i *Interpreter) defaultToString(obj *Object) (string, ExecutionResult) {
	// Enum instances render as their entry name.
	if obj.Class.IsSubclassOf(i.builtins.Enum) {
		if f := obj.Class.FindField("name"); f != nil {
			if v, ok := obj.getField(f); ok {
				return v.(*Primitive).Raw.(string), next
			}
		}
	}
	if i.isUnsigned(obj.Class) {
		if res := i.callBuiltin(obj.Class.FindFunction("toString"), obj, nil, nil); !res.isNext() {
			return "", res
		}
		return i.stack.returned().(*Primitive).Raw.(string), next
	}
	if obj.Class.Data {
		var sb strings.Builder
		sb.WriteString(obj.Class.Name)
		sb.WriteString("(")
		for idx, f := range obj.Class.Fields {
			if idx > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString("=")
			fv, ok := obj.getField(f)
			if !ok {
				internalf("field %s.%s is not initialized on the receiver", obj.Class.Name, f.Name)
			}
			s, res := i.valueToString(fv)
			if !res.isNext() {
				return "", res
			}
			sb.WriteString(s)
		}
		sb.WriteString(")")
		return sb.String(), next
	}
	return fmt.Sprintf("%s@%x", obj.Class.Name, i.identity(obj)), next
}

func (i *Interpreter) valueEquals(a, b Value) (bool, ExecutionResult) {
	switch t := a.(type) {
	case *Primitive:
		p, ok := b.(*Primitive)
		if !ok {
			return false, next
		}
		return t.Kind == p.Kind && t.Raw == p.Raw, next
	case *Object:
		if impl := i.userOverride(t, "equals"); impl != nil {
			if res := i.invoke(impl, t, nil, []Value{b}, false); !res.isNext() {
				return false, res
			}
			return asBool(i.stack.returned()), next
		}
		other, ok := b.(*Object)
		if !ok {
			return false, next
		}
		if t.Class.Data && other.Class == t.Class {
			for _, f := range t.Class.Fields {
				av, aok := t.getField(f)
				bv, bok := other.getField(f)
				if !aok || !bok {
					return false, next
				}
				eq, res := i.valueEquals(av, bv)
				if !res.isNext() || !eq {
					return eq, res
				}
			}
			return true, next
		}
		return t == other, next
	case *Wrapped:
		other, ok := b.(*Wrapped)
		return ok && t.Host == other.Host, next
	default:
		return a == b, next
	}
}

func (i *Interpreter) valueHashCode(v Value) (int32, ExecutionResult) {
	switch t := v.(type) {
	case *Primitive:
		return primitiveHash(t), next
	case *Object:
		if impl := i.userOverride(t, "hashCode"); impl != nil {
			if res := i.invoke(impl, t, nil, nil, false); !res.isNext() {
				return 0, res
			}
			return i.stack.returned().(*Primitive).Raw.(int32), next
		}
		if t.Class.Data {
			var h int32 = 17
			for _, f := range t.Class.Fields {
				fv, ok := t.getField(f)
				if !ok {
					internalf("field %s.%s is not initialized on the receiver", t.Class.Name, f.Name)
				}
				fh, res := i.valueHashCode(fv)
				if !res.isNext() {
					return 0, res
				}
				h = 31*h + fh
			}
			return h, next
		}
		return i.identity(t), next
	default:
		s, res := i.valueToString(v)
		if !res.isNext() {
			return 0, res
		}
		return stringHash(s), next
	}
}

// userOverride resolves a user-declared override of an Any member for the
// object's runtime class, or nil when only the synthesized default applies.
func (i *Interpreter) userOverride(obj *Object, name string) *ir.Function {
	base := i.builtins.Any.FindFunction(name)
	impl := obj.Class.Override(base)
	if impl != nil && impl.Body != nil {
		return impl
	}
	return nil
}

func (i *Interpreter) isUnsigned(class *ir.Class) bool {
	b := i.builtins
	return class == b.UByte || class == b.UShort || class == b.UInt || class == b.ULong
}

// identity assigns a stable per-evaluation identity hash to an object.
func (i *Interpreter) identity(obj *Object) int32 {
	if i.identities == nil {
		i.identities = make(map[*Object]int32)
	}
	if h, ok := i.identities[obj]; ok {
		return h
	}
	h := int32(len(i.identities)*1640531527 + 1)
	i.identities[obj] = h
	return h
}

func primitiveHash(p *Primitive) int32 {
	switch p.Kind {
	case ir.KindNull:
		return 0
	case ir.KindBoolean:
		if p.Raw.(bool) {
			return 1231
		}
		return 1237
	case ir.KindString:
		return stringHash(p.Raw.(string))
	case ir.KindFloat, ir.KindDouble:
		return stringHash(p.Inspect())
	default:
		v := rawLong(p)
		return int32(v) ^ int32(v>>32)
	}
}

// stringHash matches the source language's polynomial string hash.
func stringHash(s string) int32 {
	var h int32
	for _, r := range s {
		h = 31*h + int32(r)
	}
	return h
}
