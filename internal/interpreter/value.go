package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/irfold/internal/ir"
)

// Value is a runtime value of the evaluated program. Exactly five variants
// exist: Primitive, Wrapped, Object, Lambda, and Exception.
type Value interface {
	// IRClass is the IR class the value dispatches through.
	IRClass() *ir.Class
	// Inspect renders the value for diagnostics; user-visible stringification
	// goes through the toString dispatch instead.
	Inspect() string
}

// Primitive is a host-represented primitive. Raw holds bool, rune, int8,
// int16, int32, int64, float32, float64, string, nil, or an *arrayBuf for
// typed arrays.
type Primitive struct {
	Kind ir.PrimKind
	Raw  interface{}
	Typ  *ir.Type
}

func (p *Primitive) IRClass() *ir.Class {
	if p.Typ != nil {
		return p.Typ.Class
	}
	return nil
}

func (p *Primitive) Inspect() string {
	return stringifyPrimitive(p.Kind, p.Raw)
}

// IsNull reports whether the primitive is the null value.
func (p *Primitive) IsNull() bool { return p.Kind == ir.KindNull }

// arrayBuf is the mutable buffer behind a typed array value.
type arrayBuf struct {
	elem  *ir.Type
	elems []Value
}

// Wrapped is a value whose behavior is supplied by the host runtime: a regex
// object, a host-constructed intrinsic, or a companion singleton.
type Wrapped struct {
	Host  interface{}
	Class *ir.Class
}

func (w *Wrapped) IRClass() *ir.Class { return w.Class }

func (w *Wrapped) Inspect() string {
	return fmt.Sprintf("%v", w.Host)
}

// Object is an instance of a user-defined class: a field map keyed by
// backing-field symbol plus an optional super-instance link. The super chain
// is acyclic; each link is one level of the IR class hierarchy.
type Object struct {
	Class  *ir.Class
	Fields map[*ir.Field]Value
	Super  *Object
}

func newObject(class *ir.Class) *Object {
	return &Object{Class: class, Fields: make(map[*ir.Field]Value)}
}

func (o *Object) IRClass() *ir.Class { return o.Class }

func (o *Object) Inspect() string {
	return o.Class.Name
}

// getField reads a field slot, searching the super chain.
func (o *Object) getField(field *ir.Field) (Value, bool) {
	for cur := o; cur != nil; cur = cur.Super {
		if v, ok := cur.Fields[field]; ok {
			return v, true
		}
	}
	return nil, false
}

// setField writes the field slot where it lives, or creates it on the
// instance owning the field's class level.
func (o *Object) setField(field *ir.Field, v Value) {
	for cur := o; cur != nil; cur = cur.Super {
		if _, ok := cur.Fields[field]; ok {
			cur.Fields[field] = v
			return
		}
	}
	for cur := o; cur != nil; cur = cur.Super {
		if cur.Class == field.Owner {
			cur.Fields[field] = v
			return
		}
	}
	o.Fields[field] = v
}

// superView returns the instance representing the given super class level,
// or o when the class matches o's own level.
func (o *Object) superView(class *ir.Class) *Object {
	for cur := o; cur != nil; cur = cur.Super {
		if cur.Class == class {
			return cur
		}
	}
	return o
}

// Lambda is a first-class function value. Captured values resolve through
// the enclosing frame stack at call time.
type Lambda struct {
	Fn    *ir.Function
	Iface *ir.Class
}

func (l *Lambda) IRClass() *ir.Class { return l.Iface }

func (l *Lambda) Inspect() string {
	return "Function" + strconv.Itoa(len(l.Fn.Params))
}

// Exception is a thrown value: kind class, message, optional cause, and the
// stack trace frozen at the throw site.
type Exception struct {
	Class   *ir.Class
	Message string
	Cause   *Exception
	Trace   []string
}

func (e *Exception) IRClass() *ir.Class { return e.Class }

func (e *Exception) Inspect() string {
	if e.Message == "" {
		return e.Class.Name
	}
	return e.Class.Name + ": " + e.Message
}

// Description renders the full exception report: class, message, frame lines,
// and the cause chain.
func (e *Exception) Description() string {
	var sb strings.Builder
	sb.WriteString(e.Class.Name)
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	for _, line := range e.Trace {
		sb.WriteString("\n\t")
		sb.WriteString(line)
	}
	if e.Cause != nil {
		sb.WriteString("\nCaused by: ")
		sb.WriteString(e.Cause.Description())
	}
	return sb.String()
}

func stringifyPrimitive(kind ir.PrimKind, raw interface{}) string {
	switch kind {
	case ir.KindNull:
		return "null"
	case ir.KindUnit:
		return "Unit"
	case ir.KindBoolean:
		return strconv.FormatBool(raw.(bool))
	case ir.KindChar:
		return string(raw.(rune))
	case ir.KindByte:
		return strconv.FormatInt(int64(raw.(int8)), 10)
	case ir.KindShort:
		return strconv.FormatInt(int64(raw.(int16)), 10)
	case ir.KindInt:
		return strconv.FormatInt(int64(raw.(int32)), 10)
	case ir.KindLong:
		return strconv.FormatInt(raw.(int64), 10)
	case ir.KindFloat:
		return formatFloat(float64(raw.(float32)), 32)
	case ir.KindDouble:
		return formatFloat(raw.(float64), 64)
	case ir.KindString:
		return raw.(string)
	case ir.KindArray:
		buf := raw.(*arrayBuf)
		parts := make([]string, len(buf.elems))
		for i, el := range buf.elems {
			parts[i] = el.Inspect()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%v", raw)
}

// formatFloat matches the source language's rendering: whole values keep a
// trailing ".0".
func formatFloat(f float64, bits int) string {
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
