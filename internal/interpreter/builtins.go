package interpreter

import (
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/irfold/internal/ir"
)

// funcKey is the compile-time function key built-in dispatch selects by:
// method name plus the comma-joined type names of the receiver and declared
// parameters.
type funcKey struct {
	name string
	args string
}

// opFunc implements one built-in operation. args[0] is the receiver.
type opFunc func(i *Interpreter, args []Value) ExecutionResult

// Three tables cover arity 1, 2, 3 (receiver included). They are populated
// once in init and immutable afterwards; sharing them across evaluator
// instances is safe.
var (
	unaryOps   = map[funcKey]opFunc{}
	binaryOps  = map[funcKey]opFunc{}
	ternaryOps = map[funcKey]opFunc{}
)

func regOp(name string, argTypes []string, fn opFunc) {
	key := funcKey{name: name, args: strings.Join(argTypes, ",")}
	switch len(argTypes) {
	case 1:
		unaryOps[key] = fn
	case 2:
		binaryOps[key] = fn
	case 3:
		ternaryOps[key] = fn
	default:
		panic("built-in arity out of range: " + name)
	}
}

// builtinKey derives the lookup key from a function's declared signature.
func builtinKey(fn *ir.Function) funcKey {
	parts := make([]string, 0, len(fn.Params)+1)
	if fn.Parent != nil {
		parts = append(parts, fn.Parent.Name)
	}
	for _, p := range fn.Params {
		parts = append(parts, p.Symbol.Typ.Class.Name)
	}
	return funcKey{name: fn.Name, args: strings.Join(parts, ",")}
}

// callBuiltin resolves a no-body function through the signature tables.
// rangeTo is special-cased: it synthesizes a constructor call on the range's
// IR class and evaluates it through the normal path.
func (i *Interpreter) callBuiltin(fn *ir.Function, dispatch, extension Value, args []Value) ExecutionResult {
	if fn.Parent != nil && fn.Parent.Kind == ir.EnumDecl && fn.Dispatch == nil {
		return i.enumStatic(fn, args)
	}
	if fn.Name == "rangeTo" {
		return i.synthesizeRange(fn, dispatch, args)
	}

	all := make([]Value, 0, len(args)+1)
	if dispatch != nil {
		all = append(all, dispatch)
	} else if extension != nil {
		all = append(all, extension)
	}
	all = append(all, args...)

	key := builtinKey(fn)
	var op opFunc
	var ok bool
	switch len(all) {
	case 1:
		op, ok = unaryOps[key]
	case 2:
		op, ok = binaryOps[key]
	case 3:
		op, ok = ternaryOps[key]
	default:
		internalf("built-in %s has impossible arity %d", fn.FQName, len(all))
	}
	if !ok {
		internalf("no built-in implementation for %s(%s)", key.name, key.args)
	}
	return op(i, all)
}

func (i *Interpreter) synthesizeRange(fn *ir.Function, dispatch Value, args []Value) ExecutionResult {
	rangeClass := fn.Return.Class
	first := dispatch.(*Primitive)
	last := args[0].(*Primitive)
	call := &ir.ConstructorCall{
		Class: rangeClass,
		Ctor:  rangeClass.Constructors[0],
		Args: []ir.Expr{
			&ir.Const{Kind: first.Kind, Value: first.Raw, Typ: first.Typ},
			&ir.Const{Kind: last.Kind, Value: last.Raw, Typ: last.Typ},
		},
	}
	return i.interpret(call)
}

// finish materializes a primitive result in the return register.
func (i *Interpreter) finish(kind ir.PrimKind, raw interface{}) ExecutionResult {
	i.stack.setReturn(&Primitive{Kind: kind, Raw: raw, Typ: ir.TypeOf(i.builtins.Primitive(kind))})
	return next
}

// rawLong widens any integral primitive to the host long.
func rawLong(p *Primitive) int64 {
	switch p.Kind {
	case ir.KindByte:
		return int64(p.Raw.(int8))
	case ir.KindShort:
		return int64(p.Raw.(int16))
	case ir.KindInt:
		return int64(p.Raw.(int32))
	case ir.KindChar:
		return int64(p.Raw.(rune))
	case ir.KindLong:
		return p.Raw.(int64)
	}
	internalf("value of kind %s is not integral", p.Kind)
	return 0
}

// rawDouble widens any numeric primitive to the host double.
func rawDouble(p *Primitive) float64 {
	switch p.Kind {
	case ir.KindFloat:
		return float64(p.Raw.(float32))
	case ir.KindDouble:
		return p.Raw.(float64)
	default:
		return float64(rawLong(p))
	}
}

// narrowInt truncates a host long back to the kind's width.
func narrowInt(kind ir.PrimKind, v int64) interface{} {
	switch kind {
	case ir.KindByte:
		return int8(v)
	case ir.KindShort:
		return int16(v)
	case ir.KindInt:
		return int32(v)
	case ir.KindChar:
		return rune(int32(v))
	case ir.KindLong:
		return v
	}
	internalf("kind %s has no integral width", kind)
	return nil
}

var numericKinds = map[string]ir.PrimKind{
	"Byte":   ir.KindByte,
	"Short":  ir.KindShort,
	"Int":    ir.KindInt,
	"Long":   ir.KindLong,
	"Float":  ir.KindFloat,
	"Double": ir.KindDouble,
}

func init() {
	registerNumericOps()
	registerConversions()
	registerBitwiseOps()
	registerBooleanOps()
	registerCharOps()
	registerStringOps()
	registerAnyOps()
	registerEnumMemberOps()
	registerThrowableOps()
	registerRangeOps()
	registerArrayOps()
	registerUnsignedOps()
}

// registerNumericOps fills the arithmetic and comparison entries for every
// pair of numeric operand types. Each entry computes at the width dictated
// by the most-precise argument type, with Byte and Short widened to Int.
func registerNumericOps() {
	names := []string{"Byte", "Short", "Int", "Long", "Float", "Double"}
	for _, an := range names {
		ak := numericKinds[an]
		for _, bn := range names {
			bk := numericKinds[bn]
			rk := ir.PromoteKind(ak, bk)
			for _, op := range []string{"plus", "minus", "times", "div", "rem"} {
				regOp(op, []string{an, bn}, arithOp(op, rk))
			}
			regOp("compareTo", []string{an, bn}, compareOp(rk))
			regOp("less", []string{an, bn}, relationOp(rk, func(c int32) bool { return c < 0 }))
			regOp("lessOrEqual", []string{an, bn}, relationOp(rk, func(c int32) bool { return c <= 0 }))
			regOp("greater", []string{an, bn}, relationOp(rk, func(c int32) bool { return c > 0 }))
			regOp("greaterOrEqual", []string{an, bn}, relationOp(rk, func(c int32) bool { return c >= 0 }))
		}
		regOp("unaryMinus", []string{an}, unaryArith(ak, func(l int64) int64 { return -l }, func(d float64) float64 { return -d }))
		regOp("unaryPlus", []string{an}, unaryArith(ak, func(l int64) int64 { return l }, func(d float64) float64 { return d }))
		regOp("inc", []string{an}, unaryArith(ak, func(l int64) int64 { return l + 1 }, func(d float64) float64 { return d + 1 }))
		regOp("dec", []string{an}, unaryArith(ak, func(l int64) int64 { return l - 1 }, func(d float64) float64 { return d - 1 }))
	}
}

func arithOp(op string, rk ir.PrimKind) opFunc {
	return func(i *Interpreter, args []Value) ExecutionResult {
		a, b := args[0].(*Primitive), args[1].(*Primitive)
		switch rk {
		case ir.KindFloat, ir.KindDouble:
			x, y := rawDouble(a), rawDouble(b)
			var r float64
			switch op {
			case "plus":
				r = x + y
			case "minus":
				r = x - y
			case "times":
				r = x * y
			case "div":
				r = x / y
			case "rem":
				r = math.Mod(x, y)
			}
			if rk == ir.KindFloat {
				return i.finish(rk, float32(r))
			}
			return i.finish(rk, r)
		default:
			x, y := rawLong(a), rawLong(b)
			if y == 0 && (op == "div" || op == "rem") {
				return i.raise(i.builtins.Arithmetic, "/ by zero")
			}
			var r int64
			switch op {
			case "plus":
				r = x + y
			case "minus":
				r = x - y
			case "times":
				r = x * y
			case "div":
				r = x / y
			case "rem":
				r = x % y
			}
			return i.finish(rk, narrowInt(rk, r))
		}
	}
}

// relationOp derives a Boolean comparison from the three-way compare at the
// promoted width.
func relationOp(rk ir.PrimKind, test func(c int32) bool) opFunc {
	cmp := compareOp(rk)
	return func(i *Interpreter, args []Value) ExecutionResult {
		if res := cmp(i, args); !res.isNext() {
			return res
		}
		c := i.stack.returned().(*Primitive).Raw.(int32)
		return i.finish(ir.KindBoolean, test(c))
	}
}

func compareOp(rk ir.PrimKind) opFunc {
	return func(i *Interpreter, args []Value) ExecutionResult {
		a, b := args[0].(*Primitive), args[1].(*Primitive)
		var c int32
		switch rk {
		case ir.KindFloat, ir.KindDouble:
			x, y := rawDouble(a), rawDouble(b)
			switch {
			case x < y:
				c = -1
			case x > y:
				c = 1
			}
		default:
			x, y := rawLong(a), rawLong(b)
			switch {
			case x < y:
				c = -1
			case x > y:
				c = 1
			}
		}
		return i.finish(ir.KindInt, c)
	}
}

func unaryArith(kind ir.PrimKind, intFn func(int64) int64, floatFn func(float64) float64) opFunc {
	return func(i *Interpreter, args []Value) ExecutionResult {
		p := args[0].(*Primitive)
		switch kind {
		case ir.KindFloat:
			return i.finish(kind, float32(floatFn(rawDouble(p))))
		case ir.KindDouble:
			return i.finish(kind, floatFn(rawDouble(p)))
		default:
			return i.finish(kind, narrowInt(kind, intFn(rawLong(p))))
		}
	}
}

func registerConversions() {
	targets := map[string]ir.PrimKind{
		"toByte":   ir.KindByte,
		"toShort":  ir.KindShort,
		"toInt":    ir.KindInt,
		"toLong":   ir.KindLong,
		"toFloat":  ir.KindFloat,
		"toDouble": ir.KindDouble,
		"toChar":   ir.KindChar,
	}
	sources := []string{"Byte", "Short", "Int", "Long", "Float", "Double", "Char"}
	for _, src := range sources {
		for name, tk := range targets {
			target := tk
			regOp(name, []string{src}, func(i *Interpreter, args []Value) ExecutionResult {
				p := args[0].(*Primitive)
				switch target {
				case ir.KindFloat:
					return i.finish(target, float32(rawDouble(p)))
				case ir.KindDouble:
					return i.finish(target, rawDouble(p))
				default:
					switch p.Kind {
					case ir.KindFloat, ir.KindDouble:
						return i.finish(target, narrowInt(target, int64(rawDouble(p))))
					}
					return i.finish(target, narrowInt(target, rawLong(p)))
				}
			})
		}
	}
}

func registerBitwiseOps() {
	for _, name := range []string{"Int", "Long"} {
		kind := numericKinds[name]
		k := kind
		regOp("and", []string{name, name}, bitOp(k, func(x, y int64) int64 { return x & y }))
		regOp("or", []string{name, name}, bitOp(k, func(x, y int64) int64 { return x | y }))
		regOp("xor", []string{name, name}, bitOp(k, func(x, y int64) int64 { return x ^ y }))
		regOp("shl", []string{name, "Int"}, shiftOp(k, func(x int64, s uint) int64 { return x << s }))
		regOp("shr", []string{name, "Int"}, shiftOp(k, func(x int64, s uint) int64 { return x >> s }))
		regOp("ushr", []string{name, "Int"}, ushrOp(k))
		regOp("inv", []string{name}, func(i *Interpreter, args []Value) ExecutionResult {
			p := args[0].(*Primitive)
			return i.finish(k, narrowInt(k, ^rawLong(p)))
		})
	}
}

func bitOp(kind ir.PrimKind, fn func(x, y int64) int64) opFunc {
	return func(i *Interpreter, args []Value) ExecutionResult {
		x := rawLong(args[0].(*Primitive))
		y := rawLong(args[1].(*Primitive))
		return i.finish(kind, narrowInt(kind, fn(x, y)))
	}
}

// shiftOp masks the shift distance to the receiver width, matching the
// source language.
func shiftOp(kind ir.PrimKind, fn func(x int64, s uint) int64) opFunc {
	return func(i *Interpreter, args []Value) ExecutionResult {
		x := rawLong(args[0].(*Primitive))
		s := uint(rawLong(args[1].(*Primitive)))
		if kind == ir.KindInt {
			s &= 31
			return i.finish(kind, int32(fn(int64(int32(x)), s)))
		}
		s &= 63
		return i.finish(kind, fn(x, s))
	}
}

func ushrOp(kind ir.PrimKind) opFunc {
	return func(i *Interpreter, args []Value) ExecutionResult {
		x := rawLong(args[0].(*Primitive))
		s := uint(rawLong(args[1].(*Primitive)))
		if kind == ir.KindInt {
			return i.finish(kind, int32(uint32(int32(x))>>(s&31)))
		}
		return i.finish(kind, int64(uint64(x)>>(s&63)))
	}
}

// registerBooleanOps fills the eager boolean entries. Short-circuit
// semantics are expressed at the IR level via branch lowering; by the time
// dispatch reaches these, both operands are already evaluated.
func registerBooleanOps() {
	bin := func(name string, fn func(a, b bool) bool) {
		regOp(name, []string{"Boolean", "Boolean"}, func(i *Interpreter, args []Value) ExecutionResult {
			a := args[0].(*Primitive).Raw.(bool)
			b := args[1].(*Primitive).Raw.(bool)
			return i.finish(ir.KindBoolean, fn(a, b))
		})
	}
	bin("and", func(a, b bool) bool { return a && b })
	bin("or", func(a, b bool) bool { return a || b })
	bin("xor", func(a, b bool) bool { return a != b })
	regOp("not", []string{"Boolean"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindBoolean, !args[0].(*Primitive).Raw.(bool))
	})
	regOp("compareTo", []string{"Boolean", "Boolean"}, func(i *Interpreter, args []Value) ExecutionResult {
		a := args[0].(*Primitive).Raw.(bool)
		b := args[1].(*Primitive).Raw.(bool)
		var c int32
		switch {
		case a && !b:
			c = 1
		case !a && b:
			c = -1
		}
		return i.finish(ir.KindInt, c)
	})
}

func registerCharOps() {
	regOp("plus", []string{"Char", "Int"}, func(i *Interpreter, args []Value) ExecutionResult {
		c := args[0].(*Primitive).Raw.(rune)
		n := rawLong(args[1].(*Primitive))
		return i.finish(ir.KindChar, rune(int32(int64(c)+n)))
	})
	regOp("minus", []string{"Char", "Char"}, func(i *Interpreter, args []Value) ExecutionResult {
		a := args[0].(*Primitive).Raw.(rune)
		b := args[1].(*Primitive).Raw.(rune)
		return i.finish(ir.KindInt, int32(a-b))
	})
	regOp("minus", []string{"Char", "Int"}, func(i *Interpreter, args []Value) ExecutionResult {
		c := args[0].(*Primitive).Raw.(rune)
		n := rawLong(args[1].(*Primitive))
		return i.finish(ir.KindChar, rune(int32(int64(c)-n)))
	})
	regOp("compareTo", []string{"Char", "Char"}, func(i *Interpreter, args []Value) ExecutionResult {
		a := args[0].(*Primitive).Raw.(rune)
		b := args[1].(*Primitive).Raw.(rune)
		var c int32
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
		return i.finish(ir.KindInt, c)
	})
	charCmp := func(test func(c int32) bool) opFunc {
		return func(i *Interpreter, args []Value) ExecutionResult {
			a := args[0].(*Primitive).Raw.(rune)
			b := args[1].(*Primitive).Raw.(rune)
			var c int32
			switch {
			case a < b:
				c = -1
			case a > b:
				c = 1
			}
			return i.finish(ir.KindBoolean, test(c))
		}
	}
	regOp("less", []string{"Char", "Char"}, charCmp(func(c int32) bool { return c < 0 }))
	regOp("lessOrEqual", []string{"Char", "Char"}, charCmp(func(c int32) bool { return c <= 0 }))
	regOp("greater", []string{"Char", "Char"}, charCmp(func(c int32) bool { return c > 0 }))
	regOp("greaterOrEqual", []string{"Char", "Char"}, charCmp(func(c int32) bool { return c >= 0 }))
}

func registerStringOps() {
	str := func(v Value) string { return v.(*Primitive).Raw.(string) }

	regOp("length", []string{"String"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindInt, int32(len([]rune(str(args[0])))))
	})
	regOp("isEmpty", []string{"String"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindBoolean, len(str(args[0])) == 0)
	})
	regOp("uppercase", []string{"String"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindString, strings.ToUpper(str(args[0])))
	})
	regOp("lowercase", []string{"String"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindString, strings.ToLower(str(args[0])))
	})
	regOp("get", []string{"String", "Int"}, func(i *Interpreter, args []Value) ExecutionResult {
		runes := []rune(str(args[0]))
		idx := rawLong(args[1].(*Primitive))
		if idx < 0 || idx >= int64(len(runes)) {
			return i.raise(i.builtins.IndexOutOfBounds, "index %d out of bounds for length %d", idx, len(runes))
		}
		return i.finish(ir.KindChar, runes[idx])
	})
	regOp("plus", []string{"String", "Any"}, func(i *Interpreter, args []Value) ExecutionResult {
		s, res := i.valueToString(args[1])
		if !res.isNext() {
			return res
		}
		return i.finish(ir.KindString, str(args[0])+s)
	})
	regOp("substring", []string{"String", "Int"}, func(i *Interpreter, args []Value) ExecutionResult {
		runes := []rune(str(args[0]))
		start := rawLong(args[1].(*Primitive))
		if start < 0 || start > int64(len(runes)) {
			return i.raise(i.builtins.IndexOutOfBounds, "begin %d, length %d", start, len(runes))
		}
		return i.finish(ir.KindString, string(runes[start:]))
	})
	regOp("substring", []string{"String", "Int", "Int"}, func(i *Interpreter, args []Value) ExecutionResult {
		runes := []rune(str(args[0]))
		start := rawLong(args[1].(*Primitive))
		end := rawLong(args[2].(*Primitive))
		if start < 0 || end > int64(len(runes)) || start > end {
			return i.raise(i.builtins.IndexOutOfBounds, "begin %d, end %d, length %d", start, end, len(runes))
		}
		return i.finish(ir.KindString, string(runes[start:end]))
	})
	regOp("indexOf", []string{"String", "String"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindInt, int32(strings.Index(str(args[0]), str(args[1]))))
	})
	regOp("contains", []string{"String", "String"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindBoolean, strings.Contains(str(args[0]), str(args[1])))
	})
	regOp("compareTo", []string{"String", "String"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindInt, int32(strings.Compare(str(args[0]), str(args[1]))))
	})
	strCmp := func(test func(c int) bool) opFunc {
		return func(i *Interpreter, args []Value) ExecutionResult {
			return i.finish(ir.KindBoolean, test(strings.Compare(str(args[0]), str(args[1]))))
		}
	}
	regOp("less", []string{"String", "String"}, strCmp(func(c int) bool { return c < 0 }))
	regOp("lessOrEqual", []string{"String", "String"}, strCmp(func(c int) bool { return c <= 0 }))
	regOp("greater", []string{"String", "String"}, strCmp(func(c int) bool { return c > 0 }))
	regOp("greaterOrEqual", []string{"String", "String"}, strCmp(func(c int) bool { return c >= 0 }))
	regOp("replace", []string{"String", "String", "String"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindString, strings.ReplaceAll(str(args[0]), str(args[1]), str(args[2])))
	})
	regOp("toInt", []string{"String"}, func(i *Interpreter, args []Value) ExecutionResult {
		v, err := strconv.ParseInt(strings.TrimSpace(str(args[0])), 10, 32)
		if err != nil {
			return i.raise(i.builtins.IllegalArgument, "For input string: %q", str(args[0]))
		}
		return i.finish(ir.KindInt, int32(v))
	})
	regOp("toLong", []string{"String"}, func(i *Interpreter, args []Value) ExecutionResult {
		v, err := strconv.ParseInt(strings.TrimSpace(str(args[0])), 10, 64)
		if err != nil {
			return i.raise(i.builtins.IllegalArgument, "For input string: %q", str(args[0]))
		}
		return i.finish(ir.KindLong, v)
	})
	regOp("toDouble", []string{"String"}, func(i *Interpreter, args []Value) ExecutionResult {
		v, err := strconv.ParseFloat(strings.TrimSpace(str(args[0])), 64)
		if err != nil {
			return i.raise(i.builtins.IllegalArgument, "For input string: %q", str(args[0]))
		}
		return i.finish(ir.KindDouble, v)
	})
}

func registerAnyOps() {
	regOp("toString", []string{"Any"}, func(i *Interpreter, args []Value) ExecutionResult {
		s, res := i.valueToString(args[0])
		if !res.isNext() {
			return res
		}
		return i.finish(ir.KindString, s)
	})
	regOp("hashCode", []string{"Any"}, func(i *Interpreter, args []Value) ExecutionResult {
		h, res := i.valueHashCode(args[0])
		if !res.isNext() {
			return res
		}
		return i.finish(ir.KindInt, h)
	})
	regOp("equals", []string{"Any", "Any"}, func(i *Interpreter, args []Value) ExecutionResult {
		eq, res := i.valueEquals(args[0], args[1])
		if !res.isNext() {
			return res
		}
		return i.finish(ir.KindBoolean, eq)
	})
}

func registerEnumMemberOps() {
	field := func(i *Interpreter, v Value, name string) Value {
		obj := v.(*Object)
		f := obj.Class.FindField(name)
		fv, ok := obj.getField(f)
		if !ok {
			internalf("enum instance of %s has no %s field", obj.Class.Name, name)
		}
		return fv
	}
	regOp("name", []string{"Enum"}, func(i *Interpreter, args []Value) ExecutionResult {
		i.stack.setReturn(field(i, args[0], "name"))
		return next
	})
	regOp("ordinal", []string{"Enum"}, func(i *Interpreter, args []Value) ExecutionResult {
		i.stack.setReturn(field(i, args[0], "ordinal"))
		return next
	})
	regOp("compareTo", []string{"Enum", "Enum"}, func(i *Interpreter, args []Value) ExecutionResult {
		a := rawLong(field(i, args[0], "ordinal").(*Primitive))
		b := rawLong(field(i, args[1], "ordinal").(*Primitive))
		var c int32
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
		return i.finish(ir.KindInt, c)
	})
}

func registerThrowableOps() {
	message := func(v Value) (string, bool) {
		switch t := v.(type) {
		case *Exception:
			return t.Message, t.Message != ""
		case *Object:
			if f := t.Class.FindField("message"); f != nil {
				if mv, ok := t.getField(f); ok {
					if p, isPrim := mv.(*Primitive); isPrim && !p.IsNull() {
						return p.Raw.(string), true
					}
				}
			}
		}
		return "", false
	}
	regOp("message", []string{"Throwable"}, func(i *Interpreter, args []Value) ExecutionResult {
		if msg, ok := message(args[0]); ok {
			return i.finish(ir.KindString, msg)
		}
		i.stack.setReturn(i.nullValue())
		return next
	})
	regOp("toString", []string{"Throwable"}, func(i *Interpreter, args []Value) ExecutionResult {
		name := i.classOf(args[0]).Name
		if msg, ok := message(args[0]); ok {
			return i.finish(ir.KindString, name+": "+msg)
		}
		return i.finish(ir.KindString, name)
	})
}

func registerRangeOps() {
	rangeField := func(v Value, name string) int64 {
		obj := v.(*Object)
		f := obj.Class.FindField(name)
		fv, ok := obj.getField(f)
		if !ok {
			internalf("range instance of %s has no %s field", obj.Class.Name, name)
		}
		return rawLong(fv.(*Primitive))
	}
	for _, spec := range []struct {
		class string
		elem  ir.PrimKind
	}{
		{"IntRange", ir.KindInt},
		{"LongRange", ir.KindLong},
		{"CharRange", ir.KindChar},
	} {
		elem := spec.elem
		elemName := elem.String()
		regOp("isEmpty", []string{spec.class}, func(i *Interpreter, args []Value) ExecutionResult {
			return i.finish(ir.KindBoolean, rangeField(args[0], "first") > rangeField(args[0], "last"))
		})
		regOp("contains", []string{spec.class, elemName}, func(i *Interpreter, args []Value) ExecutionResult {
			v := rawLong(args[1].(*Primitive))
			in := v >= rangeField(args[0], "first") && v <= rangeField(args[0], "last")
			return i.finish(ir.KindBoolean, in)
		})
		if elem == ir.KindChar {
			continue
		}
		regOp("sum", []string{spec.class}, func(i *Interpreter, args []Value) ExecutionResult {
			first, last := rangeField(args[0], "first"), rangeField(args[0], "last")
			step := rangeField(args[0], "step")
			if step == 0 {
				return i.raise(i.builtins.IllegalArgument, "Step must be non-zero.")
			}
			var sum int64
			for v := first; v <= last; v += step {
				sum += v
			}
			return i.finish(elem, narrowInt(elem, sum))
		})
	}
}

func registerArrayOps() {
	buf := func(v Value) *arrayBuf { return v.(*Primitive).Raw.(*arrayBuf) }
	regOp("size", []string{"Array"}, func(i *Interpreter, args []Value) ExecutionResult {
		return i.finish(ir.KindInt, int32(len(buf(args[0]).elems)))
	})
	regOp("get", []string{"Array", "Int"}, func(i *Interpreter, args []Value) ExecutionResult {
		b := buf(args[0])
		idx := rawLong(args[1].(*Primitive))
		if idx < 0 || idx >= int64(len(b.elems)) {
			return i.raise(i.builtins.IndexOutOfBounds, "index %d out of bounds for length %d", idx, len(b.elems))
		}
		i.stack.setReturn(b.elems[idx])
		return next
	})
	regOp("set", []string{"Array", "Int", "Any"}, func(i *Interpreter, args []Value) ExecutionResult {
		b := buf(args[0])
		idx := rawLong(args[1].(*Primitive))
		if idx < 0 || idx >= int64(len(b.elems)) {
			return i.raise(i.builtins.IndexOutOfBounds, "index %d out of bounds for length %d", idx, len(b.elems))
		}
		b.elems[idx] = args[2]
		i.stack.setReturn(i.unit)
		return next
	})
}

func registerUnsignedOps() {
	data := func(v Value) int64 {
		obj := v.(*Object)
		f := obj.Class.FindField("data")
		fv, ok := obj.getField(f)
		if !ok {
			internalf("unsigned instance of %s has no data field", obj.Class.Name)
		}
		return rawLong(fv.(*Primitive))
	}
	for _, spec := range []struct {
		name    string
		backing ir.PrimKind
		mask    uint64
	}{
		{"UByte", ir.KindByte, 0xFF},
		{"UShort", ir.KindShort, 0xFFFF},
		{"UInt", ir.KindInt, 0xFFFFFFFF},
		{"ULong", ir.KindLong, ^uint64(0)},
	} {
		name, backing, mask := spec.name, spec.backing, spec.mask
		unsignedOf := func(v Value) uint64 { return uint64(data(v)) & mask }

		regOp("toString", []string{name}, func(i *Interpreter, args []Value) ExecutionResult {
			return i.finish(ir.KindString, strconv.FormatUint(unsignedOf(args[0]), 10))
		})
		regOp("toInt", []string{name}, func(i *Interpreter, args []Value) ExecutionResult {
			return i.finish(ir.KindInt, int32(unsignedOf(args[0])))
		})
		regOp("toLong", []string{name}, func(i *Interpreter, args []Value) ExecutionResult {
			return i.finish(ir.KindLong, int64(unsignedOf(args[0])))
		})
		regOp("compareTo", []string{name, name}, func(i *Interpreter, args []Value) ExecutionResult {
			a, b := unsignedOf(args[0]), unsignedOf(args[1])
			var c int32
			switch {
			case a < b:
				c = -1
			case a > b:
				c = 1
			}
			return i.finish(ir.KindInt, c)
		})
		for _, op := range []string{"plus", "minus", "times", "div", "rem"} {
			op := op
			regOp(op, []string{name, name}, func(i *Interpreter, args []Value) ExecutionResult {
				a, b := unsignedOf(args[0]), unsignedOf(args[1])
				if b == 0 && (op == "div" || op == "rem") {
					return i.raise(i.builtins.Arithmetic, "/ by zero")
				}
				var r uint64
				switch op {
				case "plus":
					r = a + b
				case "minus":
					r = a - b
				case "times":
					r = a * b
				case "div":
					r = a / b
				case "rem":
					r = a % b
				}
				return i.makeUnsigned(backing, int64(r&mask))
			})
		}
	}
}

// makeUnsigned wraps a signed representation back into the matching
// unsigned class instance.
func (i *Interpreter) makeUnsigned(backing ir.PrimKind, signed int64) ExecutionResult {
	uclass := i.builtins.UnsignedClass(backing)
	obj := newObject(uclass)
	obj.Fields[uclass.FindField("data")] = &Primitive{
		Kind: backing,
		Raw:  narrowInt(backing, signed),
		Typ:  ir.TypeOf(i.builtins.Primitive(backing)),
	}
	i.stack.setReturn(obj)
	return next
}
