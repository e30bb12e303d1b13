package ir

import (
	"fmt"

	"github.com/funvibe/irfold/internal/config"
)

// Builtins is the builtin class table of a module fragment: the classes the
// evaluator needs to resolve primitives, exceptions, ranges, arrays, and
// intrinsics. Construct one per module with NewBuiltins. The only later
// change is FunctionIface adding a functional-interface class the first
// time an arity is requested; the evaluator never calls it, so a table may
// be shared across evaluator instances.
type Builtins struct {
	Any     *Class
	Unit    *Class
	Nothing *Class

	Boolean *Class
	Char    *Class
	Byte    *Class
	Short   *Class
	Int     *Class
	Long    *Class
	Float   *Class
	Double  *Class
	String  *Class

	Throwable            *Class
	Arithmetic           *Class
	ClassCast            *Class
	NullPointer          *Class
	IllegalArgument      *Class
	NoSuchElement        *Class
	IndexOutOfBounds     *Class
	StackOverflow        *Class
	UnsupportedOperation *Class

	Enum  *Class
	Array *Class

	IntRange  *Class
	LongRange *Class
	CharRange *Class

	UByte  *Class
	UShort *Class
	UInt   *Class
	ULong  *Class

	Regex *Class

	classes    map[string]*Class
	funcIfaces map[int]*Class
}

const builtinsFile = "Builtins.lang"

// NewBuiltins constructs the builtin class table with its member function
// symbols resolved.
func NewBuiltins() *Builtins {
	b := &Builtins{
		classes:    make(map[string]*Class),
		funcIfaces: make(map[int]*Class),
	}

	b.Any = b.declare("Any", config.AnyFQName, ClassDecl, nil, KindNull)
	b.Unit = b.declare("Unit", config.UnitFQName, ObjectDecl, b.Any, KindUnit)
	b.Nothing = b.declare("Nothing", config.NothingFQName, ClassDecl, b.Any, KindNull)

	b.Boolean = b.declare("Boolean", "lang.Boolean", ClassDecl, b.Any, KindBoolean)
	b.Char = b.declare("Char", "lang.Char", ClassDecl, b.Any, KindChar)
	b.Byte = b.declare("Byte", "lang.Byte", ClassDecl, b.Any, KindByte)
	b.Short = b.declare("Short", "lang.Short", ClassDecl, b.Any, KindShort)
	b.Int = b.declare("Int", "lang.Int", ClassDecl, b.Any, KindInt)
	b.Long = b.declare("Long", "lang.Long", ClassDecl, b.Any, KindLong)
	b.Float = b.declare("Float", "lang.Float", ClassDecl, b.Any, KindFloat)
	b.Double = b.declare("Double", "lang.Double", ClassDecl, b.Any, KindDouble)
	b.String = b.declare("String", config.StringFQName, ClassDecl, b.Any, KindString)

	b.declareThrowables()
	b.declareAnyMembers()
	b.declareNumericMembers()
	b.declareBooleanMembers()
	b.declareCharMembers()
	b.declareStringMembers()
	b.declareEnumBase()
	b.declareArray()
	b.declareRanges()
	b.declareUnsigned()
	b.declareRegex()

	return b
}

// Class resolves a class by simple or fully-qualified name, or nil.
func (b *Builtins) Class(name string) *Class {
	return b.classes[name]
}

// Primitive returns the builtin value class for kind, or nil.
func (b *Builtins) Primitive(kind PrimKind) *Class {
	switch kind {
	case KindBoolean:
		return b.Boolean
	case KindChar:
		return b.Char
	case KindByte:
		return b.Byte
	case KindShort:
		return b.Short
	case KindInt:
		return b.Int
	case KindLong:
		return b.Long
	case KindFloat:
		return b.Float
	case KindDouble:
		return b.Double
	case KindString:
		return b.String
	case KindUnit:
		return b.Unit
	case KindNull:
		return b.Nothing
	case KindArray:
		return b.Array
	}
	return nil
}

// ExceptionClass resolves a recognized exception class by simple name,
// falling back to Throwable.
func (b *Builtins) ExceptionClass(simpleName string) *Class {
	if c, ok := b.classes[simpleName]; ok && c.IsSubclassOf(b.Throwable) {
		return c
	}
	return b.Throwable
}

// UnsignedClass returns the unsigned class whose backing kind is kind, or nil.
func (b *Builtins) UnsignedClass(kind PrimKind) *Class {
	switch kind {
	case KindByte:
		return b.UByte
	case KindShort:
		return b.UShort
	case KindInt:
		return b.UInt
	case KindLong:
		return b.ULong
	}
	return nil
}

// FunctionIface returns the functional interface class with an abstract
// invoke of the given arity, creating it on first use.
func (b *Builtins) FunctionIface(arity int) *Class {
	if c, ok := b.funcIfaces[arity]; ok {
		return c
	}
	name := fmt.Sprintf("Function%d", arity)
	c := b.declare(name, config.LangPackage+"."+name, InterfaceDecl, b.Any, KindNull)
	params := make([]*Type, arity)
	for i := range params {
		params[i] = NullableOf(b.Any)
	}
	invoke := b.member(c, "invoke", NullableOf(b.Any), params...)
	invoke.Abstract = true
	b.funcIfaces[arity] = c
	return c
}

func (b *Builtins) declare(name, fq string, kind ClassKind, super *Class, prim PrimKind) *Class {
	c := &Class{
		Name:   name,
		FQName: fq,
		Kind:   kind,
		Super:  super,
		Prim:   prim,
		File:   builtinsFile,
	}
	b.classes[name] = c
	b.classes[fq] = c
	return c
}

// member declares a dispatch-receiver member function with no body; calls
// resolve through the builtin signature tables or the intrinsic layer.
func (b *Builtins) member(owner *Class, name string, ret *Type, params ...*Type) *Function {
	fn := &Function{
		Name:     name,
		FQName:   owner.FQName + "." + name,
		Parent:   owner,
		Dispatch: &Variable{Name: "<this>", Typ: TypeOf(owner)},
		Return:   ret,
		File:     builtinsFile,
	}
	for i, p := range params {
		fn.Params = append(fn.Params, &Param{
			Symbol: &Variable{Name: fmt.Sprintf("arg%d", i), Typ: p},
		})
	}
	owner.Functions = append(owner.Functions, fn)
	return fn
}

func (b *Builtins) ctor(owner *Class, params ...*Param) *Function {
	fn := &Function{
		Name:        "<init>",
		FQName:      owner.FQName + ".<init>",
		Parent:      owner,
		Dispatch:    &Variable{Name: "<this>", Typ: TypeOf(owner)},
		Params:      params,
		Return:      TypeOf(owner),
		Constructor: true,
		Primary:     true,
		File:        builtinsFile,
	}
	owner.Constructors = append(owner.Constructors, fn)
	return fn
}

func (b *Builtins) declareThrowables() {
	msg := NullableOf(b.String)

	declareExc := func(name string, super *Class) *Class {
		c := b.declare(name, config.LangPackage+"."+name, ClassDecl, super, KindNull)
		cause := NullableOf(b.classes[config.ThrowableName])
		if super == b.Any {
			cause = NullableOf(c) // Throwable itself
		}
		c.Fields = append(c.Fields,
			&Field{Name: "message", Owner: c, Typ: msg},
			&Field{Name: "cause", Owner: c, Typ: cause},
		)
		b.ctor(c,
			&Param{
				Symbol:  &Variable{Name: "message", Typ: msg},
				Default: &Const{Kind: KindNull, Typ: msg},
			},
			&Param{
				Symbol:  &Variable{Name: "cause", Typ: cause},
				Default: &Const{Kind: KindNull, Typ: cause},
			},
		)
		return c
	}

	b.Throwable = declareExc(config.ThrowableName, b.Any)
	b.member(b.Throwable, "message", msg)
	b.member(b.Throwable, "toString", TypeOf(b.String))

	b.Arithmetic = declareExc(config.ArithmeticExcName, b.Throwable)
	b.ClassCast = declareExc(config.ClassCastExcName, b.Throwable)
	b.NullPointer = declareExc(config.NullPointerExcName, b.Throwable)
	b.IllegalArgument = declareExc(config.IllegalArgumentExcName, b.Throwable)
	b.NoSuchElement = declareExc(config.NoSuchElementExcName, b.Throwable)
	b.IndexOutOfBounds = declareExc(config.IndexOutOfBoundsExcName, b.Throwable)
	b.StackOverflow = declareExc(config.StackOverflowErrorName, b.Throwable)
	b.UnsupportedOperation = declareExc(config.UnsupportedOperationName, b.Throwable)
}

func (b *Builtins) declareAnyMembers() {
	b.member(b.Any, "equals", TypeOf(b.Boolean), NullableOf(b.Any))
	b.member(b.Any, "hashCode", TypeOf(b.Int))
	b.member(b.Any, "toString", TypeOf(b.String))
}

func (b *Builtins) declareNumericMembers() {
	numerics := []*Class{b.Byte, b.Short, b.Int, b.Long, b.Float, b.Double}
	for _, owner := range numerics {
		for _, arg := range numerics {
			result := b.Primitive(PromoteKind(owner.Prim, arg.Prim))
			for _, op := range []string{"plus", "minus", "times", "div", "rem"} {
				b.member(owner, op, TypeOf(result), TypeOf(arg))
			}
			b.member(owner, "compareTo", TypeOf(b.Int), TypeOf(arg))
			for _, op := range []string{"less", "lessOrEqual", "greater", "greaterOrEqual"} {
				b.member(owner, op, TypeOf(b.Boolean), TypeOf(arg))
			}
		}
		b.member(owner, "unaryMinus", TypeOf(owner))
		b.member(owner, "unaryPlus", TypeOf(owner))
		b.member(owner, "inc", TypeOf(owner))
		b.member(owner, "dec", TypeOf(owner))
		b.declareConversions(owner)
	}
	for _, owner := range []*Class{b.Int, b.Long} {
		for _, op := range []string{"and", "or", "xor", "shl", "shr", "ushr"} {
			arg := owner
			if op == "shl" || op == "shr" || op == "ushr" {
				arg = b.Int
			}
			b.member(owner, op, TypeOf(owner), TypeOf(arg))
		}
		b.member(owner, "inv", TypeOf(owner))
	}
	b.member(b.Int, "rangeTo", TypeOf(b.intRangeClass()), TypeOf(b.Int))
	b.member(b.Long, "rangeTo", TypeOf(b.longRangeClass()), TypeOf(b.Long))

	// Long and Char carry host-backed constructors: Long from a
	// (high, low) word pair, Char from its integer code.
	b.ctor(b.Long,
		&Param{Symbol: &Variable{Name: "high", Typ: TypeOf(b.Int)}},
		&Param{Symbol: &Variable{Name: "low", Typ: TypeOf(b.Int)}},
	)
	b.ctor(b.Char, &Param{Symbol: &Variable{Name: "code", Typ: TypeOf(b.Int)}})
}

// The range classes are referenced by the numeric members declared before
// them; these accessors allocate the class on first use so the declaration
// order does not matter.
func (b *Builtins) intRangeClass() *Class {
	if b.IntRange == nil {
		b.IntRange = b.declare("IntRange", config.IntRangeFQName, ClassDecl, b.Any, KindNull)
	}
	return b.IntRange
}

func (b *Builtins) longRangeClass() *Class {
	if b.LongRange == nil {
		b.LongRange = b.declare("LongRange", config.LongRangeFQName, ClassDecl, b.Any, KindNull)
	}
	return b.LongRange
}

func (b *Builtins) charRangeClass() *Class {
	if b.CharRange == nil {
		b.CharRange = b.declare("CharRange", config.CharRangeFQName, ClassDecl, b.Any, KindNull)
	}
	return b.CharRange
}

func (b *Builtins) declareConversions(owner *Class) {
	b.member(owner, "toByte", TypeOf(b.Byte))
	b.member(owner, "toShort", TypeOf(b.Short))
	b.member(owner, "toInt", TypeOf(b.Int))
	b.member(owner, "toLong", TypeOf(b.Long))
	b.member(owner, "toFloat", TypeOf(b.Float))
	b.member(owner, "toDouble", TypeOf(b.Double))
	b.member(owner, "toChar", TypeOf(b.Char))
}

func (b *Builtins) declareBooleanMembers() {
	b.member(b.Boolean, "not", TypeOf(b.Boolean))
	b.member(b.Boolean, "and", TypeOf(b.Boolean), TypeOf(b.Boolean))
	b.member(b.Boolean, "or", TypeOf(b.Boolean), TypeOf(b.Boolean))
	b.member(b.Boolean, "xor", TypeOf(b.Boolean), TypeOf(b.Boolean))
	b.member(b.Boolean, "compareTo", TypeOf(b.Int), TypeOf(b.Boolean))
}

func (b *Builtins) declareCharMembers() {
	b.member(b.Char, "plus", TypeOf(b.Char), TypeOf(b.Int))
	b.member(b.Char, "minus", TypeOf(b.Int), TypeOf(b.Char))
	b.member(b.Char, "minus", TypeOf(b.Char), TypeOf(b.Int))
	b.member(b.Char, "compareTo", TypeOf(b.Int), TypeOf(b.Char))
	for _, op := range []string{"less", "lessOrEqual", "greater", "greaterOrEqual"} {
		b.member(b.Char, op, TypeOf(b.Boolean), TypeOf(b.Char))
	}
	b.member(b.Char, "rangeTo", TypeOf(b.charRangeClass()), TypeOf(b.Char))
	b.declareConversions(b.Char)
}

func (b *Builtins) declareStringMembers() {
	s, i, c, bo := TypeOf(b.String), TypeOf(b.Int), TypeOf(b.Char), TypeOf(b.Boolean)
	b.member(b.String, "length", i)
	b.member(b.String, "get", c, i)
	b.member(b.String, "plus", s, NullableOf(b.Any))
	b.member(b.String, "substring", s, i)
	b.member(b.String, "substring", s, i, i)
	b.member(b.String, "indexOf", i, s)
	b.member(b.String, "contains", bo, s)
	b.member(b.String, "uppercase", s)
	b.member(b.String, "lowercase", s)
	b.member(b.String, "isEmpty", bo)
	b.member(b.String, "compareTo", i, s)
	for _, op := range []string{"less", "lessOrEqual", "greater", "greaterOrEqual"} {
		b.member(b.String, op, bo, s)
	}
	b.member(b.String, "replace", s, s, s)
	b.member(b.String, "toInt", i)
	b.member(b.String, "toLong", TypeOf(b.Long))
	b.member(b.String, "toDouble", TypeOf(b.Double))
}

func (b *Builtins) declareEnumBase() {
	b.Enum = b.declare("Enum", config.EnumFQName, ClassDecl, b.Any, KindNull)
	b.Enum.Abstract = true
	s, i := TypeOf(b.String), TypeOf(b.Int)
	b.Enum.Fields = append(b.Enum.Fields,
		&Field{Name: config.EnumNameField, Owner: b.Enum, Typ: s},
		&Field{Name: config.EnumOrdinalField, Owner: b.Enum, Typ: i},
	)
	b.ctor(b.Enum,
		&Param{Symbol: &Variable{Name: config.EnumNameField, Typ: s}},
		&Param{Symbol: &Variable{Name: config.EnumOrdinalField, Typ: i}},
	)
	b.member(b.Enum, "name", s)
	b.member(b.Enum, "ordinal", i)
	b.member(b.Enum, "compareTo", i, TypeOf(b.Enum))
}

func (b *Builtins) declareArray() {
	b.Array = b.declare("Array", config.ArrayFQName, ClassDecl, b.Any, KindArray)
	anyN := NullableOf(b.Any)
	b.ctor(b.Array,
		&Param{Symbol: &Variable{Name: "size", Typ: TypeOf(b.Int)}},
		&Param{
			Symbol:  &Variable{Name: "init", Typ: NullableOf(b.FunctionIface(1))},
			Default: &Const{Kind: KindNull, Typ: NullableOf(b.FunctionIface(1))},
		},
	)
	b.member(b.Array, "get", anyN, TypeOf(b.Int))
	b.member(b.Array, "set", TypeOf(b.Unit), TypeOf(b.Int), anyN)
	b.member(b.Array, "size", TypeOf(b.Int))
}

func (b *Builtins) declareRanges() {
	type rangeSpec struct {
		class *Class
		elem  *Class
	}
	specs := []rangeSpec{
		{b.intRangeClass(), b.Int},
		{b.longRangeClass(), b.Long},
		{b.charRangeClass(), b.Char},
	}
	for _, spec := range specs {
		et := TypeOf(spec.elem)
		spec.class.Fields = append(spec.class.Fields,
			&Field{Name: "first", Owner: spec.class, Typ: et},
			&Field{Name: "last", Owner: spec.class, Typ: et},
			&Field{Name: "step", Owner: spec.class, Typ: TypeOf(b.Int)},
		)
		b.ctor(spec.class,
			&Param{Symbol: &Variable{Name: "first", Typ: et}},
			&Param{Symbol: &Variable{Name: "last", Typ: et}},
		)
		b.member(spec.class, "contains", TypeOf(b.Boolean), et)
		b.member(spec.class, "isEmpty", TypeOf(b.Boolean))
		if spec.elem != b.Char {
			b.member(spec.class, "sum", et)
		}
	}
}

func (b *Builtins) declareUnsigned() {
	type uspec struct {
		name    string
		backing *Class
	}
	specs := []uspec{
		{"UByte", b.Byte},
		{"UShort", b.Short},
		{"UInt", b.Int},
		{"ULong", b.Long},
	}
	classes := make([]*Class, len(specs))
	for idx, spec := range specs {
		c := b.declare(spec.name, config.LangPackage+"."+spec.name, ClassDecl, b.Any, KindNull)
		c.Fields = append(c.Fields, &Field{Name: "data", Owner: c, Typ: TypeOf(spec.backing)})
		b.ctor(c, &Param{Symbol: &Variable{Name: "data", Typ: TypeOf(spec.backing)}})
		classes[idx] = c
	}
	b.UByte, b.UShort, b.UInt, b.ULong = classes[0], classes[1], classes[2], classes[3]
	for _, c := range classes {
		for _, op := range []string{"plus", "minus", "times", "div", "rem"} {
			b.member(c, op, TypeOf(c), TypeOf(c))
		}
		b.member(c, "compareTo", TypeOf(b.Int), TypeOf(c))
		b.member(c, "toInt", TypeOf(b.Int))
		b.member(c, "toLong", TypeOf(b.Long))
		b.member(c, "toString", TypeOf(b.String))
	}
}

func (b *Builtins) declareRegex() {
	b.Regex = b.declare("Regex", config.RegexFQName, ClassDecl, b.Any, KindNull)
	b.Regex.Intrinsic = true
	s, bo := TypeOf(b.String), TypeOf(b.Boolean)
	b.ctor(b.Regex, &Param{Symbol: &Variable{Name: "pattern", Typ: s}})
	b.member(b.Regex, "matches", bo, s)
	b.member(b.Regex, "containsMatchIn", bo, s)
	b.member(b.Regex, "replace", s, s, s)
	b.member(b.Regex, "find", NullableOf(b.String), s)
	b.member(b.Regex, "pattern", s)
}
