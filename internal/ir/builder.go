package ir

// Construction helpers for module fragments. The frontend that normally
// produces resolved IR lives outside this repository; these helpers give the
// document loader and tests a compact way to assemble well-formed trees.

// NewClass declares a user class rooted under the module package, with Any
// as the implicit super class.
func NewClass(b *Builtins, pkg, name, file string) *Class {
	c := &Class{
		Name:   name,
		FQName: pkg + "." + name,
		Kind:   ClassDecl,
		Super:  b.Any,
		File:   file,
	}
	return c
}

// NewEnumClass declares an enum class with the given entries in declaration
// order. The primary constructor delegates to the enum super-constructor
// with unfilled name/ordinal slots; the evaluator injects them per entry.
func NewEnumClass(b *Builtins, pkg, name, file string, entryNames ...string) *Class {
	c := &Class{
		Name:   name,
		FQName: pkg + "." + name,
		Kind:   EnumDecl,
		Super:  b.Enum,
		File:   file,
	}

	ctor := AddConstructor(c, true)
	ctor.Body = &Block{Stmts: []Expr{
		&ConstructorCall{
			Class:      b.Enum,
			Ctor:       b.Enum.Constructors[0],
			Args:       make([]Expr, 2),
			Delegating: true,
			EnumSuper:  true,
		},
	}}

	for _, entryName := range entryNames {
		c.Entries = append(c.Entries, &EnumEntry{
			Name:  entryName,
			Owner: c,
			Init:  &ConstructorCall{Class: c, Ctor: ctor},
		})
	}

	valueOf := &Function{
		Name:   "valueOf",
		FQName: c.FQName + ".valueOf",
		Parent: c,
		Return: TypeOf(c),
		Static: true,
		File:   file,
	}
	valueOf.Params = []*Param{{Symbol: &Variable{Name: "value", Typ: TypeOf(b.String)}}}
	values := &Function{
		Name:   "values",
		FQName: c.FQName + ".values",
		Parent: c,
		Return: ArrayOf(b.Array, TypeOf(c)),
		Static: true,
		File:   file,
	}
	c.Functions = append(c.Functions, valueOf, values)
	return c
}

// AddField declares a backing field on the class.
func AddField(c *Class, name string, typ *Type) *Field {
	f := &Field{Name: name, Owner: c, Typ: typ}
	c.Fields = append(c.Fields, f)
	return f
}

// AddMethod declares a member function with a dispatch receiver.
func AddMethod(c *Class, name string, ret *Type) *Function {
	fn := &Function{
		Name:     name,
		FQName:   c.FQName + "." + name,
		Parent:   c,
		Dispatch: &Variable{Name: "<this>", Typ: TypeOf(c)},
		Return:   ret,
		File:     c.File,
	}
	c.Functions = append(c.Functions, fn)
	return fn
}

// AddConstructor declares a constructor on the class.
func AddConstructor(c *Class, primary bool) *Function {
	fn := &Function{
		Name:        "<init>",
		FQName:      c.FQName + ".<init>",
		Parent:      c,
		Dispatch:    &Variable{Name: "<this>", Typ: TypeOf(c)},
		Return:      TypeOf(c),
		Constructor: true,
		Primary:     primary,
		File:        c.File,
	}
	c.Constructors = append(c.Constructors, fn)
	return fn
}

// NewFunction declares a top-level function.
func NewFunction(pkg, name, file string, line int, ret *Type) *Function {
	return &Function{
		Name:   name,
		FQName: pkg + "." + name,
		Return: ret,
		File:   file,
		Line:   line,
	}
}

// AddParam appends a value parameter and returns its symbol.
func AddParam(fn *Function, name string, typ *Type, deflt Expr) *Variable {
	sym := &Variable{Name: name, Typ: typ}
	fn.Params = append(fn.Params, &Param{Symbol: sym, Default: deflt})
	return sym
}

// SetBody attaches a block body built from the given statements.
func SetBody(fn *Function, stmts ...Expr) {
	fn.Body = &Block{Stmts: stmts}
}
