package interpreter

import (
	"strings"
	"testing"

	"github.com/funvibe/irfold/internal/ir"
)

// pointClass declares a data-class-shaped Point(x, y) whose primary
// constructor binds parameters onto fields.
func pointClass(m *testModule) *ir.Class {
	c := ir.NewClass(m.b, "main", "Point", "Main.lang")
	c.Data = true
	ctor := ir.AddConstructor(c, true)
	var stmts []ir.Expr
	for _, name := range []string{"x", "y"} {
		f := ir.AddField(c, name, ir.TypeOf(m.b.Int))
		sym := ir.AddParam(ctor, name, f.Typ, nil)
		stmts = append(stmts, &ir.SetField{
			Receiver: &ir.GetValue{Symbol: ctor.Dispatch},
			Field:    f,
			Value:    &ir.GetValue{Symbol: sym},
		})
	}
	ctor.Body = &ir.Block{Stmts: stmts}
	return c
}

func newPoint(m *testModule, c *ir.Class, x, y int32) ir.Expr {
	return &ir.ConstructorCall{
		Class: c,
		Ctor:  c.Constructors[0],
		Args:  []ir.Expr{m.intConst(x), m.intConst(y)},
	}
}

// TestDataClassToString covers the "x=" + Point(1,2) scenario.
func TestDataClassToString(t *testing.T) {
	m := newTestModule()
	point := pointClass(m)
	expr := &ir.StringConcat{Args: []ir.Expr{
		m.strConst("x="),
		newPoint(m, point, 1, 2),
	}}
	wantString(t, evalConst(t, m, expr), "x=Point(x=1, y=2)")
}

// TestDataClassLaws verifies equal field values imply equals, equal hash
// codes, and a toString naming the class and each field.
func TestDataClassLaws(t *testing.T) {
	m := newTestModule()
	point := pointClass(m)
	equals := m.method(t, "Any", "equals", "Any")
	hashCode := m.method(t, "Any", "hashCode")

	t.Run("equal field values compare equal", func(t *testing.T) {
		c := evalConst(t, m, &ir.Call{
			Fn:       equals,
			Dispatch: newPoint(m, point, 3, 4),
			Args:     []ir.Expr{newPoint(m, point, 3, 4)},
		})
		wantBool(t, c, true)
	})
	t.Run("different field values compare unequal", func(t *testing.T) {
		c := evalConst(t, m, &ir.Call{
			Fn:       equals,
			Dispatch: newPoint(m, point, 3, 4),
			Args:     []ir.Expr{newPoint(m, point, 3, 5)},
		})
		wantBool(t, c, false)
	})
	t.Run("equal values share a hash", func(t *testing.T) {
		first := evalConst(t, m, &ir.Call{Fn: hashCode, Dispatch: newPoint(m, point, 3, 4)})
		second := evalConst(t, m, &ir.Call{Fn: hashCode, Dispatch: newPoint(m, point, 3, 4)})
		if first.Value != second.Value {
			t.Fatalf("hash codes diverge for equal values: %v vs %v", first.Value, second.Value)
		}
	})
	t.Run("toString names the class and fields", func(t *testing.T) {
		c := evalConst(t, m, &ir.StringConcat{Args: []ir.Expr{newPoint(m, point, 7, 8)}})
		s := c.Value.(string)
		for _, want := range []string{"Point", "x", "y", "7", "8"} {
			if !strings.Contains(s, want) {
				t.Fatalf("toString %q misses %q", s, want)
			}
		}
	})
}

// TestFieldMutation assigns a field slot on the receiver in place.
func TestFieldMutation(t *testing.T) {
	m := newTestModule()
	point := pointClass(m)
	x := point.FindField("x")
	p := &ir.Variable{Name: "p", Typ: ir.TypeOf(point)}

	expr := &ir.Block{Stmts: []ir.Expr{
		&ir.VarDecl{Symbol: p, Init: newPoint(m, point, 1, 2)},
		&ir.SetField{
			Receiver: &ir.GetValue{Symbol: p},
			Field:    x,
			Value:    m.intConst(10),
		},
		&ir.GetField{Receiver: &ir.GetValue{Symbol: p}, Field: x},
	}}
	wantInt(t, evalConst(t, m, expr), 10)
}

// TestVirtualDispatch resolves an abstract method through the runtime class
// of the receiver and lets super calls re-enter the super body.
func TestVirtualDispatch(t *testing.T) {
	m := newTestModule()

	base := ir.NewClass(m.b, "main", "Shape", "Main.lang")
	base.Abstract = true
	baseCtor := ir.AddConstructor(base, true)
	baseCtor.Body = &ir.Block{}
	describe := ir.AddMethod(base, "describe", ir.TypeOf(m.b.String))
	describe.Abstract = true
	labeled := ir.AddMethod(base, "label", ir.TypeOf(m.b.String))
	ir.SetBody(labeled, &ir.Return{Target: labeled, Value: &ir.Const{
		Kind: ir.KindString, Value: "shape", Typ: ir.TypeOf(m.b.String),
	}})

	derived := ir.NewClass(m.b, "main", "Circle", "Main.lang")
	derived.Super = base
	derivedCtor := ir.AddConstructor(derived, true)
	derivedCtor.Body = &ir.Block{Stmts: []ir.Expr{
		&ir.ConstructorCall{Class: base, Ctor: baseCtor, Delegating: true},
	}}
	impl := ir.AddMethod(derived, "describe", ir.TypeOf(m.b.String))
	impl.Overridden = []*ir.Function{describe}
	// describe() = label() + "/circle", where label() resolves on Shape.
	ir.SetBody(impl, &ir.Return{Target: impl, Value: &ir.StringConcat{Args: []ir.Expr{
		&ir.Call{Fn: labeled, Dispatch: &ir.GetValue{Symbol: impl.Dispatch}, Super: true},
		&ir.Const{Kind: ir.KindString, Value: "/circle", Typ: ir.TypeOf(m.b.String)},
	}}})

	newCircle := &ir.ConstructorCall{Class: derived, Ctor: derivedCtor}

	t.Run("abstract call resolves the override", func(t *testing.T) {
		c := evalConst(t, m, &ir.Call{Fn: describe, Dispatch: newCircle})
		wantString(t, c, "shape/circle")
	})
	t.Run("missing override is an internal error", func(t *testing.T) {
		orphan := ir.NewClass(m.b, "main", "Blob", "Main.lang")
		orphan.Super = base
		orphanCtor := ir.AddConstructor(orphan, true)
		orphanCtor.Body = &ir.Block{Stmts: []ir.Expr{
			&ir.ConstructorCall{Class: base, Ctor: baseCtor, Delegating: true},
		}}
		e := evalError(t, m, &ir.Call{
			Fn:       describe,
			Dispatch: &ir.ConstructorCall{Class: orphan, Ctor: orphanCtor},
		})
		if !strings.Contains(e.Description, "describe") {
			t.Fatalf("internal error lacks the method name: %q", e.Description)
		}
	})
}

// TestInterfaceDefault evaluates a default body declared on an interface.
func TestInterfaceDefault(t *testing.T) {
	m := newTestModule()

	iface := ir.NewClass(m.b, "main", "Greeter", "Main.lang")
	iface.Kind = ir.InterfaceDecl
	greet := ir.AddMethod(iface, "greet", ir.TypeOf(m.b.String))
	ir.SetBody(greet, &ir.Return{Target: greet, Value: &ir.Const{
		Kind: ir.KindString, Value: "hello", Typ: ir.TypeOf(m.b.String),
	}})

	impl := ir.NewClass(m.b, "main", "Host", "Main.lang")
	impl.Interfaces = []*ir.Class{iface}
	ctor := ir.AddConstructor(impl, true)
	ctor.Body = &ir.Block{}

	c := evalConst(t, m, &ir.Call{
		Fn:       greet,
		Dispatch: &ir.ConstructorCall{Class: impl, Ctor: ctor},
	})
	wantString(t, c, "hello")
}

// TestSecondaryConstructor copies the sibling instance's fields onto the new
// object.
func TestSecondaryConstructor(t *testing.T) {
	m := newTestModule()
	point := pointClass(m)

	// constructor(x: Int) : this(x, 0)
	secondary := ir.AddConstructor(point, false)
	xParam := ir.AddParam(secondary, "x", ir.TypeOf(m.b.Int), nil)
	secondary.Body = &ir.Block{Stmts: []ir.Expr{
		&ir.ConstructorCall{
			Class:      point,
			Ctor:       point.Constructors[0],
			Args:       []ir.Expr{&ir.GetValue{Symbol: xParam}, m.intConst(0)},
			Delegating: true,
		},
	}}

	expr := &ir.StringConcat{Args: []ir.Expr{&ir.ConstructorCall{
		Class: point,
		Ctor:  secondary,
		Args:  []ir.Expr{m.intConst(9)},
	}}}
	wantString(t, evalConst(t, m, expr), "Point(x=9, y=0)")
}

// TestInstanceInitializer runs a property initializer against the receiver
// before the rest of the constructor body.
func TestInstanceInitializer(t *testing.T) {
	m := newTestModule()
	c := ir.NewClass(m.b, "main", "Counter", "Main.lang")
	count := ir.AddField(c, "count", ir.TypeOf(m.b.Int))
	count.Init = m.intConst(41)
	ctor := ir.AddConstructor(c, true)
	ctor.Body = &ir.Block{Stmts: []ir.Expr{
		&ir.InstanceInitializer{Class: c},
		&ir.SetField{
			Receiver: &ir.GetValue{Symbol: ctor.Dispatch},
			Field:    count,
			Value: m.binOp(t, "Int", "plus",
				&ir.GetField{Receiver: &ir.GetValue{Symbol: ctor.Dispatch}, Field: count},
				m.intConst(1)),
		},
	}}

	expr := &ir.GetField{
		Receiver: &ir.ConstructorCall{Class: c, Ctor: ctor},
		Field:    count,
	}
	wantInt(t, evalConst(t, m, expr), 42)
}

// TestArrayConstructor allocates a buffer and runs the initializer lambda
// once per index in order.
func TestArrayConstructor(t *testing.T) {
	m := newTestModule()
	iface := m.b.FunctionIface(1)
	square := ir.NewFunction("main", "<anonymous>", "Main.lang", 5, ir.TypeOf(m.b.Int))
	idx := ir.AddParam(square, "it", ir.TypeOf(m.b.Int), nil)
	ir.SetBody(square, &ir.Return{Target: square, Value: m.binOp(t, "Int", "times",
		&ir.GetValue{Symbol: idx}, &ir.GetValue{Symbol: idx})})

	arr := &ir.ConstructorCall{
		Class: m.b.Array,
		Ctor:  m.b.Array.Constructors[0],
		Args: []ir.Expr{
			m.intConst(4),
			&ir.FunctionExpr{Fn: square, Iface: iface},
		},
	}
	get := findMethod(t, m.b.Array, "get", "Int")
	c := evalConst(t, m, &ir.Call{Fn: get, Dispatch: arr, Args: []ir.Expr{m.intConst(3)}})
	wantInt(t, c, 9)
}

// TestRegexIntrinsic drives the host-wrapped regex type through its
// constructor and method table.
func TestRegexIntrinsic(t *testing.T) {
	m := newTestModule()
	newRegex := func(pattern string) ir.Expr {
		return &ir.ConstructorCall{
			Class: m.b.Regex,
			Ctor:  m.b.Regex.Constructors[0],
			Args:  []ir.Expr{m.strConst(pattern)},
		}
	}

	t.Run("matches is anchored", func(t *testing.T) {
		matches := findMethod(t, m.b.Regex, "matches", "String")
		yes := evalConst(t, m, &ir.Call{Fn: matches, Dispatch: newRegex(`[a-z]+`), Args: []ir.Expr{m.strConst("abc")}})
		wantBool(t, yes, true)
		no := evalConst(t, m, &ir.Call{Fn: matches, Dispatch: newRegex(`[a-z]+`), Args: []ir.Expr{m.strConst("abc1")}})
		wantBool(t, no, false)
	})
	t.Run("containsMatchIn is unanchored", func(t *testing.T) {
		contains := findMethod(t, m.b.Regex, "containsMatchIn", "String")
		c := evalConst(t, m, &ir.Call{Fn: contains, Dispatch: newRegex(`\d`), Args: []ir.Expr{m.strConst("a1b")}})
		wantBool(t, c, true)
	})
	t.Run("replace rewrites every match", func(t *testing.T) {
		replace := findMethod(t, m.b.Regex, "replace", "String", "String")
		c := evalConst(t, m, &ir.Call{
			Fn:       replace,
			Dispatch: newRegex(`\s+`),
			Args:     []ir.Expr{m.strConst("a  b   c"), m.strConst("_")},
		})
		wantString(t, c, "a_b_c")
	})
	t.Run("invalid pattern raises illegal argument", func(t *testing.T) {
		e := evalError(t, m, newRegex(`[`))
		if !strings.Contains(e.Description, "IllegalArgumentException") {
			t.Fatalf("invalid pattern error = %q", e.Description)
		}
	})
}

// TestUnsignedConstant synthesizes unsigned constants as constructor calls
// and formats them through the unsigned surface.
func TestUnsignedConstant(t *testing.T) {
	m := newTestModule()
	// -1 as UInt is 4294967295.
	uconst := &ir.Const{Kind: ir.KindInt, Value: int32(-1), Typ: ir.TypeOf(m.b.UInt)}
	toString := findMethod(t, m.b.UInt, "toString")

	c := evalConst(t, m, &ir.Call{Fn: toString, Dispatch: uconst})
	wantString(t, c, "4294967295")

	plus := findMethod(t, m.b.UInt, "plus", "UInt")
	one := &ir.Const{Kind: ir.KindInt, Value: int32(1), Typ: ir.TypeOf(m.b.UInt)}
	wrapped := &ir.Call{
		Fn:       toString,
		Dispatch: &ir.Call{Fn: plus, Dispatch: uconst, Args: []ir.Expr{one}},
	}
	wantString(t, evalConst(t, m, wrapped), "0")
}

// TestLongConstructor synthesizes the long from its word pair.
func TestLongConstructor(t *testing.T) {
	m := newTestModule()
	expr := &ir.ConstructorCall{
		Class: m.b.Long,
		Ctor:  findCtor(t, m.b.Long, 2),
		Args:  []ir.Expr{m.intConst(1), m.intConst(2)},
	}
	c := evalConst(t, m, expr)
	if c.Kind != ir.KindLong || c.Value.(int64) != (1<<32)+2 {
		t.Fatalf("long constructor = (%s, %v), want (Long, %d)", c.Kind, c.Value, int64(1<<32)+2)
	}
}

func findCtor(t *testing.T, class *ir.Class, argc int) *ir.Function {
	t.Helper()
	for _, ctor := range class.Constructors {
		if len(ctor.Params) == argc {
			return ctor
		}
	}
	t.Fatalf("class %s has no constructor of arity %d", class.Name, argc)
	return nil
}
