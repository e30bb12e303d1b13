package interpreter

import (
	"strings"
	"testing"

	"github.com/funvibe/irfold/internal/ir"
)

// TestArithmeticPromotion computes at the width of the most precise operand,
// with sub-Int operands widened to Int.
func TestArithmeticPromotion(t *testing.T) {
	m := newTestModule()

	t.Run("int plus int stays int", func(t *testing.T) {
		c := evalConst(t, m, m.binOp(t, "Int", "plus", m.intConst(40), m.intConst(2)))
		wantInt(t, c, 42)
	})

	t.Run("int plus long widens to long", func(t *testing.T) {
		plus := m.method(t, "Int", "plus", "Long")
		c := evalConst(t, m, &ir.Call{Fn: plus, Dispatch: m.intConst(40), Args: []ir.Expr{m.longConst(2)}})
		if c.Kind != ir.KindLong || c.Value.(int64) != 42 {
			t.Fatalf("promotion = (%s, %v), want (Long, 42)", c.Kind, c.Value)
		}
	})

	t.Run("int div double widens to double", func(t *testing.T) {
		div := m.method(t, "Int", "div", "Double")
		two := &ir.Const{Kind: ir.KindDouble, Value: 2.0, Typ: ir.TypeOf(m.b.Double)}
		c := evalConst(t, m, &ir.Call{Fn: div, Dispatch: m.intConst(5), Args: []ir.Expr{two}})
		if c.Kind != ir.KindDouble || c.Value.(float64) != 2.5 {
			t.Fatalf("promotion = (%s, %v), want (Double, 2.5)", c.Kind, c.Value)
		}
	})

	t.Run("byte arithmetic lands on int", func(t *testing.T) {
		plus := m.method(t, "Byte", "plus", "Byte")
		b := func(v int8) ir.Expr {
			return &ir.Const{Kind: ir.KindByte, Value: v, Typ: ir.TypeOf(m.b.Byte)}
		}
		c := evalConst(t, m, &ir.Call{Fn: plus, Dispatch: b(100), Args: []ir.Expr{b(100)}})
		wantInt(t, c, 200)
	})

	t.Run("int overflow wraps at width", func(t *testing.T) {
		c := evalConst(t, m, m.binOp(t, "Int", "plus", m.intConst(2147483647), m.intConst(1)))
		wantInt(t, c, -2147483648)
	})
}

// TestIntegerDivision truncates toward zero and raises on zero divisors.
func TestIntegerDivision(t *testing.T) {
	m := newTestModule()

	c := evalConst(t, m, m.binOp(t, "Int", "div", m.intConst(-7), m.intConst(2)))
	wantInt(t, c, -3)

	rem := evalConst(t, m, m.binOp(t, "Int", "rem", m.intConst(-7), m.intConst(2)))
	wantInt(t, rem, -1)

	e := evalError(t, m, m.binOp(t, "Int", "div", m.intConst(1), m.intConst(0)))
	if !strings.Contains(e.Description, "ArithmeticException: / by zero") {
		t.Fatalf("zero division error = %q", e.Description)
	}

	// Long remainder by zero raises too.
	le := evalError(t, m, m.binOp(t, "Long", "rem", m.longConst(1), m.longConst(0)))
	if !strings.Contains(le.Description, "ArithmeticException") {
		t.Fatalf("long zero remainder error = %q", le.Description)
	}
}

// TestFloatingSpecialValues divides through host semantics instead of
// raising.
func TestFloatingSpecialValues(t *testing.T) {
	m := newTestModule()
	div := m.method(t, "Double", "div", "Double")
	d := func(v float64) ir.Expr {
		return &ir.Const{Kind: ir.KindDouble, Value: v, Typ: ir.TypeOf(m.b.Double)}
	}

	c := evalConst(t, m, &ir.Call{Fn: div, Dispatch: d(1), Args: []ir.Expr{d(0)}})
	if c.Value.(float64) <= 0 {
		t.Fatalf("1.0/0.0 = %v, want +Inf", c.Value)
	}

	s := evalConst(t, m, &ir.StringConcat{Args: []ir.Expr{&ir.Call{
		Fn: div, Dispatch: d(1), Args: []ir.Expr{d(0)},
	}}})
	wantString(t, s, "Infinity")
}

// TestFloatFormatting keeps the trailing .0 on whole values.
func TestFloatFormatting(t *testing.T) {
	m := newTestModule()
	one := &ir.Const{Kind: ir.KindDouble, Value: 1.0, Typ: ir.TypeOf(m.b.Double)}
	c := evalConst(t, m, &ir.StringConcat{Args: []ir.Expr{one}})
	wantString(t, c, "1.0")

	half := &ir.Const{Kind: ir.KindDouble, Value: 2.5, Typ: ir.TypeOf(m.b.Double)}
	c = evalConst(t, m, &ir.StringConcat{Args: []ir.Expr{half}})
	wantString(t, c, "2.5")
}

// TestBitwiseOps covers the Int shift mask and ushr zero-fill.
func TestBitwiseOps(t *testing.T) {
	m := newTestModule()

	and := evalConst(t, m, m.binOp(t, "Int", "and", m.intConst(0b1100), m.intConst(0b1010)))
	wantInt(t, and, 0b1000)

	shl := m.method(t, "Int", "shl", "Int")
	c := evalConst(t, m, &ir.Call{Fn: shl, Dispatch: m.intConst(1), Args: []ir.Expr{m.intConst(33)}})
	// Distance is masked to the receiver width: 1 shl 33 == 1 shl 1.
	wantInt(t, c, 2)

	ushr := m.method(t, "Int", "ushr", "Int")
	c = evalConst(t, m, &ir.Call{Fn: ushr, Dispatch: m.intConst(-1), Args: []ir.Expr{m.intConst(28)}})
	wantInt(t, c, 15)

	inv := m.method(t, "Int", "inv")
	c = evalConst(t, m, &ir.Call{Fn: inv, Dispatch: m.intConst(0)})
	wantInt(t, c, -1)
}

// TestStringSurface drives the member functions backed by host string APIs.
func TestStringSurface(t *testing.T) {
	m := newTestModule()
	call1 := func(name string, recv ir.Expr) ir.Expr {
		return &ir.Call{Fn: m.method(t, "String", name), Dispatch: recv}
	}

	t.Run("length and emptiness", func(t *testing.T) {
		wantInt(t, evalConst(t, m, call1("length", m.strConst("абв"))), 3)
		wantBool(t, evalConst(t, m, call1("isEmpty", m.strConst(""))), true)
	})

	t.Run("substring bounds", func(t *testing.T) {
		sub := m.method(t, "String", "substring", "Int", "Int")
		c := evalConst(t, m, &ir.Call{
			Fn:       sub,
			Dispatch: m.strConst("interpreter"),
			Args:     []ir.Expr{m.intConst(0), m.intConst(5)},
		})
		wantString(t, c, "inter")

		e := evalError(t, m, &ir.Call{
			Fn:       sub,
			Dispatch: m.strConst("ab"),
			Args:     []ir.Expr{m.intConst(1), m.intConst(9)},
		})
		if !strings.Contains(e.Description, "IndexOutOfBoundsException") {
			t.Fatalf("out-of-bounds substring error = %q", e.Description)
		}
	})

	t.Run("get indexes runes", func(t *testing.T) {
		get := m.method(t, "String", "get", "Int")
		c := evalConst(t, m, &ir.Call{Fn: get, Dispatch: m.strConst("язык"), Args: []ir.Expr{m.intConst(1)}})
		if c.Kind != ir.KindChar || c.Value.(rune) != 'з' {
			t.Fatalf("get = (%s, %q)", c.Kind, c.Value)
		}
	})

	t.Run("plus stringifies any argument", func(t *testing.T) {
		plus := m.method(t, "String", "plus", "Any")
		c := evalConst(t, m, &ir.Call{Fn: plus, Dispatch: m.strConst("n="), Args: []ir.Expr{m.intConst(5)}})
		wantString(t, c, "n=5")
	})

	t.Run("replace", func(t *testing.T) {
		replace := m.method(t, "String", "replace", "String", "String")
		c := evalConst(t, m, &ir.Call{
			Fn:       replace,
			Dispatch: m.strConst("a-b-c"),
			Args:     []ir.Expr{m.strConst("-"), m.strConst("+")},
		})
		wantString(t, c, "a+b+c")
	})

	t.Run("toInt rejects junk", func(t *testing.T) {
		toInt := m.method(t, "String", "toInt")
		wantInt(t, evalConst(t, m, &ir.Call{Fn: toInt, Dispatch: m.strConst("42")}), 42)
		e := evalError(t, m, &ir.Call{Fn: toInt, Dispatch: m.strConst("4x")})
		if !strings.Contains(e.Description, "IllegalArgumentException") {
			t.Fatalf("toInt junk error = %q", e.Description)
		}
	})
}

// TestConversionRoundTrips narrows and widens across the numeric widths.
func TestConversionRoundTrips(t *testing.T) {
	m := newTestModule()

	toByte := m.method(t, "Int", "toByte")
	c := evalConst(t, m, &ir.Call{Fn: toByte, Dispatch: m.intConst(300)})
	if c.Kind != ir.KindByte || c.Value.(int8) != 44 {
		t.Fatalf("toByte(300) = (%s, %v), want (Byte, 44)", c.Kind, c.Value)
	}

	toChar := m.method(t, "Int", "toChar")
	c = evalConst(t, m, &ir.Call{Fn: toChar, Dispatch: m.intConst(65)})
	if c.Kind != ir.KindChar || c.Value.(rune) != 'A' {
		t.Fatalf("toChar(65) = (%s, %q)", c.Kind, c.Value)
	}

	toLong := m.method(t, "Double", "toLong")
	pi := &ir.Const{Kind: ir.KindDouble, Value: 3.9, Typ: ir.TypeOf(m.b.Double)}
	c = evalConst(t, m, &ir.Call{Fn: toLong, Dispatch: pi})
	if c.Kind != ir.KindLong || c.Value.(int64) != 3 {
		t.Fatalf("toLong(3.9) = (%s, %v), want truncation to 3", c.Kind, c.Value)
	}
}

// TestCharArithmetic moves through the character plane and back.
func TestCharArithmetic(t *testing.T) {
	m := newTestModule()
	char := func(r rune) ir.Expr {
		return &ir.Const{Kind: ir.KindChar, Value: r, Typ: ir.TypeOf(m.b.Char)}
	}

	plus := m.method(t, "Char", "plus", "Int")
	c := evalConst(t, m, &ir.Call{Fn: plus, Dispatch: char('a'), Args: []ir.Expr{m.intConst(2)}})
	if c.Value.(rune) != 'c' {
		t.Fatalf("'a' + 2 = %q, want 'c'", c.Value)
	}

	minus := m.method(t, "Char", "minus", "Char")
	c = evalConst(t, m, &ir.Call{Fn: minus, Dispatch: char('z'), Args: []ir.Expr{char('a')}})
	wantInt(t, c, 25)
}

// TestRangeMembership checks contains and isEmpty over the range fields.
func TestRangeMembership(t *testing.T) {
	m := newTestModule()
	rangeTo := m.method(t, "Int", "rangeTo", "Int")
	mk := func(lo, hi int32) ir.Expr {
		return &ir.Call{Fn: rangeTo, Dispatch: m.intConst(lo), Args: []ir.Expr{m.intConst(hi)}}
	}

	contains := findMethod(t, m.b.IntRange, "contains", "Int")
	wantBool(t, evalConst(t, m, &ir.Call{Fn: contains, Dispatch: mk(1, 10), Args: []ir.Expr{m.intConst(5)}}), true)
	wantBool(t, evalConst(t, m, &ir.Call{Fn: contains, Dispatch: mk(1, 10), Args: []ir.Expr{m.intConst(11)}}), false)

	isEmpty := findMethod(t, m.b.IntRange, "isEmpty")
	wantBool(t, evalConst(t, m, &ir.Call{Fn: isEmpty, Dispatch: mk(5, 1)}), true)
}

// TestBooleanTable evaluates the eager boolean entries; both operands are
// already evaluated by the time dispatch reaches the table.
func TestBooleanTable(t *testing.T) {
	m := newTestModule()
	and := m.method(t, "Boolean", "and", "Boolean")
	c := evalConst(t, m, &ir.Call{Fn: and, Dispatch: m.boolConst(true), Args: []ir.Expr{m.boolConst(false)}})
	wantBool(t, c, false)

	not := m.method(t, "Boolean", "not")
	c = evalConst(t, m, &ir.Call{Fn: not, Dispatch: m.boolConst(false)})
	wantBool(t, c, true)

	xor := m.method(t, "Boolean", "xor", "Boolean")
	c = evalConst(t, m, &ir.Call{Fn: xor, Dispatch: m.boolConst(true), Args: []ir.Expr{m.boolConst(true)}})
	wantBool(t, c, false)
}
